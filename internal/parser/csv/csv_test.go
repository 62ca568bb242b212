package csv

import (
	"io"
	"reflect"
	"strings"
	"testing"

	"tabetl/internal/parser"
)

func drain(t *testing.T, s *Source) []parser.Record {
	t.Helper()
	var out []parser.Record
	for {
		rec, err := s.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, rec)
	}
}

func TestSourceBasic(t *testing.T) {
	t.Parallel()

	src, err := NewSource(strings.NewReader("D1,M1,M2\na,3,5\nb,x,2\n"), Options{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	if got, want := src.Header(), []string{"D1", "M1", "M2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Header = %v, want %v", got, want)
	}

	recs := drain(t, src)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	want := []parser.Field{{Name: "D1", Value: "b"}, {Name: "M1", Value: "x"}, {Name: "M2", Value: "2"}}
	if !reflect.DeepEqual(recs[1].Fields, want) {
		t.Fatalf("record 2 fields = %v, want %v", recs[1].Fields, want)
	}
	if recs[0].ID != "line 2" || recs[1].ID != "line 3" {
		t.Fatalf("record IDs = %q, %q; want line 2, line 3", recs[0].ID, recs[1].ID)
	}
}

func TestSourceRaggedRows(t *testing.T) {
	t.Parallel()

	src, err := NewSource(strings.NewReader("D1,M1\na\nb,2,junk\n"), Options{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	recs := drain(t, src)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if len(recs[0].Fields) != 1 {
		t.Errorf("short row: %d fields, want 1", len(recs[0].Fields))
	}
	if len(recs[1].Fields) != 2 {
		t.Errorf("wide row: %d fields, want 2 (surplus dropped)", len(recs[1].Fields))
	}
}

func TestSourceCustomDelimiter(t *testing.T) {
	t.Parallel()

	src, err := NewSource(strings.NewReader("D1;M1\na;1\n"), Options{Comma: ';'})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	recs := drain(t, src)
	if len(recs) != 1 || recs[0].Fields[1].Value != "1" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestSourceEmptyInput(t *testing.T) {
	t.Parallel()

	src, err := NewSource(strings.NewReader(""), Options{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	if len(src.Header()) != 0 {
		t.Fatalf("Header = %v, want empty", src.Header())
	}
	if _, err := src.Next(); err != io.EOF {
		t.Fatalf("Next on empty input = %v, want io.EOF", err)
	}
}

func TestSourceStripsBOM(t *testing.T) {
	t.Parallel()

	src, err := NewSource(strings.NewReader("\ufeffD1,M1\na,1\n"), Options{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	if got := src.Header()[0]; got != "D1" {
		t.Fatalf("first header cell = %q, want D1", got)
	}
}
