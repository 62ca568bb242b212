package ingest

import (
	"io"
	"reflect"
	"strings"
	"testing"

	csvparser "tabetl/internal/parser/csv"
	jsonparser "tabetl/internal/parser/json"
	xmlparser "tabetl/internal/parser/xml"
	"tabetl/internal/rowstore"
	"tabetl/pkg/records"
)

// captureReporter records diagnostics for assertions.
type captureReporter struct {
	calls [][4]string
}

func (c *captureReporter) DroppedField(source, column, raw, recordID string) {
	c.calls = append(c.calls, [4]string{source, column, raw, recordID})
}

func TestRunCSVPartialRowSurvival(t *testing.T) {
	t.Parallel()

	src, err := csvparser.NewSource(strings.NewReader("D1,M1,M2\na,3,5\nb,x,2\n"), csvparser.Options{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	store := rowstore.New()
	rep := &captureReporter{}
	stats, err := Run(store, "test.csv", src, Options{Reporter: rep})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Rows != 2 || stats.Dropped != 1 {
		t.Fatalf("stats = %+v, want 2 rows, 1 dropped", stats)
	}

	rows := store.Rows()
	want0 := records.Record{"D1": "a", "M1": int64(3), "M2": int64(5)}
	want1 := records.Record{"D1": "b", "M2": int64(2)}
	if !reflect.DeepEqual(rows[0], want0) {
		t.Errorf("row 0 = %v, want %v", rows[0], want0)
	}
	if !reflect.DeepEqual(rows[1], want1) {
		t.Errorf("row 1 = %v, want %v (bad M1 dropped, not defaulted)", rows[1], want1)
	}

	if len(rep.calls) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", rep.calls)
	}
	got := rep.calls[0]
	if got[0] != "test.csv" || got[1] != "M1" || got[2] != "x" {
		t.Errorf("diagnostic = %v, want source/test.csv column/M1 raw/x", got)
	}

	// The malformed column still joins the set and universe.
	if !store.HasColumn("M1") {
		t.Error("M1 missing from universe despite surviving in row 0")
	}
	sets := store.SourceSets()
	if len(sets) != 1 || len(sets[0]) != 3 {
		t.Fatalf("source sets = %v, want one set of D1,M1,M2", sets)
	}
}

func TestRunIgnoredColumnsNeverStored(t *testing.T) {
	t.Parallel()

	src, err := csvparser.NewSource(strings.NewReader("D1,X1,M1\na,zz,1\n"), csvparser.Options{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	store := rowstore.New()
	if _, err := Run(store, "s", src, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.HasColumn("X1") {
		t.Error("ignored column X1 leaked into the universe")
	}
	if _, ok := store.Rows()[0]["X1"]; ok {
		t.Error("ignored column X1 leaked into a row")
	}
}

func TestRunHeaderOnlySourceRegistersColumns(t *testing.T) {
	t.Parallel()

	src, err := csvparser.NewSource(strings.NewReader("D1,M1\n"), csvparser.Options{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	store := rowstore.New()
	stats, err := Run(store, "s", src, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Rows != 0 {
		t.Fatalf("rows = %d, want 0", stats.Rows)
	}
	if !store.HasColumn("D1") || !store.HasColumn("M1") {
		t.Error("header columns must register even without data rows")
	}
}

func TestRunJSONAccumulatesSetAcrossGroups(t *testing.T) {
	t.Parallel()

	const doc = `{"fields": [{"D1": "a", "M1": 1}, {"D2": "b"}]}`
	src, err := jsonparser.NewSource(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	store := rowstore.New()
	stats, err := Run(store, "s.json", src, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Rows != 2 {
		t.Fatalf("rows = %d, want 2 (one per field-group)", stats.Rows)
	}
	if store.Sources() != 1 {
		t.Fatalf("sources = %d, want 1 (one set per document)", store.Sources())
	}
	set := store.SourceSets()[0]
	for _, name := range []string{"D1", "D2", "M1"} {
		if _, ok := set[name]; !ok {
			t.Errorf("column %q missing from the document's set", name)
		}
	}
}

func TestRunXMLOneRowPerDocument(t *testing.T) {
	t.Parallel()

	const doc = `<data><objects>
		<object name="D1"><value>a</value></object>
		<object name="M1"><value>x</value><value>7</value></object>
	</objects></data>`
	src, err := xmlparser.NewSource(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	store := rowstore.New()
	rep := &captureReporter{}
	stats, err := Run(store, "s.xml", src, Options{Reporter: rep})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Rows != 1 || store.Sources() != 1 {
		t.Fatalf("rows=%d sources=%d, want 1/1", stats.Rows, store.Sources())
	}

	want := records.Record{"D1": "a", "M1": int64(7)}
	if !reflect.DeepEqual(store.Rows()[0], want) {
		t.Fatalf("row = %v, want %v (bad value dropped, later good one kept)", store.Rows()[0], want)
	}
	if len(rep.calls) != 1 || rep.calls[0][1] != "M1" {
		t.Fatalf("diagnostics = %v, want one for M1", rep.calls)
	}
}

func TestRunEmptyRowStillAppended(t *testing.T) {
	t.Parallel()

	src, err := csvparser.NewSource(strings.NewReader("M1\nnotanumber\n"), csvparser.Options{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	store := rowstore.New()
	stats, err := Run(store, "s", src, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Rows != 1 {
		t.Fatalf("rows = %d, want 1", stats.Rows)
	}
	if len(store.Rows()[0]) != 0 {
		t.Fatalf("row = %v, want empty", store.Rows()[0])
	}
}

func TestFingerprintReader(t *testing.T) {
	t.Parallel()

	const payload = "D1,M1\na,1\n"
	fr := NewFingerprintReader(strings.NewReader(payload))
	if _, err := io.ReadAll(fr); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	sum := fr.Sum64()
	if sum == 0 {
		t.Fatal("fingerprint should be non-zero for non-empty input")
	}

	fr2 := NewFingerprintReader(strings.NewReader(payload))
	if _, err := io.ReadAll(fr2); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if fr2.Sum64() != sum {
		t.Fatal("same bytes must produce the same fingerprint")
	}
}
