package rowstore

import (
	"sort"
	"testing"

	"tabetl/pkg/records"
)

func TestStoreAccumulation(t *testing.T) {
	t.Parallel()

	s := New()
	if s.Len() != 0 || s.Sources() != 0 {
		t.Fatalf("new store not empty: rows=%d sources=%d", s.Len(), s.Sources())
	}

	s.Append(records.Record{"D1": "a", "M1": int64(3)})
	s.Append(records.Record{})
	s.AddSource(map[string]struct{}{"D1": {}, "M1": {}})
	s.AddSource(map[string]struct{}{"D1": {}, "D2": {}})

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (empty rows are still rows)", s.Len())
	}
	if s.Sources() != 2 {
		t.Fatalf("Sources = %d, want 2", s.Sources())
	}

	got := s.Universe()
	sort.Strings(got)
	want := []string{"D1", "D2", "M1"}
	if len(got) != len(want) {
		t.Fatalf("Universe = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Universe = %v, want %v", got, want)
		}
	}

	// Every stored row's columns must be in the universe.
	for _, r := range s.Rows() {
		for name := range r {
			if !s.HasColumn(name) {
				t.Errorf("row column %q missing from universe", name)
			}
		}
	}
}

func TestAddSourceCopiesSet(t *testing.T) {
	t.Parallel()

	s := New()
	set := map[string]struct{}{"D1": {}}
	s.AddSource(set)
	set["M9"] = struct{}{}

	if s.HasColumn("M9") {
		t.Fatal("mutating the caller's set leaked into the store")
	}
	if len(s.SourceSets()[0]) != 1 {
		t.Fatalf("stored set changed size: %v", s.SourceSets()[0])
	}
}
