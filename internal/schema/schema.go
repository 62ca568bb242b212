// Package schema reconciles the column sets accumulated by ingestion into
// the ordered dimension and measure lists a report renders with.
package schema

import (
	"fmt"

	"tabetl/internal/columns"
	"tabetl/internal/rowstore"
)

// Policy selects which columns a report covers.
type Policy int

const (
	// Union covers every column seen across all sources.
	Union Policy = iota
	// Intersection covers only columns common to every source.
	Intersection
)

// String returns the policy name for logs and config rendering.
func (p Policy) String() string {
	if p == Intersection {
		return "intersection"
	}
	return "union"
}

// Resolve computes the reportable columns for the store under the policy and
// splits them into dimension and measure lists, each sorted ascending by
// numeric suffix. With zero ingested sources both lists are empty.
//
// Resolution never caches: it reflects the store as it stands at the call.
// A malformed numeric suffix (or an ignored-role name that somehow reached
// the store) is a contract violation returned as an error the caller must
// treat as fatal.
func Resolve(store *rowstore.Store, p Policy) (dims, measures []string, err error) {
	var names []string
	switch p {
	case Intersection:
		names = intersect(store.SourceSets())
	default:
		names = store.Universe()
	}

	for _, name := range names {
		switch columns.Classify(name) {
		case columns.Dimension:
			dims = append(dims, name)
		case columns.Measure:
			measures = append(measures, name)
		default:
			// Ingestion filters ignored names; reaching here means the
			// store's invariant was broken by a programming error.
			return nil, nil, fmt.Errorf("schema: unclassifiable column %q in store", name)
		}
	}

	if err := columns.SortBySuffix(dims); err != nil {
		return nil, nil, err
	}
	if err := columns.SortBySuffix(measures); err != nil {
		return nil, nil, err
	}
	return dims, measures, nil
}

// intersect returns the names present in every set. No sets means no names:
// an empty report, not an error.
func intersect(sets []map[string]struct{}) []string {
	if len(sets) == 0 {
		return nil
	}
	var out []string
	for name := range sets[0] {
		common := true
		for _, s := range sets[1:] {
			if _, ok := s[name]; !ok {
				common = false
				break
			}
		}
		if common {
			out = append(out, name)
		}
	}
	return out
}
