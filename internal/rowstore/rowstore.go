// Package rowstore holds the normalized dataset accumulated across all
// ingested sources: the rows themselves, the global column universe, and one
// column set per source. The store is append-only; rows are never mutated or
// deleted once added, and nothing outside this package writes to them.
package rowstore

import "tabetl/pkg/records"

// Store is the explicitly owned accumulator the ingest stage appends into.
// The zero value is not usable; call New.
type Store struct {
	rows       []records.Record
	universe   map[string]struct{}
	sourceSets []map[string]struct{}
}

// New returns an empty store.
func New() *Store {
	return &Store{universe: make(map[string]struct{})}
}

// Append adds an assembled row. A row with zero surviving fields is still a
// row; sources that yielded nothing usable keep their position in the body.
func (s *Store) Append(r records.Record) {
	s.rows = append(s.rows, r)
}

// AddSource records the column set contributed by one ingestion call and
// widens the universe with it. The set is copied; the caller may reuse it.
func (s *Store) AddSource(set map[string]struct{}) {
	cp := make(map[string]struct{}, len(set))
	for name := range set {
		cp[name] = struct{}{}
		s.universe[name] = struct{}{}
	}
	s.sourceSets = append(s.sourceSets, cp)
}

// Rows returns the accumulated rows in append order. Callers must treat the
// returned slice and its records as read-only.
func (s *Store) Rows() []records.Record {
	return s.rows
}

// Universe returns the names of every column seen across all sources, in
// unspecified order.
func (s *Store) Universe() []string {
	out := make([]string, 0, len(s.universe))
	for name := range s.universe {
		out = append(out, name)
	}
	return out
}

// HasColumn reports whether name is part of the column universe.
func (s *Store) HasColumn(name string) bool {
	_, ok := s.universe[name]
	return ok
}

// SourceSets returns the per-source column sets in ingestion order. Callers
// must treat the returned sets as read-only.
func (s *Store) SourceSets() []map[string]struct{} {
	return s.sourceSets
}

// Len returns the number of stored rows.
func (s *Store) Len() int { return len(s.rows) }

// Sources returns the number of recorded ingestion calls.
func (s *Store) Sources() int { return len(s.sourceSets) }
