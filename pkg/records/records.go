// Package records defines the canonical row representation shared by the
// parsers, the ingest stage, the report writers, and the storage backends.
package records

// Record maps a column name to its stored value. Dimension columns hold
// string values, measure columns hold int64 values; a column that was absent
// in the source (or dropped during coercion) is simply an absent key.
type Record map[string]any

// Dimension returns the string value stored under name, if present.
func (r Record) Dimension(name string) (string, bool) {
	v, ok := r[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Measure returns the int64 value stored under name, if present.
func (r Record) Measure(name string) (int64, bool) {
	v, ok := r[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
