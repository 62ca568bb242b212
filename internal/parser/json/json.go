// Package json adapts structured document sources to the parser.Source
// contract. The expected document shape is a single object whose "fields"
// array holds similarly-shaped field-groups; each group becomes one logical
// record:
//
//	{"fields": [{"D1": "a", "M1": 3}, {"D1": "b", "M1": "x"}]}
//
// Values may be JSON strings or numbers; both are handed downstream as raw
// text, so coercion policy lives in one place.
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"tabetl/internal/columns"
	"tabetl/internal/parser"
)

// document is the decoded top-level shape.
type document struct {
	Fields []map[string]any `json:"fields"`
}

// Source walks the field-groups of one decoded document.
type Source struct {
	groups []map[string]any
	next   int
}

// NewSource decodes the whole document from r. Numbers are decoded as
// json.Number so their text is preserved exactly.
func NewSource(r io.Reader) (*Source, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("json: decode document: %w", err)
	}
	return &Source{groups: doc.Fields}, nil
}

// Next returns the next field-group as a record. The record ID is the
// group's compact JSON rendering, since document trees have no line numbers
// to report.
func (s *Source) Next() (parser.Record, error) {
	if s.next >= len(s.groups) {
		return parser.Record{}, io.EOF
	}
	group := s.groups[s.next]
	s.next++

	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]parser.Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, parser.Field{
			Name:  columns.CleanName(name),
			Value: rawText(group[name]),
		})
	}

	id, err := json.Marshal(group)
	if err != nil {
		id = []byte(fmt.Sprintf("field-group %d", s.next))
	}
	return parser.Record{ID: string(id), Fields: fields}, nil
}

// rawText renders a decoded JSON value as the raw text the coercion step
// expects. Nulls become the empty string, which a measure column will then
// reject and drop.
func rawText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
