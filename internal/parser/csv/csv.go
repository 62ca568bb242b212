// Package csv adapts delimited text files to the parser.Source contract.
// The first row is the header; every following row becomes one logical
// record by pairing header names with cell values positionally.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"tabetl/internal/columns"
	"tabetl/internal/parser"
)

// Options configures the delimited-text source. All fields are optional.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune
}

// Source reads one delimited file. It implements parser.Source and
// parser.HeaderSource.
type Source struct {
	r      *csv.Reader
	header []string
	line   int
}

// NewSource reads the header row from r and returns a Source positioned at
// the first data row. An empty input (no header) yields a source whose
// header is empty and which reports EOF immediately.
func NewSource(r io.Reader, opt Options) (*Source, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	// Sources differ in shape; width is reconciled per record, not enforced.
	cr.FieldsPerRecord = -1

	s := &Source{r: cr, line: 1}
	head, err := cr.Read()
	if err == io.EOF {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	s.header = make([]string, len(head))
	for i, name := range head {
		s.header[i] = columns.CleanName(name)
	}
	return s, nil
}

// Header returns the cleaned header names. Classification is the ingest
// stage's job; ignored names are reported here unchanged.
func (s *Source) Header() []string { return s.header }

// Next returns the next data row as a record. Rows wider than the header
// drop their surplus cells; narrower rows simply contribute fewer fields.
func (s *Source) Next() (parser.Record, error) {
	row, err := s.r.Read()
	if err == io.EOF {
		return parser.Record{}, io.EOF
	}
	if err != nil {
		return parser.Record{}, fmt.Errorf("csv: read row: %w", err)
	}
	s.line++

	n := len(row)
	if len(s.header) < n {
		n = len(s.header)
	}
	fields := make([]parser.Field, 0, n)
	for i := 0; i < n; i++ {
		fields = append(fields, parser.Field{Name: s.header[i], Value: row[i]})
	}
	return parser.Record{ID: fmt.Sprintf("line %d", s.line), Fields: fields}, nil
}
