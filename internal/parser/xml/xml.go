// Package xml adapts markup-tree sources to the parser.Source contract.
// The expected document carries a collection of named objects whose child
// nodes hold values:
//
//	<data>
//	  <objects>
//	    <object name="D1"><value>a</value></object>
//	    <object name="M1"><value>3</value></object>
//	  </objects>
//	</data>
//
// One document yields exactly one logical record: each object's name is a
// column, each child value node a candidate value for it. When an object
// carries several children, later ones supersede earlier ones field by
// field downstream (the usual last-write-wins of repeated fields).
package xml

import (
	"encoding/xml"
	"fmt"
	"io"

	"tabetl/internal/columns"
	"tabetl/internal/parser"
)

type document struct {
	Objects []object `xml:"objects>object"`
}

type object struct {
	Name     string  `xml:"name,attr"`
	Children []child `xml:",any"`
}

type child struct {
	Text string `xml:",chardata"`
}

// Source emits the single record of one parsed document.
type Source struct {
	doc  document
	done bool
}

// NewSource parses the whole document from r.
func NewSource(r io.Reader) (*Source, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("xml: read document: %w", err)
	}
	var doc document
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("xml: parse document: %w", err)
	}
	return &Source{doc: doc}, nil
}

// Next returns the document's record on the first call and io.EOF after.
// Field names repeat when an object has several value children; the column
// name doubles as the record identifier granularity this format can supply.
func (s *Source) Next() (parser.Record, error) {
	if s.done {
		return parser.Record{}, io.EOF
	}
	s.done = true

	var fields []parser.Field
	for _, obj := range s.doc.Objects {
		name := columns.CleanName(obj.Name)
		for _, c := range obj.Children {
			fields = append(fields, parser.Field{Name: name, Value: c.Text})
		}
	}
	return parser.Record{ID: "objects", Fields: fields}, nil
}
