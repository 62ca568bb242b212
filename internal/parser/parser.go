// Package parser defines the contract every source decoder satisfies: turn
// one source into a sequence of logical records, each a list of raw
// name/text field pairs. Classification, coercion, and registration all
// happen downstream in the ingest stage, so the three encodings share one
// ingestion algorithm instead of triplicating it.
package parser

// Field is one raw name/value pair exactly as the source produced it,
// prior to any coercion.
type Field struct {
	Name  string
	Value string
}

// Record is one logical record. ID identifies the record for diagnostics
// with whatever the encoding can supply: a line number for delimited text,
// the record content for document trees, the object label for markup.
type Record struct {
	ID     string
	Fields []Field
}

// Source yields logical records until io.EOF. Implementations are
// single-use: one Source consumes one input.
type Source interface {
	Next() (Record, error)
}

// HeaderSource is implemented by sources whose column set is declared up
// front (a header row) rather than discovered record by record. The ingest
// stage registers header columns even when no data row carries them.
type HeaderSource interface {
	Header() []string
}
