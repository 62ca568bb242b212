// Package ingest implements the single ingestion algorithm shared by every
// source encoding. A parser.Source supplies raw field pairs; this package
// classifies each field, keeps dimension text verbatim, coerces measures to
// integers, registers surviving column names, and appends the assembled
// rows into the store.
//
// The failure policy is partial-row survival: a measure value that does not
// parse as an integer is dropped from its row with a diagnostic, and
// ingestion of the remaining fields and records continues. Nothing in this
// package aborts on data quality.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"tabetl/internal/columns"
	"tabetl/internal/metrics"
	"tabetl/internal/parser"
	"tabetl/internal/rowstore"
	"tabetl/pkg/records"
)

// Reporter receives the advisory diagnostic for every dropped measure field.
// Implementations must not influence program outcome.
type Reporter interface {
	DroppedField(source, column, raw, recordID string)
}

// logReporter is the default sink; it mirrors the diagnostic fields the
// external contract names: raw text, source, column, record identifier.
type logReporter struct{}

func (logReporter) DroppedField(source, column, raw, recordID string) {
	log.Printf("incorrect value %q: source=%s column=%s record=%s", raw, source, column, recordID)
}

// Options tunes one ingestion call. The zero value is usable.
type Options struct {
	// Job labels metrics; empty disables the per-job counters' job label only.
	Job string
	// Reporter receives dropped-field diagnostics; log-based when nil.
	Reporter Reporter
}

// Stats summarizes one ingestion call.
type Stats struct {
	Rows    int
	Dropped int
}

// Run drains src into store as one source: one call, one source column set.
// Within a record, a repeated field name overwrites the previous value for
// dimensions and overwrites only on successful coercion for measures, so a
// later bad value never clobbers an earlier good one.
//
// Any error from the source itself (not from field values) aborts the call;
// rows appended before the failure remain in the store.
func Run(store *rowstore.Store, name string, src parser.Source, opts Options) (Stats, error) {
	rep := opts.Reporter
	if rep == nil {
		rep = logReporter{}
	}

	set := make(map[string]struct{})
	if hs, ok := src.(parser.HeaderSource); ok {
		// Header-declared columns count toward the source set even when no
		// data row carries them.
		for _, n := range hs.Header() {
			if columns.Classify(n) != columns.Ignored {
				set[n] = struct{}{}
			}
		}
	}

	var stats Stats
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("ingest %s: %w", name, err)
		}

		row := records.Record{}
		for _, f := range rec.Fields {
			switch columns.Classify(f.Name) {
			case columns.Ignored:
				continue
			case columns.Dimension:
				set[f.Name] = struct{}{}
				row[f.Name] = f.Value
			case columns.Measure:
				// The column survives even when this particular value does
				// not; later rows may carry valid values for it.
				set[f.Name] = struct{}{}
				v, err := strconv.ParseInt(strings.TrimSpace(f.Value), 10, 64)
				if err != nil {
					rep.DroppedField(name, f.Name, f.Value, rec.ID)
					stats.Dropped++
					continue
				}
				row[f.Name] = v
			}
		}

		store.Append(row)
		stats.Rows++
	}

	store.AddSource(set)
	metrics.RecordRow(opts.Job, "ingested", int64(stats.Rows))
	metrics.RecordRow(opts.Job, "coerce_dropped", int64(stats.Dropped))
	return stats, nil
}

// FingerprintReader hashes everything read through it, so a source's content
// fingerprint can be logged alongside its ingestion stats without a second
// pass over the file.
type FingerprintReader struct {
	r io.Reader
	h *xxh3.Hasher
}

// NewFingerprintReader wraps r.
func NewFingerprintReader(r io.Reader) *FingerprintReader {
	return &FingerprintReader{r: r, h: xxh3.New()}
}

// Read implements io.Reader.
func (f *FingerprintReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if n > 0 {
		_, _ = f.h.Write(p[:n])
	}
	return n, err
}

// Sum64 returns the xxh3 hash of all bytes read so far.
func (f *FingerprintReader) Sum64() uint64 {
	return f.h.Sum64()
}
