package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"tabetl/internal/config"
	"tabetl/internal/datasource/file"
	"tabetl/internal/ingest"
	"tabetl/internal/metrics"
	"tabetl/internal/parser"
	csvparser "tabetl/internal/parser/csv"
	jsonparser "tabetl/internal/parser/json"
	xmlparser "tabetl/internal/parser/xml"
	"tabetl/internal/report"
	"tabetl/internal/rowstore"
	"tabetl/internal/schema"
	"tabetl/internal/storage"
)

// run executes one full pipeline: ingest every source into a shared store,
// write the four reports, then load the flat union view into the database
// sink when one is configured. Field-level problems inside sources are
// fail-soft (dropped and diagnosed during ingest); anything returned from
// here is fatal to the run.
func run(ctx context.Context, p config.Pipeline) error {
	store := rowstore.New()

	for _, src := range p.Sources {
		start := time.Now()
		stats, fp, err := ingestSource(ctx, store, src, p.Job)
		metrics.RecordStep(p.Job, "ingest", err, time.Since(start))
		if err != nil {
			return fmt.Errorf("ingest %s: %w", src.Path, err)
		}
		log.Printf("ingested %s: rows=%d dropped=%d fp=%016x", src.Path, stats.Rows, stats.Dropped, fp)
	}

	start := time.Now()
	err := writeReports(store, p)
	metrics.RecordStep(p.Job, "report", err, time.Since(start))
	if err != nil {
		return err
	}

	if p.Storage != nil {
		start = time.Now()
		err = loadStore(ctx, store, p)
		metrics.RecordStep(p.Job, "load", err, time.Since(start))
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
	}

	return nil
}

// ingestSource opens one input, builds the decoder matching its kind, and
// drains it into the store. It returns the ingest stats and the content
// fingerprint of the bytes actually consumed.
func ingestSource(ctx context.Context, store *rowstore.Store, src config.Source, job string) (ingest.Stats, uint64, error) {
	rc, err := file.NewLocal(src.Path).Open(ctx)
	if err != nil {
		return ingest.Stats{}, 0, err
	}
	defer rc.Close()

	fpr := ingest.NewFingerprintReader(rc)
	ps, err := buildSource(src, fpr)
	if err != nil {
		return ingest.Stats{}, 0, err
	}

	stats, err := ingest.Run(store, filepath.Base(src.Path), ps, ingest.Options{Job: job})
	return stats, fpr.Sum64(), err
}

// buildSource constructs the decoder for one source kind.
func buildSource(src config.Source, r io.Reader) (parser.Source, error) {
	switch src.Kind {
	case "csv":
		opt := csvparser.Options{}
		if src.Delimiter != "" {
			opt.Comma = []rune(src.Delimiter)[0]
		}
		return csvparser.NewSource(r, opt)
	case "json":
		return jsonparser.NewSource(r)
	case "xml":
		return xmlparser.NewSource(r)
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

// writeReports renders all four outputs: the flat and aggregated views,
// each over the union columns and over the columns common to every source.
func writeReports(store *rowstore.Store, p config.Pipeline) error {
	opts := report.Options{Job: p.Job}
	outputs := []struct {
		path  string
		write func(io.Writer) error
	}{
		{p.Outputs.Basic, func(w io.Writer) error { return report.WriteBasic(w, store, schema.Union, opts) }},
		{p.Outputs.Advanced, func(w io.Writer) error { return report.WriteAdvanced(w, store, schema.Union, opts) }},
		{p.Outputs.BasicCommon, func(w io.Writer) error { return report.WriteBasic(w, store, schema.Intersection, opts) }},
		{p.Outputs.AdvancedCommon, func(w io.Writer) error { return report.WriteAdvanced(w, store, schema.Intersection, opts) }},
	}

	for _, out := range outputs {
		if err := writeReportFile(out.path, out.write); err != nil {
			return err
		}
		log.Printf("wrote %s", out.path)
	}
	return nil
}

func writeReportFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report %s: %w", path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("report %s: %w", path, err)
	}
	return f.Close()
}

// loadStore creates the destination table from the union columns and
// streams every stored row into it.
func loadStore(ctx context.Context, store *rowstore.Store, p config.Pipeline) error {
	dims, measures, err := schema.Resolve(store, schema.Union)
	if err != nil {
		return err
	}
	def := storage.TableDef{Name: p.Storage.DB.Table, Dimensions: dims, Measures: measures}

	repo, err := storage.New(ctx, p.Storage.Kind, storage.Config{
		DSN:   p.Storage.DB.DSN,
		Table: p.Storage.DB.Table,
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := storage.EnsureTable(ctx, repo, p.Storage.Kind, def); err != nil {
		return err
	}

	total, err := storage.LoadRows(ctx, repo, def.Columns(), store.Rows(), storage.LoadOptions{
		Job:       p.Job,
		BatchSize: p.Storage.DB.BatchSize,
	})
	if err != nil {
		return err
	}
	log.Printf("loaded %d rows into %s (%s)", total, p.Storage.DB.Table, p.Storage.Kind)
	return nil
}
