package storage

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tabetl/internal/metrics"
	"tabetl/pkg/records"
)

// DefaultBatchSize bounds rows per CopyFrom call when the config leaves
// batch size unset.
const DefaultBatchSize = 500

// LoadOptions tunes LoadRows. The zero value uses DefaultBatchSize.
type LoadOptions struct {
	// Job labels metrics; optional.
	Job string
	// BatchSize bounds rows per insert batch; <= 0 means DefaultBatchSize.
	BatchSize int
}

// LoadRows streams the store's rows into repo in batches. A producer
// goroutine renders each record into a column-ordered value slice (nil for
// absent columns) while the consumer groups slices into batches and calls
// CopyFrom, so at most one batch plus the channel buffer is in flight.
// It returns the total rows inserted and the first error encountered.
func LoadRows(ctx context.Context, repo Repository, columns []string, rows []records.Record, opts LoadOptions) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("storage: LoadRows: columns must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	ch := make(chan []any, batchSize)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(ch)
		for _, row := range rows {
			vals := make([]any, len(columns))
			for i, c := range columns {
				if v, ok := row[c]; ok {
					vals[i] = v
				}
			}
			select {
			case ch <- vals:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var total int64
	g.Go(func() error {
		batch := make([][]any, 0, batchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			n, err := repo.CopyFrom(ctx, columns, batch)
			total += n
			if err != nil {
				return err
			}
			metrics.RecordBatches(opts.Job, 1)
			batch = batch[:0]
			return nil
		}
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case vals, ok := <-ch:
				if !ok {
					return flush()
				}
				batch = append(batch, vals)
				if len(batch) >= batchSize {
					if err := flush(); err != nil {
						return err
					}
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return total, err
	}
	metrics.RecordRow(opts.Job, "loaded", total)
	return total, nil
}
