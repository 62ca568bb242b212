// Package report renders the two derived views of the store as
// tab-delimited text: the flat basic view and the grouped advanced view.
// Both are produced under either column policy, giving four output shapes
// in total. The report writer alone imposes output ordering; nothing
// upstream is required to be ordered.
package report

import (
	"encoding/csv"
	"io"
	"slices"
	"sort"
	"strconv"

	"tabetl/internal/aggregate"
	"tabetl/internal/columns"
	"tabetl/internal/metrics"
	"tabetl/internal/rowstore"
	"tabetl/internal/schema"
	"tabetl/pkg/records"
)

// Placeholder is rendered for a resolved column absent from a row. A
// dimension whose literal value is "-" is indistinguishable from an absent
// one in the output; that ambiguity is part of the format.
const Placeholder = "-"

// Options tunes report rendering. The zero value is usable.
type Options struct {
	// Job labels metrics; optional.
	Job string
}

// WriteBasic renders the flat view: a header of resolved dimension then
// measure columns, and one line per stored row (ungrouped), sorted
// ascending by the first dimension column's raw text. The sort is a plain
// lexicographic string compare even for numeric-looking values; rows
// lacking the first dimension column sort under the placeholder, matching
// how the cell itself renders.
func WriteBasic(w io.Writer, store *rowstore.Store, pol schema.Policy, opts Options) error {
	dims, measures, err := schema.Resolve(store, pol)
	if err != nil {
		return err
	}
	cols := append(append([]string{}, dims...), measures...)

	tw := csv.NewWriter(w)
	tw.Comma = '\t'
	if err := tw.Write(cols); err != nil {
		return err
	}

	rows := append([]records.Record(nil), store.Rows()...)
	var sortCol string
	if len(dims) > 0 {
		sortCol = dims[0]
	}
	// Stable keeps append order among equal keys, as the original did.
	sort.SliceStable(rows, func(i, j int) bool {
		return basicSortKey(rows[i], sortCol) < basicSortKey(rows[j], sortCol)
	})

	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = cell(row, c)
		}
		if err := tw.Write(line); err != nil {
			return err
		}
	}
	tw.Flush()
	metrics.RecordRow(opts.Job, "report_rows", int64(len(rows)))
	return tw.Error()
}

// WriteAdvanced renders the grouped view: dimensions keep their names,
// measures are renamed with the summed-column convention (M3 -> MS3), and
// each body line is one group key followed by its sums, ordered ascending
// lexicographically over the key tuple.
func WriteAdvanced(w io.Writer, store *rowstore.Store, pol schema.Policy, opts Options) error {
	dims, measures, err := schema.Resolve(store, pol)
	if err != nil {
		return err
	}

	header := append([]string{}, dims...)
	for _, m := range measures {
		header = append(header, columns.SumName(m))
	}

	tw := csv.NewWriter(w)
	tw.Comma = '\t'
	if err := tw.Write(header); err != nil {
		return err
	}

	groups := aggregate.Aggregate(store.Rows(), dims, measures)
	slices.SortFunc(groups, func(a, b aggregate.Group) int {
		return slices.Compare(a.Key, b.Key)
	})

	for _, g := range groups {
		line := make([]string, 0, len(g.Key)+len(g.Sums))
		line = append(line, g.Key...)
		for _, s := range g.Sums {
			line = append(line, strconv.FormatInt(s, 10))
		}
		if err := tw.Write(line); err != nil {
			return err
		}
	}
	tw.Flush()
	metrics.RecordRow(opts.Job, "report_rows", int64(len(groups)))
	return tw.Error()
}

// basicSortKey is the body ordering key: the row's first-dimension text, or
// the placeholder when the row lacks that column.
func basicSortKey(row records.Record, sortCol string) string {
	if sortCol == "" {
		return Placeholder
	}
	if v, ok := row.Dimension(sortCol); ok {
		return v
	}
	return Placeholder
}

// cell renders one resolved column of one row.
func cell(row records.Record, col string) string {
	v, ok := row[col]
	if !ok {
		return Placeholder
	}
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return Placeholder
	}
}
