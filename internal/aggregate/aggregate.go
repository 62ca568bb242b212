// Package aggregate groups normalized rows by their dimension-value tuple
// and sums measure values per group.
package aggregate

import (
	"strconv"
	"strings"

	"tabetl/pkg/records"
)

// Placeholder stands in for an absent dimension value inside a group key.
// It is the same sentinel the reports render, which means a literal "-"
// dimension value and a missing one fall into the same group; that ambiguity
// is inherited from the output format.
const Placeholder = "-"

// Group pairs one distinct dimension-value tuple with its positionally
// aligned measure sums.
type Group struct {
	Key  []string
	Sums []int64
}

// Aggregate builds one Group per distinct dimension tuple over rows. For
// each row, absent dimensions contribute the placeholder and absent measures
// contribute zero. Sums are int64 with no overflow checking. The order of
// the returned groups is unspecified; callers impose their own.
func Aggregate(rows []records.Record, dims, measures []string) []Group {
	byKey := make(map[string]*Group)
	var out []Group

	for _, row := range rows {
		key := make([]string, len(dims))
		for i, d := range dims {
			if v, ok := row.Dimension(d); ok {
				key[i] = v
			} else {
				key[i] = Placeholder
			}
		}

		g, ok := byKey[mapKey(key)]
		if !ok {
			g = &Group{Key: key, Sums: make([]int64, len(measures))}
			byKey[mapKey(key)] = g
		}
		for i, m := range measures {
			if v, ok := row.Measure(m); ok {
				g.Sums[i] += v
			}
		}
	}

	for _, g := range byKey {
		out = append(out, *g)
	}
	return out
}

// mapKey encodes a key tuple unambiguously: quoting each part keeps values
// containing the join separator from colliding.
func mapKey(key []string) string {
	var b strings.Builder
	for i, part := range key {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(part))
	}
	return b.String()
}
