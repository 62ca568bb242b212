package storage

import (
	"fmt"
	"strings"
)

// TableDef describes the destination table in pipeline terms: the resolved
// dimension columns (text) followed by the resolved measure columns
// (integers). Column order in the table matches Columns().
type TableDef struct {
	Name       string
	Dimensions []string
	Measures   []string
}

// Columns returns the table's column names in DDL and insert order.
func (d TableDef) Columns() []string {
	cols := make([]string, 0, len(d.Dimensions)+len(d.Measures))
	cols = append(cols, d.Dimensions...)
	cols = append(cols, d.Measures...)
	return cols
}

// Dialect captures the two points where CREATE TABLE rendering differs
// between the supported backends.
type Dialect struct {
	// QuoteIdent quotes one identifier segment.
	QuoteIdent func(string) string
	// IntType is the SQL type used for measure columns.
	IntType string
}

// CreateSQL renders a CREATE TABLE IF NOT EXISTS statement for def in the
// given dialect. Dimension columns are TEXT and measure columns use the
// dialect's integer type; all columns are nullable because any resolved
// column may be absent from a given row.
func CreateSQL(def TableDef, d Dialect) (string, error) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return "", fmt.Errorf("storage: table name must not be empty")
	}
	if len(def.Dimensions)+len(def.Measures) == 0 {
		return "", fmt.Errorf("storage: table %s has no columns", name)
	}

	cols := make([]string, 0, len(def.Dimensions)+len(def.Measures))
	for _, c := range def.Dimensions {
		cols = append(cols, d.QuoteIdent(c)+" TEXT")
	}
	for _, c := range def.Measures {
		cols = append(cols, d.QuoteIdent(c)+" "+d.IntType)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteFQN(name, d.QuoteIdent),
		strings.Join(cols, ",\n  "),
	), nil
}

// quoteFQN quotes a possibly schema-qualified name segment by segment, so
// "public.rows" becomes "public"."rows" under double-quote dialects.
func quoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// QuoteDouble is the ANSI double-quote identifier quoting used by the
// sqlite and postgres dialects.
func QuoteDouble(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
