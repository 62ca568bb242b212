// Package columns implements the column-role model shared by the whole
// pipeline: a column's role is decided once from the first character of its
// name and carried explicitly from then on, instead of re-inspecting the name
// at every use site.
//
// Naming contract:
//
//   - Names starting with 'D' are dimension columns (opaque text values).
//   - Names starting with 'M' are measure columns (integer values).
//   - Any other name is ignored and never stored anywhere.
//
// The remainder of the name is a non-negative integer used purely as a sort
// key (D1, M12). The suffix is validated only when a sort is requested; a
// malformed suffix is a data-contract violation, not a data-quality issue,
// and surfaces as an error the caller must treat as fatal.
package columns

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Role is the closed set of column roles.
type Role int

const (
	// Ignored columns are dropped at ingestion and never registered.
	Ignored Role = iota
	// Dimension columns keep their raw text verbatim.
	Dimension
	// Measure columns are coerced to integers.
	Measure
)

// String returns the role name for logs and error messages.
func (r Role) String() string {
	switch r {
	case Dimension:
		return "dimension"
	case Measure:
		return "measure"
	default:
		return "ignored"
	}
}

// Classify decides a column's role from the first character of its name.
// It performs no suffix validation.
func Classify(name string) Role {
	if name == "" {
		return Ignored
	}
	switch name[0] {
	case 'D':
		return Dimension
	case 'M':
		return Measure
	default:
		return Ignored
	}
}

// SortKey parses the numeric suffix of a classified column name. The suffix
// must be a non-negative integer literal; anything else is a contract
// violation reported as an error.
func SortKey(name string) (int, error) {
	if len(name) < 2 {
		return 0, fmt.Errorf("columns: %q has no numeric suffix", name)
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("columns: malformed numeric suffix in %q", name)
	}
	return n, nil
}

// SortBySuffix sorts names in place, ascending by numeric suffix. Names are
// unique by construction (they come from sets), so ties cannot occur. The
// first malformed suffix aborts the sort with an error.
func SortBySuffix(names []string) error {
	keys := make(map[string]int, len(names))
	for _, n := range names {
		k, err := SortKey(n)
		if err != nil {
			return err
		}
		keys[n] = k
	}
	sort.Slice(names, func(i, j int) bool { return keys[names[i]] < keys[names[j]] })
	return nil
}

// SumName renames a measure column for the grouped report by inserting 'S'
// between the role prefix and the numeric suffix: M3 -> MS3.
func SumName(name string) string {
	if name == "" {
		return name
	}
	return name[:1] + "S" + name[1:]
}

// utf8BOM is stripped from a column name's first position if present; some
// delimited exports carry it on the first header cell.
const utf8BOM = "\ufeff"

// cleaner decomposes, removes nonspacing marks, and recomposes, so visually
// identical column names from heterogeneous encodings land on one column.
var cleaner = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// CleanName normalizes a raw field name before classification: surrounding
// whitespace and a leading UTF-8 BOM are stripped, then the name is run
// through the mark-removal chain. Pure-ASCII names like D1 or M12 pass
// through unchanged.
func CleanName(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, utf8BOM))
	out, _, err := transform.String(cleaner, s)
	if err != nil {
		return s
	}
	return out
}
