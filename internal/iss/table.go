package iss

import (
	"fmt"
	"strings"

	"bondcheck/internal/models"
)

// Table is one ISS data block: a declared column list paired positionally
// with value rows. The column set is provider-defined and may vary between
// responses, so all access goes through name lookup, never indexes.
type Table struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Data)
}

// Empty reports whether the table carries no rows.
func (t Table) Empty() bool {
	return len(t.Data) == 0
}

// Row zips the declared columns with the values of row i into a name-keyed
// mapping. Column names are upper-cased; rows shorter than the column list
// leave the trailing columns absent.
func (t Table) Row(i int) Row {
	row := make(Row, len(t.Columns))
	values := t.Data[i]
	for j, col := range t.Columns {
		if j >= len(values) {
			break
		}
		row[strings.ToUpper(col)] = values[j]
	}
	return row
}

// ColumnsMatching returns the upper-cased column names containing all of the
// given substrings, in declared order.
func (t Table) ColumnsMatching(substrings ...string) []string {
	var matched []string
	for _, col := range t.Columns {
		upper := strings.ToUpper(col)
		ok := true
		for _, sub := range substrings {
			if !strings.Contains(upper, sub) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, upper)
		}
	}
	return matched
}

// Row is a name→value view of one table row.
type Row map[string]any

// String returns the value of the named column as a string, or "" when the
// column is absent or null. Numeric values are formatted without an exponent.
func (r Row) String(col string) string {
	v, ok := r[strings.ToUpper(col)]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FirstString returns the value of the first named column that is present
// and non-empty.
func (r Row) FirstString(cols ...string) string {
	for _, col := range cols {
		if s := r.String(col); s != "" {
			return s
		}
	}
	return ""
}

// Date parses the named column as a calendar date; unknown when the column
// is absent or the value does not parse.
func (r Row) Date(col string) models.Date {
	d, _ := models.ParseDate(r.String(col))
	return d
}

// Float parses the named column as a number; ok=false when absent or not
// numeric.
func (r Row) Float(col string) (float64, bool) {
	v, present := r[strings.ToUpper(col)]
	if !present || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.ReplaceAll(strings.TrimSpace(val), ",", "."), "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
