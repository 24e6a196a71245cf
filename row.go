package schemahelper

import (
	"errors"
	"fmt"
)

// ErrEmptyRow is returned when a result row carries no usable first value.
var ErrEmptyRow = errors.New("row has no value in its first column")

// A Row is one row of a statement result. It is either a MappedRow or a
// PositionalRow.
type Row interface {
	values() []interface{}
}

// MappedRow is a row whose values are keyed by column name. Columns and
// Values are parallel slices in result order.
type MappedRow struct {
	Columns []string
	Values  []interface{}
}

func (r MappedRow) values() []interface{} { return r.Values }

// Get returns the value of the named column.
func (r MappedRow) Get(column string) (interface{}, bool) {
	for i, c := range r.Columns {
		if c == column && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return nil, false
}

// PositionalRow is a row of values without column names.
type PositionalRow []interface{}

func (r PositionalRow) values() []interface{} { return r }

// firstValue returns the first column of row as a string.
func firstValue(row Row) (string, error) {
	if row == nil {
		return "", ErrEmptyRow
	}
	vals := row.values()
	if len(vals) == 0 || vals[0] == nil {
		return "", ErrEmptyRow
	}
	return asString(vals[0]), nil
}

// asString converts a driver value into its textual form.
// The MySQL driver hands out text columns as []byte.
func asString(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
