package store

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Record is a single row: column name to scalar value. The accessor does not
// know or enforce a schema.
type Record map[string]any

// Columns returns the record's column names in sorted order. Statements are
// built in this order so their text does not depend on map iteration.
func (r Record) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Int64 returns the column as an integer. Engines disagree on integer
// representation (int64, []byte text, float64), so all of them are accepted
// as long as the value is a whole number that fits in an int64.
func (r Record) Int64(col string) (int64, bool) {
	switch v := r[col].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// String returns the column as text. NULL and missing columns yield "".
func (r Record) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the column as a boolean. Integer columns are true when non-zero.
func (r Record) Bool(col string) bool {
	if b, ok := r[col].(bool); ok {
		return b
	}
	n, ok := r.Int64(col)
	return ok && n != 0
}

// Time returns the column as a time. Drivers return either time.Time or text
// depending on column type and DSN options.
func (r Record) Time(col string) (time.Time, bool) {
	switch v := r[col].(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}
