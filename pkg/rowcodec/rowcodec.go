// Package rowcodec extracts typed values out of loosely typed mirror rows.
// Numeric columns arrive as int64 from some drivers and as decimal strings
// from others; both are parsed exactly. Floating point is never involved:
// financial amounts stay exact integers all the way up.
package rowcodec

import (
	"fmt"
	"strconv"

	"bountyboard/pkg/errutil"
)

// Int64 reads a required integer column.
func Int64(row map[string]any, col string) (int64, error) {
	v, ok := row[col]
	if !ok || v == nil {
		return 0, missing(col)
	}

	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint64:
		if n > uint64(1<<63-1) {
			return 0, badValue(col, fmt.Sprintf("%d", n))
		}
		return int64(n), nil
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, badValue(col, n)
		}
		return parsed, nil
	case []byte:
		parsed, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0, badValue(col, string(n))
		}
		return parsed, nil
	default:
		return 0, badValue(col, fmt.Sprintf("%T", v))
	}
}

// String reads a required text column. Empty strings are valid values.
func String(row map[string]any, col string) (string, error) {
	v, ok := row[col]
	if !ok || v == nil {
		return "", missing(col)
	}

	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", badValue(col, fmt.Sprintf("%T", v))
	}
}

func missing(col string) error {
	return errutil.MalformedRow(fmt.Sprintf("required column %q missing from mirror row", col))
}

func badValue(col, got string) error {
	return errutil.MalformedRow(fmt.Sprintf("column %q holds unparseable value %s", col, got))
}
