package source

import (
	"cmp"
	"database/sql/driver"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
)

// normalizeValue converts a driver value into something that encodes to the
// column's JSON type.
func normalizeValue(v interface{}, typ dialect.JSONType) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return normalizeValue(string(val), typ)
	case string:
		return parseNumeric(val, typ)
	case float64:
		return finiteOrNil(val)
	case float32:
		return finiteOrNil(float64(val))
	case time.Time:
		if typ.Format == dialect.FormatDate {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339Nano)
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		if _, same := inner.(driver.Valuer); same {
			return inner
		}
		return normalizeValue(inner, typ)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return normalizeValue(rv.Elem().Interface(), typ)
	}

	if typ.Type == dialect.TypeBoolean {
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int() != 0
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return rv.Uint() != 0
		}
	}
	return v
}

// parseNumeric turns numeric text from drivers that only speak strings into
// a JSON number. Text that does not parse is kept as is.
func parseNumeric(s string, typ dialect.JSONType) interface{} {
	switch typ.Type {
	case dialect.TypeInteger:
		if n, err := parseInteger(s); err == nil {
			return n
		}
	case dialect.TypeNumber:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return finiteOrNil(f)
		}
	}
	return s
}

// finiteOrNil drops NaN and ±Inf, which JSON cannot carry.
func finiteOrNil(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// parseInteger covers the whole Int64 and UInt64 ranges.
func parseInteger(s string) (interface{}, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	if u, uerr := strconv.ParseUint(s, 10, 64); uerr == nil {
		return u, nil
	}
	return nil, err
}

// cursorTimeLayout is fixed width and always UTC, so saved cursors of the
// same column also sort correctly as text.
const cursorTimeLayout = "2006-01-02T15:04:05.000000000Z"

// cursorString is the rendition stored in state.
func cursorString(v interface{}, typ dialect.JSONType) string {
	if typ.Format == dialect.FormatDateTime {
		if t, ok := cursorTime(v); ok {
			return t.UTC().Format(cursorTimeLayout)
		}
	}
	return formatCursor(v)
}

func formatCursor(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// parseCursor types a saved cursor from the column's JSON type so that the
// comparison happens in the column's domain, not lexically.
func parseCursor(raw string, typ dialect.JSONType) (interface{}, error) {
	switch typ.Type {
	case dialect.TypeInteger:
		n, err := parseInteger(raw)
		if err != nil {
			return nil, srcerrors.Wrapf(srcerrors.ErrInvalidState, err, "cursor %q is not an integer", raw)
		}
		return n, nil
	case dialect.TypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, srcerrors.Wrapf(srcerrors.ErrInvalidState, err, "cursor %q is not a number", raw)
		}
		return f, nil
	}
	if typ.Format == dialect.FormatDateTime {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t, nil
		}
	}
	return raw, nil
}

// compareCursor orders two normalized cursor values of the same column.
func compareCursor(a, b interface{}, typ dialect.JSONType) int {
	if typ.Format == dialect.FormatDateTime {
		ta, okA := cursorTime(a)
		tb, okB := cursorTime(b)
		if okA && okB {
			return ta.Compare(tb)
		}
	}

	sa, sb := formatCursor(a), formatCursor(b)
	switch typ.Type {
	case dialect.TypeInteger:
		ia, okA := new(big.Int).SetString(sa, 10)
		ib, okB := new(big.Int).SetString(sb, 10)
		if okA && okB {
			return ia.Cmp(ib)
		}
	case dialect.TypeNumber:
		fa, errA := strconv.ParseFloat(sa, 64)
		fb, errB := strconv.ParseFloat(sb, 64)
		if errA == nil && errB == nil {
			return cmp.Compare(fa, fb)
		}
	}
	return cmp.Compare(sa, sb)
}

// cursorTime accepts a time.Time or its RFC 3339 rendition.
func cursorTime(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, val)
		return t, err == nil
	}
	return time.Time{}, false
}
