package transcoder

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/wippyai/itm-bind/errors"
)

// Float64 converts a numeric host value to f64. Strings, booleans, nil and
// composite values are rejected rather than coerced to zero.
func Float64(value any, path ...string) (float64, error) {
	if f, ok := coerceToFloat64(value); ok {
		return f, nil
	}
	return 0, errors.NotNumeric(path, TypeName(value), "f64", value)
}

// Int32 converts an integral host value to s32. Fractional and out of
// range numbers are rejected.
func Int32(value any, path ...string) (int32, error) {
	if i, ok := coerceToInt32(value); ok {
		return i, nil
	}
	if _, ok := coerceToFloat64(value); ok {
		return 0, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
			Path(path...).
			GoType(TypeName(value)).
			WitType("s32").
			Value(value).
			Detail("not an integral value in s32 range").
			Build()
	}
	return 0, errors.NotNumeric(path, TypeName(value), "s32", value)
}

func coerceToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func coerceToInt32(value any) (int32, bool) {
	switch v := value.(type) {
	case int32:
		return v, true
	case int8:
		return int32(v), true
	case int16:
		return int32(v), true
	case uint8:
		return int32(v), true
	case uint16:
		return int32(v), true
	case float64:
		if v >= math.MinInt32 && v <= math.MaxInt32 && v == float64(int32(v)) {
			return int32(v), true
		}
	case float32:
		if v >= math.MinInt32 && v <= math.MaxInt32 && v == float32(int32(v)) {
			return int32(v), true
		}
	case int:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return int32(v), true
		}
	case int64:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return int32(v), true
		}
	case uint:
		if v <= math.MaxInt32 {
			return int32(v), true
		}
	case uint32:
		if v <= math.MaxInt32 {
			return int32(v), true
		}
	case uint64:
		if v <= math.MaxInt32 {
			return int32(v), true
		}
	case json.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 32); err == nil {
			return int32(i), true
		}
		if f, err := v.Float64(); err == nil {
			return coerceToInt32(f)
		}
	}
	return 0, false
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

func indexPath(path []string, i int) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	if len(out) == 0 {
		return append(out, "["+strconv.Itoa(i)+"]")
	}
	var b strings.Builder
	b.WriteString(out[len(out)-1])
	b.WriteByte('[')
	b.WriteString(strconv.Itoa(i))
	b.WriteByte(']')
	out[len(out)-1] = b.String()
	return out
}
