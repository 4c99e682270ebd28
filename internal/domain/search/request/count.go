package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrNotANumber signals a result count that does not parse as an integer.
	ErrNotANumber = errors.New("result count is not an integer")
	// ErrOutOfRange signals a parsed result count outside [1, max].
	ErrOutOfRange = errors.New("result count out of range")
)

// ParseResultCount converts host input (UI text or a JSON number) to an integer.
// Only values outside the int32 range are rejected here, as ErrOutOfRange;
// see CheckResultCount for the configured bounds.
func ParseResultCount(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return fromInt(int64(v))
	case int64:
		return fromInt(v)
	case float64:
		return fromFloat(v)
	case json.Number:
		return parseString(v.String())
	case string:
		return parseString(v)
	case nil:
		return 0, fmt.Errorf("%w: value is missing", ErrNotANumber)
	}

	// remaining numeric kinds: int8..int32, uints, float32 and named numeric types
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fromInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %d", ErrOutOfRange, u)
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		return fromFloat(rv.Float())
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrNotANumber, raw)
	}
}

func parseString(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", ErrOutOfRange, s)
		}
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	return fromInt(n)
}

func fromInt(n int64) (int, error) {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, n)
	}
	return int(n), nil
}

func fromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v", ErrNotANumber, f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, f)
	}
	return int(f), nil
}

// CheckResultCount verifies 1 <= n <= maxResults.
func CheckResultCount(n, maxResults int) error {
	if n < 1 || n > maxResults {
		return fmt.Errorf("%w: must be between 1 and %d, got %d", ErrOutOfRange, maxResults, n)
	}
	return nil
}
