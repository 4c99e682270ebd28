package filter

import (
	"encoding/json"
	"fmt"
	"slices"
)

// MaxConditions is the maximum number of field predicates in one filter.
const MaxConditions = 32

// Filter is an optional equality predicate: field name -> expected value.
// The zero value is the empty filter, serialized upstream as null.
type Filter struct {
	conditions map[string]any
}

// New validates and creates a Filter. A nil or empty map yields the empty filter.
// Values must be JSON scalars or lists of JSON scalars.
func New(conditions map[string]any) (Filter, error) {
	if len(conditions) == 0 {
		return Filter{}, nil
	}
	if len(conditions) > MaxConditions {
		return Filter{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	for k, v := range conditions {
		if k == "" {
			return Filter{}, fmt.Errorf("filter key is required")
		}
		if err := validateValue(k, v); err != nil {
			return Filter{}, err
		}
	}
	return Filter{conditions: clone(conditions)}, nil
}

func validateValue(key string, v any) error {
	switch val := v.(type) {
	case string, bool, float64, float32, int, int32, int64, json.Number:
		return nil
	case []any:
		for _, item := range val {
			if _, nested := item.([]any); nested {
				return fmt.Errorf("filter value for key %q must not nest lists", key)
			}
			if err := validateValue(key, item); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return fmt.Errorf("filter value for key %q is required", key)
	default:
		return fmt.Errorf("unsupported filter value type %T for key %q", v, key)
	}
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool { return len(f.conditions) == 0 }

// Len returns the number of conditions.
func (f Filter) Len() int { return len(f.conditions) }

// Map returns a copy of the conditions, or nil for the empty filter.
// List values are copied too, so callers cannot reach the filter's state.
func (f Filter) Map() map[string]any {
	if f.IsEmpty() {
		return nil
	}
	return clone(f.conditions)
}

// clone copies conditions and every list value in them. Lists never nest.
func clone(conditions map[string]any) map[string]any {
	out := make(map[string]any, len(conditions))
	for k, v := range conditions {
		if list, ok := v.([]any); ok {
			v = slices.Clone(list)
		}
		out[k] = v
	}
	return out
}
