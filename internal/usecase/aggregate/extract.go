package aggregate

import (
	"encoding/json"

	"github.com/kailas-cloud/flowconn/internal/domain"
	"github.com/kailas-cloud/flowconn/internal/domain/search/result"
)

// Wrapper keys a host passthrough object may carry its item list under.
const (
	keyValue = "value"
	keyData  = "data"
)

// ExtractItems returns the inner item list of input. ok is false when input carries no list.
// Supported shapes: a connector Output whose value is a list, a bare list, an object with a
// "value" or "data.value" list, and raw JSON bytes of any of these. List elements that are
// not objects are dropped.
func ExtractItems(input any) (items []result.Item, ok bool) {
	switch v := input.(type) {
	case domain.Output:
		return ExtractItems(v.Value)
	case *domain.Output:
		if v == nil {
			return nil, false
		}
		return ExtractItems(v.Value)
	case []result.Item:
		return v, true
	case []result.Record:
		items = make([]result.Item, 0, len(v))
		for _, r := range v {
			items = append(items, r.Item())
		}
		return items, true
	case []map[string]any:
		items = make([]result.Item, 0, len(v))
		for _, m := range v {
			if m != nil {
				items = append(items, result.Item(m))
			}
		}
		return items, true
	case []any:
		items = make([]result.Item, 0, len(v))
		for _, el := range v {
			if item, isItem := asItem(el); isItem {
				items = append(items, item)
			}
		}
		return items, true
	case map[string]any:
		if inner, found := v[keyValue]; found {
			return ExtractItems(inner)
		}
		if data, isMap := v[keyData].(map[string]any); isMap {
			if inner, found := data[keyValue]; found {
				return ExtractItems(inner)
			}
		}
		return nil, false
	case json.RawMessage:
		return extractJSON(v)
	case []byte:
		return extractJSON(v)
	default:
		return nil, false
	}
}

func extractJSON(data []byte) ([]result.Item, bool) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case []any, map[string]any:
		return ExtractItems(v)
	default:
		return nil, false
	}
}

func asItem(el any) (result.Item, bool) {
	switch v := el.(type) {
	case map[string]any:
		return result.Item(v), v != nil
	case result.Item:
		return v, v != nil
	default:
		return nil, false
	}
}
