package result

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Projected metadata keys, in output order.
const (
	KeyTitle    = "title"
	KeySelfLink = "selfLink"
)

var projectedKeys = [...]string{KeyTitle, KeySelfLink}

// Field is one metadata key/value pair.
type Field struct {
	Key   string
	Value any
}

// Metadata is an ordered mapping restricted to the projected keys.
// It marshals as a JSON object in field order; empty metadata is {}.
type Metadata []Field

// Project keeps only title and selfLink from src, in that order. Absent keys are omitted.
func Project(src map[string]any) Metadata {
	out := make(Metadata, 0, len(projectedKeys))
	for _, k := range projectedKeys {
		if v, ok := src[k]; ok {
			out = append(out, Field{Key: k, Value: v})
		}
	}
	return out
}

// Get returns the value stored under key.
func (m Metadata) Get(key string) (any, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Map returns the metadata as a plain map.
func (m Metadata) Map() map[string]any {
	out := make(map[string]any, len(m))
	for _, f := range m {
		out[f.Key] = f.Value
	}
	return out
}

// MarshalJSON writes the fields as an object in order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata key: %w", err)
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata %q: %w", f.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object and keeps only the projected keys.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal metadata: %w", err)
	}
	*m = Project(raw)
	return nil
}
