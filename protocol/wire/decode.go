package wire

import (
	"encoding/json"
	"fmt"
)

// Normalize converts the loosely typed argument of a Socket.IO event
// (map[string]any, []any, json.RawMessage, ...) into raw JSON.
func Normalize(arg any) (json.RawMessage, error) {
	switch v := arg.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal event argument: %w", err)
		}
		return data, nil
	}
}

// Decode unmarshals raw event data into a typed payload.
func Decode[T any](data json.RawMessage) (T, error) {
	var out T
	if len(data) == 0 {
		return out, fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
