package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString is a string field that the server may encode either as a JSON
// string or as a number (message ids and timestamps are often Date.now()).
type FlexString string

// UnmarshalJSON accepts strings, numbers and null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the underlying value.
func (f FlexString) String() string { return string(f) }
