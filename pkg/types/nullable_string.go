package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NullableString tracks whether a string field was present in JSON and whether it was null.
type NullableString struct {
	Valid bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Valid = true
		n.Value = nil
		return nil
	}

	var parsed string
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Valid = true
	n.Value = &parsed
	return nil
}

// Trimmed returns the value with surrounding whitespace removed; blank values clear the field.
func (n NullableString) Trimmed() *string {
	if n.Value == nil {
		return nil
	}
	v := strings.TrimSpace(*n.Value)
	if v == "" {
		return nil
	}
	return &v
}
