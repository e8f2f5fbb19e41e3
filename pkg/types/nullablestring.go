package types

import (
	jsonitor "github.com/json-iterator/go"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// NullableString is a string that can be null.
type NullableString struct {
	Value string
	Valid bool // Valid is false for null
}

// String returns the value, or an empty string for null.
func (ns NullableString) String() string {
	if ns.Valid {
		return ns.Value
	}
	return ""
}

// IsNil reports whether the string is null. An empty but valid string is not null.
func (ns NullableString) IsNil() bool {
	return !ns.Valid
}

// Set assigns a value and marks the string valid.
func (ns *NullableString) Set(value string) {
	ns.Value = value
	ns.Valid = true
}

// MarshalJSON encodes null for an invalid string.
func (ns NullableString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.Value)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a JSON string or null.
func (ns *NullableString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		ns.Value = ""
		ns.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &ns.Value); err != nil {
		return err
	}
	ns.Valid = true
	return nil
}

// NullableStringFrom creates a valid NullableString.
func NullableStringFrom(s string) NullableString {
	return NullableString{Value: s, Valid: true}
}

// NullString creates a null NullableString.
func NullString() NullableString {
	return NullableString{}
}

var _ Nullable = NullableString{}
