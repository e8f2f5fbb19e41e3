package types

import (
	"time"
)

// NullableTime is a timestamp that can be null. Non-null values use RFC 3339 on the wire.
type NullableTime struct {
	Value time.Time
	Valid bool
}

// IsNil reports whether the timestamp is null.
func (nt NullableTime) IsNil() bool {
	return !nt.Valid
}

// NullableTimeFrom creates a valid NullableTime.
func NullableTimeFrom(t time.Time) NullableTime {
	return NullableTime{Value: t, Valid: true}
}

// MarshalJSON encodes null for an invalid timestamp.
func (nt NullableTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nt.Value.UTC().Format(time.RFC3339))
}

// UnmarshalJSON accepts an RFC 3339 string or null.
func (nt *NullableTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*nt = NullableTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	nt.Value = t
	nt.Valid = true
	return nil
}

var _ Nullable = NullableTime{}
