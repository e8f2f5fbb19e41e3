// Package uuid generates the time-ordered identifiers used to correlate the log lines of a
// single logical call. It wraps github.com/google/uuid with version 7 as the default.
package uuid

import (
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// UUID represents a UUID, aliased from github.com/google/uuid.UUID
type UUID = uuid.UUID

// Nil is the zero UUID value.
var Nil = uuid.Nil

// New returns a new UUIDv7. It panics if the random source fails.
func New() UUID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id
}

// NewRandom returns a new UUIDv7 and any error encountered during generation.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

// Parse parses a UUID string.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// IsUUIDv7 reports whether id is a version 7 UUID.
func IsUUIDv7(id UUID) bool {
	return id.Version() == uuid.Version(7)
}

// Time returns the creation time encoded in a UUIDv7.
func Time(id UUID) time.Time {
	ms := binary.BigEndian.Uint64(id[0:8]) >> 16
	return time.UnixMilli(int64(ms))
}
