// Package types provides nullable value types for API models. GitHub sends explicit nulls
// for many optional fields (an issue without a body, an open issue's closed_at), and these
// types keep "null" apart from the zero value when a model is decoded and encoded again.
package types

// Nullable is implemented by values that can be null.
type Nullable interface {
	// IsNil reports whether the value is null.
	IsNil() bool
}
