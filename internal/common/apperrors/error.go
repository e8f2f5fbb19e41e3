// Package apperrors provides the chained error type used for structural failures in the
// request pipeline: malformed requests, transport faults, redirect loops and decode errors.
// Errors created from a template keep the template in their chain, so callers match on
// the template with errors.Is no matter how much context was added on the way up.
package apperrors

// Error is a chained error. Every method returns a new value; the receiver is never changed,
// which keeps package level sentinels safe to share between goroutines.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // new error with msg, chained to the receiver
	Msg(msg string) Error                  // new error with msg, wrapping the receiver and its causes
	MsgErr(msg string, err ...error) Error // like Msg, also wrapping err
	Err(err ...error) Error                // same message, additionally wrapping err
	SetStatusCode(int) Error               // copy carrying an HTTP status code
	StatusCode() int                       // HTTP status code, 0 when unset
	ErrorAll() string                      // message followed by every wrapped cause
	UnwrapAll() []error                    // wrapped causes in the order they were added
}
