package apperrors

import (
	"errors"
	"strings"
)

type appError struct {
	msg        string
	suffix     string // messages of the errors handed to MsgErr or Err
	base       error
	causes     []error
	statusCode int
}

// Error returns the message followed by the messages of the errors this link wraps.
// Template messages further up the chain are left to ErrorAll.
func (e *appError) Error() string {
	if e.suffix == "" {
		return e.msg
	}
	return e.msg + ": " + e.suffix
}

// ErrorAll returns the message followed by the messages of all wrapped causes.
func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.msg)
	for _, err := range e.causes {
		if err.Error() == e.msg {
			continue
		}
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.causes
}

func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		suffix:     e.suffix,
		base:       e,
		causes:     append([]error{e}, e.causes...),
		statusCode: e.statusCode,
	}
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statusCode: e.statusCode,
	}
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	wrapped := nonNil(errs)
	return &appError{
		msg:        msg,
		suffix:     joinMessages(msg, wrapped),
		base:       e,
		causes:     append([]error{e}, wrapped...),
		statusCode: e.statusCode,
	}
}

func (e *appError) Err(errs ...error) Error {
	wrapped := nonNil(errs)
	return &appError{
		msg:        e.msg,
		suffix:     joinMessages(e.msg, wrapped),
		base:       e,
		causes:     append([]error{e}, wrapped...),
		statusCode: e.statusCode,
	}
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statusCode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statusCode
}

// Is reports whether target is the base of this error or any of its wrapped causes.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if e == target {
		return true
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.causes {
		if err == e {
			continue
		}
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// New creates a root error. Root errors are normally package level sentinels.
func New(msg string) Error {
	return &appError{msg: msg}
}

func nonNil(errs []error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// joinMessages joins the messages of errs with "; ", skipping those that repeat msg.
func joinMessages(msg string, errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		if m := err.Error(); m != "" && m != msg {
			parts = append(parts, m)
		}
	}
	return strings.Join(parts, "; ")
}
