package httpx

import (
	"net/http"
)

// FieldError is one entry of the errors array of a 422 response.
type FieldError struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message,omitempty"`
}

// Error is an error document in the shape the GitHub API uses.
type Error struct {
	Message          string       `json:"message"`
	DocumentationURL string       `json:"documentation_url,omitempty"`
	Errors           []FieldError `json:"errors,omitempty"`
	StatusCode       int          `json:"-"`
}

// Send writes the error document. If the writer is nil, no action is taken.
func (e *Error) Send(w http.ResponseWriter) {
	if w == nil {
		return
	}
	body, err := json.Marshal(e)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Unable to encode error"))
		return
	}
	w.Header().Set("Content-Type", MediaTypeJSON)
	w.WriteHeader(e.StatusCode)
	w.Write(body)
}

// Error returns the message.
func (e *Error) Error() string {
	return e.Message
}

const docsBase = "https://docs.github.com/rest"

// ErrNotFound returns the API's 404 document.
func ErrNotFound() *Error {
	return &Error{
		Message:          "Not Found",
		DocumentationURL: docsBase,
		StatusCode:       http.StatusNotFound,
	}
}

// ErrBadCredentials returns the API's 401 document.
func ErrBadCredentials() *Error {
	return &Error{
		Message:          "Bad credentials",
		DocumentationURL: docsBase,
		StatusCode:       http.StatusUnauthorized,
	}
}

// ErrRequiresAuthentication returns the 401 document sent when no credentials were given.
func ErrRequiresAuthentication() *Error {
	return &Error{
		Message:          "Requires authentication",
		DocumentationURL: docsBase + "/users/users#get-the-authenticated-user",
		StatusCode:       http.StatusUnauthorized,
	}
}

// ErrRateLimitExceeded returns the primary rate limit 403 document.
func ErrRateLimitExceeded() *Error {
	return &Error{
		Message:          "API rate limit exceeded for 127.0.0.1. (But here's the good news: Authenticated requests get a higher rate limit.)",
		DocumentationURL: docsBase + "/overview/resources-in-the-rest-api#rate-limiting",
		StatusCode:       http.StatusForbidden,
	}
}

// ErrLoginAttemptsExceeded returns the 403 document sent after too many failed logins.
func ErrLoginAttemptsExceeded() *Error {
	return &Error{
		Message:          "Maximum number of login attempts exceeded. Please try again later.",
		DocumentationURL: docsBase,
		StatusCode:       http.StatusForbidden,
	}
}

// ErrSecondaryRateLimit returns the secondary rate limit 403 document.
func ErrSecondaryRateLimit() *Error {
	return &Error{
		Message:          "You have exceeded a secondary rate limit. Please wait a few minutes before you try again.",
		DocumentationURL: docsBase + "/overview/resources-in-the-rest-api#secondary-rate-limits",
		StatusCode:       http.StatusForbidden,
	}
}

// ErrForbidden returns a generic 403 document.
func ErrForbidden(msg ...string) *Error {
	s := "Resource not accessible by integration"
	if len(msg) > 0 {
		s = msg[0]
	}
	return &Error{
		Message:          s,
		DocumentationURL: docsBase,
		StatusCode:       http.StatusForbidden,
	}
}

// ErrValidationFailed returns a 422 document carrying field errors.
func ErrValidationFailed(errs ...FieldError) *Error {
	return &Error{
		Message:          "Validation Failed",
		DocumentationURL: docsBase,
		Errors:           errs,
		StatusCode:       http.StatusUnprocessableEntity,
	}
}

// ErrApplicationError returns a 500 document.
// If no message is provided, a default message is used.
func ErrApplicationError(msg ...string) *Error {
	s := "unable to process request"
	if len(msg) > 0 {
		s = msg[0]
	}
	return &Error{
		Message:    s,
		StatusCode: http.StatusInternalServerError,
	}
}
