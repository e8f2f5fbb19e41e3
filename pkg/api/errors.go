package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tansive/ghrest/internal/common/apperrors"
	"github.com/tansive/ghrest/internal/common/httpclient"
	"github.com/tidwall/gjson"
)

var (
	// ErrAPI is the root of every error classified from an API response.
	ErrAPI = apperrors.New("github api error")

	ErrUnauthorized          = ErrAPI.New("unauthorized").SetStatusCode(http.StatusUnauthorized)
	ErrTwoFactorRequired     = ErrUnauthorized.New("two-factor authentication code required")
	ErrValidationFailed      = ErrAPI.New("validation failed").SetStatusCode(http.StatusUnprocessableEntity)
	ErrForbidden             = ErrAPI.New("forbidden").SetStatusCode(http.StatusForbidden)
	ErrRateLimitExceeded     = ErrForbidden.New("rate limit exceeded")
	ErrLoginAttemptsExceeded = ErrForbidden.New("maximum number of login attempts exceeded")
	ErrSecondaryRateLimit    = ErrForbidden.New("secondary rate limit exceeded")
	ErrNotFound              = ErrAPI.New("not found").SetStatusCode(http.StatusNotFound)

	// ErrParse reports a JSON body that could not be decoded into the requested type.
	ErrParse = apperrors.New("unable to parse response")
	// ErrConfig reports an invalid Config.
	ErrConfig = apperrors.New("invalid configuration")
)

// Error is implemented only by the error types in this package. Every implementation
// carries the terminal response it was classified from.
type Error interface {
	error
	StatusCode() int
	Response() *httpclient.Response
	Details() *ApiError
	sealed()
}

// ApiErrorDetail is one entry of the errors list in a validation failure.
type ApiErrorDetail struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message,omitempty"`
}

// ApiError is a non-success response that has no more specific type.
type ApiError struct {
	Status           int
	Message          string
	DocumentationURL string
	Errors           []ApiErrorDetail
	Body             string
	Headers          http.Header
	Info             *ApiInfo
	Raw              *httpclient.Response
	kind             apperrors.Error
}

func (e *ApiError) Error() string {
	kind := e.sentinel()
	if e.Message == "" {
		return fmt.Sprintf("%s (%d)", kind.Error(), e.Status)
	}
	return fmt.Sprintf("%s (%d): %s", kind.Error(), e.Status, e.Message)
}

// Unwrap returns the sentinel matching the error kind, so errors.Is(err, ErrNotFound) works.
func (e *ApiError) Unwrap() error {
	return e.sentinel()
}

func (e *ApiError) StatusCode() int                { return e.Status }
func (e *ApiError) Response() *httpclient.Response { return e.Raw }
func (e *ApiError) Details() *ApiError             { return e }
func (e *ApiError) sealed()                        {}

func (e *ApiError) sentinel() apperrors.Error {
	if e.kind == nil {
		return ErrAPI
	}
	return e.kind
}

// AuthorizationError is a 401 response.
type AuthorizationError struct{ *ApiError }

// TwoFactorType is the delivery method of a two-factor code.
type TwoFactorType int

const (
	TwoFactorUnknown TwoFactorType = iota
	TwoFactorSMS
	TwoFactorAuthenticatorApp
)

func (t TwoFactorType) String() string {
	switch t {
	case TwoFactorSMS:
		return "sms"
	case TwoFactorAuthenticatorApp:
		return "app"
	}
	return "unknown"
}

// TwoFactorRequiredError is a 401 response challenging for a one-time password. Repeat
// the call with Call.TwoFactorCode set.
type TwoFactorRequiredError struct {
	*ApiError
	Type TwoFactorType
}

// ValidationError is a 422 response. Errors lists the offending fields.
type ValidationError struct{ *ApiError }

// RateLimitExceededError is a 403 response for an exhausted primary rate limit.
type RateLimitExceededError struct {
	*ApiError
	RateLimit RateLimit
}

// LoginAttemptsExceededError is a 403 response after too many failed basic auth attempts.
type LoginAttemptsExceededError struct{ *ApiError }

// SecondaryRateLimitError is a 403 response for a secondary (abuse) rate limit.
// RetryAfter is zero when the server did not say.
type SecondaryRateLimitError struct {
	*ApiError
	RetryAfter time.Duration
}

// ForbiddenError is any other 403 response.
type ForbiddenError struct{ *ApiError }

// NotFoundError is a 404 response.
type NotFoundError struct{ *ApiError }

var (
	_ Error = &ApiError{}
	_ Error = &AuthorizationError{}
	_ Error = &TwoFactorRequiredError{}
	_ Error = &ValidationError{}
	_ Error = &RateLimitExceededError{}
	_ Error = &LoginAttemptsExceededError{}
	_ Error = &SecondaryRateLimitError{}
	_ Error = &ForbiddenError{}
	_ Error = &NotFoundError{}
)

const otpHeader = "X-GitHub-OTP"

// classify maps a terminal response to an error. Success and 304 Not Modified are not errors.
func classify(rsp *httpclient.Response, info *ApiInfo) error {
	if rsp.IsSuccess() || rsp.StatusCode == http.StatusNotModified {
		return nil
	}
	if info == nil {
		info = ParseApiInfo(rsp.Headers)
	}
	body := rsp.BodyString()
	base := &ApiError{
		Status:  rsp.StatusCode,
		Body:    body,
		Headers: rsp.Headers,
		Info:    info,
		Raw:     rsp,
	}
	if gjson.Valid(body) {
		base.Message = gjson.Get(body, "message").String()
		base.DocumentationURL = gjson.Get(body, "documentation_url").String()
	}

	switch rsp.StatusCode {
	case http.StatusUnauthorized:
		if required, kind := twoFactorChallenge(rsp.Headers); required {
			base.kind = ErrTwoFactorRequired
			return &TwoFactorRequiredError{ApiError: base, Type: kind}
		}
		base.kind = ErrUnauthorized
		return &AuthorizationError{base}

	case http.StatusUnprocessableEntity:
		base.kind = ErrValidationFailed
		base.Errors = validationDetails(body)
		return &ValidationError{base}

	case http.StatusForbidden:
		lower := strings.ToLower(body)
		switch {
		case strings.Contains(lower, "rate limit exceeded"):
			base.kind = ErrRateLimitExceeded
			return &RateLimitExceededError{ApiError: base, RateLimit: info.RateLimit}
		case strings.Contains(lower, "number of login attempts exceeded"):
			base.kind = ErrLoginAttemptsExceeded
			return &LoginAttemptsExceededError{base}
		case strings.Contains(base.DocumentationURL, "secondary-rate-limits"),
			strings.Contains(base.DocumentationURL, "abuse-rate-limits"):
			base.kind = ErrSecondaryRateLimit
			return &SecondaryRateLimitError{ApiError: base, RetryAfter: retryAfter(rsp.Headers.Get("Retry-After"))}
		}
		base.kind = ErrForbidden
		base.Message = body
		return &ForbiddenError{base}

	case http.StatusNotFound:
		base.kind = ErrNotFound
		base.Message = body
		return &NotFoundError{base}
	}

	if base.Message == "" && !gjson.Valid(body) {
		base.Message = body
	}
	return base
}

// twoFactorChallenge looks for a header such as "X-GitHub-OTP: required; sms". Header
// names are compared case-insensitively even when the map was not built canonically.
func twoFactorChallenge(h http.Header) (bool, TwoFactorType) {
	for name, values := range h {
		if !strings.EqualFold(name, otpHeader) {
			continue
		}
		for _, v := range values {
			v = strings.TrimSpace(v)
			if !strings.HasPrefix(strings.ToLower(v), "required") {
				continue
			}
			_, method, _ := strings.Cut(v, ";")
			switch strings.ToLower(strings.TrimSpace(method)) {
			case "sms":
				return true, TwoFactorSMS
			case "app":
				return true, TwoFactorAuthenticatorApp
			}
			return true, TwoFactorUnknown
		}
	}
	return false, TwoFactorUnknown
}

func validationDetails(body string) []ApiErrorDetail {
	var doc struct {
		Errors []ApiErrorDetail `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil || doc.Errors == nil {
		return []ApiErrorDetail{}
	}
	return doc.Errors
}

func retryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
