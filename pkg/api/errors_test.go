package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/ghrest/internal/common/httpclient"
)

func jsonResponse(status int, body string, headers map[string]string) *httpclient.Response {
	h := http.Header{}
	for k, v := range headers {
		h[k] = []string{v}
	}
	return &httpclient.Response{
		StatusCode:  status,
		Headers:     h,
		Body:        body,
		ContentType: "application/json; charset=utf-8",
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		headers  map[string]string
		sentinel error
		check    func(t *testing.T, err error)
	}{
		{
			name:     "bad credentials",
			status:   401,
			body:     `{"message":"Bad credentials"}`,
			sentinel: ErrUnauthorized,
			check: func(t *testing.T, err error) {
				var e *AuthorizationError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "Bad credentials", e.Message)
				assert.False(t, errors.Is(err, ErrTwoFactorRequired))
			},
		},
		{
			name:     "two factor sms",
			status:   401,
			body:     `{"message":"Must specify two-factor authentication OTP code."}`,
			headers:  map[string]string{"X-GitHub-OTP": "required; sms"},
			sentinel: ErrTwoFactorRequired,
			check: func(t *testing.T, err error) {
				var e *TwoFactorRequiredError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, TwoFactorSMS, e.Type)
				assert.True(t, errors.Is(err, ErrUnauthorized))
			},
		},
		{
			name:     "two factor app with odd header casing",
			status:   401,
			headers:  map[string]string{"x-github-otp": "Required;app"},
			sentinel: ErrTwoFactorRequired,
			check: func(t *testing.T, err error) {
				var e *TwoFactorRequiredError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, TwoFactorAuthenticatorApp, e.Type)
			},
		},
		{
			name:     "two factor unknown method",
			status:   401,
			headers:  map[string]string{"X-Github-Otp": "required; carrier-pigeon"},
			sentinel: ErrTwoFactorRequired,
			check: func(t *testing.T, err error) {
				var e *TwoFactorRequiredError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, TwoFactorUnknown, e.Type)
				assert.Equal(t, "unknown", e.Type.String())
			},
		},
		{
			name:     "two factor without method",
			status:   401,
			headers:  map[string]string{"X-Github-Otp": "required"},
			sentinel: ErrTwoFactorRequired,
		},
		{
			name:     "otp header not a challenge",
			status:   401,
			headers:  map[string]string{"X-Github-Otp": "optional"},
			sentinel: ErrUnauthorized,
			check: func(t *testing.T, err error) {
				var e *AuthorizationError
				assert.True(t, errors.As(err, &e))
			},
		},
		{
			name:     "validation failed",
			status:   422,
			body:     `{"message":"Validation Failed","errors":[{"resource":"Issue","field":"title","code":"missing_field"}]}`,
			sentinel: ErrValidationFailed,
			check: func(t *testing.T, err error) {
				var e *ValidationError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "Validation Failed", e.Message)
				assert.Equal(t, []ApiErrorDetail{{Resource: "Issue", Field: "title", Code: "missing_field"}}, e.Errors)
			},
		},
		{
			name:     "validation failed with unparseable errors",
			status:   422,
			body:     `{"message":"Validation Failed","errors":["title is missing"]}`,
			sentinel: ErrValidationFailed,
			check: func(t *testing.T, err error) {
				var e *ValidationError
				require.True(t, errors.As(err, &e))
				assert.NotNil(t, e.Errors)
				assert.Empty(t, e.Errors)
				assert.Equal(t, "Validation Failed", e.Message)
			},
		},
		{
			name:   "rate limit exceeded",
			status: 403,
			body:   `{"message":"API Rate Limit Exceeded for 127.0.0.1."}`,
			headers: map[string]string{
				"X-Ratelimit-Limit":     "60",
				"X-Ratelimit-Remaining": "0",
				"X-Ratelimit-Reset":     "1372700873",
			},
			sentinel: ErrRateLimitExceeded,
			check: func(t *testing.T, err error) {
				var e *RateLimitExceededError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 60, e.RateLimit.Limit)
				assert.Equal(t, 0, e.RateLimit.Remaining)
				assert.Equal(t, time.Unix(1372700873, 0).UTC(), e.RateLimit.Reset)
				assert.True(t, errors.Is(err, ErrForbidden))
			},
		},
		{
			name:     "login attempts exceeded",
			status:   403,
			body:     `{"message":"Maximum number of login attempts exceeded","documentation_url":"https://docs.github.com/rest"}`,
			sentinel: ErrLoginAttemptsExceeded,
			check: func(t *testing.T, err error) {
				var e *LoginAttemptsExceededError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "https://docs.github.com/rest", e.DocumentationURL)
			},
		},
		{
			name:     "secondary rate limit",
			status:   403,
			body:     `{"message":"You have exceeded a secondary rate limit.","documentation_url":"https://docs.github.com/rest/overview/rate-limits-for-the-rest-api#about-secondary-rate-limits"}`,
			headers:  map[string]string{"Retry-After": "60"},
			sentinel: ErrSecondaryRateLimit,
			check: func(t *testing.T, err error) {
				var e *SecondaryRateLimitError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, time.Minute, e.RetryAfter)
			},
		},
		{
			name:     "abuse detection",
			status:   403,
			body:     `{"message":"You have triggered an abuse detection mechanism.","documentation_url":"https://developer.github.com/v3/#abuse-rate-limits"}`,
			sentinel: ErrSecondaryRateLimit,
			check: func(t *testing.T, err error) {
				var e *SecondaryRateLimitError
				require.True(t, errors.As(err, &e))
				assert.Zero(t, e.RetryAfter)
			},
		},
		{
			name:     "forbidden",
			status:   403,
			body:     `{"message":"Resource not accessible by integration"}`,
			sentinel: ErrForbidden,
			check: func(t *testing.T, err error) {
				var e *ForbiddenError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, `{"message":"Resource not accessible by integration"}`, e.Message)
				assert.False(t, errors.Is(err, ErrRateLimitExceeded))
			},
		},
		{
			name:     "not found",
			status:   404,
			body:     `{"message":"Not Found"}`,
			sentinel: ErrNotFound,
			check: func(t *testing.T, err error) {
				var e *NotFoundError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, `{"message":"Not Found"}`, e.Message)
				assert.Equal(t, 404, e.StatusCode())
			},
		},
		{
			name:     "server error",
			status:   500,
			body:     `{"message":"Server Error","documentation_url":"https://docs.github.com/rest"}`,
			sentinel: ErrAPI,
			check: func(t *testing.T, err error) {
				var e *ApiError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "Server Error", e.Message)
				assert.Equal(t, "https://docs.github.com/rest", e.DocumentationURL)
				assert.Equal(t, "github api error (500): Server Error", e.Error())
			},
		},
		{
			name:     "non json error body",
			status:   502,
			body:     "bad gateway",
			sentinel: ErrAPI,
			check: func(t *testing.T, err error) {
				var e *ApiError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, "bad gateway", e.Message)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsp := jsonResponse(tt.status, tt.body, tt.headers)
			err := classify(rsp, ParseApiInfo(rsp.Headers))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.True(t, errors.Is(err, ErrAPI))

			var apiErr Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode())
			assert.Same(t, rsp, apiErr.Response())
			assert.Equal(t, tt.body, apiErr.Details().Body)
			assert.NotNil(t, apiErr.Details().Info)
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestClassifySuccess(t *testing.T) {
	for _, status := range []int{200, 201, 204, 304} {
		assert.NoError(t, classify(jsonResponse(status, "", nil), nil))
	}
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 30*time.Second, retryAfter("30"))
	assert.Zero(t, retryAfter(""))
	assert.Zero(t, retryAfter("-5"))
	d := retryAfter(time.Now().Add(2 * time.Minute).UTC().Format(http.TimeFormat))
	assert.InDelta(t, float64(2*time.Minute), float64(d), float64(5*time.Second))
}
