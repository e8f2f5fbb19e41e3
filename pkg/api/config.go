// Package api is the GitHub REST client pipeline: it builds requests, serialises bodies,
// sends them through a transport adapter, classifies the terminal response into typed
// errors, parses response metadata and paginates list endpoints lazily.
package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultBaseAddress is the public GitHub API.
	DefaultBaseAddress = "https://api.github.com/"
	// DefaultMediaType is sent as Accept unless the caller supplies one.
	DefaultMediaType = "application/vnd.github.v3+json; charset=utf-8"
	// DefaultUserAgent identifies the client when the configuration does not.
	DefaultUserAgent = "ghrest"
	// DefaultContentType is used for request bodies sent without an explicit content type.
	DefaultContentType = "application/x-www-form-urlencoded"
)

// Config is the explicit configuration of a Connection. It is copied by NewConnection and
// never changed afterwards.
type Config struct {
	BaseAddress           string            `validate:"required,url"`
	UserAgent             string            `validate:"required"`
	Credentials           Credentials       `validate:"-"`
	MediaType             string            // Accept default, DefaultMediaType when empty
	Timeout               time.Duration     `validate:"gte=0"` // per round trip, 0 means none
	DefaultHeaders        map[string]string // added to every request before call headers
	DisableCertValidation bool
}

// DefaultConfig returns a configuration for the public GitHub API without credentials.
func DefaultConfig() Config {
	return Config{
		BaseAddress: DefaultBaseAddress,
		UserAgent:   DefaultUserAgent,
		MediaType:   DefaultMediaType,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return ErrConfig.New(validationMessage(err))
	}
	u, err := url.Parse(c.BaseAddress)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ErrConfig.New(fmt.Sprintf("base address %q must be an absolute URL", c.BaseAddress))
	}
	return nil
}

func (c Config) baseURL() (*url.URL, error) {
	addr := c.BaseAddress
	if !strings.HasSuffix(addr, "/") {
		addr += "/"
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, ErrConfig.MsgErr("invalid base address", err)
	}
	return u, nil
}

func (c Config) mediaType() string {
	if c.MediaType == "" {
		return DefaultMediaType
	}
	return c.MediaType
}

func validationMessage(err error) string {
	ves, ok := err.(validator.ValidationErrors)
	if !ok || len(ves) == 0 {
		return "invalid configuration"
	}
	fields := make([]string, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return "invalid configuration: " + strings.Join(fields, ", ")
}
