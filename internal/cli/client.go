package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"github.com/tansive/ghrest/internal/common/httpclient"
	"github.com/tansive/ghrest/pkg/api"
)

const defaultRetryDelay = 500 * time.Millisecond

// connection creates a connection from the loaded configuration. With --retries the
// transport adapter is wrapped so transient failures are retried with backoff.
func (a *app) connection() (*api.Connection, error) {
	if a.config == nil {
		return nil, errors.New("no configuration loaded")
	}
	cfg, err := a.config.APIConfig()
	if err != nil {
		return nil, err
	}
	var sender httpclient.Sender = httpclient.NewAdapter(httpclient.ClientOptions{
		DisableCertValidation: cfg.DisableCertValidation,
	})
	if a.retries > 0 {
		sender = &retrySender{next: sender, attempts: a.retries + 1, delay: a.retryDelay}
	}
	return api.NewConnection(cfg, api.WithAdapter(sender))
}

// retrySender retries transport failures and 5xx responses. The last response is
// returned when attempts run out so the connection can classify it.
type retrySender struct {
	next     httpclient.Sender
	attempts uint
	delay    time.Duration
}

type serverStatusError struct {
	status int
}

func (e *serverStatusError) Error() string {
	return fmt.Sprintf("server responded %d %s", e.status, http.StatusText(e.status))
}

func (s *retrySender) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	var last *httpclient.Response
	rsp, err := retry.DoWithData(
		func() (*httpclient.Response, error) {
			rsp, err := s.next.Send(ctx, req)
			if err != nil {
				return nil, err
			}
			last = rsp
			if rsp.StatusCode >= http.StatusInternalServerError {
				return rsp, &serverStatusError{status: rsp.StatusCode}
			}
			return rsp, nil
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().Uint("attempt", n+1).Err(err).Msg("retrying request")
		}),
	)
	var statusErr *serverStatusError
	if errors.As(err, &statusErr) && last != nil {
		return last, nil
	}
	return rsp, err
}

func retryable(err error) bool {
	var statusErr *serverStatusError
	if errors.As(err, &statusErr) {
		return true
	}
	return errors.Is(err, httpclient.ErrTransport) && !errors.Is(err, httpclient.ErrRedirectLoop)
}

// parseParams turns repeated key=value flags into query parameters.
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", p)
		}
		params[strings.TrimSpace(k)] = v
	}
	return params, nil
}
