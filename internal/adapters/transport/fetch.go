package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout   = 5 * time.Second
	DefaultRetries   = 1
	maxResponseBytes = 1 << 20
)

var ErrInvalidRequest = errors.New("invalid request")

type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// StatusError reports a non-2xx response. Those are never retried.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Fetcher performs a request with a per-attempt timeout and a fixed number
// of immediate retries. Any HTTP response ends the loop, whatever its status.
type Fetcher struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	// Retries counts attempts beyond the first.
	Retries int
	Logger  zerolog.Logger
}

func (f Fetcher) Do(ctx context.Context, req Request) (Response, error) {
	retries := f.Retries
	if retries < 0 {
		retries = 0
	}

	// No backoff and no jitter: a failed attempt is retried straight away.
	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(retries)), ctx)

	attempts := 0
	var resp Response
	operation := func() error {
		attempts++
		result, err := f.attempt(ctx, req)
		if err != nil {
			if errors.Is(err, ErrInvalidRequest) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = result
		return nil
	}
	notify := func(err error, _ time.Duration) {
		f.Logger.Debug().Err(err).Int("attempt", attempts).Str("url", req.URL).Msg("request attempt failed, retrying")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return Response{}, fmt.Errorf("%s %s failed after %d attempt(s): %w", req.Method, req.URL, attempts, err)
	}

	return resp, nil
}

func (f Fetcher) attempt(ctx context.Context, req Request) (Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout())
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, req.URL, body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	resp, err := f.httpClient().Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	// The server has answered; resending would repeat a non-idempotent call.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, backoff.Permanent(fmt.Errorf("read response body: %w", err))
	}

	return Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (f Fetcher) httpClient() *http.Client {
	if f.HTTPClient != nil {
		return f.HTTPClient
	}
	return http.DefaultClient
}

func (f Fetcher) timeout() time.Duration {
	if f.Timeout <= 0 {
		return DefaultTimeout
	}
	return f.Timeout
}

// Budget is the longest Do can take before giving up.
func (f Fetcher) Budget() time.Duration {
	retries := f.Retries
	if retries < 0 {
		retries = 0
	}
	return time.Duration(retries+1) * f.timeout()
}
