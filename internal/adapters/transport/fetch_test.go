package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

var errNetworkDown = errors.New("network down")

func TestFetcherMakesRetriesPlusOneAttemptsOnPermanentFailure(t *testing.T) {
	t.Parallel()

	for _, retries := range []int{0, 1, 2, 5} {
		retries := retries
		t.Run(fmt.Sprintf("retries=%d", retries), func(t *testing.T) {
			t.Parallel()

			var attempts atomic.Int32
			fetcher := Fetcher{
				HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
					attempts.Add(1)
					return nil, errNetworkDown
				})},
				Timeout: time.Second,
				Retries: retries,
				Logger:  zerolog.Nop(),
			}

			_, err := fetcher.Do(context.Background(), Request{Method: http.MethodPost, URL: "http://backend.test/api"})
			require.Error(t, err)
			assert.ErrorIs(t, err, errNetworkDown)
			assert.Equal(t, int32(retries+1), attempts.Load())
		})
	}
}

func TestFetcherStopsAtFirstSuccessfulAttempt(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		retries   int
		succeedOn int32
	}{
		{retries: 0, succeedOn: 1},
		{retries: 1, succeedOn: 2},
		{retries: 3, succeedOn: 2},
		{retries: 3, succeedOn: 4},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("retries=%d/k=%d", tc.retries, tc.succeedOn), func(t *testing.T) {
			t.Parallel()

			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"ok":true}`))
			}))
			t.Cleanup(server.Close)

			base := server.Client().Transport
			fetcher := Fetcher{
				HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					if attempts.Add(1) < tc.succeedOn {
						return nil, errNetworkDown
					}
					return base.RoundTrip(r)
				})},
				Timeout: time.Second,
				Retries: tc.retries,
				Logger:  zerolog.Nop(),
			}

			resp, err := fetcher.Do(context.Background(), Request{Method: http.MethodPost, URL: server.URL})
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
			assert.Equal(t, tc.succeedOn, attempts.Load())
		})
	}
}

func TestFetcherRetriesAfterAttemptTimeout(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		_, _ = w.Write([]byte(`{"session_id":"abc"}`))
	}))
	t.Cleanup(server.Close)

	fetcher := Fetcher{
		HTTPClient: server.Client(),
		Timeout:    50 * time.Millisecond,
		Retries:    1,
		Logger:     zerolog.Nop(),
	}

	resp, err := fetcher.Do(context.Background(), Request{Method: http.MethodPost, URL: server.URL})
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"abc"}`, string(resp.Body))
	assert.Equal(t, int32(2), attempts.Load())
}

func TestFetcherReturnsTimeoutOnFinalAttempt(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(server.Close)

	fetcher := Fetcher{
		HTTPClient: server.Client(),
		Timeout:    20 * time.Millisecond,
		Retries:    1,
		Logger:     zerolog.Nop(),
	}

	_, err := fetcher.Do(context.Background(), Request{Method: http.MethodPost, URL: server.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "after 2 attempt(s)")
}

func TestFetcherDoesNotResendAfterHeadersArrive(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
			return
		case <-time.After(300 * time.Millisecond):
		}
		_, _ = w.Write([]byte(`{"session_id":"late"}`))
	}))
	t.Cleanup(server.Close)

	fetcher := Fetcher{
		HTTPClient: server.Client(),
		Timeout:    100 * time.Millisecond,
		Retries:    2,
		Logger:     zerolog.Nop(),
	}

	_, err := fetcher.Do(context.Background(), Request{Method: http.MethodPost, URL: server.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read response body")
	assert.Contains(t, err.Error(), "after 1 attempt(s)")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetcherDoesNotRetryNonSuccessStatus(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	t.Cleanup(server.Close)

	fetcher := Fetcher{HTTPClient: server.Client(), Timeout: time.Second, Retries: 3, Logger: zerolog.Nop()}

	resp, err := fetcher.Do(context.Background(), Request{Method: http.MethodPost, URL: server.URL})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "boom", string(resp.Body))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetcherForwardsMethodHeadersAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		assert.Equal(t, `{"a":1}`, string(buf[:n]))
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	fetcher := Fetcher{HTTPClient: server.Client(), Logger: zerolog.Nop()}
	resp, err := fetcher.Do(context.Background(), Request{
		Method: http.MethodPost,
		URL:    server.URL,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   []byte(`{"a":1}`),
	})
	require.NoError(t, err)
	assert.True(t, resp.OK())
}

func TestFetcherDoesNotRetryInvalidRequest(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	fetcher := Fetcher{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			attempts.Add(1)
			return nil, errNetworkDown
		})},
		Retries: 3,
		Logger:  zerolog.Nop(),
	}

	_, err := fetcher.Do(context.Background(), Request{Method: "BAD METHOD", URL: "http://backend.test"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, int32(0), attempts.Load())
}

func TestFetcherStopsWhenCallerContextIsCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var attempts atomic.Int32
	fetcher := Fetcher{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			attempts.Add(1)
			cancel()
			return nil, errNetworkDown
		})},
		Retries: 5,
		Logger:  zerolog.Nop(),
	}

	_, err := fetcher.Do(ctx, Request{Method: http.MethodPost, URL: "http://backend.test"})
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetcherBudget(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultTimeout, Fetcher{}.Budget())
	assert.Equal(t, 3*time.Second, Fetcher{Timeout: time.Second, Retries: 2}.Budget())
}

func TestStatusErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unexpected status 502", (&StatusError{StatusCode: 502}).Error())
	assert.Equal(t, "unexpected status 400: bad body", (&StatusError{StatusCode: 400, Body: "bad body"}).Error())
}
