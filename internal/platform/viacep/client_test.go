package viacep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sePayload = `{"cep": "01001-000", "logradouro": "Praça da Sé", "uf": "SP"}`

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL + "/", UserAgent: "brasil-utils-test", MaxRetries: retries}, srv.Client(), nil)
	var sleeps []time.Duration
	c.SetSleepForTest(func(d time.Duration) { sleeps = append(sleeps, d) })
	return c, &sleeps
}

func TestFetchAddress_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/01001000/json/", r.URL.Path)
		assert.Equal(t, "brasil-utils-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(sePayload))
	}, 0)

	body, err := c.FetchAddress(context.Background(), "01001000")

	require.NoError(t, err)
	assert.Equal(t, sePayload, string(body))
}

func TestFetchAddress_EmptyBodyIsReturnedAsIs(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, 0)

	body, err := c.FetchAddress(context.Background(), "99999999")

	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestFetchAddress_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sePayload))
	}, 3)

	body, err := c.FetchAddress(context.Background(), "01001000")

	require.NoError(t, err)
	assert.Equal(t, sePayload, string(body))
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, *sleeps, 2)

	// Backoff doubles; jitter adds at most one more delay.
	assert.GreaterOrEqual(t, (*sleeps)[0], 500*time.Millisecond)
	assert.Less(t, (*sleeps)[0], time.Second)
	assert.GreaterOrEqual(t, (*sleeps)[1], time.Second)
	assert.Less(t, (*sleeps)[1], 2*time.Second)
}

func TestFetchAddress_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, 2)

	_, err := c.FetchAddress(context.Background(), "01001000")

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchAddress_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "Bad Request", http.StatusBadRequest)
	}, 3)

	_, err := c.FetchAddress(context.Background(), "0100100")

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, string(httpErr.Body), "Bad Request")
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, *sleeps)
}

func TestFetchAddress_CancelledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sePayload))
	}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchAddress(ctx, "01001000")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPError_Retryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusGatewayTimeout, true},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, (&HTTPError{StatusCode: tt.status}).Retryable())
		})
	}
}
