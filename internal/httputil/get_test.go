// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shoreline-test", r.Header.Get("User-Agent"))
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	body, err := Get(context.Background(), ts.Client(), ts.URL, "shoreline-test")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestGet_RateLimitedIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer ts.Close()

	_, err := Get(context.Background(), ts.Client(), ts.URL, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "slow down", se.Body)
}

func TestGet_ServerErrorIsNotRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := Get(context.Background(), ts.Client(), ts.URL, "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestGet_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Get(ctx, ts.Client(), ts.URL, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedact(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://x/esearch.fcgi?db=pubmed", "https://x/esearch.fcgi?db=pubmed"},
		{"https://x/e?api_key=secret", "https://x/e?api_key=REDACTED"},
		{"https://x/e?api_key=secret&db=pubmed", "https://x/e?api_key=REDACTED&db=pubmed"},
	}
	for _, tt := range tests {
		if got := redact(tt.in); got != tt.want {
			t.Errorf("redact(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
