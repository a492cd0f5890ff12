// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 10 << 20

// ErrRateLimited matches a StatusError carrying HTTP 429.
var ErrRateLimited = errors.New("rate limited")

// StatusError reports a non-200 response. Body holds at most the first
// 512 bytes of the response for diagnostics.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Is lets errors.Is(err, ErrRateLimited) match 429 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// Do executes req once and returns the body of a 200 response. Any other
// status is returned as a *StatusError. Do never retries; a caller that
// wants retries layers them on top.
func Do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redact(ue.URL)
		}
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			URL:        redact(req.URL.String()),
			StatusCode: resp.StatusCode,
			Body:       snippet(body),
		}
	}
	return body, nil
}

// Get builds a GET request for rawURL with the given User-Agent and runs it
// through Do.
func Get(ctx context.Context, client *http.Client, rawURL, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return Do(client, req)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}

// redact drops the api_key query value so keys never reach logs.
func redact(rawURL string) string {
	i := strings.Index(rawURL, "api_key=")
	if i < 0 {
		return rawURL
	}
	j := strings.IndexByte(rawURL[i:], '&')
	if j < 0 {
		return rawURL[:i] + "api_key=REDACTED"
	}
	return rawURL[:i] + "api_key=REDACTED" + rawURL[i+j:]
}
