// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eutils is a client for the NCBI E-utilities endpoints used by the
// pipeline: esearch for queries and DOI resolution, efetch for records.
// Every call waits on the injected rate limiter first and is attempted
// exactly once.
package eutils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/shoreline/internal/httputil"
	"github.com/pdiddy/shoreline/internal/observability"
	"github.com/pdiddy/shoreline/internal/ratelimit"
	"github.com/pdiddy/shoreline/pkg/types"
)

// ErrNotFound is returned when a lookup matches no PubMed record.
var ErrNotFound = errors.New("not found")

// ErrRateLimited aliases the HTTP 429 sentinel so callers need not import
// httputil.
var ErrRateLimited = httputil.ErrRateLimited

const (
	endpointSearch = "esearch"
	endpointFetch  = "efetch"
)

// Client issues E-utilities requests.
type Client struct {
	cfg        types.EutilsConfig
	limiter    ratelimit.Limiter
	httpClient *http.Client
	log        zerolog.Logger
	metrics    *observability.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request events.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics records every request in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client. Zero fields in cfg take their defaults. A nil
// limiter is replaced by a Gate using cfg.MinInterval.
func New(cfg types.EutilsConfig, limiter ratelimit.Limiter, opts ...Option) *Client {
	cfg.ApplyDefaults()
	if limiter == nil {
		limiter = ratelimit.NewGate(cfg.MinInterval)
	}
	c := &Client{
		cfg:        cfg,
		limiter:    limiter,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BatchSize returns the configured maximum PMIDs per efetch call.
func (c *Client) BatchSize() int {
	return c.cfg.BatchSize
}

// get waits on the limiter, then performs one GET against endpoint.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	params.Set("db", "pubmed")
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	if c.cfg.Tool != "" {
		params.Set("tool", c.cfg.Tool)
	}
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}

	fullURL := fmt.Sprintf("%s/%s.fcgi?%s", c.cfg.BaseURL, endpoint, params.Encode())

	start := time.Now()
	body, err := httputil.Get(ctx, c.httpClient, fullURL, c.cfg.UserAgent)
	elapsed := time.Since(start)
	c.metrics.RecordRequest(endpoint, elapsed, err)

	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Str("endpoint", endpoint).Dur("elapsed", elapsed).Msg("eutils request")

	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return body, nil
}
