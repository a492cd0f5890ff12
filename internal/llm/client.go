// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm talks to an OpenAI-compatible chat completions endpoint and
// wraps it as the generative collaborator: turning a question into PubMed
// search strategies and synthesizing a brief from ranked records.
//
// Calls are never retried. A failed or empty completion is returned to
// the caller, which decides whether to fall back.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/shoreline/internal/httputil"
	"github.com/pdiddy/shoreline/internal/observability"
	"github.com/pdiddy/shoreline/pkg/types"
)

// ErrEmptyResponse is returned when the model produced no usable content.
var ErrEmptyResponse = errors.New("empty model response")

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls the chat completions endpoint.
type Client struct {
	cfg        types.LLMConfig
	httpClient *http.Client
	log        zerolog.Logger
	metrics    *observability.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics records request metrics in m under the "llm" endpoint label.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client. Zero fields of cfg take their defaults.
func NewClient(cfg types.LLMConfig, opts ...Option) *Client {
	cfg.ApplyDefaults()
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends a system prompt and one user message and returns the
// first choice's text. maxTokens <= 0 uses the configured limit.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	var messages []Message
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: user})
	return c.CompleteMessages(ctx, messages, maxTokens)
}

// CompleteMessages sends a chat completion request with multiple messages.
func (c *Client) CompleteMessages(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	body, err := json.Marshal(chatRequest{
		Model:     c.cfg.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	respBody, err := httputil.Do(c.httpClient, req)
	c.metrics.RecordRequest("llm", time.Since(start), err)
	if err != nil {
		c.log.Warn().Err(err).Str("model", c.cfg.Model).Msg("completion failed")
		return "", fmt.Errorf("completion: %w", err)
	}
	c.log.Debug().Str("model", c.cfg.Model).Dur("elapsed", time.Since(start)).Msg("completion")

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
