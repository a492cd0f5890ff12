// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit provides the call gate shared by every component that
// talks to E-utilities. Resolution, batch fetches and searches all pass
// through the same Limiter so the minimum interval holds across call kinds.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks until the next external call may start.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Gate is a fixed-interval Limiter: consecutive Wait calls return at least
// Interval apart. The first call returns immediately. Safe for concurrent
// use.
type Gate struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewGate returns a Gate that admits one call per interval. A non-positive
// interval admits every call immediately.
func NewGate(interval time.Duration) *Gate {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Gate{
		limiter:  rate.NewLimiter(limit, 1),
		interval: interval,
	}
}

// Wait blocks until the gate opens or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Interval returns the configured spacing.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Unlimited is a Limiter that never blocks. Tests and offline commands use
// it where no external service is contacted.
type Unlimited struct{}

// Wait returns ctx.Err() if the context is already done, nil otherwise.
func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}
