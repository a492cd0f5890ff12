// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists fetched records keyed by PMID. Backends are
// selected by configuration and injected into the ingestion orchestrator;
// every backend is opened explicitly and must be closed by the caller.
//
// Access is read-then-write without cross-process locking. A single
// ingestion session is the only writer the pipeline assumes.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/shoreline/pkg/types"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("cache closed")

// Store is a durable PMID → Record mapping.
type Store interface {
	// Get returns the cached record for pmid and whether it was present.
	Get(ctx context.Context, pmid string) (types.Record, bool, error)

	// GetMany returns the cached subset of pmids keyed by PMID.
	GetMany(ctx context.Context, pmids []string) (map[string]types.Record, error)

	// Put inserts or replaces records, then applies the size bound.
	Put(ctx context.Context, records ...types.Record) error

	// Len returns the number of cached records.
	Len(ctx context.Context) (int, error)

	// All returns every cached record, oldest first where the backend
	// tracks insertion order.
	All(ctx context.Context) ([]types.Record, error)

	// Prune applies the size bound and returns how many entries it evicted.
	Prune(ctx context.Context) (int, error)

	Close() error
}

// Open creates the backend named by cfg.Backend.
func Open(ctx context.Context, cfg types.CacheConfig) (Store, error) {
	cfg.ApplyDefaults()
	switch cfg.Backend {
	case types.CacheMemory:
		return NewMemoryStore(cfg.MaxEntries), nil
	case types.CacheSQLite:
		return NewSQLiteStore(cfg.Path, cfg.MaxEntries)
	case types.CacheRedis:
		return DialRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// cloneRecord deep-copies r so stored records cannot be changed through a
// caller's slices or pointers.
func cloneRecord(r types.Record) types.Record {
	out := r
	if r.Authors != nil {
		out.Authors = append([]string(nil), r.Authors...)
	}
	if r.WatchOuts != nil {
		out.WatchOuts = append([]string(nil), r.WatchOuts...)
	}
	if r.Year != nil {
		y := *r.Year
		out.Year = &y
	}
	return out
}

// excess returns how many entries exceed maxEntries. A non-positive bound
// never evicts.
func excess(n, maxEntries int) int {
	if maxEntries <= 0 || n <= maxEntries {
		return 0
	}
	return n - maxEntries
}
