// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdiddy/shoreline/pkg/types"
)

// RedisStore keeps records as JSON strings under prefix+PMID. Size is
// bounded by TTL rather than entry count; Prune is a no-op.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// DialRedis connects to cfg.RedisURL and verifies the connection.
func DialRedis(ctx context.Context, cfg types.CacheConfig) (*RedisStore, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis cache backend requires redis_url")
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStore(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(pmid string) string {
	return s.prefix + pmid
}

func (s *RedisStore) Get(ctx context.Context, pmid string) (types.Record, bool, error) {
	data, err := s.client.Get(ctx, s.key(pmid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.Record{}, false, nil
	}
	if err != nil {
		return types.Record{}, false, s.wrap("reading record", err)
	}
	var r types.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return types.Record{}, false, fmt.Errorf("decoding record %s: %w", pmid, err)
	}
	return r, true, nil
}

func (s *RedisStore) GetMany(ctx context.Context, pmids []string) (map[string]types.Record, error) {
	out := make(map[string]types.Record, len(pmids))
	if len(pmids) == 0 {
		return out, nil
	}
	keys := make([]string, len(pmids))
	for i, id := range pmids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, s.wrap("reading records", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var r types.Record
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, fmt.Errorf("decoding record %s: %w", pmids[i], err)
		}
		out[pmids[i]] = r
	}
	return out, nil
}

func (s *RedisStore) Put(ctx context.Context, records ...types.Record) error {
	if len(records) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", r.PMID, err)
		}
		pipe.Set(ctx, s.key(r.PMID), data, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return s.wrap("writing records", err)
	}
	return nil
}

func (s *RedisStore) keys(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 500).Result()
		if err != nil {
			return nil, s.wrap("scanning keys", err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	return keys, nil
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// All returns records sorted by PMID; redis keeps no insertion order.
func (s *RedisStore) All(ctx context.Context) ([]types.Record, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	pmids := make([]string, len(keys))
	for i, k := range keys {
		pmids[i] = strings.TrimPrefix(k, s.prefix)
	}
	sort.Strings(pmids)

	got, err := s.GetMany(ctx, pmids)
	if err != nil {
		return nil, err
	}
	out := make([]types.Record, 0, len(got))
	for _, id := range pmids {
		if r, ok := got[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *RedisStore) Prune(context.Context) (int, error) {
	return 0, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) wrap(op string, err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}
