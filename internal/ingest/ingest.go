// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns free-text identifier lists into bibliographic
// records. It parses PubMed URLs, PMIDs and DOIs, resolves DOIs to PMIDs
// one at a time, serves what it can from the record cache and fetches the
// rest from E-utilities in fixed-size batches.
//
// Every failure is per item: unparseable lines, unresolved DOIs and
// missing PMIDs are reported in separate lists and the remaining work
// continues.
package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/shoreline/internal/cache"
	"github.com/pdiddy/shoreline/internal/observability"
	"github.com/pdiddy/shoreline/pkg/types"
)

// noIdentifiers is reported when the input holds nothing to ingest.
const noIdentifiers = "No valid identifiers found."

// Resolver maps a DOI to its PMID.
type Resolver interface {
	ResolveDOI(ctx context.Context, doi string) (string, error)
}

// Ingester runs ingestion against an injected resolver, fetcher and cache.
// An Ingester is not safe for concurrent use; the pipeline runs one
// ingestion at a time so the cache-first contract holds.
type Ingester struct {
	resolver  Resolver
	fetcher   Fetcher
	store     cache.Store
	batchSize int
	log       zerolog.Logger
	metrics   *observability.Metrics
	progress  types.ProgressFunc
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithBatchSize sets the maximum PMIDs per fetch call (default 10).
func WithBatchSize(n int) Option {
	return func(in *Ingester) { in.batchSize = n }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(in *Ingester) { in.log = log }
}

// WithMetrics records outcomes in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(in *Ingester) { in.metrics = m }
}

// WithProgress sets the progress callback.
func WithProgress(fn types.ProgressFunc) Option {
	return func(in *Ingester) { in.progress = fn }
}

// New creates an Ingester.
func New(resolver Resolver, fetcher Fetcher, store cache.Store, opts ...Option) *Ingester {
	in := &Ingester{
		resolver:  resolver,
		fetcher:   fetcher,
		store:     store,
		batchSize: types.DefaultBatchSize,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest parses text line by line and ingests every identifier found. The
// returned error is non-nil only when ctx ends early; the partial result is
// still returned.
func (in *Ingester) Ingest(ctx context.Context, text string) (types.IngestResult, error) {
	ids, parseErrors := ParseText(text)
	if len(ids) == 0 {
		res := newResult()
		res.ParseErrors = parseErrors
		if len(parseErrors) == 0 {
			res.ParseErrors = []string{noIdentifiers}
		}
		in.metrics.RecordOutcome(observability.OutcomeParseError, len(parseErrors))
		return res, nil
	}

	res, err := in.IngestIdentifiers(ctx, ids)
	res.ParseErrors = append(res.ParseErrors, parseErrors...)
	in.metrics.RecordOutcome(observability.OutcomeParseError, len(parseErrors))
	return res, err
}

// IngestIdentifiers ingests already-parsed identifiers. Records come back
// in the order their PMIDs were first established; later occurrences of a
// PMID, including DOIs resolving to one already seen, are duplicates.
func (in *Ingester) IngestIdentifiers(ctx context.Context, ids []types.Identifier) (types.IngestResult, error) {
	res := newResult()

	seen := make(map[string]bool, len(ids))
	var queue []string
	admit := func(pmid string) {
		if seen[pmid] {
			res.Duplicates = append(res.Duplicates, pmid)
			return
		}
		seen[pmid] = true
		queue = append(queue, pmid)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		switch id.Kind {
		case types.KindPMID:
			admit(id.Value)
		case types.KindDOI:
			in.report(types.Progress{
				Phase:   types.PhaseResolve,
				Message: fmt.Sprintf("Resolving DOI: %s...", id.Value),
			})
			pmid, err := in.resolver.ResolveDOI(ctx, id.Value)
			if err != nil {
				in.log.Warn().Err(err).Str("doi", id.Value).Msg("doi resolution failed")
				res.UnresolvedExternals = append(res.UnresolvedExternals, id.Value)
				continue
			}
			admit(pmid)
		}
	}

	records, err := in.collect(ctx, queue, &res)
	res.Records = records

	in.metrics.RecordOutcome(observability.OutcomeDuplicate, len(res.Duplicates))
	in.metrics.RecordOutcome(observability.OutcomeUnresolved, len(res.UnresolvedExternals))
	in.metrics.RecordOutcome(observability.OutcomeFetchFailure, len(res.FetchFailures))

	in.log.Info().
		Int("records", len(res.Records)).
		Int("cache_hits", res.CacheHits).
		Int("fetched", res.Fetched).
		Int("duplicates", len(res.Duplicates)).
		Int("unresolved", len(res.UnresolvedExternals)).
		Int("fetch_failures", len(res.FetchFailures)).
		Msg("ingest complete")
	in.report(types.Progress{
		Phase:   types.PhaseDone,
		Message: fmt.Sprintf("Done. %d paper(s) ingested.", len(res.Records)),
		Current: len(res.Records),
		Total:   len(queue),
	})
	return res, err
}

// IngestPMIDs is IngestIdentifiers for a list of canonical IDs.
func (in *Ingester) IngestPMIDs(ctx context.Context, pmids []string) (types.IngestResult, error) {
	ids := make([]types.Identifier, len(pmids))
	for i, p := range pmids {
		ids[i] = types.Identifier{Kind: types.KindPMID, Value: p}
	}
	return in.IngestIdentifiers(ctx, ids)
}

// collect serves queue from the cache, fetches the misses, writes fresh
// records back and returns records in queue order.
func (in *Ingester) collect(ctx context.Context, queue []string, res *types.IngestResult) ([]types.Record, error) {
	if len(queue) == 0 {
		return []types.Record{}, ctx.Err()
	}

	cached, err := in.store.GetMany(ctx, queue)
	if err != nil {
		in.log.Warn().Err(err).Msg("cache read failed, fetching all")
		cached = map[string]types.Record{}
	}

	var misses []string
	for _, id := range queue {
		if _, ok := cached[id]; !ok {
			misses = append(misses, id)
		}
	}
	res.CacheHits = len(queue) - len(misses)
	in.metrics.RecordCache(res.CacheHits, len(misses))
	if res.CacheHits > 0 {
		in.report(types.Progress{
			Phase:   types.PhaseCache,
			Message: fmt.Sprintf("%d paper(s) loaded from cache.", res.CacheHits),
			Current: res.CacheHits,
			Total:   len(queue),
		})
	}

	batch := FetchBatches(ctx, in.fetcher, misses, in.batchSize, in.log, in.progress)
	res.FetchFailures = append(res.FetchFailures, batch.Failures...)
	res.Fetched = len(batch.Records)
	in.metrics.RecordFetched(res.Fetched)

	if len(batch.Records) > 0 {
		fresh := make([]types.Record, 0, len(batch.Records))
		for _, id := range misses {
			if r, ok := batch.Records[id]; ok {
				fresh = append(fresh, r)
			}
		}
		if err := in.store.Put(ctx, fresh...); err != nil {
			in.log.Warn().Err(err).Int("records", len(fresh)).Msg("cache write failed")
		}
	}

	records := make([]types.Record, 0, len(queue))
	for _, id := range queue {
		if r, ok := batch.Records[id]; ok {
			records = append(records, r)
		} else if r, ok := cached[id]; ok {
			records = append(records, r)
		}
	}
	return records, ctx.Err()
}

func (in *Ingester) report(p types.Progress) {
	if in.progress != nil {
		in.progress(p)
	}
}

func newResult() types.IngestResult {
	return types.IngestResult{
		Records:             []types.Record{},
		Duplicates:          []string{},
		ParseErrors:         []string{},
		UnresolvedExternals: []string{},
		FetchFailures:       []string{},
	}
}
