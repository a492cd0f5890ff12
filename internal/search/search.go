// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs several query strategies against PubMed, fuses
// their result lists into scored candidates and ingests the candidates
// through the cache-first ingestion pipeline.
//
// Strategies run one after another. A strategy whose search call fails is
// skipped; the session fails only when nothing at all was found.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/shoreline/internal/eutils"
	"github.com/pdiddy/shoreline/internal/observability"
	"github.com/pdiddy/shoreline/pkg/types"
)

var (
	// ErrNoStrategies is returned when Run is called without strategies.
	ErrNoStrategies = errors.New("no search strategies given")

	// ErrNoCandidates is returned when every strategy failed or no record
	// could be ingested. The Outcome accompanying it has Empty set.
	ErrNoCandidates = errors.New("no candidates found")
)

// Searcher runs one PubMed query and returns PMIDs in relevance order.
type Searcher interface {
	Search(ctx context.Context, term string, limit int) (*eutils.SearchResult, error)
}

// Ingestor turns canonical IDs into records.
type Ingestor interface {
	IngestPMIDs(ctx context.Context, pmids []string) (types.IngestResult, error)
}

// FailedStrategy is a strategy whose search call failed.
type FailedStrategy struct {
	Strategy types.Strategy `json:"strategy" yaml:"strategy"`
	Error    string         `json:"error" yaml:"error"`
}

// Outcome is the result of one search session.
type Outcome struct {
	SessionID string `json:"session_id" yaml:"session_id"`

	Strategies []types.Strategy `json:"strategies" yaml:"strategies"`

	// Candidates are ranked and capped, each carrying its Record.
	Candidates []types.ScoredCandidate `json:"candidates" yaml:"candidates"`

	FailedStrategies []FailedStrategy `json:"failed_strategies,omitempty" yaml:"failed_strategies,omitempty"`

	// Discovered counts distinct PMIDs returned across all strategies.
	Discovered int `json:"discovered" yaml:"discovered"`

	// Ingest aggregates the per-strategy ingestions. Records is left empty;
	// the ranked records travel on Candidates.
	Ingest types.IngestResult `json:"ingest" yaml:"ingest"`

	// Empty is set when the session produced no candidates.
	Empty bool `json:"empty" yaml:"empty"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Orchestrator runs search sessions.
type Orchestrator struct {
	searcher Searcher
	ingestor Ingestor
	cfg      types.RankConfig
	log      zerolog.Logger
	metrics  *observability.Metrics
	progress types.ProgressFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithMetrics records strategy and ranking metrics in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithProgress sets the progress callback.
func WithProgress(fn types.ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// New creates an Orchestrator. Zero fields of cfg take their defaults.
func New(searcher Searcher, ingestor Ingestor, cfg types.RankConfig, opts ...Option) *Orchestrator {
	cfg.ApplyDefaults()
	o := &Orchestrator{
		searcher: searcher,
		ingestor: ingestor,
		cfg:      cfg,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes strategies in order, ingests newly discovered PMIDs after
// each strategy and returns the ranked candidates. Candidates whose record
// could not be ingested are dropped from the ranking.
func (o *Orchestrator) Run(ctx context.Context, strategies []types.Strategy) (Outcome, error) {
	out := Outcome{
		SessionID:  uuid.NewString(),
		Strategies: strategies,
		StartedAt:  time.Now(),
		Ingest:     emptyIngest(),
	}
	if len(strategies) == 0 {
		out.Empty = true
		return out, ErrNoStrategies
	}
	log := observability.WithSession(o.log, out.SessionID)

	tally := NewTally(o.cfg)
	records := make(map[string]types.Record)

	for i, s := range strategies {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		o.report(types.Progress{
			Phase:    types.PhaseSearch,
			Message:  fmt.Sprintf("Running strategy %d/%d: %s", i+1, len(strategies), s.Label),
			Strategy: s.Label,
			Current:  i + 1,
			Total:    len(strategies),
		})

		res, err := o.searcher.Search(ctx, s.Query, o.cfg.PerStrategyLimit)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.Warn().Err(err).Str("strategy", s.Label).Str("query", s.Query).Msg("strategy failed")
			out.FailedStrategies = append(out.FailedStrategies, FailedStrategy{Strategy: s, Error: err.Error()})
			o.metrics.RecordStrategy(true)
			continue
		}
		o.metrics.RecordStrategy(false)

		ids := res.IDs
		if len(ids) > o.cfg.PerStrategyLimit {
			ids = ids[:o.cfg.PerStrategyLimit]
		}
		fresh := tally.Add(Hits(s.Label, ids))
		log.Debug().Str("strategy", s.Label).Int("hits", len(ids)).Int("new", len(fresh)).Msg("strategy complete")

		if len(fresh) > 0 {
			ing, err := o.ingestor.IngestPMIDs(ctx, fresh)
			for _, r := range ing.Records {
				records[r.PMID] = r
			}
			mergeIngest(&out.Ingest, ing)
			if err != nil {
				return out, fmt.Errorf("ingesting strategy %q: %w", s.Label, err)
			}
		}
		o.report(types.Progress{
			Phase:    types.PhaseSearch,
			Message:  fmt.Sprintf("Strategy %q found %d new paper(s)", s.Label, len(fresh)),
			Strategy: s.Label,
			Current:  i + 1,
			Total:    len(strategies),
		})
	}

	out.Discovered = tally.Len()
	var ingested []types.ScoredCandidate
	for _, c := range tally.Candidates() {
		r, ok := records[c.PMID]
		if !ok {
			continue
		}
		c.Record = &r
		ingested = append(ingested, c)
	}

	o.report(types.Progress{
		Phase:   types.PhaseRank,
		Message: fmt.Sprintf("Ranking %d candidate(s)...", len(ingested)),
		Total:   len(ingested),
	})
	out.Candidates = Rank(ingested, o.cfg.Cap)
	out.Elapsed = time.Since(out.StartedAt)
	o.metrics.RecordRanked(len(out.Candidates))

	log.Info().
		Int("strategies", len(strategies)).
		Int("failed", len(out.FailedStrategies)).
		Int("discovered", out.Discovered).
		Int("ranked", len(out.Candidates)).
		Dur("elapsed", out.Elapsed).
		Msg("search complete")

	if len(out.Candidates) == 0 {
		out.Empty = true
		return out, ErrNoCandidates
	}
	return out, nil
}

// Records returns the candidates' records in ranked order.
func (out Outcome) Records() []types.Record {
	records := make([]types.Record, 0, len(out.Candidates))
	for _, c := range out.Candidates {
		if c.Record != nil {
			records = append(records, *c.Record)
		}
	}
	return records
}

func (o *Orchestrator) report(p types.Progress) {
	if o.progress != nil {
		o.progress(p)
	}
}

func mergeIngest(dst *types.IngestResult, src types.IngestResult) {
	dst.Duplicates = append(dst.Duplicates, src.Duplicates...)
	dst.ParseErrors = append(dst.ParseErrors, src.ParseErrors...)
	dst.UnresolvedExternals = append(dst.UnresolvedExternals, src.UnresolvedExternals...)
	dst.FetchFailures = append(dst.FetchFailures, src.FetchFailures...)
	dst.CacheHits += src.CacheHits
	dst.Fetched += src.Fetched
}

func emptyIngest() types.IngestResult {
	return types.IngestResult{
		Records:             []types.Record{},
		Duplicates:          []string{},
		ParseErrors:         []string{},
		UnresolvedExternals: []string{},
		FetchFailures:       []string{},
	}
}
