// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/shoreline/pkg/types"
)

// Session is the on-disk form of a search session. A saved session can be
// reloaded and re-rendered without querying PubMed again.
type Session struct {
	ID         string                  `yaml:"id"`
	Question   string                  `yaml:"question,omitempty"`
	Strategies []types.Strategy        `yaml:"strategies"`
	Config     SessionConfig           `yaml:"config"`
	Candidates []types.ScoredCandidate `yaml:"candidates"`
	Summary    SessionSummary          `yaml:"summary"`
}

// SessionConfig stores the ranking settings that produced the candidates.
type SessionConfig struct {
	OverlapWeight    int `yaml:"overlap_weight"`
	PerStrategyLimit int `yaml:"per_strategy_limit"`
	Cap              int `yaml:"cap"`
}

// SessionSummary stores result statistics and a timestamp.
type SessionSummary struct {
	Discovered       int              `yaml:"discovered"`
	Ranked           int              `yaml:"ranked"`
	FailedStrategies []FailedStrategy `yaml:"failed_strategies,omitempty"`
	FetchFailures    []string         `yaml:"fetch_failures,omitempty"`
	Timestamp        time.Time        `yaml:"timestamp"`
}

// NewSession captures out as a Session.
func NewSession(question string, cfg types.RankConfig, out Outcome) Session {
	return Session{
		ID:         out.SessionID,
		Question:   question,
		Strategies: out.Strategies,
		Config: SessionConfig{
			OverlapWeight:    cfg.OverlapWeight,
			PerStrategyLimit: cfg.PerStrategyLimit,
			Cap:              cfg.Cap,
		},
		Candidates: out.Candidates,
		Summary: SessionSummary{
			Discovered:       out.Discovered,
			Ranked:           len(out.Candidates),
			FailedStrategies: out.FailedStrategies,
			FetchFailures:    out.Ingest.FetchFailures,
			Timestamp:        out.StartedAt,
		},
	}
}

// WriteSession saves a session to a YAML file.
func WriteSession(path string, s Session) error {
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSession loads a previously saved session from disk.
func ReadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}
	return &s, nil
}

// Outcome rebuilds the Outcome a session was saved from, for rendering.
// Discovery order is restored from the saved rank order.
func (s Session) Outcome() Outcome {
	candidates := append([]types.ScoredCandidate(nil), s.Candidates...)
	for i := range candidates {
		candidates[i].Order = i
	}
	ing := emptyIngest()
	ing.FetchFailures = append(ing.FetchFailures, s.Summary.FetchFailures...)
	return Outcome{
		SessionID:        s.ID,
		Strategies:       s.Strategies,
		Candidates:       candidates,
		FailedStrategies: s.Summary.FailedStrategies,
		Discovered:       s.Summary.Discovered,
		Ingest:           ing,
		Empty:            len(candidates) == 0,
		StartedAt:        s.Summary.Timestamp,
	}
}
