// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"sort"

	"github.com/pdiddy/shoreline/pkg/types"
)

// PositionScore returns the score for a 0-based position within one
// strategy's result list: max(floor, ceiling - min(p+1, cap)).
func PositionScore(p int, cfg types.RankConfig) int {
	return max(cfg.PositionFloor, cfg.PositionCeiling-min(p+1, cfg.PositionCap))
}

// Tally accumulates hits across strategies. Candidates keep the order in
// which their PMIDs were first discovered.
type Tally struct {
	cfg        types.RankConfig
	candidates map[string]*types.ScoredCandidate
	order      []string
}

// NewTally creates an empty Tally scored with cfg.
func NewTally(cfg types.RankConfig) *Tally {
	return &Tally{cfg: cfg, candidates: make(map[string]*types.ScoredCandidate)}
}

// Hits converts one strategy's ordered result list into hits. A PMID
// repeated within the list is kept once, at its first position.
func Hits(label string, pmids []string) []types.SearchHit {
	seen := make(map[string]bool, len(pmids))
	hits := make([]types.SearchHit, 0, len(pmids))
	for p, id := range pmids {
		if seen[id] {
			continue
		}
		seen[id] = true
		hits = append(hits, types.SearchHit{PMID: id, Position: p, Strategy: label})
	}
	return hits
}

// Add folds one strategy's hits into the tally and returns the PMIDs seen
// for the first time in this session.
func (t *Tally) Add(hits []types.SearchHit) (fresh []string) {
	for _, h := range hits {
		c, ok := t.candidates[h.PMID]
		if !ok {
			c = &types.ScoredCandidate{PMID: h.PMID, Order: len(t.order)}
			t.candidates[h.PMID] = c
			t.order = append(t.order, h.PMID)
			fresh = append(fresh, h.PMID)
		}
		c.Overlap++
		c.PositionScore += PositionScore(h.Position, t.cfg)
		c.Strategies = append(c.Strategies, h.Strategy)
		c.Score = c.Overlap*t.cfg.OverlapWeight + c.PositionScore
	}
	return fresh
}

// Len returns the number of distinct PMIDs seen.
func (t *Tally) Len() int { return len(t.order) }

// Candidates returns copies of every candidate in discovery order.
func (t *Tally) Candidates() []types.ScoredCandidate {
	out := make([]types.ScoredCandidate, len(t.order))
	for i, id := range t.order {
		c := *t.candidates[id]
		c.Strategies = append([]string(nil), c.Strategies...)
		out[i] = c
	}
	return out
}

// Rank sorts candidates by descending Score, breaking ties by discovery
// Order, and truncates the result to limit (no truncation when limit <= 0).
// The input slice is not modified.
func Rank(candidates []types.ScoredCandidate, limit int) []types.ScoredCandidate {
	ranked := append([]types.ScoredCandidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Order < ranked[j].Order
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
