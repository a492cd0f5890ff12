// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Strategy is one query variant produced by the generative collaborator,
// paired with a human-readable label.
type Strategy struct {
	Query string `json:"query" yaml:"query"`
	Label string `json:"strategy" yaml:"strategy"`
}

// SearchHit is a PMID at a 0-based rank position within one strategy's
// result list.
type SearchHit struct {
	PMID     string `json:"pmid" yaml:"pmid"`
	Position int    `json:"position" yaml:"position"`
	Strategy string `json:"strategy" yaml:"strategy"`
}

// ScoredCandidate aggregates the hits for one PMID across strategies. It
// references the Record it scores without modifying it.
type ScoredCandidate struct {
	PMID string `json:"pmid" yaml:"pmid"`

	// Overlap is the number of distinct strategies that returned the PMID.
	Overlap int `json:"overlap" yaml:"overlap"`

	// PositionScore is the sum of per-strategy position scores.
	PositionScore int `json:"position_score" yaml:"position_score"`

	// Score is the composite: Overlap * weight + PositionScore.
	Score int `json:"score" yaml:"score"`

	// Strategies lists contributing strategy labels in discovery order.
	Strategies []string `json:"strategies" yaml:"strategies"`

	// Order is the 0-based discovery index used to break score ties.
	Order int `json:"-" yaml:"-"`

	// Record is nil until the candidate has been ingested.
	Record *Record `json:"record,omitempty" yaml:"record,omitempty"`
}
