// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProgressPhase names the pipeline step a progress update belongs to.
type ProgressPhase string

const (
	PhaseResolve ProgressPhase = "resolve"
	PhaseCache   ProgressPhase = "cache"
	PhaseFetch   ProgressPhase = "fetch"
	PhaseSearch  ProgressPhase = "search"
	PhaseRank    ProgressPhase = "rank"
	PhaseDone    ProgressPhase = "done"
)

// Progress is emitted as ingestion and search advance. Current and Total
// count batches, strategies or records depending on the phase.
type Progress struct {
	Phase    ProgressPhase `json:"phase"`
	Message  string        `json:"message"`
	Strategy string        `json:"strategy,omitempty"`
	Current  int           `json:"current,omitempty"`
	Total    int           `json:"total,omitempty"`
}

// ProgressFunc receives progress updates. It is called synchronously from
// the pipeline goroutine.
type ProgressFunc func(Progress)
