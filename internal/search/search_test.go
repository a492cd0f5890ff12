package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/shoreline/internal/eutils"
	"github.com/pdiddy/shoreline/internal/observability"
	"github.com/pdiddy/shoreline/pkg/types"
)

// --- fakes ---

type fakeSearcher struct {
	results map[string][]string
	fail    map[string]bool
	limits  []int
	terms   []string
}

func (f *fakeSearcher) Search(_ context.Context, term string, limit int) (*eutils.SearchResult, error) {
	f.terms = append(f.terms, term)
	f.limits = append(f.limits, limit)
	if f.fail[term] {
		return nil, errors.New("esearch unavailable")
	}
	ids := f.results[term]
	return &eutils.SearchResult{Count: len(ids), IDs: ids}, nil
}

type fakeIngestor struct {
	missing map[string]bool
	calls   [][]string
}

func (f *fakeIngestor) IngestPMIDs(_ context.Context, pmids []string) (types.IngestResult, error) {
	f.calls = append(f.calls, append([]string(nil), pmids...))
	res := types.IngestResult{}
	for _, p := range pmids {
		if f.missing[p] {
			res.FetchFailures = append(res.FetchFailures, p)
			continue
		}
		res.Records = append(res.Records, types.Record{PMID: p, Title: "Paper " + p})
	}
	res.Fetched = len(res.Records)
	return res, nil
}

func strategies(pairs ...string) []types.Strategy {
	var out []types.Strategy
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, types.Strategy{Query: pairs[i], Label: pairs[i+1]})
	}
	return out
}

func candidatePMIDs(cs []types.ScoredCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.PMID
	}
	return out
}

// --- scoring ---

func TestPositionScore(t *testing.T) {
	cfg := types.DefaultRankConfig()
	tests := []struct {
		p    int
		want int
	}{
		{0, 5}, {1, 4}, {2, 3}, {3, 2}, {4, 1}, {5, 1}, {9, 1}, {100, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PositionScore(tt.p, cfg), "position %d", tt.p)
	}
}

func TestPositionScore_Configurable(t *testing.T) {
	cfg := types.RankConfig{PositionCeiling: 11, PositionFloor: 2, PositionCap: 10}
	assert.Equal(t, 10, PositionScore(0, cfg))
	assert.Equal(t, 2, PositionScore(20, cfg))
}

func TestTally_ThreeStrategyOverlap(t *testing.T) {
	tally := NewTally(types.DefaultRankConfig())
	tally.Add(Hits("S1", []string{"A", "B", "C"}))
	tally.Add(Hits("S2", []string{"B", "D"}))
	tally.Add(Hits("S3", []string{"B"}))

	byID := map[string]types.ScoredCandidate{}
	for _, c := range tally.Candidates() {
		byID[c.PMID] = c
	}

	b := byID["B"]
	assert.Equal(t, 3, b.Overlap)
	assert.Equal(t, 4+5+5, b.PositionScore)
	assert.Equal(t, 23, b.Score)
	assert.Equal(t, []string{"S1", "S2", "S3"}, b.Strategies)

	// A single-strategy candidate at position 0 scores 3 + 5.
	assert.Equal(t, 8, byID["A"].Score)
	assert.Greater(t, b.Score, byID["A"].Score)

	ranked := Rank(tally.Candidates(), 0)
	assert.Equal(t, "B", ranked[0].PMID)
}

func TestTally_FreshAndOrder(t *testing.T) {
	tally := NewTally(types.DefaultRankConfig())
	assert.Equal(t, []string{"1", "2", "3"}, tally.Add(Hits("a", []string{"1", "2", "3"})))
	assert.Equal(t, []string{"4"}, tally.Add(Hits("b", []string{"2", "4"})))
	assert.Nil(t, tally.Add(Hits("c", []string{"1"})))
	assert.Equal(t, 4, tally.Len())

	cs := tally.Candidates()
	assert.Equal(t, []string{"1", "2", "3", "4"}, candidatePMIDs(cs))
	for i, c := range cs {
		assert.Equal(t, i, c.Order)
	}
}

func TestHits(t *testing.T) {
	got := Hits("x", []string{"1", "2", "1", "3"})
	assert.Equal(t, []types.SearchHit{
		{PMID: "1", Position: 0, Strategy: "x"},
		{PMID: "2", Position: 1, Strategy: "x"},
		{PMID: "3", Position: 3, Strategy: "x"},
	}, got)
}

func TestTally_RepeatWithinListCountsOnce(t *testing.T) {
	tally := NewTally(types.DefaultRankConfig())
	tally.Add(Hits("a", []string{"1", "1"}))
	c := tally.Candidates()[0]
	assert.Equal(t, 1, c.Overlap)
	assert.Equal(t, 5, c.PositionScore)
}

func TestRank_StableTies(t *testing.T) {
	cs := []types.ScoredCandidate{
		{PMID: "x", Score: 8, Order: 0},
		{PMID: "y", Score: 9, Order: 1},
		{PMID: "z", Score: 8, Order: 2},
		{PMID: "w", Score: 8, Order: 3},
	}
	ranked := Rank(cs, 0)
	assert.Equal(t, []string{"y", "x", "z", "w"}, candidatePMIDs(ranked))
	assert.Equal(t, "x", cs[0].PMID, "input must not be reordered")
}

func TestRank_CapKeepsTopInOrder(t *testing.T) {
	cs := []types.ScoredCandidate{
		{PMID: "a", Score: 4, Order: 0},
		{PMID: "b", Score: 10, Order: 1},
		{PMID: "c", Score: 7, Order: 2},
		{PMID: "d", Score: 7, Order: 3},
		{PMID: "e", Score: 1, Order: 4},
	}
	tests := []struct {
		limit int
		want  []string
	}{
		{1, []string{"b"}},
		{3, []string{"b", "c", "d"}},
		{5, []string{"b", "c", "d", "a", "e"}},
		{50, []string{"b", "c", "d", "a", "e"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, candidatePMIDs(Rank(cs, tt.limit)), "limit %d", tt.limit)
	}
}

// --- Orchestrator ---

func TestRun_TwoStrategies(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		"q1": {"1", "2", "3"},
		"q2": {"2", "4"},
	}}
	ing := &fakeIngestor{}
	cfg := types.DefaultRankConfig()
	cfg.PerStrategyLimit = 3

	out, err := New(s, ing, cfg).Run(context.Background(), strategies("q1", "broad", "q2", "narrow"))
	require.NoError(t, err)

	require.NotEmpty(t, out.Candidates)
	assert.Equal(t, "2", out.Candidates[0].PMID)
	assert.Equal(t, 2, out.Candidates[0].Overlap)
	assert.Equal(t, []string{"broad", "narrow"}, out.Candidates[0].Strategies)
	// Scores: 2 -> 2*3+4+5=15, 1 -> 8, 4 -> 7, 3 -> 6.
	assert.Equal(t, []string{"2", "1", "4", "3"}, candidatePMIDs(out.Candidates))
	assert.Equal(t, []int{3, 3}, s.limits)
	assert.Equal(t, 4, out.Discovered)
	assert.False(t, out.Empty)
	assert.NotEmpty(t, out.SessionID)

	// New PMIDs are ingested per strategy; repeats are not.
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4"}}, ing.calls)

	for _, c := range out.Candidates {
		require.NotNil(t, c.Record)
		assert.Equal(t, c.PMID, c.Record.PMID)
	}
	assert.Len(t, out.Records(), 4)
}

func TestRun_ZeroOverlapWeight(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		"q1": {"1", "2", "3"},
		"q2": {"2", "4"},
	}}
	cfg := types.DefaultRankConfig()
	cfg.OverlapWeight = 0

	out, err := New(s, &fakeIngestor{}, cfg).Run(context.Background(), strategies("q1", "broad", "q2", "narrow"))
	require.NoError(t, err)

	// Position scores only: 2 -> 4+5, 1 -> 5, 4 -> 4, 3 -> 3.
	assert.Equal(t, []string{"2", "1", "4", "3"}, candidatePMIDs(out.Candidates))
	assert.Equal(t, 9, out.Candidates[0].Score)
	assert.Equal(t, 5, out.Candidates[1].Score)
}

func TestRun_TruncatesOverlongResultLists(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{"q": {"1", "2", "3", "4"}}}
	cfg := types.DefaultRankConfig()
	cfg.PerStrategyLimit = 2

	out, err := New(s, &fakeIngestor{}, cfg).Run(context.Background(), strategies("q", "only"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, candidatePMIDs(out.Candidates))
}

func TestRun_Cap(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{"q": {"1", "2", "3", "4", "5"}}}
	cfg := types.DefaultRankConfig()
	cfg.Cap = 2

	out, err := New(s, &fakeIngestor{}, cfg).Run(context.Background(), strategies("q", "only"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, candidatePMIDs(out.Candidates))
	assert.Equal(t, 5, out.Discovered)
}

func TestRun_FailedStrategyIsSkipped(t *testing.T) {
	s := &fakeSearcher{
		results: map[string][]string{"good": {"7"}},
		fail:    map[string]bool{"bad": true},
	}
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	out, err := New(s, &fakeIngestor{}, types.DefaultRankConfig(), WithMetrics(m)).
		Run(context.Background(), strategies("bad", "first", "good", "second"))
	require.NoError(t, err)

	require.Len(t, out.FailedStrategies, 1)
	assert.Equal(t, "first", out.FailedStrategies[0].Strategy.Label)
	assert.Contains(t, out.FailedStrategies[0].Error, "unavailable")
	assert.Equal(t, []string{"7"}, candidatePMIDs(out.Candidates))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategiesFailed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StrategiesRun))
}

func TestRun_AllStrategiesFail(t *testing.T) {
	s := &fakeSearcher{fail: map[string]bool{"a": true, "b": true}}

	out, err := New(s, &fakeIngestor{}, types.DefaultRankConfig()).
		Run(context.Background(), strategies("a", "A", "b", "B"))
	assert.ErrorIs(t, err, ErrNoCandidates)
	assert.True(t, out.Empty)
	assert.Len(t, out.FailedStrategies, 2)
	assert.Empty(t, out.Candidates)
}

func TestRun_NothingFound(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{}}
	out, err := New(s, &fakeIngestor{}, types.DefaultRankConfig()).
		Run(context.Background(), strategies("a", "A"))
	assert.ErrorIs(t, err, ErrNoCandidates)
	assert.True(t, out.Empty)
}

func TestRun_NoStrategies(t *testing.T) {
	out, err := New(&fakeSearcher{}, &fakeIngestor{}, types.DefaultRankConfig()).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoStrategies)
	assert.True(t, out.Empty)
}

func TestRun_UningestedCandidatesDropped(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{"q": {"1", "2", "3"}}}
	ing := &fakeIngestor{missing: map[string]bool{"2": true}}

	out, err := New(s, ing, types.DefaultRankConfig()).Run(context.Background(), strategies("q", "only"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, candidatePMIDs(out.Candidates))
	assert.Equal(t, []string{"2"}, out.Ingest.FetchFailures)
	assert.Equal(t, 3, out.Discovered)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &fakeSearcher{results: map[string][]string{"q": {"1"}}}

	_, err := New(s, &fakeIngestor{}, types.DefaultRankConfig()).Run(ctx, strategies("q", "only"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.terms)
}

func TestRun_Progress(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{"q": {"1"}}}
	var msgs []string
	_, err := New(s, &fakeIngestor{}, types.DefaultRankConfig(),
		WithProgress(func(p types.Progress) { msgs = append(msgs, p.Message) })).
		Run(context.Background(), strategies("q", "only"))
	require.NoError(t, err)

	require.Len(t, msgs, 3)
	assert.Equal(t, "Running strategy 1/1: only", msgs[0])
	assert.Equal(t, `Strategy "only" found 1 new paper(s)`, msgs[1])
}

// --- output ---

func sampleOutcome() Outcome {
	year := 2020
	return Outcome{
		SessionID:  "sess-1",
		Strategies: strategies("q1", "broad"),
		Candidates: []types.ScoredCandidate{{
			PMID:       "42",
			Overlap:    1,
			Score:      8,
			Strategies: []string{"broad"},
			Record:     &types.Record{PMID: "42", Title: "A Title", Authors: []string{"Doe J", "Roe K"}, Year: &year},
		}},
		FailedStrategies: []FailedStrategy{{Strategy: types.Strategy{Query: "q2", Label: "narrow"}, Error: "boom"}},
		Discovered:       3,
		Ingest:           types.IngestResult{FetchFailures: []string{"9"}},
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleOutcome(), &buf)
	out := buf.String()

	assert.Contains(t, out, `warning: strategy "narrow" failed: boom`)
	assert.Contains(t, out, "A Title")
	assert.Contains(t, out, "Doe J et al.")
	assert.Contains(t, out, "2020")
	assert.Contains(t, out, "1 of 3 candidates (1 could not be fetched)")
}

func TestFormatTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Outcome{}, &buf)
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(sampleOutcome(), &buf))

	var decoded struct {
		SessionID  string `json:"session_id"`
		Candidates []struct {
			PMID   string `json:"pmid"`
			Score  int    `json:"score"`
			Record struct {
				Title string `json:"title"`
			} `json:"record"`
		} `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "sess-1", decoded.SessionID)
	require.Len(t, decoded.Candidates, 1)
	assert.Equal(t, 8, decoded.Candidates[0].Score)
	assert.Equal(t, "A Title", decoded.Candidates[0].Record.Title)
	assert.False(t, strings.Contains(buf.String(), `"Order"`))
}

func TestSession_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	out := sampleOutcome()
	cfg := types.DefaultRankConfig()

	require.NoError(t, WriteSession(path, NewSession("does exercise help?", cfg, out)))

	s, err := ReadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", s.ID)
	assert.Equal(t, "does exercise help?", s.Question)
	assert.Equal(t, 12, s.Config.Cap)
	assert.Equal(t, 1, s.Summary.Ranked)

	back := s.Outcome()
	require.Len(t, back.Candidates, 1)
	assert.Equal(t, "42", back.Candidates[0].PMID)
	require.NotNil(t, back.Candidates[0].Record)
	assert.Equal(t, 2020, *back.Candidates[0].Record.Year)
	assert.Equal(t, []string{"9"}, back.Ingest.FetchFailures)
	assert.Equal(t, "narrow", back.FailedStrategies[0].Strategy.Label)
}

func TestReadSession_Missing(t *testing.T) {
	_, err := ReadSession(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
