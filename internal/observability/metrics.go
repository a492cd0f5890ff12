// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shoreline"

// Metrics holds the pipeline counters. All Record* methods are safe on a
// nil *Metrics so components can run without instrumentation.
type Metrics struct {
	// Requests counts upstream calls by endpoint (esearch, efetch, llm).
	Requests *prometheus.CounterVec

	// RequestFailures counts failed upstream calls by endpoint.
	RequestFailures *prometheus.CounterVec

	// RequestDuration observes upstream call latency by endpoint.
	RequestDuration *prometheus.HistogramVec

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// RecordsFetched counts records parsed from efetch responses.
	RecordsFetched prometheus.Counter

	// IngestOutcomes counts identifiers by ingest outcome: duplicate,
	// parse_error, unresolved, fetch_failure.
	IngestOutcomes *prometheus.CounterVec

	StrategiesRun    prometheus.Counter
	StrategiesFailed prometheus.Counter

	// CandidatesRanked observes how many candidates each search ranked.
	CandidatesRanked prometheus.Histogram
}

// NewMetrics registers the pipeline metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream requests issued, by endpoint.",
		}, []string{"endpoint"}),
		RequestFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_failures_total",
			Help:      "Upstream requests that failed, by endpoint.",
		}, []string{"endpoint"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream request latency, by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Records served from the record cache.",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Records not found in the record cache.",
		}),
		RecordsFetched: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "records_fetched_total",
			Help:      "Records fetched from E-utilities.",
		}),
		IngestOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "identifier_outcomes_total",
			Help:      "Identifiers that did not produce a new record, by outcome.",
		}, []string{"outcome"}),
		StrategiesRun: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "strategies_total",
			Help:      "Search strategies executed.",
		}),
		StrategiesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "strategies_failed_total",
			Help:      "Search strategies whose search call failed.",
		}),
		CandidatesRanked: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "candidates_ranked",
			Help:      "Distinct candidates ranked per search.",
			Buckets:   []float64{0, 5, 10, 20, 40, 80},
		}),
	}
}

// RecordRequest records one upstream call.
func (m *Metrics) RecordRequest(endpoint string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
	if err != nil {
		m.RequestFailures.WithLabelValues(endpoint).Inc()
	}
}

// RecordCache records cache lookups.
func (m *Metrics) RecordCache(hits, misses int) {
	if m == nil {
		return
	}
	m.CacheHits.Add(float64(hits))
	m.CacheMisses.Add(float64(misses))
}

// RecordFetched records records parsed from the network.
func (m *Metrics) RecordFetched(n int) {
	if m == nil {
		return
	}
	m.RecordsFetched.Add(float64(n))
}

// Ingest outcome labels.
const (
	OutcomeDuplicate    = "duplicate"
	OutcomeParseError   = "parse_error"
	OutcomeUnresolved   = "unresolved"
	OutcomeFetchFailure = "fetch_failure"
)

// RecordOutcome adds n identifiers to the given outcome.
func (m *Metrics) RecordOutcome(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.IngestOutcomes.WithLabelValues(outcome).Add(float64(n))
}

// RecordStrategy records one executed strategy.
func (m *Metrics) RecordStrategy(failed bool) {
	if m == nil {
		return
	}
	m.StrategiesRun.Inc()
	if failed {
		m.StrategiesFailed.Inc()
	}
}

// RecordRanked records the size of one ranked candidate set.
func (m *Metrics) RecordRanked(n int) {
	if m == nil {
		return
	}
	m.CandidatesRanked.Observe(float64(n))
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format read by the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
