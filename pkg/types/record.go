// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the shoreline pipeline:
// identifiers parsed from user input, bibliographic records fetched from
// PubMed, search strategies, ranked candidates and configuration.
package types

import "strconv"

// IdentifierKind distinguishes canonical PubMed IDs from external IDs that
// must be resolved first.
type IdentifierKind int

const (
	KindUnknown IdentifierKind = iota
	KindPMID
	KindDOI
)

func (k IdentifierKind) String() string {
	switch k {
	case KindPMID:
		return "pmid"
	case KindDOI:
		return "doi"
	default:
		return "unknown"
	}
}

// Identifier is one typed identifier parsed from a line of input.
type Identifier struct {
	Kind  IdentifierKind `json:"kind" yaml:"kind"`
	Value string         `json:"value" yaml:"value"`
}

// IsCanonical reports whether the identifier is a PMID and can be fetched
// without resolution.
func (id Identifier) IsCanonical() bool {
	return id.Kind == KindPMID
}

// Record is a bibliographic entry fetched from PubMed. The core never
// mutates a Record after the fetcher creates it; the annotation fields are
// carried through for the review layer.
type Record struct {
	// PMID is the canonical identifier and the cache key.
	PMID string `json:"pmid" yaml:"pmid"`

	// DOI is the external identifier, when PubMed lists one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	Title string `json:"title" yaml:"title"`

	// Authors are display names in "LastName ForeName" order.
	Authors []string `json:"authors" yaml:"authors"`

	// Journal is the venue. Empty when PubMed gives neither a title nor an
	// ISO abbreviation.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Year is nil when no publication year could be extracted.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	// Abstract holds the abstract text. Labeled sections are rendered as
	// "Label: text" and joined by blank lines.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	Role        string   `json:"role,omitempty" yaml:"role,omitempty"`
	WitnessLine string   `json:"witness_line,omitempty" yaml:"witness_line,omitempty"`
	Disposition string   `json:"disposition,omitempty" yaml:"disposition,omitempty"`
	WatchOuts   []string `json:"watch_outs,omitempty" yaml:"watch_outs,omitempty"`
}

// YearString returns the year as text, or "" when unknown.
func (r Record) YearString() string {
	if r.Year == nil {
		return ""
	}
	return strconv.Itoa(*r.Year)
}

// IngestResult is the structured outcome of one ingestion. Each failure
// category is kept distinct so callers can render them separately.
type IngestResult struct {
	// Records are in first-seen canonical ID order.
	Records []Record `json:"records" yaml:"records"`

	// Duplicates lists a PMID once for every repeated occurrence.
	Duplicates []string `json:"duplicates" yaml:"duplicates"`

	// ParseErrors holds the trimmed text of every unparseable line.
	ParseErrors []string `json:"parse_errors" yaml:"parse_errors"`

	// UnresolvedExternals holds DOIs that could not be mapped to a PMID.
	UnresolvedExternals []string `json:"unresolved_externals" yaml:"unresolved_externals"`

	// FetchFailures holds PMIDs that were requested but not returned.
	FetchFailures []string `json:"fetch_failures" yaml:"fetch_failures"`

	// CacheHits counts records served from the cache without a fetch.
	CacheHits int `json:"cache_hits" yaml:"cache_hits"`

	// Fetched counts records retrieved from the network.
	Fetched int `json:"fetched" yaml:"fetched"`
}

// HasFailures reports whether any identifier failed to produce a record.
func (r IngestResult) HasFailures() bool {
	return len(r.ParseErrors) > 0 || len(r.UnresolvedExternals) > 0 || len(r.FetchFailures) > 0
}
