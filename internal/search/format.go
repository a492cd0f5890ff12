// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/shoreline/internal/textutil"
)

// FormatTable writes ranked candidates as a human-readable table to w.
func FormatTable(out Outcome, w io.Writer) {
	for _, f := range out.FailedStrategies {
		fmt.Fprintf(w, "warning: strategy %q failed: %s\n", f.Strategy.Label, f.Error)
	}
	if len(out.Candidates) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-10s  %-56s  %-20s  %-4s  %-5s  %s\n",
		"Rank", "PMID", "Title", "Authors", "Year", "Score", "Strategies")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, c := range out.Candidates {
		var title, authors, year string
		if c.Record != nil {
			title = textutil.Truncate(c.Record.Title, 56)
			authors = textutil.Authors(c.Record.Authors)
			year = c.Record.YearString()
		}
		fmt.Fprintf(w, "%-4d  %-10s  %-56s  %-20s  %-4s  %-5d  %s\n",
			i+1, c.PMID, title, authors, year, c.Score, strings.Join(c.Strategies, ", "))
	}

	fmt.Fprintf(w, "\n%d of %d candidates", len(out.Candidates), out.Discovered)
	if n := len(out.Ingest.FetchFailures); n > 0 {
		fmt.Fprintf(w, " (%d could not be fetched)", n)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the outcome as indented JSON to w.
func FormatJSON(out Outcome, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
