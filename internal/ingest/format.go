// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/shoreline/internal/textutil"
	"github.com/pdiddy/shoreline/pkg/types"
)

// FormatTable writes the ingested records followed by each failure
// category under its own heading.
func FormatTable(res types.IngestResult, w io.Writer) {
	if len(res.Records) > 0 {
		fmt.Fprintf(w, "%-10s  %-60s  %-20s  %-4s  %s\n", "PMID", "Title", "Authors", "Year", "Journal")
		fmt.Fprintln(w, strings.Repeat("-", 110))
		for _, r := range res.Records {
			fmt.Fprintf(w, "%-10s  %-60s  %-20s  %-4s  %s\n",
				r.PMID, textutil.Truncate(r.Title, 60), textutil.Authors(r.Authors), r.YearString(), textutil.Truncate(r.Journal, 30))
		}
		fmt.Fprintln(w)
	}

	writeList(w, "Duplicates", res.Duplicates)
	writeList(w, "Unrecognized lines", res.ParseErrors)
	writeList(w, "Unresolved DOIs", res.UnresolvedExternals)
	writeList(w, "Not returned by PubMed", res.FetchFailures)

	fmt.Fprintf(w, "%d paper(s) ingested (%d from cache, %d fetched)\n", len(res.Records), res.CacheHits, res.Fetched)
}

// FormatJSON writes res as indented JSON.
func FormatJSON(res types.IngestResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// FormatYAML writes res as YAML.
func FormatYAML(res types.IngestResult, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(res)
}

func writeList(w io.Writer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d):\n", heading, len(items))
	for _, it := range items {
		fmt.Fprintf(w, "  %s\n", it)
	}
	fmt.Fprintln(w)
}
