// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"regexp"
	"strings"

	"github.com/pdiddy/shoreline/pkg/types"
)

var (
	// pubmedURLPattern matches "pubmed.ncbi.nlm.nih.gov/28202713/".
	pubmedURLPattern = regexp.MustCompile(`pubmed\.ncbi\.nlm\.nih\.gov/(\d+)`)

	// pmidPattern matches a bare PMID of 1-10 digits.
	pmidPattern = regexp.MustCompile(`^\d{1,10}$`)

	// doiURLPattern matches "https://doi.org/10.1136/bmj.i6583".
	doiURLPattern = regexp.MustCompile(`doi\.org/(10\.\d{4,}/\S+)`)

	// doiPattern matches a DOI anywhere in the line.
	doiPattern = regexp.MustCompile(`(10\.\d{4,}/\S+)`)
)

// ParseIdentifier classifies one line of input. Recognized shapes, in
// priority order: a PubMed URL, a bare PMID, a doi.org URL, a bare DOI.
// It returns false for blank or unrecognized lines.
func ParseIdentifier(line string) (types.Identifier, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return types.Identifier{}, false
	}

	if m := pubmedURLPattern.FindStringSubmatch(line); m != nil {
		return types.Identifier{Kind: types.KindPMID, Value: m[1]}, true
	}
	if pmidPattern.MatchString(line) {
		return types.Identifier{Kind: types.KindPMID, Value: line}, true
	}
	if m := doiURLPattern.FindStringSubmatch(line); m != nil {
		return types.Identifier{Kind: types.KindDOI, Value: m[1]}, true
	}
	if m := doiPattern.FindStringSubmatch(line); m != nil {
		return types.Identifier{Kind: types.KindDOI, Value: m[1]}, true
	}
	return types.Identifier{}, false
}

// ParseText splits text into lines and parses each. Blank lines are
// skipped; every other unrecognized line is returned trimmed in parseErrors.
func ParseText(text string) (ids []types.Identifier, parseErrors []string) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if id, ok := ParseIdentifier(trimmed); ok {
			ids = append(ids, id)
			continue
		}
		parseErrors = append(parseErrors, trimmed)
	}
	return ids, parseErrors
}
