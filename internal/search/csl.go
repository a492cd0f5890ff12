// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/shoreline/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form,
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	PMID           string    `yaml:"PMID,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a CSL date using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes records as a CSL-YAML list to w.
func FormatCSL(records []types.Record, w io.Writer) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(r types.Record) CSLItem {
	item := CSLItem{
		ID:             "pmid" + r.PMID,
		Type:           "article-journal",
		Title:          r.Title,
		ContainerTitle: r.Journal,
		Abstract:       r.Abstract,
		DOI:            r.DOI,
		PMID:           r.PMID,
	}
	for _, a := range r.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}
	if r.Year != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{*r.Year}}}
	}
	return item
}

// parseAuthorName splits a PubMed display name ("Smith JA") into CSL
// family and given parts. The family name comes first; single-token names
// and collective names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.Index(name, " ")
	if idx < 0 || strings.Count(name, " ") > 2 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Family: name[:idx],
		Given:  name[idx+1:],
	}
}
