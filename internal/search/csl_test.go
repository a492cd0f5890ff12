// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/shoreline/pkg/types"
)

func TestToCSLItem(t *testing.T) {
	year := 2017
	r := types.Record{
		PMID:     "28202713",
		DOI:      "10.1136/bmj.j534",
		Title:    "Effect of exercise",
		Authors:  []string{"Smith JA", "Consortium"},
		Journal:  "BMJ",
		Year:     &year,
		Abstract: "Background: text",
	}

	item := toCSLItem(r)

	if item.ID != "pmid28202713" {
		t.Errorf("ID = %q, want %q", item.ID, "pmid28202713")
	}
	if item.Type != "article-journal" {
		t.Errorf("Type = %q, want article-journal", item.Type)
	}
	if item.ContainerTitle != "BMJ" {
		t.Errorf("ContainerTitle = %q, want BMJ", item.ContainerTitle)
	}
	if item.DOI != "10.1136/bmj.j534" || item.PMID != "28202713" {
		t.Errorf("DOI/PMID = %q/%q", item.DOI, item.PMID)
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2017 {
		t.Errorf("Issued = %+v, want 2017", item.Issued)
	}
	if len(item.Author) != 2 {
		t.Fatalf("len(Author) = %d, want 2", len(item.Author))
	}
	if item.Author[0].Family != "Smith" || item.Author[0].Given != "JA" {
		t.Errorf("Author[0] = %+v", item.Author[0])
	}
	if item.Author[1].Literal != "Consortium" {
		t.Errorf("Author[1] = %+v, want literal", item.Author[1])
	}
}

func TestToCSLItemNoYear(t *testing.T) {
	item := toCSLItem(types.Record{PMID: "1", Title: "x"})
	if item.Issued != nil {
		t.Errorf("Issued = %+v, want nil", item.Issued)
	}
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		name string
		want CSLName
	}{
		{"Smith JA", CSLName{Family: "Smith", Given: "JA"}},
		{"Smith John A", CSLName{Family: "Smith", Given: "John A"}},
		{"Cochrane", CSLName{Literal: "Cochrane"}},
		{"Writing Group for the Trial Investigators", CSLName{Literal: "Writing Group for the Trial Investigators"}},
		{"  ", CSLName{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseAuthorName(tt.name); got != tt.want {
				t.Errorf("parseAuthorName(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFormatCSL(t *testing.T) {
	var buf bytes.Buffer
	records := []types.Record{{PMID: "1", Title: "One"}, {PMID: "2", Title: "Two"}}
	if err := FormatCSL(records, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "id: pmid1") {
		t.Errorf("output missing first id:\n%s", buf.String())
	}

	var items []CSLItem
	if err := yaml.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(items) != 2 || items[1].Title != "Two" {
		t.Errorf("items = %+v", items)
	}
}
