// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/shoreline/pkg/types"
)

// untitled is the title given to records PubMed returns without one.
const untitled = "Untitled"

var (
	xmlTagRe = regexp.MustCompile(`<[^>]+>`)
	yearRe   = regexp.MustCompile(`\d{4}`)
)

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
	Data     pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID    string  `xml:"PMID"`
	Article article `xml:"Article"`
}

type article struct {
	Journal      journal        `xml:"Journal"`
	Title        innerXML       `xml:"ArticleTitle"`
	ELocationIDs []eLocationID  `xml:"ELocationID"`
	Abstract     []abstractText `xml:"Abstract>AbstractText"`
	Authors      []author       `xml:"AuthorList>Author"`
}

type innerXML struct {
	Raw string `xml:",innerxml"`
}

type journal struct {
	Title           string  `xml:"Title"`
	ISOAbbreviation string  `xml:"ISOAbbreviation"`
	PubDate         pubDate `xml:"JournalIssue>PubDate"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	MedlineDate string `xml:"MedlineDate"`
}

type eLocationID struct {
	Type  string `xml:"EIdType,attr"`
	Value string `xml:",chardata"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	Raw   string `xml:",innerxml"`
}

type author struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	CollectiveName string `xml:"CollectiveName"`
}

type pubmedData struct {
	ArticleIDs []articleID `xml:"ArticleIdList>ArticleId"`
}

type articleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}

// Fetch retrieves the records for pmids in a single efetch call. Callers
// chunk requests to BatchSize; Fetch does not. PMIDs the service omits from
// its response are simply absent from the returned slice.
func (c *Client) Fetch(ctx context.Context, pmids []string) ([]types.Record, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("id", strings.Join(pmids, ","))
	params.Set("retmode", "xml")

	body, err := c.get(ctx, endpointFetch, params)
	if err != nil {
		return nil, err
	}
	return ParseArticles(body)
}

// ParseArticles decodes a PubmedArticleSet document into records, in
// document order. Missing sub-fields degrade to empty values.
func ParseArticles(data []byte) ([]types.Record, error) {
	var set pubmedArticleSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	records := make([]types.Record, 0, len(set.Articles))
	for _, pa := range set.Articles {
		r, ok := convertArticle(pa)
		if !ok {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func convertArticle(pa pubmedArticle) (types.Record, bool) {
	pmid := strings.TrimSpace(pa.Citation.PMID)
	if pmid == "" {
		return types.Record{}, false
	}
	a := pa.Citation.Article

	title := cleanInnerXML(a.Title.Raw)
	if title == "" {
		title = untitled
	}

	r := types.Record{
		PMID:     pmid,
		DOI:      extractDOI(pa),
		Title:    title,
		Authors:  authorNames(a.Authors),
		Journal:  journalName(a.Journal),
		Year:     extractYear(a.Journal.PubDate),
		Abstract: joinAbstract(a.Abstract),
	}
	return r, true
}

// cleanInnerXML strips inline markup (e.g. <i>, <sup>) and unescapes entities.
func cleanInnerXML(s string) string {
	stripped := xmlTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(stripped))
}

func authorNames(authors []author) []string {
	names := make([]string, 0, len(authors))
	for _, au := range authors {
		last := strings.TrimSpace(au.LastName)
		fore := strings.TrimSpace(au.ForeName)
		switch {
		case last != "" && fore != "":
			names = append(names, last+" "+fore)
		case last != "":
			names = append(names, last)
		case strings.TrimSpace(au.CollectiveName) != "":
			names = append(names, strings.TrimSpace(au.CollectiveName))
		}
	}
	return names
}

func journalName(j journal) string {
	if t := strings.TrimSpace(j.Title); t != "" {
		return t
	}
	return strings.TrimSpace(j.ISOAbbreviation)
}

func extractYear(d pubDate) *int {
	s := strings.TrimSpace(d.Year)
	if s == "" {
		s = yearRe.FindString(d.MedlineDate)
	}
	if s == "" {
		return nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &y
}

func joinAbstract(parts []abstractText) string {
	var sections []string
	for _, p := range parts {
		text := cleanInnerXML(p.Raw)
		if text == "" {
			continue
		}
		if label := strings.TrimSpace(p.Label); label != "" {
			text = label + ": " + text
		}
		sections = append(sections, text)
	}
	return strings.Join(sections, "\n\n")
}

// extractDOI prefers the ArticleIdList entry and falls back to ELocationID.
func extractDOI(pa pubmedArticle) string {
	for _, id := range pa.Data.ArticleIDs {
		if strings.EqualFold(id.Type, "doi") {
			if v := strings.TrimSpace(id.Value); v != "" {
				return v
			}
		}
	}
	for _, loc := range pa.Citation.Article.ELocationIDs {
		if strings.EqualFold(loc.Type, "doi") {
			if v := strings.TrimSpace(loc.Value); v != "" {
				return v
			}
		}
	}
	return ""
}
