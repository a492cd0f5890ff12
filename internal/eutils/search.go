// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SearchResult is the ordered PMID list returned by esearch.
type SearchResult struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

type eSearchResult struct {
	XMLName xml.Name `xml:"eSearchResult"`
	Count   int      `xml:"Count"`
	IDs     []string `xml:"IdList>Id"`
	Error   string   `xml:"ERROR"`
}

// Search runs term against PubMed and returns at most limit PMIDs in the
// service's relevance order.
func (c *Client) Search(ctx context.Context, term string, limit int) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("empty search term")
	}
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(limit))
	params.Set("retmode", "xml")
	if c.cfg.Sort != "" {
		params.Set("sort", c.cfg.Sort)
	}

	body, err := c.get(ctx, endpointSearch, params)
	if err != nil {
		return nil, err
	}
	return parseSearch(body)
}

// ResolveDOI maps a DOI to its PMID with a [doi]-qualified search. It
// returns ErrNotFound when PubMed has no record for the DOI.
func (c *Client) ResolveDOI(ctx context.Context, doi string) (string, error) {
	res, err := c.Search(ctx, doi+"[doi]", 1)
	if err != nil {
		return "", err
	}
	if len(res.IDs) == 0 {
		return "", fmt.Errorf("doi %s: %w", doi, ErrNotFound)
	}
	return res.IDs[0], nil
}

func parseSearch(body []byte) (*SearchResult, error) {
	var raw eSearchResult
	if err := xml.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	if raw.Error != "" {
		return nil, fmt.Errorf("esearch: %s", strings.TrimSpace(raw.Error))
	}

	ids := make([]string, 0, len(raw.IDs))
	for _, id := range raw.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return &SearchResult{Count: raw.Count, IDs: ids}, nil
}
