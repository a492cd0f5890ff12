package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/shoreline/pkg/types"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   types.Identifier
		wantOK bool
	}{
		{"pubmed url", "https://pubmed.ncbi.nlm.nih.gov/28202713/", types.Identifier{Kind: types.KindPMID, Value: "28202713"}, true},
		{"pubmed url without scheme", "pubmed.ncbi.nlm.nih.gov/123", types.Identifier{Kind: types.KindPMID, Value: "123"}, true},
		{"bare pmid", "28202713", types.Identifier{Kind: types.KindPMID, Value: "28202713"}, true},
		{"pmid with whitespace", "  42 \t", types.Identifier{Kind: types.KindPMID, Value: "42"}, true},
		{"ten digits", "1234567890", types.Identifier{Kind: types.KindPMID, Value: "1234567890"}, true},
		{"doi url", "https://doi.org/10.1136/bmj.i6583", types.Identifier{Kind: types.KindDOI, Value: "10.1136/bmj.i6583"}, true},
		{"bare doi", "10.1056/NEJMoa1600000", types.Identifier{Kind: types.KindDOI, Value: "10.1056/NEJMoa1600000"}, true},
		{"doi inside text", "see 10.1001/jama.2020.1234 for details", types.Identifier{Kind: types.KindDOI, Value: "10.1001/jama.2020.1234"}, true},
		{"eleven digits falls through", "12345678901", types.Identifier{}, false},
		{"short doi prefix", "10.123/abc", types.Identifier{}, false},
		{"words", "hello world", types.Identifier{}, false},
		{"blank", "   ", types.Identifier{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseIdentifier(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIdentifier_PubMedURLBeatsDOI(t *testing.T) {
	got, ok := ParseIdentifier("https://pubmed.ncbi.nlm.nih.gov/555/?doi=10.1000/x")
	assert.True(t, ok)
	assert.Equal(t, types.Identifier{Kind: types.KindPMID, Value: "555"}, got)
}

func TestParseText(t *testing.T) {
	text := "28202713\n\n  not an id  \r\nhttps://doi.org/10.1136/bmj.i6583\n\t\nfoo bar\n"
	ids, parseErrors := ParseText(text)

	assert.Equal(t, []types.Identifier{
		{Kind: types.KindPMID, Value: "28202713"},
		{Kind: types.KindDOI, Value: "10.1136/bmj.i6583"},
	}, ids)
	assert.Equal(t, []string{"not an id", "foo bar"}, parseErrors)
}

func TestParseText_Empty(t *testing.T) {
	ids, parseErrors := ParseText("\n  \n")
	assert.Empty(t, ids)
	assert.Empty(t, parseErrors)
}
