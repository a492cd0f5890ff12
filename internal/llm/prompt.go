// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/shoreline/pkg/types"
)

// strategySystem asks for PubMed queries as a bare JSON array.
const strategySystem = `You write PubMed search queries. Given a plain-language health or science question, produce 3-4 queries that approach it from different angles, ordered from broad to specific.

Guidelines:
- Use MeSH terms and boolean operators (AND, OR) where they help.
- Include synonyms and alternate phrasings.
- Favor queries that surface systematic reviews, meta-analyses and randomized trials when relevant.
- Keep each query short.

Respond with a JSON array only. Do not wrap it in code fences or add commentary. Each element has:
- "query": the PubMed search string
- "strategy": one sentence describing what the query targets

Example:
[{"query":"exercise depression older adults","strategy":"Broad search for exercise and depression in older adults"},{"query":"(exercise OR physical activity) AND (depression OR depressive disorder) AND aged AND randomized controlled trial","strategy":"Trials of exercise for depression in people over 65"}]`

// synthesisSystem asks for a cited plain-language brief.
const synthesisSystem = `You explain biomedical research to non-specialists who need to make a decision.

Rules:
1. Report what the papers found before stating what you infer from them, and keep the two apart.
2. Cite every claim as [PMID: NNNNN] using only the PMIDs provided. Mark claims without a source as [UNWITNESSED].
3. Call out papers that disagree and suggest why they might.
4. Use plain words. Explain any unavoidable technical term in parentheses.
5. Rate the overall evidence as strong, mixed or thin and give the reasons.
6. Name the questions the papers leave open.
7. Never invent findings.

Write markdown with these sections: a title, "What the papers say", "What we infer", "What is unknown" and "Confidence".`

var strategyPromptTmpl = template.Must(template.New("strategies").Parse(`Question: {{.Question}}
{{- if .Context}}
Decision context: {{.Context}}
{{- end}}

Generate PubMed search queries for this question.`))

var synthesisPromptTmpl = template.Must(template.New("synthesis").Funcs(template.FuncMap{
	"authors": displayAuthors,
	"inc":     func(i int) int { return i + 1 },
}).Parse(`Question: {{.Question}}
{{- if .Context}}
Context: {{.Context}}
{{- end}}

Papers provided ({{len .Records}}):
{{range $i, $r := .Records}}
[{{inc $i}}] PMID: {{$r.PMID}}
Title: {{$r.Title}}
{{- with authors $r.Authors}}
Authors: {{.}}
{{- end}}
{{- if $r.Journal}}
Journal: {{$r.Journal}}{{with $r.YearString}} ({{.}}){{end}}
{{- end}}
Abstract: {{if $r.Abstract}}{{$r.Abstract}}{{else}}Not available.{{end}}
{{end}}
Write the brief from these papers only. Every claim must cite PMID(s).`))

type strategyPromptData struct {
	Question string
	Context  string
}

type synthesisPromptData struct {
	Question string
	Context  string
	Records  []types.Record
}

func renderTemplate(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// displayAuthors lists up to five authors, then "et al.".
func displayAuthors(authors []string) string {
	if len(authors) > 5 {
		return strings.Join(authors[:5], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}
