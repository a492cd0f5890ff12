// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/shoreline/pkg/types"
)

// Completer produces one completion for a system prompt and user message.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Token limits per call.
const (
	strategyMaxTokens  = 1024
	synthesisMaxTokens = 4096
)

// Collaborator generates search strategies and synthesizes briefs.
type Collaborator struct {
	completer Completer
}

// NewCollaborator wraps c.
func NewCollaborator(c Completer) *Collaborator {
	return &Collaborator{completer: c}
}

// GenerateStrategies asks the model for PubMed queries answering question.
// context is optional decision context. Entries without a query are
// dropped; an answer with none left is ErrEmptyResponse.
func (c *Collaborator) GenerateStrategies(ctx context.Context, question, decisionContext string) ([]types.Strategy, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is empty")
	}
	prompt, err := renderTemplate(strategyPromptTmpl, strategyPromptData{
		Question: question,
		Context:  strings.TrimSpace(decisionContext),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := c.completer.Complete(ctx, strategySystem, prompt, strategyMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("generating strategies: %w", err)
	}
	return ParseStrategies(raw)
}

// Synthesize asks the model for a cited brief over records.
func (c *Collaborator) Synthesize(ctx context.Context, question, decisionContext string, records []types.Record) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("no records to synthesize")
	}
	prompt, err := renderTemplate(synthesisPromptTmpl, synthesisPromptData{
		Question: strings.TrimSpace(question),
		Context:  strings.TrimSpace(decisionContext),
		Records:  records,
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := c.completer.Complete(ctx, synthesisSystem, prompt, synthesisMaxTokens)
	if err != nil {
		return "", fmt.Errorf("synthesizing brief: %w", err)
	}
	return strings.TrimSpace(text), nil
}

var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
	arrayBlock = regexp.MustCompile(`(?s)\[.*\]`)
)

// ParseStrategies decodes a model answer into strategies. Code fences are
// stripped; when the text is not a JSON array the first [...] block in it
// is tried instead.
func ParseStrategies(raw string) ([]types.Strategy, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}
	if strings.HasPrefix(cleaned, "```") {
		cleaned = fenceClose.ReplaceAllString(fenceOpen.ReplaceAllString(cleaned, ""), "")
	}

	var parsed []types.Strategy
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		block := arrayBlock.FindString(cleaned)
		if block == "" {
			return nil, fmt.Errorf("parsing strategies: %w", err)
		}
		if err := json.Unmarshal([]byte(block), &parsed); err != nil {
			return nil, fmt.Errorf("parsing strategies: %w", err)
		}
	}

	strategies := make([]types.Strategy, 0, len(parsed))
	for _, s := range parsed {
		s.Query = strings.TrimSpace(s.Query)
		s.Label = strings.TrimSpace(s.Label)
		if s.Query == "" {
			continue
		}
		if s.Label == "" {
			s.Label = s.Query
		}
		strategies = append(strategies, s)
	}
	if len(strategies) == 0 {
		return nil, ErrEmptyResponse
	}
	return strategies, nil
}
