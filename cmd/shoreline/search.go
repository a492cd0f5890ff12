// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/shoreline/internal/search"
	"github.com/pdiddy/shoreline/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run several PubMed search strategies and rank the fused results",
	Long: `Search runs each strategy against PubMed in order, ingests newly found
papers and ranks every candidate by cross-strategy overlap and position.

Strategies come from --query flags ("query" or "label=query") or are
generated from --question by the configured language model. A saved
session can be re-rendered with --load without querying PubMed.`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringArray("query", nil, `search strategy as "query" or "label=query" (repeatable)`)
	f.String("question", "", "research question to generate strategies from")
	f.String("context", "", "decision context passed to strategy generation")
	f.Int("per-strategy-limit", 0, "PMIDs requested per strategy (default 10)")
	f.Int("cap", 0, "maximum ranked candidates returned (default 12)")
	f.StringP("format", "f", "table", "output format: table, json or csl")
	f.String("save", "", "save the session to this YAML file")
	f.String("load", "", "render a saved session instead of searching")

	if err := viper.BindPFlag("rank.per_strategy_limit", f.Lookup("per-strategy-limit")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("rank.cap", f.Lookup("cap")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "table", "json", "csl"); err != nil {
		return err
	}

	if load, _ := cmd.Flags().GetString("load"); load != "" {
		s, err := search.ReadSession(load)
		if err != nil {
			return err
		}
		return writeOutcome(cmd, s.Outcome(), format)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	question, _ := cmd.Flags().GetString("question")
	decisionContext, _ := cmd.Flags().GetString("context")
	queries, _ := cmd.Flags().GetStringArray("query")

	strategies := parseQueryFlags(queries)
	if len(strategies) == 0 {
		if question == "" {
			return fmt.Errorf("provide --query or --question")
		}
		strategies, err = a.collaborator().GenerateStrategies(cmd.Context(), question, decisionContext)
		if err != nil {
			return err
		}
		for _, s := range strategies {
			a.log.Info().Str("strategy", s.Label).Str("query", s.Query).Msg("generated strategy")
		}
	}

	out, err := a.orchestrator(a.eutilsClient()).Run(cmd.Context(), strategies)
	if err != nil && !errors.Is(err, search.ErrNoCandidates) {
		return err
	}

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if werr := search.WriteSession(save, search.NewSession(question, a.cfg.Rank, out)); werr != nil {
			return werr
		}
		a.log.Info().Str("path", save).Str("session_id", out.SessionID).Msg("session saved")
	}

	if err := writeOutcome(cmd, out, format); err != nil {
		return err
	}
	if out.Empty {
		a.log.Info().Str("session_id", out.SessionID).Int("failed_strategies", len(out.FailedStrategies)).Msg("no candidates found")
	}
	return nil
}

func writeOutcome(cmd *cobra.Command, out search.Outcome, format string) error {
	w := cmd.OutOrStdout()
	switch format {
	case "json":
		return search.FormatJSON(out, w)
	case "csl":
		return search.FormatCSL(out.Records(), w)
	default:
		search.FormatTable(out, w)
		return nil
	}
}

// parseQueryFlags turns "label=query" or bare "query" values into
// strategies. Bare queries are labeled "Strategy N".
func parseQueryFlags(values []string) []types.Strategy {
	var strategies []types.Strategy
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		label := fmt.Sprintf("Strategy %d", i+1)
		query := v
		if l, q, ok := strings.Cut(v, "="); ok && !strings.ContainsAny(l, "[]()\"") && strings.TrimSpace(q) != "" {
			label, query = strings.TrimSpace(l), strings.TrimSpace(q)
		}
		strategies = append(strategies, types.Strategy{Query: query, Label: label})
	}
	return strategies
}
