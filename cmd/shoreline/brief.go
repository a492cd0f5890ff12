// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/shoreline/internal/search"
	"github.com/pdiddy/shoreline/pkg/types"
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Write a cited evidence brief for a research question",
	Long: `Brief searches PubMed for the question (or reuses a saved session with
--load), then asks the language model for a plain-language brief citing the
ranked papers by PMID.`,
	RunE: runBrief,
}

func init() {
	f := briefCmd.Flags()
	f.String("question", "", "research question (required)")
	f.String("context", "", "decision context for the brief")
	f.StringArray("query", nil, `search strategy as "query" or "label=query" (repeatable)`)
	f.String("load", "", "use the candidates of a saved session")
	f.StringP("output", "o", "", "write the brief to this file instead of stdout")
	_ = briefCmd.MarkFlagRequired("question")

	rootCmd.AddCommand(briefCmd)
}

func runBrief(cmd *cobra.Command, args []string) error {
	question, _ := cmd.Flags().GetString("question")
	decisionContext, _ := cmd.Flags().GetString("context")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	collab := a.collaborator()

	var records []types.Record
	if load, _ := cmd.Flags().GetString("load"); load != "" {
		s, err := search.ReadSession(load)
		if err != nil {
			return err
		}
		records = s.Outcome().Records()
	} else {
		queries, _ := cmd.Flags().GetStringArray("query")
		strategies := parseQueryFlags(queries)
		if len(strategies) == 0 {
			strategies, err = collab.GenerateStrategies(cmd.Context(), question, decisionContext)
			if err != nil {
				return err
			}
		}
		out, err := a.orchestrator(a.eutilsClient()).Run(cmd.Context(), strategies)
		if err != nil {
			return err
		}
		records = out.Records()
	}

	if a.progress != nil {
		a.progress(types.Progress{Message: fmt.Sprintf("Synthesizing brief from %d paper(s)...", len(records))})
	}
	text, err := collab.Synthesize(cmd.Context(), question, decisionContext, records)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing brief: %w", err)
		}
		a.log.Info().Str("path", path).Msg("brief written")
		return nil
	}
	_, err = fmt.Fprintln(a.out, text)
	return err
}
