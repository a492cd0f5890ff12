// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/shoreline/internal/ingest"
	"github.com/pdiddy/shoreline/internal/search"
)

var errPartialIngest = errors.New("some identifiers were not ingested")

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest PubMed URLs, PMIDs and DOIs",
	Long: `Ingest reads one identifier per line from a file or stdin; repeated --id
flags replace both. PubMed URLs, bare PMIDs, doi.org URLs and bare DOIs are
recognized. DOIs are resolved to PMIDs, cached records are reused and the
rest are fetched from PubMed in batches.

Duplicates, unrecognized lines, unresolved DOIs and PMIDs PubMed did not
return are reported separately.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringArray("id", nil, "identifier to ingest (repeatable); replaces file/stdin input")
	ingestCmd.Flags().StringP("format", "f", "table", "output format: table, json, yaml or csl")
	ingestCmd.Flags().Bool("strict", false, "exit non-zero when any identifier fails")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "table", "json", "yaml", "csl"); err != nil {
		return err
	}

	ids, _ := cmd.Flags().GetStringArray("id")
	var text string
	if len(ids) > 0 {
		text = strings.Join(ids, "\n")
	} else {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		var err error
		if text, err = readInput(cmd, path); err != nil {
			return err
		}
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.ingester(a.eutilsClient()).Ingest(cmd.Context(), text)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		err = ingest.FormatJSON(res, a.out)
	case "yaml":
		err = ingest.FormatYAML(res, a.out)
	case "csl":
		err = search.FormatCSL(res.Records, a.out)
	default:
		ingest.FormatTable(res, a.out)
	}
	if err != nil {
		return err
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict && res.HasFailures() {
		return fmt.Errorf("%w: %d unrecognized, %d unresolved, %d not returned", errPartialIngest,
			len(res.ParseErrors), len(res.UnresolvedExternals), len(res.FetchFailures))
	}
	return nil
}
