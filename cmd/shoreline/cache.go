// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/shoreline/internal/cache"
	"github.com/pdiddy/shoreline/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the record cache",
	Long: `Cache works on the configured record cache. Use subcommands to count
entries, show one record, apply the size bound or export every record.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number of cached records",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		n, err := a.store.Len(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "backend:     %s\n", a.cfg.Cache.Backend)
		if a.cfg.Cache.Backend == types.CacheSQLite {
			fmt.Fprintf(a.out, "path:        %s\n", a.cfg.Cache.Path)
		}
		fmt.Fprintf(a.out, "records:     %d\n", n)
		if a.cfg.Cache.MaxEntries > 0 {
			fmt.Fprintf(a.out, "max entries: %d\n", a.cfg.Cache.MaxEntries)
		}
		return nil
	},
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <pmid>",
	Short: "Print one cached record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		r, ok, err := a.store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("pmid %s is not cached", args[0])
		}
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Evict the oldest records beyond the configured bound",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		n, err := a.store.Prune(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Evicted %d record(s).\n", n)
		return nil
	},
}

var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every cached record as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		n, err := cache.Export(cmd.Context(), a.store, a.out, format)
		if err != nil {
			return err
		}
		a.log.Info().Int("records", n).Msg("cache exported")
		return nil
	},
}

func init() {
	cacheExportCmd.Flags().StringP("format", "f", "yaml", "export format: yaml or json")

	cacheCmd.AddCommand(cacheStatsCmd, cacheGetCmd, cachePruneCmd, cacheExportCmd)
	rootCmd.AddCommand(cacheCmd)
}
