// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the shoreline CLI. It ingests PubMed
// identifiers, runs multi-strategy searches, writes evidence briefs and
// manages the record cache.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/shoreline/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the shoreline CLI.
var rootCmd = &cobra.Command{
	Use:   "shoreline",
	Short: "Turn research questions into ranked PubMed evidence",
	Long: `shoreline ingests PubMed identifiers (URLs, PMIDs, DOIs), fetches their
records through the NCBI E-utilities and caches them locally. Given several
search strategies, or a question for the language model to turn into
strategies, it fuses the per-strategy results into one ranked candidate set.

Subcommands: ingest, search, brief, cache and version.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./shoreline.yaml or ~/.config/shoreline/shoreline.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory of secret files")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	pf.String("cache-backend", "", "record cache backend: memory, sqlite or redis")
	pf.String("cache-path", "", "SQLite cache file")
	pf.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.BoolP("quiet", "q", false, "suppress progress messages")

	bindFlag("logging.level", "log-level")
	bindFlag("logging.format", "log-format")
	bindFlag("cache.backend", "cache-backend")
	bindFlag("cache.path", "cache-path")
	bindFlag("metrics.textfile_path", "metrics-file")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("shoreline")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "shoreline"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("SHORELINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment overrides such as
// SHORELINE_EUTILS_API_KEY reach Unmarshal.
func setDefaults() {
	e := types.DefaultEutilsConfig()
	viper.SetDefault("eutils.base_url", e.BaseURL)
	viper.SetDefault("eutils.api_key", "")
	viper.SetDefault("eutils.tool", e.Tool)
	viper.SetDefault("eutils.email", "")
	viper.SetDefault("eutils.min_interval", e.MinInterval)
	viper.SetDefault("eutils.batch_size", e.BatchSize)
	viper.SetDefault("eutils.sort", e.Sort)
	viper.SetDefault("eutils.timeout", e.Timeout)
	viper.SetDefault("eutils.user_agent", e.UserAgent)

	var c types.CacheConfig
	c.ApplyDefaults()
	viper.SetDefault("cache.backend", string(c.Backend))
	viper.SetDefault("cache.path", c.Path)
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.key_prefix", c.KeyPrefix)
	viper.SetDefault("cache.max_entries", c.MaxEntries)
	viper.SetDefault("cache.ttl", c.TTL)

	r := types.DefaultRankConfig()
	viper.SetDefault("rank.overlap_weight", r.OverlapWeight)
	viper.SetDefault("rank.position_ceiling", r.PositionCeiling)
	viper.SetDefault("rank.position_floor", r.PositionFloor)
	viper.SetDefault("rank.position_cap", r.PositionCap)
	viper.SetDefault("rank.per_strategy_limit", r.PerStrategyLimit)
	viper.SetDefault("rank.cap", r.Cap)

	var l types.LLMConfig
	l.ApplyDefaults()
	viper.SetDefault("llm.base_url", l.BaseURL)
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.model", l.Model)
	viper.SetDefault("llm.max_tokens", l.MaxTokens)
	viper.SetDefault("llm.timeout", l.Timeout)
	viper.SetDefault("llm.user_agent", l.UserAgent)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.output", "stderr")
	viper.SetDefault("metrics.textfile_path", "")
}

// loadConfig decodes the merged viper configuration.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
