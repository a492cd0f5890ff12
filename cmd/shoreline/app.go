// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/shoreline/internal/cache"
	"github.com/pdiddy/shoreline/internal/eutils"
	"github.com/pdiddy/shoreline/internal/ingest"
	"github.com/pdiddy/shoreline/internal/llm"
	"github.com/pdiddy/shoreline/internal/observability"
	"github.com/pdiddy/shoreline/internal/ratelimit"
	"github.com/pdiddy/shoreline/internal/search"
	"github.com/pdiddy/shoreline/internal/secrets"
	"github.com/pdiddy/shoreline/pkg/types"
)

// app holds the components shared by one command invocation.
type app struct {
	cfg      types.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	store    cache.Store
	progress types.ProgressFunc
	out      io.Writer
}

// newApp loads configuration and secrets, builds the logger and metrics
// and opens the record cache.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := observability.NewLogger(cfg.Logging)

	secretsDir, _ := cmd.Flags().GetString("secrets-dir")
	s, err := secrets.Load(secretsDir, log)
	if err != nil {
		return nil, err
	}
	s.Apply(&cfg)
	if len(s) > 0 {
		log.Debug().Int("count", len(s)).Str("dir", secretsDir).Msg("loaded secrets")
	}

	store, err := cache.Open(cmd.Context(), cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("opening %s cache: %w", cfg.Cache.Backend, err)
	}

	reg := prometheus.NewRegistry()
	a := &app{
		cfg:      cfg,
		log:      log,
		registry: reg,
		metrics:  observability.NewMetrics(reg),
		store:    store,
		out:      cmd.OutOrStdout(),
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		errOut := cmd.ErrOrStderr()
		a.progress = func(p types.Progress) { fmt.Fprintln(errOut, p.Message) }
	}
	return a, nil
}

// close flushes metrics and closes the cache.
func (a *app) close() {
	if path := a.cfg.Metrics.TextfilePath; path != "" {
		if err := observability.WriteTextfile(path, a.registry); err != nil {
			a.log.Warn().Err(err).Str("path", path).Msg("writing metrics")
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing cache")
	}
}

// eutilsClient returns a client whose gate spaces every resolve, fetch and
// search call of the session.
func (a *app) eutilsClient() *eutils.Client {
	return eutils.New(a.cfg.Eutils, ratelimit.NewGate(a.cfg.Eutils.MinInterval),
		eutils.WithLogger(a.log.With().Str("component", "eutils").Logger()),
		eutils.WithMetrics(a.metrics))
}

func (a *app) ingester(client *eutils.Client) *ingest.Ingester {
	return ingest.New(client, client, a.store,
		ingest.WithBatchSize(client.BatchSize()),
		ingest.WithLogger(a.log.With().Str("component", "ingest").Logger()),
		ingest.WithMetrics(a.metrics),
		ingest.WithProgress(a.progress))
}

func (a *app) orchestrator(client *eutils.Client) *search.Orchestrator {
	return search.New(client, a.ingester(client), a.cfg.Rank,
		search.WithLogger(a.log.With().Str("component", "search").Logger()),
		search.WithMetrics(a.metrics),
		search.WithProgress(a.progress))
}

func (a *app) collaborator() *llm.Collaborator {
	return llm.NewCollaborator(llm.NewClient(a.cfg.LLM,
		llm.WithLogger(a.log.With().Str("component", "llm").Logger()),
		llm.WithMetrics(a.metrics)))
}

// readInput returns the contents of path, or stdin when path is "" or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (want one of: %s)", format, strings.Join(allowed, ", "))
}
