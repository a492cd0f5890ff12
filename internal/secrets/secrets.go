// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: ncbi-api-key, ncbi-email, llm-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/shoreline/pkg/types"
)

// Recognized key names.
const (
	NCBIAPIKey = "ncbi-api-key"
	NCBIEmail  = "ncbi-email"
	LLMAPIKey  = "llm-api-key"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings and skipped.
func Load(dir string, log zerolog.Logger) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Get returns the named secret, or fallback when it is absent.
func (s Secrets) Get(key, fallback string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return fallback
}

// Apply fills credentials that cfg leaves empty. Values already set in
// cfg win.
func (s Secrets) Apply(cfg *types.Config) {
	if cfg.Eutils.APIKey == "" {
		cfg.Eutils.APIKey = s.Get(NCBIAPIKey, "")
	}
	if cfg.Eutils.Email == "" {
		cfg.Eutils.Email = s.Get(NCBIEmail, "")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = s.Get(LLMAPIKey, "")
	}
}
