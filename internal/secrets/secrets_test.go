// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/shoreline/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   Secrets
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, NCBIAPIKey, "  ncbi_abc123  \n")
				writeFile(t, dir, LLMAPIKey, "sk_xyz789")
				writeFile(t, dir, NCBIEmail, "user@example.com\n")
				return dir
			},
			want: Secrets{
				NCBIAPIKey: "ncbi_abc123",
				LLMAPIKey:  "sk_xyz789",
				NCBIEmail:  "user@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, LLMAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Secrets{
				LLMAPIKey: "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, NCBIAPIKey, "pk_real")
				return dir
			},
			want: Secrets{
				NCBIAPIKey: "pk_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, LLMAPIKey, "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Secrets{
				LLMAPIKey: "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: Secrets{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir, zerolog.Nop())
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir, zerolog.Nop())
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestSecretsGet(t *testing.T) {
	s := Secrets{NCBIEmail: "a@b.org"}
	assert.Equal(t, "a@b.org", s.Get(NCBIEmail, "x"))
	assert.Equal(t, "x", s.Get(NCBIAPIKey, "x"))
}

func TestSecretsApply(t *testing.T) {
	s := Secrets{NCBIAPIKey: "from-file", NCBIEmail: "file@example.com", LLMAPIKey: "sk-file"}
	cfg := types.Config{}
	cfg.Eutils.APIKey = "from-config"

	s.Apply(&cfg)

	assert.Equal(t, "from-config", cfg.Eutils.APIKey)
	assert.Equal(t, "file@example.com", cfg.Eutils.Email)
	assert.Equal(t, "sk-file", cfg.LLM.APIKey)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
