// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Export writes every cached record to w as YAML, or as indented JSON
// when format is "json".
func Export(ctx context.Context, s Store, w io.Writer, format string) (int, error) {
	records, err := s.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing cached records: %w", err)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return 0, fmt.Errorf("marshaling JSON: %w", err)
		}
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(records); err != nil {
			return 0, fmt.Errorf("marshaling YAML: %w", err)
		}
	default:
		return 0, fmt.Errorf("unsupported export format %q", format)
	}
	return len(records), nil
}
