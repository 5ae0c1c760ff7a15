// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/asset-converter/pkg/types"
)

// Export is the YAML document written by ExportYAML.
type Export struct {
	Profile string            `yaml:"profile,omitempty"`
	Jobs    []types.JobRecord `yaml:"jobs"`
}

// ExportYAML writes the recorded jobs, optionally limited to one profile,
// to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, profile string) error {
	jobs, err := s.Jobs(ctx, profile)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if jobs == nil {
		jobs = []types.JobRecord{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Export{Profile: profile, Jobs: jobs}); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}
