// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ankisync/pkg/types"
)

// RunExport is the YAML document written for one run.
type RunExport struct {
	Run      string          `yaml:"run"`
	Outcomes []types.Outcome `yaml:"outcomes"`
}

// ExportYAML writes the outcomes of the run matching prefix to w.
func (j *Journal) ExportYAML(w io.Writer, prefix string) error {
	id, outcomes, err := j.Outcomes(prefix)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(RunExport{Run: id, Outcomes: outcomes}); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}
