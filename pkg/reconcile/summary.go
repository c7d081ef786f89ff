package reconcile

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/differ"
)

// SideCounts holds dataset sizes for one subgraph.
type SideCounts struct {
	Tokens      int `json:"tokens" yaml:"tokens"`
	Collections int `json:"collections" yaml:"collections"`
}

// ContractCounts holds the outcome of the per-collection contract reads.
type ContractCounts struct {
	Requested int `json:"requested" yaml:"requested"`
	Read      int `json:"read" yaml:"read"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Summary reports what one run did.
type Summary struct {
	RunID     string        `json:"runId" yaml:"runId"`
	Mode      Mode          `json:"mode" yaml:"mode"`
	OutputDir string        `json:"outputDir" yaml:"outputDir"`
	DryRun    bool          `json:"dryRun" yaml:"dryRun"`
	StartedAt utc.Time      `json:"startedAt" yaml:"startedAt"`
	Duration  time.Duration `json:"duration" yaml:"duration"`

	Left     SideCounts      `json:"left" yaml:"left"`
	Right    SideCounts      `json:"right" yaml:"right"`
	Contract *ContractCounts `json:"contract,omitempty" yaml:"contract,omitempty"`

	TokenDifferences      *differ.Summary `json:"tokenDifferences,omitempty" yaml:"tokenDifferences,omitempty"`
	CollectionDifferences *differ.Summary `json:"collectionDifferences,omitempty" yaml:"collectionDifferences,omitempty"`
	ContractDifferences   *differ.Summary `json:"contractDifferences,omitempty" yaml:"contractDifferences,omitempty"`

	// Artifacts lists the files written, empty on a dry run.
	Artifacts []string `json:"artifacts" yaml:"artifacts"`
}

func newSummary(runID string, config Config) *Summary {
	return &Summary{
		RunID:     runID,
		Mode:      config.Mode,
		OutputDir: config.OutputDir,
		DryRun:    config.DryRun,
		StartedAt: utc.Now(),
		Artifacts: []string{},
	}
}

// TotalDifferences sums the difference counts of every comparison run.
func (s *Summary) TotalDifferences() int {
	total := 0
	for _, d := range []*differ.Summary{s.TokenDifferences, s.CollectionDifferences, s.ContractDifferences} {
		if d != nil {
			total += d.Total
		}
	}
	return total
}

// HasDifferences reports whether any comparison found a discrepancy.
func (s *Summary) HasDifferences() bool {
	return s.TotalDifferences() > 0
}

// String returns a one-line human-readable summary.
func (s *Summary) String() string {
	if !s.HasDifferences() {
		return fmt.Sprintf("%s run: no differences", s.Mode)
	}

	var parts []string
	if s.TokenDifferences != nil {
		parts = append(parts, fmt.Sprintf("%d token", s.TokenDifferences.Total))
	}
	if s.CollectionDifferences != nil {
		parts = append(parts, fmt.Sprintf("%d collection", s.CollectionDifferences.Total))
	}
	if s.ContractDifferences != nil {
		parts = append(parts, fmt.Sprintf("%d contract", s.ContractDifferences.Total))
	}
	summary := fmt.Sprintf("%s run: %s differences", s.Mode, strings.Join(parts, ", "))
	if s.DryRun {
		summary += " (dry run)"
	}
	return summary
}

// side returns the counts of a subgraph side.
func (s *Summary) side(side string) *SideCounts {
	if side == constants.SideRight {
		return &s.Right
	}
	return &s.Left
}

// addArtifacts records written files unless this is a dry run.
func (s *Summary) addArtifacts(names ...string) {
	if s.DryRun {
		return
	}
	for _, name := range names {
		s.Artifacts = append(s.Artifacts, filepath.Join(s.OutputDir, name))
	}
}
