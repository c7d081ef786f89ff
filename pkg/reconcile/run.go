package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/logging"
)

// Run executes every stage of the configured mode in order and returns
// the summary. Data passes between stages in memory, so a dry run
// behaves exactly like a real one except that nothing is written.
// Missing connection settings fail before any stage starts.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	if err := d.CheckConfig(d.config.Mode); err != nil {
		return nil, err
	}

	started := time.Now()
	summary := newSummary(uuid.NewString(), d.config)
	summary.OutputDir = d.store.Dir()
	ctx = logging.WithRunID(ctx, summary.RunID)
	log := logging.FromContext(ctx)
	log.Info().
		Str("mode", d.config.Mode.String()).
		Str("output_dir", d.store.Dir()).
		Bool("dry_run", d.config.DryRun).
		Msg("Starting reconciliation")

	var err error
	switch d.config.Mode {
	case ModeContract:
		err = d.runContract(ctx, summary)
	default:
		err = d.runSubgraphs(ctx, summary)
	}
	summary.Duration = time.Since(started)
	if err != nil {
		return summary, err
	}

	log.Info().
		Int("differences", summary.TotalDifferences()).
		Dur("duration", summary.Duration).
		Msg("Reconciliation complete")
	return summary, nil
}

func (d *Driver) runSubgraphs(ctx context.Context, summary *Summary) error {
	left, err := d.FetchTokens(logging.WithStage(ctx, StageFetchLeft), constants.SideLeft)
	if err != nil {
		return err
	}
	summary.Left.Tokens = len(left)

	right, err := d.FetchTokens(logging.WithStage(ctx, StageFetchRight), constants.SideRight)
	if err != nil {
		return err
	}
	summary.Right.Tokens = len(right)

	tokenReport, err := d.diffTokens(logging.WithStage(ctx, StageDiffTokens), left, right)
	if err != nil {
		return err
	}
	summary.TokenDifferences = &tokenReport.Summary
	summary.addArtifacts(
		constants.LeftTokensFile,
		constants.RightTokensFile,
		constants.TokenDifferencesFile,
	)

	ctx = logging.WithStage(ctx, StageDiffCollections)
	leftCollections, err := d.group(ctx, constants.SideLeft, left)
	if err != nil {
		return err
	}
	rightCollections, err := d.group(ctx, constants.SideRight, right)
	if err != nil {
		return err
	}
	summary.Left.Collections = len(leftCollections)
	summary.Right.Collections = len(rightCollections)

	collectionReport, err := d.diffCollections(ctx, leftCollections, rightCollections)
	if err != nil {
		return err
	}
	summary.CollectionDifferences = &collectionReport.Summary
	summary.addArtifacts(
		constants.LeftCollectionsFile,
		constants.RightCollectionsFile,
		constants.CollectionDifferencesFile,
	)
	return nil
}

func (d *Driver) runContract(ctx context.Context, summary *Summary) error {
	side := d.config.Contract.Side
	list, err := d.FetchTokens(logging.WithStage(ctx, fetchStage(side)), side)
	if err != nil {
		return err
	}

	ctx = logging.WithStage(ctx, StageContract)
	collections, err := d.group(ctx, side, list)
	if err != nil {
		return err
	}
	counts := summary.side(side)
	counts.Tokens = len(list)
	counts.Collections = len(collections)

	result, err := d.fetchContract(ctx, collections)
	if err != nil {
		return err
	}
	summary.Contract = &ContractCounts{
		Requested: result.Requested(),
		Read:      len(result.Collections),
		Failed:    len(result.Failures),
	}

	report, err := d.diffContract(logging.WithStage(ctx, StageDiffContract), collections, result.Collections)
	if err != nil {
		return err
	}
	summary.ContractDifferences = &report.Summary
	tokensArtifact, _ := tokensFile(side)
	summary.addArtifacts(
		tokensArtifact,
		collectionsFile(side),
		constants.ContractCollectionsFile,
		constants.ContractDifferencesFile,
	)
	return nil
}
