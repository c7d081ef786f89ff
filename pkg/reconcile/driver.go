// Package reconcile runs the reconciliation pipeline: fetch token lists,
// diff them, group them into collections, and diff the collections
// against the other subgraph or the contract. Every stage persists its
// output so a later run, or a later stage run on its own, can resume
// from disk.
package reconcile

import (
	"context"

	"github.com/agentstation/nftrecon/internal/sources/contract"
	"github.com/agentstation/nftrecon/internal/sources/subgraph"
	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/differ"
	"github.com/agentstation/nftrecon/pkg/errors"
	"github.com/agentstation/nftrecon/pkg/logging"
	"github.com/agentstation/nftrecon/pkg/snapshot"
	"github.com/agentstation/nftrecon/pkg/tokens"
)

// Stage names, as used in prerequisite errors and CLI commands.
const (
	StageFetchLeft       = "fetch left"
	StageFetchRight      = "fetch right"
	StageDiffTokens      = "diff tokens"
	StageDiffCollections = "diff collections"
	StageContract        = "contract"
	StageDiffContract    = "diff contract"
)

// TokenSource fetches the complete token list of one subgraph.
type TokenSource interface {
	FetchTokens(ctx context.Context) ([]tokens.Token, error)
}

// Driver runs pipeline stages against a snapshot store.
type Driver struct {
	config  Config
	store   *snapshot.Store
	sources map[string]TokenSource
	reader  contract.Reader
	closers []func()
}

// Option configures a Driver.
type Option func(*Driver)

// WithSource replaces the subgraph fetcher for side.
func WithSource(side string, source TokenSource) Option {
	return func(d *Driver) {
		d.sources[side] = source
	}
}

// WithReader replaces the contract reader.
func WithReader(reader contract.Reader) Option {
	return func(d *Driver) {
		d.reader = reader
	}
}

// WithStore replaces the snapshot store built from OutputDir.
func WithStore(store *snapshot.Store) Option {
	return func(d *Driver) {
		d.store = store
	}
}

// New validates config and creates a Driver. Subgraph fetchers and the
// contract reader are created on first use unless supplied as options.
func New(config Config, opts ...Option) (*Driver, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	d := &Driver{
		config:  config,
		sources: make(map[string]TokenSource),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		var storeOpts []snapshot.Option
		if config.DryRun {
			storeOpts = append(storeOpts, snapshot.WithReadOnly())
		}
		d.store = snapshot.New(config.OutputDir, storeOpts...)
	}
	return d, nil
}

// Config returns the configuration the driver was created with.
func (d *Driver) Config() Config {
	return d.config
}

// Store returns the snapshot store.
func (d *Driver) Store() *snapshot.Store {
	return d.store
}

// Close releases connections opened by the driver.
func (d *Driver) Close() {
	for _, closeFn := range d.closers {
		closeFn()
	}
	d.closers = nil
}

// FetchTokens returns the token list of side. An existing snapshot is
// reused unless Force is set; otherwise the subgraph is fetched and the
// result persisted. A failed fetch writes nothing.
func (d *Driver) FetchTokens(ctx context.Context, side string) ([]tokens.Token, error) {
	file, err := tokensFile(side)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithSide(ctx, side)
	log := logging.FromContext(ctx)

	if !d.config.Force && d.store.Exists(file) {
		list, err := d.store.LoadTokens(file)
		if err != nil {
			return nil, err
		}
		log.Info().Str("artifact", file).Int("count", len(list)).Msg("Using existing token snapshot")
		return list, nil
	}

	source, err := d.source(side)
	if err != nil {
		return nil, err
	}

	list, err := source.FetchTokens(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.store.SaveTokens(file, list); err != nil {
		return nil, err
	}
	return list, nil
}

// DiffTokens compares the persisted left and right token lists.
func (d *Driver) DiffTokens(ctx context.Context) (differ.Report[tokens.Token], error) {
	left, err := d.loadTokens(constants.SideLeft)
	if err != nil {
		return differ.Report[tokens.Token]{}, err
	}
	right, err := d.loadTokens(constants.SideRight)
	if err != nil {
		return differ.Report[tokens.Token]{}, err
	}
	return d.diffTokens(ctx, left, right)
}

// GroupCollections groups the persisted token list of side and persists
// the collections.
func (d *Driver) GroupCollections(ctx context.Context, side string) ([]tokens.Collection, error) {
	list, err := d.loadTokens(side)
	if err != nil {
		return nil, err
	}
	return d.group(ctx, side, list)
}

// DiffCollections groups both persisted token lists and compares the
// collections by position.
func (d *Driver) DiffCollections(ctx context.Context) (differ.Report[tokens.Collection], error) {
	left, err := d.GroupCollections(ctx, constants.SideLeft)
	if err != nil {
		return differ.Report[tokens.Collection]{}, err
	}
	right, err := d.GroupCollections(ctx, constants.SideRight)
	if err != nil {
		return differ.Report[tokens.Collection]{}, err
	}
	return d.diffCollections(ctx, left, right)
}

// FetchContract groups the configured side's persisted tokens and reads
// each collection from the contract. Failed reads are left out of the
// persisted contract dataset.
func (d *Driver) FetchContract(ctx context.Context) (contract.Result, error) {
	collections, err := d.GroupCollections(ctx, d.config.Contract.Side)
	if err != nil {
		return contract.Result{}, err
	}
	return d.fetchContract(ctx, collections)
}

// DiffContract compares the configured side's grouped collections with
// the persisted contract dataset, keyed by collection ID.
func (d *Driver) DiffContract(ctx context.Context) (differ.Report[tokens.Collection], error) {
	collections, err := d.GroupCollections(ctx, d.config.Contract.Side)
	if err != nil {
		return differ.Report[tokens.Collection]{}, err
	}

	file := constants.ContractCollectionsFile
	if !d.store.Exists(file) {
		return differ.Report[tokens.Collection]{}, errors.NewPrerequisiteError(d.store.Path(file), StageContract)
	}
	onChain, err := d.store.LoadCollections(file)
	if err != nil {
		return differ.Report[tokens.Collection]{}, err
	}
	return d.diffContract(ctx, collections, onChain)
}

// DiffContractResult compares the configured side's grouped collections
// with the collections of a contract read just performed, without loading
// the persisted contract dataset.
func (d *Driver) DiffContractResult(ctx context.Context, result contract.Result) (differ.Report[tokens.Collection], error) {
	collections, err := d.GroupCollections(ctx, d.config.Contract.Side)
	if err != nil {
		return differ.Report[tokens.Collection]{}, err
	}
	return d.diffContract(ctx, collections, result.Collections)
}

// CheckConfig reports the connection settings the stages of mode would
// need but lack. Sides whose token snapshot will be reused need no URL.
func (d *Driver) CheckConfig(mode Mode) error {
	var missing []string
	needsURL := func(side, key string) {
		if _, injected := d.sources[side]; injected {
			return
		}
		file, _ := tokensFile(side)
		if !d.config.Force && d.store.Exists(file) {
			return
		}
		if d.config.source(side).URL == "" {
			missing = append(missing, key)
		}
	}

	switch mode {
	case ModeContract:
		key := "left_subgraph_url"
		if d.config.Contract.Side == constants.SideRight {
			key = "right_subgraph_url"
		}
		needsURL(d.config.Contract.Side, key)
		if d.reader == nil {
			if d.config.Contract.RPCURL == "" {
				missing = append(missing, "rpc_url")
			}
			if d.config.Contract.Address == "" {
				missing = append(missing, "contract_address")
			}
		}
	default:
		needsURL(constants.SideLeft, "left_subgraph_url")
		needsURL(constants.SideRight, "right_subgraph_url")
	}

	if len(missing) > 0 {
		return errors.NewMissingConfigError(string(mode), missing...)
	}
	return nil
}

// loadTokens reads a side's token snapshot, failing with a prerequisite
// error naming the fetch stage when it is absent.
func (d *Driver) loadTokens(side string) ([]tokens.Token, error) {
	file, err := tokensFile(side)
	if err != nil {
		return nil, err
	}
	if !d.store.Exists(file) {
		return nil, errors.NewPrerequisiteError(d.store.Path(file), fetchStage(side))
	}
	return d.store.LoadTokens(file)
}

func (d *Driver) diffTokens(ctx context.Context, left, right []tokens.Token) (differ.Report[tokens.Token], error) {
	records := differ.New().Tokens(left, right)
	report := differ.NewReport("tokens", "keyed", constants.SideLeft, constants.SideRight, records)
	if err := d.store.Save(constants.TokenDifferencesFile, report); err != nil {
		return report, err
	}
	logging.FromContext(ctx).Info().
		Int("left", len(left)).
		Int("right", len(right)).
		Int("differences", report.Summary.Total).
		Msg("Compared tokens")
	return report, nil
}

func (d *Driver) group(ctx context.Context, side string, list []tokens.Token) ([]tokens.Collection, error) {
	collections := tokens.Group(list)
	if err := d.store.SaveCollections(collectionsFile(side), collections); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug().
		Str("side", side).
		Int("tokens", len(list)).
		Int("collections", len(collections)).
		Msg("Grouped collections")
	return collections, nil
}

func (d *Driver) diffCollections(ctx context.Context, left, right []tokens.Collection) (differ.Report[tokens.Collection], error) {
	records := differ.New().CollectionsByPosition(left, right)
	report := differ.NewReport("collections", "positional", constants.SideLeft, constants.SideRight, records)
	if err := d.store.Save(constants.CollectionDifferencesFile, report); err != nil {
		return report, err
	}
	logging.FromContext(ctx).Info().
		Int("left", len(left)).
		Int("right", len(right)).
		Int("differences", report.Summary.Total).
		Msg("Compared collections by position")
	return report, nil
}

func (d *Driver) fetchContract(ctx context.Context, collections []tokens.Collection) (contract.Result, error) {
	reader, err := d.contractReader(ctx)
	if err != nil {
		return contract.Result{}, err
	}

	ids := make([]string, len(collections))
	for i, c := range collections {
		ids[i] = c.CollectionID
	}

	result, err := contract.NewCollector(reader, d.config.Contract.Delay).Collect(logging.WithSide(ctx, constants.SideContract), ids)
	if err != nil {
		return result, err
	}
	if err := d.store.SaveCollections(constants.ContractCollectionsFile, result.Collections); err != nil {
		return result, err
	}
	return result, nil
}

func (d *Driver) diffContract(ctx context.Context, collections, onChain []tokens.Collection) (differ.Report[tokens.Collection], error) {
	records := differ.New(differ.WithSides(constants.SideSubgraph, constants.SideContract)).
		CollectionsByKey(tokens.ByID(collections), tokens.ByID(onChain))
	report := differ.NewReport("collections", "keyed", constants.SideSubgraph, constants.SideContract, records)
	if err := d.store.Save(constants.ContractDifferencesFile, report); err != nil {
		return report, err
	}
	logging.FromContext(ctx).Info().
		Int("subgraph", len(collections)).
		Int("contract", len(onChain)).
		Int("differences", report.Summary.Total).
		Msg("Compared collections with contract")
	return report, nil
}

// source returns the injected or lazily built fetcher for side.
func (d *Driver) source(side string) (TokenSource, error) {
	if s, ok := d.sources[side]; ok {
		return s, nil
	}
	fetcher, err := subgraph.New(side, d.config.subgraphConfig(side))
	if err != nil {
		return nil, err
	}
	d.sources[side] = fetcher
	return fetcher, nil
}

// contractReader returns the injected reader or dials the contract.
func (d *Driver) contractReader(ctx context.Context) (contract.Reader, error) {
	if d.reader != nil {
		return d.reader, nil
	}
	cfg := d.config.Contract
	reader, err := contract.Dial(ctx, contract.Config{
		RPCURL:  cfg.RPCURL,
		Address: cfg.Address,
		ABI:     cfg.ABI,
		Method:  cfg.Method,
	})
	if err != nil {
		return nil, err
	}
	d.reader = reader
	d.closers = append(d.closers, reader.Close)
	return reader, nil
}

func fetchStage(side string) string {
	if side == constants.SideRight {
		return StageFetchRight
	}
	return StageFetchLeft
}
