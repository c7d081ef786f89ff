package reconcile

import (
	"fmt"
	"time"

	"github.com/agentstation/nftrecon/internal/sources/subgraph"
	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/errors"
)

// Mode selects which datasets a run compares.
type Mode string

const (
	// ModeSubgraphs compares the left and right subgraphs: tokens by
	// ExternalID and grouped collections by position.
	ModeSubgraphs Mode = "subgraphs"
	// ModeContract compares one subgraph's grouped collections with the
	// contract, keyed by collection ID.
	ModeContract Mode = "contract"
)

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// SourceConfig locates one subgraph. The API key is sent as a bearer
// token unless APIKeyHeader names another header.
type SourceConfig struct {
	URL          string
	APIKey       string
	APIKeyHeader string
}

// FetchConfig controls paging through both subgraphs.
type FetchConfig struct {
	Entity        string
	Fields        subgraph.Fields
	PageSize      int
	MaxRecords    int
	SortField     string
	SortDirection string
	Delay         time.Duration
}

// ContractConfig locates the contract and picks the subgraph side it is
// compared against.
type ContractConfig struct {
	RPCURL  string
	Address string
	ABI     string
	Method  string
	Delay   time.Duration
	Side    string
}

// Config is everything a Driver needs. Nothing in this package reads the
// environment; callers build a Config explicitly.
type Config struct {
	Mode      Mode
	Left      SourceConfig
	Right     SourceConfig
	Fetch     FetchConfig
	Contract  ContractConfig
	OutputDir string

	// Force refetches token lists even when a snapshot exists.
	Force bool
	// DryRun computes every result but writes no artifacts.
	DryRun bool
}

// Defaults returns a Config with every tunable set to its default.
func Defaults() Config {
	return Config{
		Mode: ModeSubgraphs,
		Fetch: FetchConfig{
			Entity:        constants.DefaultEntity,
			Fields:        subgraph.DefaultFields(),
			PageSize:      constants.DefaultPageSize,
			MaxRecords:    constants.DefaultMaxRecords,
			SortField:     constants.DefaultSortField,
			SortDirection: constants.DefaultSortDirection,
			Delay:         constants.DefaultFetchDelay,
		},
		Contract: ContractConfig{
			Method: constants.DefaultContractMethod,
			Delay:  constants.DefaultContractDelay,
			Side:   constants.SideLeft,
		},
		OutputDir: constants.DefaultOutputDir,
	}
}

// Validate checks values that make no sense regardless of which stages
// run. Missing endpoints are reported later, per stage.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeSubgraphs, ModeContract:
	default:
		return errors.NewValidationError("mode", c.Mode,
			fmt.Sprintf("must be %q or %q", ModeSubgraphs, ModeContract))
	}
	if _, err := tokensFile(c.Contract.Side); err != nil {
		return errors.NewValidationError("contract_side", c.Contract.Side, "must be left or right")
	}
	if c.Fetch.Delay < 0 || c.Contract.Delay < 0 {
		return errors.NewValidationError("delay", min(c.Fetch.Delay, c.Contract.Delay), "must not be negative")
	}
	return nil
}

// source returns the endpoint for a subgraph side.
func (c Config) source(side string) SourceConfig {
	if side == constants.SideRight {
		return c.Right
	}
	return c.Left
}

// subgraphConfig builds the fetcher configuration for a side.
func (c Config) subgraphConfig(side string) subgraph.Config {
	src := c.source(side)
	return subgraph.Config{
		URL:           src.URL,
		APIKey:        src.APIKey,
		APIKeyHeader:  src.APIKeyHeader,
		Entity:        c.Fetch.Entity,
		Fields:        c.Fetch.Fields,
		PageSize:      c.Fetch.PageSize,
		MaxRecords:    c.Fetch.MaxRecords,
		SortField:     c.Fetch.SortField,
		SortDirection: c.Fetch.SortDirection,
		Delay:         c.Fetch.Delay,
	}
}

// tokensFile names the token snapshot of a side.
func tokensFile(side string) (string, error) {
	switch side {
	case constants.SideLeft:
		return constants.LeftTokensFile, nil
	case constants.SideRight:
		return constants.RightTokensFile, nil
	default:
		return "", errors.NewValidationError("side", side, "must be left or right")
	}
}

// collectionsFile names the grouped collection snapshot of a side.
func collectionsFile(side string) string {
	if side == constants.SideRight {
		return constants.RightCollectionsFile
	}
	return constants.LeftCollectionsFile
}
