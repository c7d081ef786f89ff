// Package constants provides shared constants used throughout the nftrecon
// codebase. This includes timeouts, fetch limits, file permissions, and the
// names of the artifacts a reconciliation run writes.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to subgraphs
	DefaultHTTPTimeout = 30 * time.Second

	// ContractCallTimeout bounds a single contract metadata read
	ContractCallTimeout = 20 * time.Second

	// ShutdownTimeout is how long the CLI waits for cleanup after an error
	ShutdownTimeout = 5 * time.Second
)

// Fetch constants control the paginated subgraph loop and contract reads.
const (
	// DefaultPageSize is the number of records requested per GraphQL page
	DefaultPageSize = 1000

	// MaxPageSize is the largest page most subgraph deployments accept
	MaxPageSize = 1000

	// DefaultMaxRecords caps how many tokens are fetched from one subgraph
	DefaultMaxRecords = 100000

	// DefaultFetchDelay is the fixed pause between subgraph pages
	DefaultFetchDelay = 2 * time.Second

	// DefaultContractDelay is the fixed pause between contract reads
	DefaultContractDelay = 1 * time.Second

	// DefaultSortField orders subgraph results so pagination is stable
	DefaultSortField = "id"

	// DefaultSortDirection is the GraphQL orderDirection value
	DefaultSortDirection = "asc"

	// DefaultEntity is the subgraph entity queried for tokens
	DefaultEntity = "tokens"

	// DefaultContractMethod is the contract view function returning collection metadata
	DefaultContractMethod = "getCollection"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Side names identify the datasets being compared.
const (
	SideLeft     = "left"
	SideRight    = "right"
	SideSubgraph = "subgraph"
	SideContract = "contract"
)

// Artifact names written to the output directory.
const (
	LeftTokensFile            = "left_tokens.json"
	RightTokensFile           = "right_tokens.json"
	TokenDifferencesFile      = "token_differences.json"
	LeftCollectionsFile       = "left_collections.json"
	RightCollectionsFile      = "right_collections.json"
	CollectionDifferencesFile = "collection_differences.json"
	ContractCollectionsFile   = "contract_collections.json"
	ContractDifferencesFile   = "contract_differences.json"
)

// Path constants
const (
	// DefaultOutputDir is where artifacts are written when none is configured
	DefaultOutputDir = "output"

	// ConfigFileName is the config file name searched in $HOME and the working directory
	ConfigFileName = ".nftrecon"
)

// JSONIndent is the indentation used for persisted artifacts.
const JSONIndent = "  "
