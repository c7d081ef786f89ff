package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/nftrecon/cmd/nftrecon/cmd/contract"
	"github.com/agentstation/nftrecon/cmd/nftrecon/cmd/diff"
	"github.com/agentstation/nftrecon/cmd/nftrecon/cmd/fetch"
	"github.com/agentstation/nftrecon/cmd/nftrecon/cmd/man"
	"github.com/agentstation/nftrecon/cmd/nftrecon/cmd/run"
	"github.com/agentstation/nftrecon/cmd/nftrecon/cmd/version"
	"github.com/agentstation/nftrecon/internal/cmd/application"
	"github.com/agentstation/nftrecon/internal/cmd/output"
	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/errors"
)

// Execute runs the nftrecon CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(a.Context(ctx))
}

// settingFlags maps persistent flags to the setting keys they override.
var settingFlags = map[string]string{
	"output-dir":     "output_dir",
	"force":          "force",
	"dry-run":        "dry_run",
	"page-size":      "page_size",
	"max-records":    "max_records",
	"fetch-delay":    "fetch_delay",
	"sort-field":     "sort_field",
	"sort-direction": "sort_direction",
	"contract-side":  "contract_side",
	"contract-delay": "contract_delay",
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "nftrecon",
		Short:   "Reconcile NFT metadata across subgraphs and the contract",
		Version: a.version,
		Long: `nftrecon fetches token metadata from two subgraphs, groups tokens into
collections by name and artist, and reports where the subgraphs disagree
with each other or with the on-chain contract.

Every stage writes a JSON artifact to the output directory. A token list
that has already been fetched is reused on the next run unless --force
is given.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "stages",
		Title: "Stage Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", "", "config file (default is ./"+constants.ConfigFileName+".yaml or $HOME/"+constants.ConfigFileName+".yaml)")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	flags.StringVarP(&a.config.Format, "format", "o", "", "output format: table, json, yaml")
	flags.StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	flags.String("output-dir", constants.DefaultOutputDir, "directory for snapshots and reports")
	flags.Bool("force", false, "refetch token lists even when a snapshot exists")
	flags.Bool("dry-run", false, "compute results without writing any artifact")
	flags.Int("page-size", constants.DefaultPageSize, "records requested per subgraph page")
	flags.Int("max-records", constants.DefaultMaxRecords, "maximum records fetched per subgraph")
	flags.Duration("fetch-delay", constants.DefaultFetchDelay, "delay between subgraph pages")
	flags.String("sort-field", constants.DefaultSortField, "subgraph field to order pages by")
	flags.String("sort-direction", constants.DefaultSortDirection, "page order: asc or desc")
	flags.String("contract-side", constants.SideLeft, "subgraph compared with the contract: left or right")
	flags.Duration("contract-delay", constants.DefaultContractDelay, "delay between contract reads")

	for flag, key := range settingFlags {
		// Flags are defined above, so binding cannot fail.
		_ = a.viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.SetVersionTemplate("nftrecon {{.Version}}\n")
	if a.out != nil {
		rootCmd.SetOut(a.out)
	}

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. It loads settings so
// that invalid configuration fails before any work starts.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	parsed, err := output.ParseFormat(a.config.Format)
	if err != nil {
		return errors.NewValidationError("format", a.config.Format, err.Error())
	}
	a.config.Format = string(output.DetectFormat(string(parsed)))

	if cmd.Annotations[application.SkipSettingsAnnotation] == "" {
		if mode := cmd.Flags().Lookup("mode"); mode != nil {
			_ = a.viper.BindPFlag("mode", mode)
		}
		if err := a.config.Load(a.viper); err != nil {
			return err
		}
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	cmd.SetContext(a.Context(cmd.Context()))

	changed := make(map[string]string)
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		changed[flag.Name] = flag.Value.String()
	})
	a.logger.Debug().
		Str("command", cmd.CommandPath()).
		Interface("flags", changed).
		Msg("Command starting")

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(run.NewCommand(a))
	rootCmd.AddCommand(contract.NewCommand(a))

	// Stage commands
	rootCmd.AddCommand(fetch.NewCommand(a))
	rootCmd.AddCommand(diff.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
	rootCmd.AddCommand(man.NewCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
