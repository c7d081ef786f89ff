// Package application defines what nftrecon commands need from the
// application, so commands can be built against a Mock in tests.
//
// Usage in commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            driver, err := app.Driver(reconcile.ModeSubgraphs)
//	            if err != nil {
//	                return err
//	            }
//	            // ... run stages
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/nftrecon/pkg/reconcile"
)

// SkipSettingsAnnotation marks commands that run without loading
// settings, such as version.
const SkipSettingsAnnotation = "nftrecon/skip-settings"

// Application provides the dependencies commands use.
type Application interface {
	// Driver returns a reconciliation driver built from the loaded
	// configuration. A non-empty mode overrides the configured one.
	Driver(mode reconcile.Mode) (*reconcile.Driver, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the output format (table, json or yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
