// Package app provides the application context and dependency management
// for the nftrecon CLI: configuration, logging, and the reconciliation
// drivers commands run against.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/nftrecon/internal/cmd/application"
	"github.com/agentstation/nftrecon/pkg/logging"
	"github.com/agentstation/nftrecon/pkg/reconcile"
)

// App represents the nftrecon application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	viper  *viper.Viper
	config *Config

	// Logger
	logger *zerolog.Logger

	// Command output, stdout when nil
	out io.Writer

	// Drivers handed out to commands, closed on shutdown
	mu      sync.Mutex
	drivers []*reconcile.Driver
}

// New creates a new App instance with the given version information.
// Settings are loaded once flags are parsed, in setupCommand.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		viper:   viper.New(),
		config:  &Config{},
	}

	logger := NewLogger(app.config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the output format chosen by flag or detected from
// the terminal.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Driver builds a reconciliation driver from the loaded settings. A
// non-empty mode overrides the configured one.
func (a *App) Driver(mode reconcile.Mode) (*reconcile.Driver, error) {
	if a.config.Settings == nil {
		if err := a.config.Load(a.viper); err != nil {
			return nil, err
		}
	}

	cfg, err := a.config.Settings.Reconcile()
	if err != nil {
		return nil, err
	}
	if mode != "" {
		cfg.Mode = mode
	}

	driver, err := reconcile.New(cfg)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.drivers = append(a.drivers, driver)
	a.mu.Unlock()
	return driver, nil
}

// Context attaches the application logger to ctx.
func (a *App) Context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, a.logger)
}

// Shutdown closes every driver's connections.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	drivers := a.drivers
	a.drivers = nil
	a.mu.Unlock()

	for _, d := range drivers {
		d.Close()
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput sends command output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// WithViper sets the viper instance settings are read from.
func WithViper(v *viper.Viper) Option {
	return func(a *App) error {
		a.viper = v
		return nil
	}
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)
