package app

import (
	"github.com/spf13/viper"

	"github.com/agentstation/nftrecon/internal/config"
)

// Config holds the CLI's global flags and the loaded settings.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file given by --config
	ConfigFile string

	// Logging configuration. LogLevel comes from --log-level,
	// SettingsLogLevel from LOG_LEVEL or the config file.
	LogLevel         string
	SettingsLogLevel string
	LogFormat        string
	LogOutput        string

	// Settings are nil until Load runs.
	Settings *config.Config
}

// Load reads settings from flags bound to v, the environment, .env files
// and the config file, then fills in logging configuration.
func (c *Config) Load(v *viper.Viper) error {
	settings, err := config.Load(v, c.ConfigFile)
	if err != nil {
		return err
	}
	c.Settings = settings

	c.SettingsLogLevel = settings.LogLevel
	c.LogFormat = settings.LogFormat
	c.LogOutput = settings.LogOutput
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}
