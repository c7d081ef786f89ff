package app

import (
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/nftrecon/pkg/logging"
)

// logLevels are the levels accepted from flags and settings.
var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// NewLogger builds the CLI logger. The level is chosen, highest first, from
// --log-level, -q, -v, the log_level setting or LOG_LEVEL, and finally info.
func NewLogger(config *Config) zerolog.Logger {
	level, warning := determineLogLevel(config)

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
	if warning != "" {
		logger.Warn().Str("level", level).Msg(warning)
	}
	return logger
}

// determineLogLevel returns the effective level and, when flags were
// invalid or conflicting, a warning describing the fallback.
func determineLogLevel(config *Config) (level, warning string) {
	switch {
	case config.LogLevel != "":
		level = validateLogLevel(config.LogLevel)
		if level != strings.ToLower(config.LogLevel) {
			warning = "Invalid --log-level " + config.LogLevel + ", using info"
		}
	case config.Verbose && config.Quiet:
		level, warning = "warn", "Both --verbose and --quiet given, using --quiet"
	case config.Quiet:
		level = "warn"
	case config.Verbose:
		level = "debug"
	case config.SettingsLogLevel != "":
		level = validateLogLevel(config.SettingsLogLevel)
	default:
		level = "info"
	}
	return level, warning
}

// validateLogLevel lowercases level, returning info when it is unknown.
func validateLogLevel(level string) string {
	level = strings.ToLower(level)
	if slices.Contains(logLevels, level) {
		return level
	}
	return "info"
}
