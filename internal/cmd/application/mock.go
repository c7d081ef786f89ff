package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/nftrecon/pkg/reconcile"
)

// Mock implements Application for command tests. Nil function fields fall
// back to defaults: a driver built from reconcile.Defaults, a no-op
// logger, table output and placeholder build information.
//
//	mock := &application.Mock{
//	    DriverFunc: func(mode reconcile.Mode) (*reconcile.Driver, error) {
//	        return reconcile.New(cfg, reconcile.WithSource("left", fake))
//	    },
//	}
//	cmd := run.NewCommand(mock)
type Mock struct {
	DriverFunc       func(mode reconcile.Mode) (*reconcile.Driver, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

var _ Application = (*Mock)(nil)

// Driver calls DriverFunc, or builds a driver from default configuration.
func (m *Mock) Driver(mode reconcile.Mode) (*reconcile.Driver, error) {
	if m.DriverFunc != nil {
		return m.DriverFunc(mode)
	}
	cfg := reconcile.Defaults()
	if mode != "" {
		cfg.Mode = mode
	}
	return reconcile.New(cfg)
}

// Logger calls LoggerFunc, or returns a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

func (m *Mock) OutputFormat() string { return callOr(m.OutputFormatFunc, "table") }
func (m *Mock) Version() string      { return callOr(m.VersionFunc, "dev") }
func (m *Mock) Commit() string       { return callOr(m.CommitFunc, "unknown") }
func (m *Mock) Date() string         { return callOr(m.DateFunc, "unknown") }
func (m *Mock) BuiltBy() string      { return callOr(m.BuiltByFunc, "test") }

func callOr(f func() string, fallback string) string {
	if f != nil {
		return f()
	}
	return fallback
}
