package application

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/ashkam58/mathflix"
)

var _ Application = (*Mock)(nil)

// Mock is a configurable Application for tests. Unset funcs fall back to
// harmless defaults.
type Mock struct {
	ClientFunc       func() (mathflix.Client, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string

	VersionValue string
	CommitValue  string
	DateValue    string
	BuiltByValue string
}

// Client implements Application.
func (m *Mock) Client() (mathflix.Client, error) {
	if m.ClientFunc == nil {
		return nil, errors.New("mock: no client configured")
	}
	return m.ClientFunc()
}

// Logger implements Application.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc == nil {
		logger := zerolog.Nop()
		return &logger
	}
	return m.LoggerFunc()
}

// OutputFormat implements Application.
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc == nil {
		return "table"
	}
	return m.OutputFormatFunc()
}

// Version implements Application.
func (m *Mock) Version() string { return m.VersionValue }

// Commit implements Application.
func (m *Mock) Commit() string { return m.CommitValue }

// Date implements Application.
func (m *Mock) Date() string { return m.DateValue }

// BuiltBy implements Application.
func (m *Mock) BuiltBy() string { return m.BuiltByValue }
