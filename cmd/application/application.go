// Package application provides the application interface for mathflix commands.
//
// The Application interface defines the contract between the application layer
// and command implementations, so commands and the HTTP server can be tested
// against a mock instead of a fully wired client.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            mf, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            games, err := mf.Games(cmd.Context())
//	            // ... render games
//	            return err
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    ClientFunc: func() (mathflix.Client, error) {
//	        return testClient, nil
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/ashkam58/mathflix"
)

// Application provides the application interface that commands need.
// The App struct from cmd/mathflix/app implements it.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the shared catalog client, creating it on first use.
	Client() (mathflix.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
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
