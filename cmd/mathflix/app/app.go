// Package app provides the application context and dependency management
// for the mathflix CLI. It centralizes configuration, logging and the
// lifecycle of the shared catalog client.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/sources"
	"github.com/ashkam58/mathflix/pkg/store"
	"github.com/ashkam58/mathflix/pkg/store/backend"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the mathflix application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client mathflix.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
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

// OutputFormat returns the output format requested on the command line
// or in the config. Empty means detect from the terminal.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client returns the catalog client, creating it lazily if needed.
func (a *App) Client() (mathflix.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	opts, closer, err := a.clientOptions()
	if err != nil {
		return nil, err
	}
	c, err := mathflix.New(opts...)
	if err != nil {
		_ = closer.Close()
		return nil, errors.WrapResource("create", "client", "", err)
	}

	a.client = c
	return c, nil
}

// Shutdown stops scheduled work and closes the store.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	c := a.client
	a.client = nil
	a.mu.Unlock()

	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		return errors.WrapResource("close", "client", "", err)
	}
	return nil
}

// clientOptions builds client options from the configuration. The returned
// store must be closed by the caller if the client cannot be created.
func (a *App) clientOptions() ([]mathflix.Option, store.Store, error) {
	cfg := a.config

	typ, err := store.ParseType(cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	st, err := backend.Open(typ, cfg.DataDir)
	if err != nil {
		return nil, nil, errors.WrapResource("open", "store", string(typ), err)
	}

	src := sources.NewEmbedded()
	if cfg.Definitions != "" {
		src = sources.NewFile(cfg.Definitions)
	}

	opts := []mathflix.Option{
		mathflix.WithSource(src),
		mathflix.WithStore(st),
		mathflix.WithSnapshotKey(cfg.SnapshotKey),
		mathflix.WithLogger(a.logger),
	}
	if cfg.ReconcileInterval > 0 {
		opts = append(opts, mathflix.WithAutoReconcileInterval(cfg.ReconcileInterval))
	}
	if cfg.ReconcileCron != "" {
		opts = append(opts, mathflix.WithAutoReconcileCron(cfg.ReconcileCron))
	}

	a.logger.Debug().
		Str("store", string(typ)).
		Str("data_dir", cfg.DataDir).
		Str("source", src.Name()).
		Str("snapshot_key", cfg.SnapshotKey).
		Msg("Opening catalog client")

	return opts, st, nil
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

// WithClient sets a custom client instance (useful for testing).
func WithClient(c mathflix.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
