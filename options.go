package mathflix

import (
	"time"

	"github.com/adhocore/gronx"
	"github.com/rs/zerolog"

	"github.com/ashkam58/mathflix/pkg/constants"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/reconcile"
	"github.com/ashkam58/mathflix/pkg/sources"
	"github.com/ashkam58/mathflix/pkg/store"
	"github.com/ashkam58/mathflix/pkg/store/memory"
)

// options holds the client configuration.
type options struct {
	source     sources.Source
	store      store.Store
	key        string
	reconciler reconcile.Reconciler

	autoReconcile      bool
	autoReconcileEvery time.Duration
	autoReconcileCron  string

	maxSaveAttempts int
	now             func() time.Time
	logger          *zerolog.Logger
}

// Option is a function that configures a Client
type Option func(*options) error

func defaults() *options {
	r, _ := reconcile.New()
	return &options{
		source:             sources.NewEmbedded(),
		store:              memory.New(),
		key:                constants.DefaultSnapshotKey,
		reconciler:         r,
		autoReconcileEvery: constants.DefaultReconcileInterval,
		maxSaveAttempts:    constants.MaxSaveAttempts,
		now:                time.Now,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithSource sets where canonical definitions come from.
func WithSource(src sources.Source) Option {
	return func(o *options) error {
		if src == nil {
			return errors.NewValidationError("source", nil, "must not be nil")
		}
		o.source = src
		return nil
	}
}

// WithStore sets the snapshot store. The client closes it on Close.
func WithStore(s store.Store) Option {
	return func(o *options) error {
		if s == nil {
			return errors.NewValidationError("store", nil, "must not be nil")
		}
		o.store = s
		return nil
	}
}

// WithSnapshotKey sets the key the snapshot is stored under.
func WithSnapshotKey(key string) Option {
	return func(o *options) error {
		if err := store.ValidateKey(key); err != nil {
			return err
		}
		o.key = key
		return nil
	}
}

// WithReconciler replaces the default reconciler.
func WithReconciler(r reconcile.Reconciler) Option {
	return func(o *options) error {
		o.reconciler = r
		return nil
	}
}

// WithAutoReconcile configures whether reconciliation runs on a schedule
func WithAutoReconcile(enabled bool) Option {
	return func(o *options) error {
		o.autoReconcile = enabled
		return nil
	}
}

// WithAutoReconcileInterval configures how often to reconcile automatically
func WithAutoReconcileInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return errors.NewValidationError("autoReconcileInterval", interval, "must be positive")
		}
		o.autoReconcileEvery = interval
		return nil
	}
}

// WithAutoReconcileCron schedules reconciliation with a cron expression.
// It takes precedence over the interval.
func WithAutoReconcileCron(expr string) Option {
	return func(o *options) error {
		if expr != "" && !gronx.IsValid(expr) {
			return errors.NewValidationError("autoReconcileCron", expr, "invalid cron expression")
		}
		o.autoReconcileCron = expr
		return nil
	}
}

// WithMaxSaveAttempts bounds the retries after a version conflict.
func WithMaxSaveAttempts(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("maxSaveAttempts", n, "must be at least 1")
		}
		o.maxSaveAttempts = n
		return nil
	}
}

// WithClock sets the time source used for synthetic ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			now = time.Now
		}
		o.now = now
		return nil
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
