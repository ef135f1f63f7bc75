// Package mathflix provides the catalog client for the mathflix game library.
// It reconciles the canonical game definitions with the persisted snapshot and
// exposes the merged catalog together with the few mutations users can make.
//
// The client wraps the pure reconciler with:
// - a storage boundary with optimistic versioning and bounded retry
// - a per-snapshot lock around every load, merge and save cycle
// - a last known-good copy served when storage fails
// - event hooks for added, updated and removed records
// - optional scheduled reconciliation (interval or cron)
//
// Example usage:
//
//	st, err := backend.Open(store.TypeFile, dataDir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mf, err := mathflix.New(
//	    mathflix.WithStore(st),
//	    mathflix.WithSource(sources.NewEmbedded()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mf.Close()
//
//	games, err := mf.Games(ctx)
package mathflix

import (
	"context"
	"sync"
	"time"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/provenance"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Catalog provides read access to the merged catalog.
type Catalog interface {
	// Games reconciles and returns the merged catalog. When storage fails
	// the last known-good list is returned instead, if there is one.
	Games(ctx context.Context) ([]catalogs.Record, error)

	// Game returns a single record by id.
	Game(ctx context.Context, id string) (catalogs.Record, error)
}

// Client manages the catalog snapshot.
type Client interface {
	// Catalog provides read access to the merged catalog
	Catalog

	// Reconciler runs the load, merge and save cycle
	Reconciler

	// Mutator applies user changes to the persisted snapshot
	Mutator

	// AutoReconciler provides access to scheduled reconciliation
	AutoReconciler

	// Hooks provides access to event callback registration
	Hooks

	// Close stops scheduled work and closes the store.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	// last known-good merged list
	mu         sync.RWMutex
	records    []catalogs.Record
	components map[string]any
	lastGood   time.Time

	ids *provenance.IDGenerator

	// auto reconcile state
	autoMu       sync.Mutex
	stopCh       chan struct{}
	cancelUpdate context.CancelFunc
	doneCh       chan struct{}

	hooks *hooks
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		ids:     provenance.NewIDGenerator(o.now),
		hooks:   newHooks(),
	}

	if o.autoReconcile {
		if err := c.AutoReconcileOn(); err != nil {
			return nil, errors.WrapResource("start", "auto reconcile", "", err)
		}
	}

	return c, nil
}

// Games reconciles and returns the merged catalog.
func (c *client) Games(ctx context.Context) ([]catalogs.Record, error) {
	result, err := c.Reconcile(ctx)
	if err == nil {
		return catalogs.CloneRecords(result.Records), nil
	}

	// a broken definition list must reach the operator
	if errors.IsDuplicateDefinition(err) {
		return nil, err
	}

	records, at, ok := c.LastKnownGood()
	if !ok {
		return nil, err
	}
	c.logger(ctx).Warn().
		Err(err).
		Time("last_good", at).
		Int("records", len(records)).
		Msg("reconcile failed, serving last known-good catalog")
	return records, nil
}

// Game returns a single record by id.
func (c *client) Game(ctx context.Context, id string) (catalogs.Record, error) {
	records, err := c.Games(ctx)
	if err != nil {
		return catalogs.Record{}, err
	}
	r, ok := catalogs.Find(records, id)
	if !ok {
		return catalogs.Record{}, errors.NewNotFoundError("game", id)
	}
	return r, nil
}

// LastKnownGood returns a copy of the most recent merged list, when it was
// produced, and whether one exists.
func (c *client) LastKnownGood() ([]catalogs.Record, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.records == nil {
		return nil, time.Time{}, false
	}
	return catalogs.CloneRecords(c.records), c.lastGood, true
}

// remember stores records as the last known-good list, restoring the
// in-memory component payloads the snapshot cannot carry.
func (c *client) remember(records []catalogs.Record, components map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if components != nil {
		c.components = components
	}
	out := catalogs.CloneRecords(records)
	for i := range out {
		if comp, ok := c.components[out[i].ID]; ok && out[i].Component == nil {
			out[i].Component = comp
		}
	}
	c.records = out
	c.lastGood = c.options.now()
}

// Close stops scheduled work and closes the store.
func (c *client) Close() error {
	if err := c.AutoReconcileOff(); err != nil {
		return err
	}
	return c.options.store.Close()
}
