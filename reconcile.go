package mathflix

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/constants"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/logging"
	"github.com/ashkam58/mathflix/pkg/reconcile"
	"github.com/ashkam58/mathflix/pkg/snapshot"
)

// Reconciler runs the load, merge and save cycle.
type Reconciler interface {
	// Reconcile merges the canonical definitions into the stored snapshot
	// and saves the result when it changed or no readable snapshot existed.
	Reconcile(ctx context.Context) (*reconcile.Result, error)

	// Preview computes the merge without saving anything.
	Preview(ctx context.Context) (*reconcile.Result, error)
}

// state is the stored snapshot as seen by one attempt.
type state struct {
	records []catalogs.Record
	version uint64
	stored  bool // a readable snapshot exists
}

func (c *client) logger(ctx context.Context) *zerolog.Logger {
	l := logging.FromContext(ctx)
	if l == logging.Default() && c.options.logger != nil {
		return c.options.logger
	}
	return l
}

// load reads and decodes the snapshot. An unreadable snapshot is logged and
// reported as not stored, keeping its version so it can be overwritten.
func (c *client) load(ctx context.Context) (state, error) {
	key := c.options.key
	blob, err := c.options.store.Load(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			return state{}, nil
		}
		return state{}, errors.WrapResource("load", "snapshot", key, err)
	}

	records, err := snapshot.Decode(key, blob.Data)
	if err != nil {
		c.logger(ctx).Warn().
			Err(err).
			Str("snapshot_key", key).
			Uint64("version", blob.Version).
			Msg("snapshot unreadable, treating as absent")
		return state{version: blob.Version}, nil
	}
	return state{records: records, version: blob.Version, stored: true}, nil
}

// save writes records over the version st was loaded at.
func (c *client) save(ctx context.Context, st state, records []catalogs.Record) error {
	data, err := snapshot.Encode(records)
	if err != nil {
		return err
	}
	if _, err := c.options.store.Save(ctx, c.options.key, data, st.version); err != nil {
		if errors.IsConflict(err) {
			return err
		}
		return errors.WrapResource("save", "snapshot", c.options.key, err)
	}
	return nil
}

// retry runs fn until it succeeds, fails with anything but a version
// conflict, or runs out of attempts.
func (c *client) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= c.options.maxSaveAttempts; attempt++ {
		if err = fn(); err == nil || !errors.IsConflict(err) {
			return err
		}
		c.logger(ctx).Debug().Err(err).Int("attempt", attempt).Msg("snapshot changed concurrently, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * constants.RetryBackoff):
		}
	}
	return err
}

// Reconcile merges the canonical definitions into the stored snapshot.
func (c *client) Reconcile(ctx context.Context) (*reconcile.Result, error) {
	return c.reconcile(ctx, false)
}

// Preview computes the merge without saving anything.
func (c *client) Preview(ctx context.Context) (*reconcile.Result, error) {
	return c.reconcile(ctx, true)
}

func (c *client) reconcile(ctx context.Context, dryRun bool) (*reconcile.Result, error) {
	unlock := snapshotLocks.lock(c.options.key)
	defer unlock()
	return c.reconcileLocked(ctx, dryRun)
}

// reconcileLocked runs one cycle. The caller holds the snapshot lock.
func (c *client) reconcileLocked(ctx context.Context, dryRun bool) (*reconcile.Result, error) {
	canonical, err := c.options.source.Definitions(ctx)
	if err != nil {
		return nil, errors.WrapResource("load", "definitions", c.options.source.Name(), err)
	}

	var (
		result *reconcile.Result
		saved  bool
	)
	err = c.retry(ctx, func() error {
		st, err := c.load(ctx)
		if err != nil {
			return err
		}

		var previous []catalogs.Record
		if st.stored {
			previous = st.records
		}
		result, err = c.options.reconciler.Reconcile(canonical, previous)
		if err != nil {
			return err
		}

		if dryRun || (st.stored && !result.Changed) {
			return nil
		}
		if err := c.save(ctx, st, result.Records); err != nil {
			return err
		}
		saved = true
		return nil
	})
	if err != nil {
		if errors.IsDuplicateDefinition(err) {
			c.logger(ctx).Error().Err(err).Msg("canonical definitions are misconfigured")
		}
		return nil, err
	}

	c.logger(ctx).Debug().
		Bool("changed", result.Changed).
		Bool("saved", saved).
		Bool("dry_run", dryRun).
		Int("records", len(result.Records)).
		Int("dropped", result.Statistics.Dropped).
		Msg("catalog reconciled")

	if !dryRun {
		c.remember(result.Records, componentsOf(canonical))
		c.hooks.trigger(result.Changeset)
	}
	return result, nil
}

// componentsOf collects the in-memory payloads of canonical records.
func componentsOf(records []catalogs.Record) map[string]any {
	out := make(map[string]any)
	for _, r := range records {
		if r.Component != nil {
			out[r.ID] = r.Component
		}
	}
	return out
}
