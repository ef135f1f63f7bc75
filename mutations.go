package mathflix

import (
	"context"
	"fmt"
	"slices"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/differ"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/provenance"
)

// Mutator applies user changes to the persisted snapshot. Every mutation
// works on the snapshot as currently stored, never on a cached copy.
type Mutator interface {
	// IncrementViews adds one to the views of id and returns the new count.
	IncrementViews(ctx context.Context, id string) (int64, error)

	// CreateGame stores a user-created record under a fresh synthetic id
	// and returns it.
	CreateGame(ctx context.Context, record catalogs.Record) (catalogs.Record, error)

	// DeleteGame removes a user-created record. Records managed by the
	// canonical definitions cannot be deleted.
	DeleteGame(ctx context.Context, id string) error
}

// mutate loads the current snapshot under the lock, applies fn and saves the
// returned list, retrying on version conflicts. A missing or unreadable
// snapshot is reconciled first.
func (c *client) mutate(ctx context.Context, fn func(canonical provenance.IDSet, records []catalogs.Record) ([]catalogs.Record, error)) ([]catalogs.Record, error) {
	unlock := snapshotLocks.lock(c.options.key)
	defer unlock()

	canonical, err := c.options.source.Definitions(ctx)
	if err != nil {
		return nil, errors.WrapResource("load", "definitions", c.options.source.Name(), err)
	}
	canonicalIDs := provenance.NewIDSet(canonical)

	var updated []catalogs.Record
	err = c.retry(ctx, func() error {
		st, err := c.load(ctx)
		if err != nil {
			return err
		}
		if !st.stored {
			if _, err := c.reconcileLocked(ctx, false); err != nil {
				return err
			}
			if st, err = c.load(ctx); err != nil {
				return err
			}
		}

		updated, err = fn(canonicalIDs, catalogs.CloneRecords(st.records))
		if err != nil {
			return err
		}
		return c.save(ctx, st, updated)
	})
	if err != nil {
		return nil, err
	}

	c.remember(updated, componentsOf(canonical))
	return updated, nil
}

// IncrementViews adds one to the views of id.
func (c *client) IncrementViews(ctx context.Context, id string) (int64, error) {
	var before, after catalogs.Record
	_, err := c.mutate(ctx, func(_ provenance.IDSet, records []catalogs.Record) ([]catalogs.Record, error) {
		i := slices.IndexFunc(records, func(r catalogs.Record) bool { return r.ID == id })
		if i < 0 {
			return nil, errors.NewNotFoundError("game", id)
		}
		before = records[i].Clone()
		records[i].Views++
		after = records[i].Clone()
		return records, nil
	})
	if err != nil {
		return 0, err
	}

	c.hooks.trigger(&differ.Changeset{Updated: []differ.RecordUpdate{{
		ID:       id,
		Existing: before,
		New:      after,
		Changes: []differ.FieldChange{{
			Path:     "views",
			OldValue: fmt.Sprint(before.Views),
			NewValue: fmt.Sprint(after.Views),
			Type:     differ.ChangeTypeUpdate,
		}},
	}}})
	return after.Views, nil
}

// CreateGame stores a user-created record.
func (c *client) CreateGame(ctx context.Context, record catalogs.Record) (catalogs.Record, error) {
	record = record.Clone()
	record.Provenance = catalogs.ProvenanceUser
	record.Component = nil
	record.Views = 0
	if record.ID == "" {
		record.ID = "pending"
	}
	if err := record.Validate(); err != nil {
		return catalogs.Record{}, err
	}

	var created catalogs.Record
	_, err := c.mutate(ctx, func(canonical provenance.IDSet, records []catalogs.Record) ([]catalogs.Record, error) {
		taken := provenance.NewIDSet(records)
		for id := range canonical {
			taken[id] = struct{}{}
		}
		created = record
		created.ID = c.ids.Next(taken)

		// newest user record goes first among the user records
		at := 0
		for i := range records {
			if canonical.Has(records[i].ID) {
				at = i + 1
			}
		}
		return slices.Insert(records, at, created), nil
	})
	if err != nil {
		return catalogs.Record{}, err
	}

	c.logger(ctx).Info().Str("record_id", created.ID).Str("title", created.Title).Msg("game created")
	c.hooks.trigger(&differ.Changeset{Added: []catalogs.Record{created}})
	return created, nil
}

// DeleteGame removes a user-created record.
func (c *client) DeleteGame(ctx context.Context, id string) error {
	var removed catalogs.Record
	_, err := c.mutate(ctx, func(canonical provenance.IDSet, records []catalogs.Record) ([]catalogs.Record, error) {
		if canonical.Has(id) {
			return nil, fmt.Errorf("game %s is managed by the catalog definitions: %w", id, errors.ErrReadOnly)
		}
		i := slices.IndexFunc(records, func(r catalogs.Record) bool { return r.ID == id })
		if i < 0 {
			return nil, errors.NewNotFoundError("game", id)
		}
		removed = records[i]
		return slices.Delete(records, i, i+1), nil
	})
	if err != nil {
		return err
	}

	c.logger(ctx).Info().Str("record_id", id).Msg("game deleted")
	c.hooks.trigger(&differ.Changeset{Removed: []catalogs.Record{removed}})
	return nil
}
