package mathflix

import (
	"sync"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/differ"
	"github.com/ashkam58/mathflix/pkg/logging"
)

// Hook function types for record events
type (
	// RecordAddedHook is called when a record enters the snapshot
	RecordAddedHook func(record catalogs.Record)

	// RecordUpdatedHook is called when a stored record changes
	RecordUpdatedHook func(old, new catalogs.Record)

	// RecordRemovedHook is called when a record leaves the snapshot
	RecordRemovedHook func(record catalogs.Record)
)

// Hooks provides event callback registration.
type Hooks interface {
	// OnRecordAdded registers a callback for when records are added
	OnRecordAdded(RecordAddedHook)

	// OnRecordUpdated registers a callback for when records are updated
	OnRecordUpdated(RecordUpdatedHook)

	// OnRecordRemoved registers a callback for when records are removed
	OnRecordRemoved(RecordRemovedHook)
}

// hooks manages event callbacks for catalog changes
type hooks struct {
	mu        sync.RWMutex
	onAdded   []RecordAddedHook
	onUpdated []RecordUpdatedHook
	onRemoved []RecordRemovedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (c *client) OnRecordAdded(fn RecordAddedHook)     { c.hooks.add(fn) }
func (c *client) OnRecordUpdated(fn RecordUpdatedHook) { c.hooks.update(fn) }
func (c *client) OnRecordRemoved(fn RecordRemovedHook) { c.hooks.remove(fn) }

func (h *hooks) add(fn RecordAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onAdded = append(h.onAdded, fn)
}

func (h *hooks) update(fn RecordUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUpdated = append(h.onUpdated, fn)
}

func (h *hooks) remove(fn RecordRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRemoved = append(h.onRemoved, fn)
}

// trigger fires the callbacks for every entry of the changeset. A panicking
// hook is logged and does not stop the others.
func (h *hooks) trigger(cs *differ.Changeset) {
	if cs == nil || cs.Total() == 0 {
		return
	}
	h.mu.RLock()
	added := append([]RecordAddedHook(nil), h.onAdded...)
	updated := append([]RecordUpdatedHook(nil), h.onUpdated...)
	removed := append([]RecordRemovedHook(nil), h.onRemoved...)
	h.mu.RUnlock()

	for _, r := range cs.Added {
		for _, fn := range added {
			safely(func() { fn(r.Clone()) })
		}
	}
	for _, u := range cs.Updated {
		for _, fn := range updated {
			safely(func() { fn(u.Existing.Clone(), u.New.Clone()) })
		}
	}
	for _, r := range cs.Removed {
		for _, fn := range removed {
			safely(func() { fn(r.Clone()) })
		}
	}
}

func safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Msg("catalog hook panicked")
		}
	}()
	fn()
}
