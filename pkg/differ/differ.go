package differ

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ashkam58/mathflix/pkg/catalogs"
)

// Differ handles change detection between record lists.
type Differ interface {
	// Records compares two record lists and returns changes
	Records(existing, updated []catalogs.Record) *Changeset

	// Equal reports whether two records carry the same persisted fields
	Equal(a, b catalogs.Record) bool

	// Identical reports whether two lists are equal record by record, in order
	Identical(a, b []catalogs.Record) bool
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
}

// New creates a new Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// field describes one persisted record field.
type field struct {
	path   string // json key
	name   string // Go field name
	format func(r *catalogs.Record) string
}

var fields = []field{
	{"title", "Title", func(r *catalogs.Record) string { return r.Title }},
	{"description", "Description", func(r *catalogs.Record) string { return truncateString(r.Description, 60) }},
	{"category", "Category", func(r *catalogs.Record) string { return string(r.Category) }},
	{"grade", "Grade", func(r *catalogs.Record) string { return r.Grade }},
	{"topics", "Topics", func(r *catalogs.Record) string { return strings.Join(r.Topics, ", ") }},
	{"subtopics", "Subtopics", func(r *catalogs.Record) string { return strings.Join(r.Subtopics, ", ") }},
	{"thumbnailUrl", "ThumbnailURL", func(r *catalogs.Record) string { return r.ThumbnailURL }},
	{"content", "Content", func(r *catalogs.Record) string { return truncateString(r.Content, 60) }},
	{"type", "Type", func(r *catalogs.Record) string { return string(r.Type) }},
	{"isPremium", "IsPremium", func(r *catalogs.Record) string { return strconv.FormatBool(r.IsPremium) }},
	{"views", "Views", func(r *catalogs.Record) string { return strconv.FormatInt(r.Views, 10) }},
	{"provenance", "Provenance", func(r *catalogs.Record) string { return string(r.Provenance) }},
}

// options builds the cmp options for record comparison. Component is never
// persisted and therefore never compared.
func (diff *differ) options() cmp.Options {
	ignored := []string{"Component"}
	for _, f := range fields {
		if diff.ignoreFields[f.path] {
			ignored = append(ignored, f.name)
		}
	}
	return cmp.Options{
		cmpopts.EquateEmpty(),
		cmpopts.IgnoreFields(catalogs.Record{}, ignored...),
	}
}

// Equal reports whether two records carry the same persisted fields.
func (diff *differ) Equal(a, b catalogs.Record) bool {
	return cmp.Equal(a, b, diff.options())
}

// Identical reports whether two lists are equal record by record, in order.
func (diff *differ) Identical(a, b []catalogs.Record) bool {
	return cmp.Equal(a, b, diff.options())
}

// Records compares two record lists and returns changes.
func (diff *differ) Records(existing, updated []catalogs.Record) *Changeset {
	changeset := &Changeset{
		Added:   []catalogs.Record{},
		Updated: []RecordUpdate{},
		Removed: []catalogs.Record{},
	}

	existingMap := make(map[string]catalogs.Record, len(existing))
	for _, r := range existing {
		existingMap[r.ID] = r
	}
	newMap := make(map[string]catalogs.Record, len(updated))
	for _, r := range updated {
		newMap[r.ID] = r
	}

	for _, r := range updated {
		old, exists := existingMap[r.ID]
		if !exists {
			changeset.Added = append(changeset.Added, r)
			continue
		}
		if update := diff.record(old, r); update != nil {
			changeset.Updated = append(changeset.Updated, *update)
		}
	}

	for _, r := range existing {
		if _, exists := newMap[r.ID]; !exists {
			changeset.Removed = append(changeset.Removed, r)
		}
	}

	changeset.Reordered = reordered(existing, updated, newMap)
	sortChangeset(changeset)
	return changeset
}

// record returns the field changes between two versions of a record, or nil.
func (diff *differ) record(existing, updated catalogs.Record) *RecordUpdate {
	if diff.Equal(existing, updated) {
		return nil
	}

	var changes []FieldChange
	for _, f := range fields {
		if diff.ignoreFields[f.path] {
			continue
		}
		oldValue, newValue := f.format(&existing), f.format(&updated)
		if oldValue != newValue {
			changes = append(changes, FieldChange{
				Path:     f.path,
				OldValue: oldValue,
				NewValue: newValue,
				Type:     ChangeTypeUpdate,
			})
		}
	}

	// Truncated or joined representations may hide the difference.
	if len(changes) == 0 {
		changes = append(changes, FieldChange{
			Path:     "*",
			OldValue: fmt.Sprintf("%d bytes", len(existing.Content)+len(existing.Description)),
			NewValue: fmt.Sprintf("%d bytes", len(updated.Content)+len(updated.Description)),
			Type:     ChangeTypeUpdate,
		})
	}

	return &RecordUpdate{
		ID:       updated.ID,
		Existing: existing,
		New:      updated,
		Changes:  changes,
	}
}

// reordered reports whether the ids common to both lists appear in a different order.
func reordered(existing, updated []catalogs.Record, updatedIDs map[string]catalogs.Record) bool {
	common := make([]string, 0, len(existing))
	for _, r := range existing {
		if _, ok := updatedIDs[r.ID]; ok {
			common = append(common, r.ID)
		}
	}
	i := 0
	for _, r := range updated {
		if i < len(common) && r.ID == common[i] {
			i++
			continue
		}
		for _, id := range common[i:] {
			if id == r.ID {
				return true
			}
		}
	}
	return false
}

func sortChangeset(changeset *Changeset) {
	sort.Slice(changeset.Added, func(i, j int) bool {
		return changeset.Added[i].ID < changeset.Added[j].ID
	})
	sort.Slice(changeset.Updated, func(i, j int) bool {
		return changeset.Updated[i].ID < changeset.Updated[j].ID
	})
	sort.Slice(changeset.Removed, func(i, j int) bool {
		return changeset.Removed[i].ID < changeset.Removed[j].ID
	})
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
