// Package differ compares record lists and describes what changed.
package differ

import (
	"fmt"
	"strings"

	"github.com/ashkam58/mathflix/pkg/catalogs"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an item was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an item was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates an item was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     `json:"path" yaml:"path"`         // json key of the field
	OldValue string     `json:"old" yaml:"old"`           // Previous value (string representation)
	NewValue string     `json:"new" yaml:"new"`           // New value (string representation)
	Type     ChangeType `json:"type" yaml:"type"`
}

// RecordUpdate represents an update to an existing record.
type RecordUpdate struct {
	ID       string          `json:"id" yaml:"id"`
	Existing catalogs.Record `json:"-" yaml:"-"`
	New      catalogs.Record `json:"-" yaml:"-"`
	Changes  []FieldChange   `json:"changes" yaml:"changes"`
}

// Changeset represents all changes between two record lists.
type Changeset struct {
	Added     []catalogs.Record `json:"added" yaml:"added"`
	Updated   []RecordUpdate    `json:"updated" yaml:"updated"`
	Removed   []catalogs.Record `json:"removed" yaml:"removed"`
	Reordered bool              `json:"reordered" yaml:"reordered"` // same ids in a different order
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Total() > 0 || c.Reordered
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return !c.HasChanges()
}

// Total returns the number of added, updated and removed records.
func (c *Changeset) Total() int {
	return len(c.Added) + len(c.Updated) + len(c.Removed)
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(c.Added)))
	}
	if len(c.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", len(c.Updated)))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(c.Removed)))
	}
	if c.Reordered {
		parts = append(parts, "reordered")
	}
	return "Records: " + strings.Join(parts, ", ")
}
