// Package catalogs defines the game record model and helpers for working
// with ordered record lists.
package catalogs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ashkam58/mathflix/pkg/constants"
	"github.com/ashkam58/mathflix/pkg/errors"
)

// Record is a single catalog entry.
type Record struct {
	// Core identity
	ID          string   `json:"id" yaml:"id"`                   // Unique record identifier
	Title       string   `json:"title" yaml:"title"`             // Display title
	Description string   `json:"description" yaml:"description"` // Short description shown on cards
	Category    Category `json:"category" yaml:"category"`       // Catalog shelf
	Grade       string   `json:"grade" yaml:"grade"`             // Target grade band, free text
	Topics      []string `json:"topics" yaml:"topics"`
	Subtopics   []string `json:"subtopics" yaml:"subtopics"`

	// Presentation
	ThumbnailURL string      `json:"thumbnailUrl" yaml:"thumbnailUrl"`
	Content      string      `json:"content" yaml:"content"` // HTML document or URL depending on Type
	Type         ContentType `json:"type" yaml:"type"`
	IsPremium    bool        `json:"isPremium" yaml:"isPremium"`

	// Views is runtime state. It belongs to the stored snapshot, never to the definition.
	Views int64 `json:"views" yaml:"views"`

	// Provenance records who created the entry. Empty on legacy snapshots.
	Provenance Provenance `json:"provenance,omitempty" yaml:"provenance,omitempty"`

	// Component is an opaque in-process payload for react games. It is never persisted.
	Component any `json:"-" yaml:"-"`
}

// ContentType describes how Content is interpreted.
type ContentType string

// Content types.
const (
	ContentTypeHTML  ContentType = "html"  // Content is an inline HTML document
	ContentTypeURL   ContentType = "url"   // Content is a URL to load in a frame
	ContentTypeReact ContentType = "react" // Content names a built-in component
)

// IsValid reports whether t is a known content type.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypeHTML, ContentTypeURL, ContentTypeReact:
		return true
	}
	return false
}

// String returns the string representation.
func (t ContentType) String() string {
	return string(t)
}

// Provenance tags the origin of a record.
type Provenance string

// Provenance values.
const (
	ProvenanceCanonical Provenance = "canonical" // Defined by the code-managed catalog
	ProvenanceUser      Provenance = "user"      // Created at runtime by a user
)

// String returns the string representation.
func (p Provenance) String() string {
	return string(p)
}

// Validate checks the fields every record must carry.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.NewValidationError("id", r.ID, "must not be empty")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.NewValidationError("title", r.Title, "must not be empty")
	}
	if len(r.Title) > constants.MaxTitleLength {
		return errors.NewValidationError("title", r.Title,
			fmt.Sprintf("must be at most %d characters", constants.MaxTitleLength))
	}
	if len(r.Description) > constants.MaxDescriptionLength {
		return errors.NewValidationError("description", r.Description,
			fmt.Sprintf("must be at most %d characters", constants.MaxDescriptionLength))
	}
	if !r.Type.IsValid() {
		return errors.NewValidationError("type", r.Type, "must be one of html, url, react")
	}
	if r.Views < 0 {
		return errors.NewValidationError("views", r.Views, "must not be negative")
	}
	switch r.Provenance {
	case "", ProvenanceCanonical, ProvenanceUser:
	default:
		return errors.NewValidationError("provenance", r.Provenance, "must be canonical or user")
	}
	return nil
}

// Clone returns a copy that shares no slices with r.
// Component is carried by reference.
func (r Record) Clone() Record {
	r.Topics = slices.Clone(r.Topics)
	r.Subtopics = slices.Clone(r.Subtopics)
	return r
}

// HasTopic reports whether the record lists topic, ignoring case.
func (r *Record) HasTopic(topic string) bool {
	for _, t := range r.Topics {
		if strings.EqualFold(t, topic) {
			return true
		}
	}
	return false
}
