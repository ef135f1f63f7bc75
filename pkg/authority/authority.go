// Package authority declares which side of a reconciliation owns each
// record field. The canonical definition list owns everything by default;
// fields listed as snapshot-owned keep the value stored in the previous
// snapshot.
package authority

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ashkam58/mathflix/pkg/catalogs"
)

// Source names the side that is authoritative for a field.
type Source string

// Sources.
const (
	SourceCanonical Source = "canonical"
	SourceSnapshot  Source = "snapshot"
)

// Field defines source priority for a specific field
type Field struct {
	Path     string `json:"path" yaml:"path"`         // json key of the field, "*" matches all
	Source   Source `json:"source" yaml:"source"`     // Which side is authoritative
	Priority int    `json:"priority" yaml:"priority"` // Priority (higher = more authoritative)
}

// carriers copy a snapshot-owned field from the previous record into the merged one.
var carriers = map[string]func(dst, prev *catalogs.Record){
	"views": func(dst, prev *catalogs.Record) {
		if prev == nil {
			dst.Views = 0
			return
		}
		dst.Views = prev.Views
	},
}

// Authority resolves field ownership.
type Authority interface {
	// Find returns the authority configuration for a field path
	Find(fieldPath string) *Field

	// List returns all configured fields
	List() []Field

	// SnapshotFields returns the paths owned by the snapshot, sorted
	SnapshotFields() []string

	// Carry copies every snapshot-owned field of prev into dst. A nil prev
	// resets those fields to their zero value.
	Carry(dst, prev *catalogs.Record)
}

type authorities struct {
	fields   []Field
	snapshot []string
}

// Option configures an Authority.
type Option func(*authorities) error

// WithField adds or overrides a field authority.
func WithField(f Field) Option {
	return func(a *authorities) error {
		if f.Source == SourceSnapshot {
			if _, ok := carriers[f.Path]; !ok {
				return fmt.Errorf("field %q cannot be owned by the snapshot", f.Path)
			}
		}
		a.fields = append(a.fields, f)
		return nil
	}
}

// New creates the standard authorities: views belong to the snapshot and
// every other field to the canonical definitions.
func New(opts ...Option) (Authority, error) {
	a := &authorities{fields: defaultFields()}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	for path := range carriers {
		if f := ByField(path, a.fields); f != nil && f.Source == SourceSnapshot {
			a.snapshot = append(a.snapshot, path)
		}
	}
	sort.Strings(a.snapshot)
	return a, nil
}

// Default returns the standard authorities.
func Default() Authority {
	a, err := New()
	if err != nil {
		panic(err)
	}
	return a
}

func defaultFields() []Field {
	return []Field{
		{Path: "*", Source: SourceCanonical, Priority: 0},
		{Path: "views", Source: SourceSnapshot, Priority: 100},
	}
}

func (a *authorities) Find(fieldPath string) *Field {
	return ByField(fieldPath, a.fields)
}

func (a *authorities) List() []Field {
	out := make([]Field, len(a.fields))
	copy(out, a.fields)
	return out
}

func (a *authorities) SnapshotFields() []string {
	out := make([]string, len(a.snapshot))
	copy(out, a.snapshot)
	return out
}

func (a *authorities) Carry(dst, prev *catalogs.Record) {
	for _, path := range a.snapshot {
		carriers[path](dst, prev)
	}
}

// ByField returns the highest priority authority for a given field path
func ByField(fieldPath string, authorities []Field) *Field {
	var bestMatch *Field
	bestPriority := -1
	var bestMatchLength int

	for i, auth := range authorities {
		if MatchesPattern(fieldPath, auth.Path) {
			// Prioritize by: 1) priority, 2) pattern specificity (length), 3) later entries
			patternLength := len(auth.Path)
			if auth.Priority > bestPriority ||
				(auth.Priority == bestPriority && patternLength >= bestMatchLength) {
				bestMatch = &authorities[i]
				bestPriority = auth.Priority
				bestMatchLength = patternLength
			}
		}
	}

	return bestMatch
}

// MatchesPattern checks if a field path matches a pattern (supports * wildcards)
func MatchesPattern(fieldPath, pattern string) bool {
	if fieldPath == pattern {
		return true
	}

	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(fieldPath) >= len(prefix) && fieldPath[:len(prefix)] == prefix
	}

	matched, err := filepath.Match(pattern, fieldPath)
	if err != nil {
		return false
	}
	return matched
}
