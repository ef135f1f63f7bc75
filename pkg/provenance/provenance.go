// Package provenance classifies catalog records by origin.
//
// A record is canonical when its id appears in the current definition list.
// Otherwise an explicit provenance tag decides, and untagged records fall
// back to the id shape: an all-digit id of at least 13 characters is the
// millisecond timestamp assigned when a user created the record.
package provenance

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/constants"
)

// Class is the origin classification of a record.
type Class int

// Classes.
const (
	ClassCanonical Class = iota // id is in the canonical definition set
	ClassUser                   // created at runtime, preserved forever
	ClassOrphaned               // formerly canonical, now removed from source
)

// String returns the string representation.
func (c Class) String() string {
	switch c {
	case ClassCanonical:
		return "canonical"
	case ClassUser:
		return "user-created"
	case ClassOrphaned:
		return "orphaned"
	default:
		return "unknown"
	}
}

var syntheticID = regexp.MustCompile(`^\d{` + strconv.Itoa(constants.SyntheticIDMinDigits) + `,}$`)

// IsSynthetic reports whether id has the shape of a generated user id.
func IsSynthetic(id string) bool {
	return syntheticID.MatchString(id)
}

// IDSet is a set of record ids.
type IDSet map[string]struct{}

// NewIDSet builds the id set of records.
func NewIDSet(records []catalogs.Record) IDSet {
	set := make(IDSet, len(records))
	for _, r := range records {
		set[r.ID] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Classify returns the class of r relative to the canonical id set.
// An explicit tag is trusted over the id shape, so a record tagged
// canonical that left the definitions is orphaned even when its id
// looks synthetic.
func Classify(canonical IDSet, r *catalogs.Record) Class {
	if canonical.Has(r.ID) {
		return ClassCanonical
	}
	switch r.Provenance {
	case catalogs.ProvenanceUser:
		return ClassUser
	case catalogs.ProvenanceCanonical:
		return ClassOrphaned
	}
	if IsSynthetic(r.ID) {
		return ClassUser
	}
	return ClassOrphaned
}

// IDGenerator hands out synthetic ids from the clock. Ids are strictly
// increasing even when two are requested in the same millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator. A nil clock means time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns a new synthetic id that is not in taken.
func (g *IDGenerator) Next(taken IDSet) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	for taken.Has(strconv.FormatInt(ms, 10)) {
		ms++
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
