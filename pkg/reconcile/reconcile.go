// Package reconcile merges the canonical game definitions with the last
// persisted snapshot.
//
// Canonical records are emitted first, in canonical order, with
// snapshot-owned fields (views) carried over from the previous snapshot.
// User-created records follow in their previous relative order. Records
// that are neither are orphans of a removed definition and are dropped.
//
// The reconciler is pure: it never touches storage and is safe for
// concurrent use.
package reconcile

import (
	"time"

	"github.com/ashkam58/mathflix/pkg/authority"
	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/differ"
	"github.com/ashkam58/mathflix/pkg/provenance"
)

// Reconciler merges canonical definitions with a previous snapshot.
type Reconciler interface {
	// Reconcile merges canonical with previous. A nil previous means no
	// snapshot exists. The inputs are not modified.
	Reconcile(canonical, previous []catalogs.Record) (*Result, error)
}

// Classifier decides the origin of a record relative to the canonical id set.
type Classifier func(canonical provenance.IDSet, r *catalogs.Record) provenance.Class

// reconciler is the default implementation of Reconciler
type reconciler struct {
	authority authority.Authority
	differ    differ.Differ
	classify  Classifier
	now       func() time.Time
}

// Option configures a Reconciler
type Option func(*reconciler) error

// WithAuthority sets the field authorities used to carry snapshot state.
func WithAuthority(a authority.Authority) Option {
	return func(r *reconciler) error {
		r.authority = a
		return nil
	}
}

// WithDiffer sets the differ used for change detection.
func WithDiffer(d differ.Differ) Option {
	return func(r *reconciler) error {
		r.differ = d
		return nil
	}
}

// WithClassifier replaces the origin classifier.
func WithClassifier(c Classifier) Option {
	return func(r *reconciler) error {
		r.classify = c
		return nil
	}
}

// New creates a new Reconciler with options
func New(opts ...Option) (Reconciler, error) {
	r := &reconciler{
		authority: authority.Default(),
		differ:    differ.New(),
		classify:  provenance.Classify,
		now:       time.Now,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

var defaultReconciler, _ = New()

// Reconcile merges canonical with previous using the default reconciler and
// reports whether the merged list differs from previous.
func Reconcile(canonical, previous []catalogs.Record) ([]catalogs.Record, bool, error) {
	result, err := defaultReconciler.Reconcile(canonical, previous)
	if err != nil {
		return nil, false, err
	}
	return result.Records, result.Changed, nil
}

// Reconcile merges canonical with previous.
func (r *reconciler) Reconcile(canonical, previous []catalogs.Record) (*Result, error) {
	start := r.now()

	if err := checkDuplicates(canonical); err != nil {
		return nil, err
	}

	m := newMerger(r.authority, r.classify)
	merged := m.merge(canonical, previous)

	changeset := r.differ.Records(previous, merged)
	changed := !r.differ.Identical(merged, previous)

	end := r.now()
	return &Result{
		Records:   merged,
		Changed:   changed,
		FirstRun:  previous == nil,
		Changeset: changeset,
		Preserved: m.preserved,
		Dropped:   m.dropped,
		Statistics: Statistics{
			Canonical: len(canonical),
			Previous:  len(previous),
			Carried:   m.carried,
			Added:     m.added,
			Preserved: len(m.preserved),
			Dropped:   len(m.dropped),
			Merged:    len(merged),
		},
		Metadata: Metadata{
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
		},
	}, nil
}
