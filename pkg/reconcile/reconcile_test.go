package reconcile_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/provenance"
	"github.com/ashkam58/mathflix/pkg/reconcile"
)

func rec(id string, views int64) catalogs.Record {
	r := catalogs.NewTestRecord(id, "Game "+id)
	r.Views = views
	return r
}

func withTitle(r catalogs.Record, title string) catalogs.Record {
	r.Title = title
	return r
}

func TestReconcileScenarios(t *testing.T) {
	tests := []struct {
		name        string
		canonical   []catalogs.Record
		previous    []catalogs.Record
		wantIDs     []string
		wantViews   []int64
		wantChanged bool
	}{
		{
			name:        "first run without snapshot",
			canonical:   []catalogs.Record{rec("a", 0)},
			previous:    nil,
			wantIDs:     []string{"a"},
			wantViews:   []int64{0},
			wantChanged: true,
		},
		{
			name:        "title drift refreshes and keeps views",
			canonical:   []catalogs.Record{withTitle(rec("a", 0), "New")},
			previous:    []catalogs.Record{withTitle(rec("a", 7), "Old")},
			wantIDs:     []string{"a"},
			wantViews:   []int64{7},
			wantChanged: true,
		},
		{
			name:        "orphan is dropped",
			canonical:   []catalogs.Record{rec("a", 0)},
			previous:    []catalogs.Record{rec("a", 3), rec("b", 1)},
			wantIDs:     []string{"a"},
			wantViews:   []int64{3},
			wantChanged: true,
		},
		{
			name:        "user-created record survives in order",
			canonical:   []catalogs.Record{rec("a", 0)},
			previous:    []catalogs.Record{rec("a", 3), rec("1714999999999", 2)},
			wantIDs:     []string{"a", "1714999999999"},
			wantViews:   []int64{3, 2},
			wantChanged: false,
		},
		{
			name:        "empty snapshot is not absent",
			canonical:   nil,
			previous:    []catalogs.Record{},
			wantIDs:     []string{},
			wantViews:   []int64{},
			wantChanged: false,
		},
		{
			name:        "user records move behind canonical records",
			canonical:   []catalogs.Record{rec("a", 0)},
			previous:    []catalogs.Record{rec("1714999999999", 2), rec("a", 3)},
			wantIDs:     []string{"a", "1714999999999"},
			wantViews:   []int64{3, 2},
			wantChanged: true,
		},
		{
			name:        "new canonical record keeps its seed views",
			canonical:   []catalogs.Record{rec("a", 0), rec("b", 1200)},
			previous:    []catalogs.Record{rec("a", 3)},
			wantIDs:     []string{"a", "b"},
			wantViews:   []int64{3, 1200},
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, changed, err := reconcile.Reconcile(tt.canonical, tt.previous)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, catalogs.IDs(merged))
			views := make([]int64, len(merged))
			for i, r := range merged {
				views[i] = r.Views
			}
			assert.Equal(t, tt.wantViews, views)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestReconcileTitleRefreshed(t *testing.T) {
	merged, _, err := reconcile.Reconcile(
		[]catalogs.Record{withTitle(rec("a", 0), "New")},
		[]catalogs.Record{withTitle(rec("a", 7), "Old")},
	)
	require.NoError(t, err)
	assert.Equal(t, "New", merged[0].Title)
}

func TestReconcileDuplicateDefinition(t *testing.T) {
	_, _, err := reconcile.Reconcile([]catalogs.Record{rec("a", 0), rec("b", 0), rec("a", 0)}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateDefinition(err))

	var dup *errors.DuplicateDefinitionError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "a", dup.ID)
	assert.Equal(t, []int{0, 2}, dup.Positions)
}

func TestReconcileResult(t *testing.T) {
	r, err := reconcile.New()
	require.NoError(t, err)

	res, err := r.Reconcile(
		[]catalogs.Record{withTitle(rec("a", 0), "A v2"), rec("c", 0)},
		[]catalogs.Record{rec("a", 5), rec("b", 1), rec("1714999999999", 2)},
	)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.False(t, res.FirstRun)
	assert.Equal(t, []string{"1714999999999"}, res.Preserved)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, "b", res.Dropped[0].ID)

	assert.Equal(t, reconcile.Statistics{
		Canonical: 2, Previous: 3, Carried: 1, Added: 1, Preserved: 1, Dropped: 1, Merged: 3,
	}, res.Statistics)
	assert.Equal(t, res.Statistics.Canonical+res.Statistics.Preserved, res.Statistics.Merged)
	assert.Len(t, res.Records, res.Statistics.Merged)

	require.Len(t, res.Changeset.Added, 1)
	assert.Equal(t, "c", res.Changeset.Added[0].ID)
	require.Len(t, res.Changeset.Updated, 1)
	assert.Equal(t, "a", res.Changeset.Updated[0].ID)
	require.Len(t, res.Changeset.Removed, 1)
	assert.Equal(t, "b", res.Changeset.Removed[0].ID)
	assert.Contains(t, res.Summary(), "1 added")
}

func TestReconcileExplicitProvenance(t *testing.T) {
	userSlug := rec("my-fraction-quiz", 4)
	userSlug.Provenance = catalogs.ProvenanceUser

	retiredNumeric := rec("1600000000000", 9)
	retiredNumeric.Provenance = catalogs.ProvenanceCanonical

	merged, changed, err := reconcile.Reconcile(
		[]catalogs.Record{rec("a", 0)},
		[]catalogs.Record{rec("a", 1), userSlug, retiredNumeric},
	)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"a", "my-fraction-quiz"}, catalogs.IDs(merged))
}

func TestReconcileComponentPassThrough(t *testing.T) {
	type component struct{ name string }
	c := rec("dsa-search-01", 0)
	c.Type = catalogs.ContentTypeReact
	c.Component = &component{name: "LinearSearch"}

	prev := rec("dsa-search-01", 11)
	prev.Type = catalogs.ContentTypeReact

	merged, changed, err := reconcile.Reconcile([]catalogs.Record{c}, []catalogs.Record{prev})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, c.Component, merged[0].Component)
	assert.Equal(t, int64(11), merged[0].Views)
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	canonical := []catalogs.Record{withTitle(rec("a", 0), "New")}
	previous := []catalogs.Record{withTitle(rec("a", 7), "Old"), rec("b", 1)}

	_, _, err := reconcile.Reconcile(canonical, previous)
	require.NoError(t, err)
	assert.Equal(t, int64(0), canonical[0].Views)
	assert.Equal(t, "Old", previous[0].Title)
	assert.Len(t, previous, 2)
}

func TestReconcileCorruptSnapshotDuplicates(t *testing.T) {
	merged, changed, err := reconcile.Reconcile(
		[]catalogs.Record{rec("a", 0)},
		[]catalogs.Record{rec("a", 3), rec("a", 99), rec("1714999999999", 1), rec("1714999999999", 2)},
	)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Equal(t, []string{"a", "1714999999999"}, catalogs.IDs(merged))
	assert.Equal(t, int64(3), merged[0].Views)
	assert.Equal(t, int64(1), merged[1].Views)
}

// randomCase builds a canonical list and a previous snapshot that mixes
// canonical, user-created and orphaned records.
func randomCase(rng *rand.Rand) (canonical, previous []catalogs.Record) {
	n := rng.Intn(8)
	for i := 0; i < n; i++ {
		canonical = append(canonical, rec(fmt.Sprintf("game-%d", i), int64(rng.Intn(3))))
	}
	if rng.Intn(5) == 0 {
		return canonical, nil
	}
	previous = []catalogs.Record{}
	m := rng.Intn(10)
	for i := 0; i < m; i++ {
		switch rng.Intn(3) {
		case 0:
			r := rec(fmt.Sprintf("game-%d", rng.Intn(10)), int64(rng.Intn(100)))
			if rng.Intn(2) == 0 {
				r.Title = "stale"
			}
			previous = append(previous, r)
		case 1:
			previous = append(previous, rec(fmt.Sprintf("17%011d", rng.Intn(1000)), int64(rng.Intn(100))))
		default:
			previous = append(previous, rec(fmt.Sprintf("retired-%d", rng.Intn(5)), int64(rng.Intn(100))))
		}
	}
	return canonical, previous
}

func TestReconcileProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		canonical, previous := randomCase(rng)
		merged, _, err := reconcile.Reconcile(canonical, previous)
		require.NoError(t, err)

		canonicalIDs := provenance.NewIDSet(canonical)
		firstPrev := map[string]catalogs.Record{}
		for _, p := range previous {
			if _, ok := firstPrev[p.ID]; !ok {
				firstPrev[p.ID] = p
			}
		}

		// unique ids
		seen := map[string]bool{}
		for _, m := range merged {
			require.False(t, seen[m.ID], "duplicate id %s", m.ID)
			seen[m.ID] = true
		}

		// canonical first, in canonical order, fields refreshed, views carried
		require.GreaterOrEqual(t, len(merged), len(canonical))
		for j, c := range canonical {
			m := merged[j]
			assert.Equal(t, c.ID, m.ID)
			assert.Equal(t, c.Title, m.Title)
			if p, ok := firstPrev[c.ID]; ok {
				assert.Equal(t, p.Views, m.Views)
			} else {
				assert.Equal(t, c.Views, m.Views)
			}
		}

		// every synthetic non-canonical record survives, orphans never do
		for _, p := range previous {
			if canonicalIDs.Has(p.ID) {
				continue
			}
			assert.Equal(t, provenance.IsSynthetic(p.ID), seen[p.ID], p.ID)
		}

		// idempotence
		again, changed, err := reconcile.Reconcile(canonical, merged)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, catalogs.IDs(merged), catalogs.IDs(again))
	}
}
