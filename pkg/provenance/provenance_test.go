package provenance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/provenance"
)

func TestIsSynthetic(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"1700000000000", true},
		{"17000000000001", true},
		{"170000000000", false}, // 12 digits
		{"math-01", false},
		{"1700000000000a", false},
		{"", false},
		{" 1700000000000", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, provenance.IsSynthetic(tt.id), tt.id)
	}
}

func TestClassify(t *testing.T) {
	canonical := provenance.NewIDSet([]catalogs.Record{
		catalogs.NewTestRecord("math-01", "A"),
		catalogs.NewTestRecord("1700000000000", "B"),
	})

	tests := []struct {
		name string
		id   string
		tag  catalogs.Provenance
		want provenance.Class
	}{
		{name: "canonical id", id: "math-01", want: provenance.ClassCanonical},
		{name: "canonical id wins over user tag", id: "math-01", tag: catalogs.ProvenanceUser, want: provenance.ClassCanonical},
		{name: "numeric canonical id", id: "1700000000000", want: provenance.ClassCanonical},
		{name: "untagged synthetic", id: "1700000000001", want: provenance.ClassUser},
		{name: "untagged slug", id: "old-game", want: provenance.ClassOrphaned},
		{name: "user tag on slug", id: "my-quiz", tag: catalogs.ProvenanceUser, want: provenance.ClassUser},
		{name: "canonical tag on synthetic", id: "1700000000002", tag: catalogs.ProvenanceCanonical, want: provenance.ClassOrphaned},
		{name: "canonical tag beats synthetic shape", id: "1714999999999", tag: catalogs.ProvenanceCanonical, want: provenance.ClassOrphaned},
		{name: "user tag on synthetic", id: "1714999999999", tag: catalogs.ProvenanceUser, want: provenance.ClassUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := catalogs.NewTestRecord(tt.id, "x")
			r.Provenance = tt.tag
			assert.Equal(t, tt.want, provenance.Classify(canonical, &r))
		})
	}
}

func TestIDGeneratorMonotonic(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	g := provenance.NewIDGenerator(func() time.Time { return fixed })

	taken := provenance.IDSet{"1700000000001": {}}
	first := g.Next(taken)
	second := g.Next(taken)
	third := g.Next(nil)

	assert.Equal(t, "1700000000000", first)
	assert.Equal(t, "1700000000002", second)
	assert.Equal(t, "1700000000003", third)
	assert.True(t, provenance.IsSynthetic(third))
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "user-created", provenance.ClassUser.String())
	assert.Equal(t, "orphaned", provenance.ClassOrphaned.String())
}
