package l1ions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() []IonRecord {
	return []IonRecord{
		{Point3D: Point3D{X: 0, Y: 0, Z: 0}, Species: 0},
		{Point3D: Point3D{X: 1, Y: 0, Z: 0}, Species: 1},
		{Point3D: Point3D{X: 2, Y: 0, Z: 0}, Species: Unranged},
		{Point3D: Point3D{X: 3, Y: 1, Z: 0}, Species: 0},
		{Point3D: Point3D{X: 4, Y: 0, Z: -2}, Species: 2},
	}
}

func TestMaterialize_AlignsSpeciesWithPositions(t *testing.T) {
	src := NewMemorySource(NewSpeciesCatalog("Cu", "Ni", "Fe"), testRecords())

	ds, err := Materialize(context.Background(), src, []SpeciesID{0}, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, ds.RangedCount())
	assert.Equal(t, 5, ds.TotalCount())
	assert.Equal(t, 1, ds.Unranged)
	assert.Equal(t, []int{2, 1, 1}, ds.Totals)
	assert.Equal(t, []SpeciesID{0, 1, 0, 2}, ds.Species)
	assert.Equal(t, []int{0, 2}, ds.Selected)
	for _, idx := range ds.Selected {
		assert.Equal(t, SpeciesID(0), ds.Species[idx])
	}
	assert.Empty(t, ds.Warnings)
	assert.Equal(t, Point3D{X: 0, Y: 0, Z: -2}, ds.Bounds.Min)
	assert.Equal(t, Point3D{X: 4, Y: 1, Z: 0}, ds.Bounds.Max)
}

func TestMaterialize_KeepsCoincidentIons(t *testing.T) {
	records := []IonRecord{
		{Point3D: Point3D{X: 1, Y: 1, Z: 1}, Species: 0},
		{Point3D: Point3D{X: 1, Y: 1, Z: 1}, Species: 1},
	}
	src := NewMemorySource(NewSpeciesCatalog("Cu", "Ni"), records)

	ds, err := Materialize(context.Background(), src, []SpeciesID{0, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, []SpeciesID{0, 1}, ds.Species)
	assert.Equal(t, []int{1, 1}, ds.Totals)
}

type badSource struct {
	*MemorySource
	chunk  Chunk
	counts []int
}

func (b badSource) SpeciesCounts() []int { return b.counts }

func (b badSource) Chunks(_ context.Context, _ int, fn func(Chunk) error) error {
	return fn(b.chunk)
}

func TestMaterialize_RejectsMisalignedChunk(t *testing.T) {
	src := badSource{
		MemorySource: NewMemorySource(NewSpeciesCatalog("Cu"), nil),
		chunk:        Chunk{Positions: []Point3D{{}, {}}, Species: []SpeciesID{0}},
	}
	_, err := Materialize(context.Background(), src, []SpeciesID{0}, 0)
	assert.ErrorContains(t, err, "2 positions but 1 species")
}

func TestMaterialize_RejectsUnknownSpecies(t *testing.T) {
	src := badSource{
		MemorySource: NewMemorySource(NewSpeciesCatalog("Cu"), nil),
		chunk:        Chunk{Positions: []Point3D{{}}, Species: []SpeciesID{4}},
	}
	_, err := Materialize(context.Background(), src, []SpeciesID{0}, 0)
	assert.ErrorContains(t, err, "outside catalog")
}

func TestMaterialize_WarnsOnCountMismatch(t *testing.T) {
	src := badSource{
		MemorySource: NewMemorySource(NewSpeciesCatalog("Cu"), nil),
		chunk:        Chunk{Positions: []Point3D{{}}, Species: []SpeciesID{0}},
		counts:       []int{3},
	}
	ds, err := Materialize(context.Background(), src, []SpeciesID{0}, 0)
	require.NoError(t, err)
	require.Len(t, ds.Warnings, 1)
	assert.Contains(t, ds.Warnings[0].Message, "reports 3 Cu ions but 1")
}

func TestMaterialize_HonoursCancellation(t *testing.T) {
	src := NewMemorySource(NewSpeciesCatalog("Cu", "Ni", "Fe"), testRecords())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Materialize(ctx, src, []SpeciesID{0}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
