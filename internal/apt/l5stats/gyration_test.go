package l5stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

func TestComputeGyration_Colinear(t *testing.T) {
	ds := &l1ions.Dataset{
		Catalog:   l1ions.NewSpeciesCatalog("Cu", "Fe", "Ni"),
		Positions: []l1ions.Point3D{{X: 0}, {X: 1}, {X: 2}, {X: 3}},
		Species:   []l1ions.SpeciesID{0, 1, 0, 1},
	}

	g := ComputeGyration(ds, []int{0, 1, 2, 3})

	assert.Equal(t, 4, g.Members)
	assert.InDelta(t, 1.5, g.CenterOfMass.X, 1e-12)
	// Mean square deviation along X: (2.25+0.25+0.25+2.25)/4 = 1.25.
	assert.InDelta(t, math.Sqrt(1.25), g.Radius, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), g.Axis[0], 1e-12)
	assert.Zero(t, g.Axis[1])
	assert.Zero(t, g.Axis[2])

	require.Len(t, g.BySpecies, 2)
	cu := g.BySpecies[0]
	assert.Equal(t, l1ions.SpeciesID(0), cu.Species)
	assert.Equal(t, 2, cu.Members)
	assert.InDelta(t, 1.0, cu.CenterOfMass.X, 1e-12)
	assert.InDelta(t, 1.0, cu.Radius, 1e-12)
	fe := g.BySpecies[1]
	assert.Equal(t, l1ions.SpeciesID(1), fe.Species)
	assert.InDelta(t, 2.0, fe.CenterOfMass.X, 1e-12)
}

func TestComputeGyration_CombinesAxesBeforeRoot(t *testing.T) {
	ds := &l1ions.Dataset{
		Catalog: l1ions.NewSpeciesCatalog("Cu"),
		Positions: []l1ions.Point3D{
			{X: 1, Y: 2, Z: 0},
			{X: -1, Y: -2, Z: 0},
		},
		Species: []l1ions.SpeciesID{0, 0},
	}

	g := ComputeGyration(ds, []int{0, 1})
	assert.InDelta(t, 1.0, g.Axis[0], 1e-12)
	assert.InDelta(t, 2.0, g.Axis[1], 1e-12)
	assert.InDelta(t, math.Sqrt(5), g.Radius, 1e-12)
}

func TestComputeGyration_LargeOffsetIsStable(t *testing.T) {
	ds := &l1ions.Dataset{Catalog: l1ions.NewSpeciesCatalog("Cu")}
	var members []int
	for i := 0; i < 10000; i++ {
		ds.Positions = append(ds.Positions, l1ions.Point3D{X: 1e6 + float64(i%2), Y: 1e6, Z: 1e6})
		ds.Species = append(ds.Species, 0)
		members = append(members, i)
	}

	g := ComputeGyration(ds, members)
	assert.InDelta(t, 0.5, g.Radius, 1e-6)
}

func TestComputeGyration_EmptyIsNaN(t *testing.T) {
	ds := &l1ions.Dataset{Catalog: l1ions.NewSpeciesCatalog("Cu")}
	g := ComputeGyration(ds, nil)
	assert.True(t, math.IsNaN(g.Radius))
	assert.True(t, math.IsNaN(g.CenterOfMass.X))
	assert.Empty(t, g.BySpecies)
}
