package l2grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/composition.report/internal/apt"
	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

func TestGridDims(t *testing.T) {
	b := l1ions.NewBounds(l1ions.Point3D{}, l1ions.Point3D{X: 3, Y: 0.99, Z: 10})
	assert.Equal(t, [3]int{4, 1, 11}, GridDims(b, 1.0))
}

func TestBin_AssignsEveryPointOnce(t *testing.T) {
	points := []l1ions.Point3D{
		{X: 0, Y: 0, Z: 0},
		{X: 0.4, Y: 0.1, Z: 0.2},
		{X: 1.2, Y: 0, Z: 0},
		{X: 2.9, Y: 2.9, Z: 2.9},
	}
	b := l1ions.NewBounds(l1ions.Point3D{}, l1ions.Point3D{X: 3, Y: 3, Z: 3})

	g, err := Bin(points, b, 1.0, 0)
	require.NoError(t, err)
	assert.Equal(t, [3]int{4, 4, 4}, g.Dims)

	seen := make(map[int32]int)
	for _, id := range g.Occupied() {
		for _, idx := range g.Cells[id] {
			seen[idx]++
		}
	}
	assert.Len(t, seen, len(points))
	for idx, n := range seen {
		assert.Equal(t, 1, n, "point %d binned %d times", idx, n)
	}
	assert.Equal(t, []int32{0, 1}, g.Cells[0])
	assert.Equal(t, [3]int{2, 2, 2}, g.CellOf(points[3]))
}

func TestBin_ClampsPointsOutsideBounds(t *testing.T) {
	b := l1ions.NewBounds(l1ions.Point3D{}, l1ions.Point3D{X: 1, Y: 1, Z: 1})
	g, err := Bin([]l1ions.Point3D{{X: -0.5, Y: 5, Z: 0.5}}, b, 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, [3]int{0, 2, 1}, g.CellOf(l1ions.Point3D{X: -0.5, Y: 5, Z: 0.5}))
}

func TestBin_RejectsTooFineGrid(t *testing.T) {
	b := l1ions.NewBounds(l1ions.Point3D{}, l1ions.Point3D{X: 100, Y: 100, Z: 100})

	_, err := Bin(nil, b, 0.2, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apt.ErrConfigurationTooFine))

	_, err = Bin(nil, b, 10, 100)
	assert.True(t, errors.Is(err, apt.ErrConfigurationTooFine))

	_, err = Bin(nil, b, 10, 11*11*11)
	assert.NoError(t, err)
}

func TestBin_RejectsNonPositiveCellSize(t *testing.T) {
	_, err := Bin(nil, l1ions.Bounds{}, 0, 0)
	assert.True(t, errors.Is(err, apt.ErrInvalidInput))
}

func TestNeighborhood_ClipsAtBoundary(t *testing.T) {
	b := l1ions.NewBounds(l1ions.Point3D{}, l1ions.Point3D{X: 2, Y: 2, Z: 2})
	g, err := Bin(nil, b, 1, 0)
	require.NoError(t, err)

	count := 0
	g.Neighborhood(g.cellID([3]int{0, 0, 0}), func(int64) { count++ })
	assert.Equal(t, 8, count)

	count = 0
	g.Neighborhood(g.cellID([3]int{1, 1, 1}), func(int64) { count++ })
	assert.Equal(t, 27, count)
}
