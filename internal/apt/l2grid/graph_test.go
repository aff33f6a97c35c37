package l2grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

func randomPoints(n int, size float64, seed int64) []l1ions.Point3D {
	rng := rand.New(rand.NewSource(seed))
	points := make([]l1ions.Point3D, n)
	for i := range points {
		points[i] = l1ions.Point3D{X: rng.Float64() * size, Y: rng.Float64() * size, Z: rng.Float64() * size}
	}
	return points
}

func buildGraph(t *testing.T, points []l1ions.Point3D, sep float64) *NeighborGraph {
	t.Helper()
	g, err := Bin(points, l1ions.Bounds{}, sep, 0)
	require.NoError(t, err)
	return BuildNeighborGraph(g, points, sep)
}

func TestBuildNeighborGraph_MatchesBruteForce(t *testing.T) {
	points := randomPoints(400, 6, 42)
	const sep = 0.8
	graph := buildGraph(t, points, sep)

	want := 0
	for a := range points {
		for b := range points {
			if a == b {
				continue
			}
			near := points[a].Dist2(points[b]) <= sep*sep
			if near {
				want++
			}
			assert.Equal(t, near, graph.HasEdge(a, b), "edge(%d,%d)", a, b)
		}
	}
	assert.Equal(t, want/2, graph.EdgeCount())
}

func TestBuildNeighborGraph_Symmetric(t *testing.T) {
	points := randomPoints(300, 4, 7)
	graph := buildGraph(t, points, 0.5)

	for a := 0; a < graph.Len(); a++ {
		for _, b := range graph.Neighbors(a) {
			assert.True(t, graph.HasEdge(int(b), a), "edge(%d,%d) without reverse", a, b)
		}
	}
}

func TestBuildNeighborGraph_NoSelfLoops(t *testing.T) {
	points := []l1ions.Point3D{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1.1, Y: 1, Z: 1}}
	graph := buildGraph(t, points, 0.5)

	for a := 0; a < graph.Len(); a++ {
		assert.False(t, graph.HasEdge(a, a), "self loop on %d", a)
	}
	assert.Equal(t, 3, graph.EdgeCount())
	assert.Equal(t, 1, graph.Coincident)
}

func TestBuildNeighborGraph_SeparationIsInclusive(t *testing.T) {
	points := []l1ions.Point3D{{X: 0}, {X: 1}, {X: 2.5}}
	graph := buildGraph(t, points, 1.0)

	assert.True(t, graph.HasEdge(0, 1))
	assert.False(t, graph.HasEdge(1, 2))
	assert.Equal(t, 1, graph.EdgeCount())
}

func TestBuildNeighborGraph_Empty(t *testing.T) {
	graph := buildGraph(t, nil, 1.0)
	assert.Equal(t, 0, graph.Len())
	assert.Equal(t, 0, graph.EdgeCount())
}
