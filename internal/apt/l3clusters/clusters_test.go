package l3clusters

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/composition.report/internal/apt/l1ions"
	"github.com/banshee-data/composition.report/internal/apt/l2grid"
)

func cluster(t *testing.T, points []l1ions.Point3D, sep float64) []Cluster {
	t.Helper()
	grid, err := l2grid.Bin(points, l1ions.Bounds{}, sep, 0)
	require.NoError(t, err)
	graph := l2grid.BuildNeighborGraph(grid, points, sep)
	nodeIndex := make([]int, len(points))
	for i := range nodeIndex {
		nodeIndex[i] = i
	}
	return Extract(graph, nodeIndex)
}

func colinear() []l1ions.Point3D {
	return []l1ions.Point3D{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
}

func TestExtract_ColinearWithinSeparation(t *testing.T) {
	clusters := cluster(t, colinear(), 1.5)
	res := Filter(clusters, 2)

	require.Len(t, res.Kept, 1)
	assert.Equal(t, 4, res.Kept[0].Size())
	assert.Equal(t, []int{0, 1, 2, 3}, res.Kept[0].Members)
	assert.Equal(t, 0, res.Removed)
	assert.Equal(t, 0, res.RemovedAtoms)
}

func TestExtract_ColinearBeyondSeparation(t *testing.T) {
	clusters := cluster(t, colinear(), 0.5)
	require.Len(t, clusters, 4)

	res := Filter(clusters, 2)
	assert.Empty(t, res.Kept)
	assert.Equal(t, map[int]int{1: 4}, res.Histogram())
	assert.Equal(t, 4, res.Removed)
}

func TestExtract_PartitionIsExact(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	points := make([]l1ions.Point3D, 2000)
	for i := range points {
		points[i] = l1ions.Point3D{X: rng.Float64() * 10, Y: rng.Float64() * 10, Z: rng.Float64() * 10}
	}
	clusters := cluster(t, points, 0.6)

	var all []int
	for _, c := range clusters {
		all = append(all, c.Members...)
	}
	sort.Ints(all)
	require.Len(t, all, len(points))
	for i, idx := range all {
		assert.Equal(t, i, idx)
	}
}

func TestExtract_ReachabilityBound(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	points := make([]l1ions.Point3D, 500)
	for i := range points {
		points[i] = l1ions.Point3D{X: rng.Float64() * 8, Y: rng.Float64() * 8, Z: rng.Float64() * 8}
	}
	const sep = 0.7
	clusters := cluster(t, points, sep)

	label := make([]int, len(points))
	for ci, c := range clusters {
		for _, m := range c.Members {
			label[m] = ci
		}
	}
	for a := range points {
		for b := a + 1; b < len(points); b++ {
			if points[a].Dist2(points[b]) <= sep*sep {
				assert.Equal(t, label[a], label[b], "direct neighbours %d,%d split", a, b)
			}
		}
	}
}

func TestExtract_MapsNodesToDatasetIndices(t *testing.T) {
	points := []l1ions.Point3D{{X: 0}, {X: 5}, {X: 0.2}}
	grid, err := l2grid.Bin(points, l1ions.Bounds{}, 1, 0)
	require.NoError(t, err)
	graph := l2grid.BuildNeighborGraph(grid, points, 1)

	clusters := Extract(graph, []int{10, 20, 30})
	require.Len(t, clusters, 2)
	assert.Equal(t, []int{10, 30}, clusters[0].Members)
	assert.Equal(t, []int{20}, clusters[1].Members)
}

func TestFilter_ConservesAtoms(t *testing.T) {
	clusters := []Cluster{
		{Members: []int{0}},
		{Members: []int{1, 2, 3}},
		{Members: []int{4, 5}},
		{Members: []int{6}},
		{Members: []int{7, 8, 9, 10, 11}},
	}
	res := Filter(clusters, 3)

	removed := 0
	for size, n := range res.RemovedBySize {
		removed += size * n
	}
	assert.Equal(t, 12, removed+res.KeptAtoms())
	assert.Equal(t, []int{0, 2, 1}, res.RemovedBySize)
	assert.Equal(t, 3, res.Removed)
	assert.Len(t, res.Kept, 2)
	assert.Equal(t, 3, res.Kept[0].Size())
}

func TestFilter_MinimumOneKeepsEverything(t *testing.T) {
	res := Filter([]Cluster{{Members: []int{0}}}, 1)
	assert.Len(t, res.Kept, 1)
	assert.Empty(t, res.Histogram())
}
