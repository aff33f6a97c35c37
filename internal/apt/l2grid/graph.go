package l2grid

import (
	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

// NeighborGraph is an undirected graph in compressed sparse row form. The
// neighbours of node i are Adj[Offsets[i]:Offsets[i+1]].
type NeighborGraph struct {
	Offsets []int
	Adj     []int32

	// Coincident counts distinct node pairs at zero distance.
	Coincident int
}

type edge struct{ a, b int32 }

// BuildNeighborGraph links every pair of points within separation of each
// other. Only cells in each other's 27-cell neighbourhood are compared, so
// grid.CellSize must be at least separation. Each unordered cell pair is
// visited once and each edge stored in both directions.
func BuildNeighborGraph(grid *CellGrid, points []l1ions.Point3D, separation float64) *NeighborGraph {
	sep2 := separation * separation
	g := &NeighborGraph{Offsets: make([]int, len(points)+1)}

	var edges []edge
	link := func(a, b int32) {
		d2 := points[a].Dist2(points[b])
		if d2 > sep2 {
			return
		}
		if d2 == 0 {
			g.Coincident++
		}
		edges = append(edges, edge{a, b})
	}

	for _, id := range grid.Occupied() {
		cell := grid.Cells[id]
		grid.Neighborhood(id, func(nid int64) {
			switch {
			case nid < id:
				return
			case nid == id:
				for i := 0; i < len(cell); i++ {
					for j := i + 1; j < len(cell); j++ {
						link(cell[i], cell[j])
					}
				}
			default:
				other, ok := grid.Cells[nid]
				if !ok {
					return
				}
				for _, a := range cell {
					for _, b := range other {
						link(a, b)
					}
				}
			}
		})
	}

	// Pass 1: degrees. Pass 2: fill.
	for _, e := range edges {
		g.Offsets[e.a+1]++
		g.Offsets[e.b+1]++
	}
	for i := 1; i < len(g.Offsets); i++ {
		g.Offsets[i] += g.Offsets[i-1]
	}
	g.Adj = make([]int32, g.Offsets[len(points)])
	cursor := append([]int(nil), g.Offsets[:len(points)]...)
	for _, e := range edges {
		g.Adj[cursor[e.a]] = e.b
		cursor[e.a]++
		g.Adj[cursor[e.b]] = e.a
		cursor[e.b]++
	}
	return g
}

// Len returns the node count.
func (g *NeighborGraph) Len() int { return len(g.Offsets) - 1 }

// Neighbors returns the adjacency list of node i.
func (g *NeighborGraph) Neighbors(i int) []int32 {
	return g.Adj[g.Offsets[i]:g.Offsets[i+1]]
}

// EdgeCount returns the number of undirected edges.
func (g *NeighborGraph) EdgeCount() int { return len(g.Adj) / 2 }

// HasEdge reports whether a and b are adjacent.
func (g *NeighborGraph) HasEdge(a, b int) bool {
	for _, n := range g.Neighbors(a) {
		if int(n) == b {
			return true
		}
	}
	return false
}
