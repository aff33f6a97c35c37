package l1ions

import (
	"slices"
	"sort"
)

// RangeIndex answers box queries over a fixed position set. Indices are
// sorted by X so a query touches only the X slab of the box.
type RangeIndex struct {
	positions []Point3D
	order     []int
}

// NewRangeIndex indexes positions. The slice is retained, not copied.
func NewRangeIndex(positions []Point3D) *RangeIndex {
	order := make([]int, len(positions))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case positions[a].X < positions[b].X:
			return -1
		case positions[a].X > positions[b].X:
			return 1
		}
		return 0
	})
	return &RangeIndex{positions: positions, order: order}
}

// Query calls fn with the index of every position inside b, in ascending
// X order.
func (ri *RangeIndex) Query(b Bounds, fn func(idx int)) {
	if b.Empty() {
		return
	}
	start := sort.Search(len(ri.order), func(i int) bool {
		return ri.positions[ri.order[i]].X >= b.Min.X
	})
	for _, idx := range ri.order[start:] {
		p := ri.positions[idx]
		if p.X > b.Max.X {
			return
		}
		if p.Y < b.Min.Y || p.Y > b.Max.Y || p.Z < b.Min.Z || p.Z > b.Max.Z {
			continue
		}
		fn(idx)
	}
}
