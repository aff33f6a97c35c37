package l4envelope

import (
	"math"

	"github.com/banshee-data/composition.report/internal/apt"
	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

const opVoxelize = "voxelize envelope"

// VoxelGrid is a dense boolean occupancy grid. Cell (i,j,k) has its lower
// corner at Origin + (i,j,k)*Resolution.
type VoxelGrid struct {
	Origin     l1ions.Point3D
	Resolution float64
	Dims       [3]int

	cells []bool
}

// VoxelDims returns ceil(extent/resolution)+1 per axis.
func VoxelDims(box l1ions.Bounds, resolution float64) [3]int {
	ext := box.Extent()
	return [3]int{
		int(math.Ceil(ext.X/resolution)) + 1,
		int(math.Ceil(ext.Y/resolution)) + 1,
		int(math.Ceil(ext.Z/resolution)) + 1,
	}
}

// NewVoxelGrid allocates an empty grid over box. maxCells <= 0 disables the
// size check.
func NewVoxelGrid(box l1ions.Bounds, resolution float64, maxCells int64) (*VoxelGrid, error) {
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return nil, apt.InvalidInput(opVoxelize, "grid resolution must be positive, got %g", resolution)
	}
	ext := box.Extent()
	total := (math.Ceil(ext.X/resolution) + 1) * (math.Ceil(ext.Y/resolution) + 1) * (math.Ceil(ext.Z/resolution) + 1)
	if maxCells > 0 && total > float64(maxCells) {
		return nil, apt.ConfigurationTooFine(opVoxelize,
			"resolution %g over extent %.3gx%.3gx%.3g needs %.4g voxels (limit %d)",
			resolution, ext.X, ext.Y, ext.Z, total, maxCells)
	}
	dims := VoxelDims(box, resolution)
	return &VoxelGrid{
		Origin:     box.Min,
		Resolution: resolution,
		Dims:       dims,
		cells:      make([]bool, dims[0]*dims[1]*dims[2]),
	}, nil
}

func (g *VoxelGrid) index(i, j, k int) int {
	return i + g.Dims[0]*(j+g.Dims[1]*k)
}

func (g *VoxelGrid) inside(i, j, k int) bool {
	return i >= 0 && j >= 0 && k >= 0 && i < g.Dims[0] && j < g.Dims[1] && k < g.Dims[2]
}

// At reports whether (i,j,k) is occupied. Cells outside the grid are empty.
func (g *VoxelGrid) At(i, j, k int) bool {
	return g.inside(i, j, k) && g.cells[g.index(i, j, k)]
}

// Set marks (i,j,k) occupied. Out-of-grid cells are ignored.
func (g *VoxelGrid) Set(i, j, k int) {
	if g.inside(i, j, k) {
		g.cells[g.index(i, j, k)] = true
	}
}

// CellOf floors (p - Origin)/Resolution per axis. ok is false when the cell
// falls outside the grid.
func (g *VoxelGrid) CellOf(p l1ions.Point3D) (c [3]int, ok bool) {
	c = [3]int{
		int(math.Floor((p.X - g.Origin.X) / g.Resolution)),
		int(math.Floor((p.Y - g.Origin.Y) / g.Resolution)),
		int(math.Floor((p.Z - g.Origin.Z) / g.Resolution)),
	}
	return c, g.inside(c[0], c[1], c[2])
}

// Contains reports whether p falls in an occupied cell.
func (g *VoxelGrid) Contains(p l1ions.Point3D) bool {
	c, ok := g.CellOf(p)
	return ok && g.cells[g.index(c[0], c[1], c[2])]
}

// WorldPos returns the lower corner of cell (i,j,k).
func (g *VoxelGrid) WorldPos(i, j, k int) l1ions.Point3D {
	return l1ions.Point3D{
		X: g.Origin.X + float64(i)*g.Resolution,
		Y: g.Origin.Y + float64(j)*g.Resolution,
		Z: g.Origin.Z + float64(k)*g.Resolution,
	}
}

// Occupied counts occupied cells.
func (g *VoxelGrid) Occupied() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (g *VoxelGrid) Clone() *VoxelGrid {
	c := *g
	c.cells = append([]bool(nil), g.cells...)
	return &c
}

// Fill runs the X, Y and Z sweeps in that order, each on the previous
// result.
func (g *VoxelGrid) Fill() {
	for axis := 0; axis < 3; axis++ {
		g.sweep(axis)
	}
}

// sweep marks every cell between the first and last occupied cell of each
// line parallel to axis.
func (g *VoxelGrid) sweep(axis int) {
	stride := [3]int{1, g.Dims[0], g.Dims[0] * g.Dims[1]}
	b, c := (axis+1)%3, (axis+2)%3
	n := g.Dims[axis]

	for ic := 0; ic < g.Dims[c]; ic++ {
		for ib := 0; ib < g.Dims[b]; ib++ {
			base := ib*stride[b] + ic*stride[c]
			lo, hi := -1, -1
			for t := 0; t < n; t++ {
				if g.cells[base+t*stride[axis]] {
					if lo < 0 {
						lo = t
					}
					hi = t
				}
			}
			for t := lo + 1; lo >= 0 && t < hi; t++ {
				g.cells[base+t*stride[axis]] = true
			}
		}
	}
}
