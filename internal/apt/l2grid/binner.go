package l2grid

import (
	"math"
	"slices"

	"github.com/banshee-data/composition.report/internal/apt"
	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

const (
	// DefaultMaxCells caps the number of grid cells a configuration may
	// address before binning is refused.
	DefaultMaxCells int64 = 120_000_000

	opBin = "bin ions"
)

// CellGrid is a sparse uniform grid over a bounding box. Only occupied
// cells are stored.
type CellGrid struct {
	CellSize float64
	Origin   l1ions.Point3D
	Dims     [3]int

	// Cells maps a linear cell id to the indices of the points inside it.
	Cells map[int64][]int32

	keys []int64
}

// GridDims returns floor(extent/cellSize)+1 per axis.
func GridDims(bounds l1ions.Bounds, cellSize float64) [3]int {
	ext := bounds.Extent()
	return [3]int{
		int(math.Floor(ext.X/cellSize)) + 1,
		int(math.Floor(ext.Y/cellSize)) + 1,
		int(math.Floor(ext.Z/cellSize)) + 1,
	}
}

// Bin assigns every point to its cell. Bounds are the dataset extents; the
// cell count implied by bounds and cellSize is checked against maxCells
// before anything is allocated. maxCells <= 0 selects DefaultMaxCells.
func Bin(points []l1ions.Point3D, bounds l1ions.Bounds, cellSize float64, maxCells int64) (*CellGrid, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, apt.InvalidInput(opBin, "cell size must be positive, got %g", cellSize)
	}
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	if len(points) > math.MaxInt32 {
		return nil, apt.InvalidInput(opBin, "%d points exceed the grid index range", len(points))
	}
	if bounds.Empty() {
		for _, p := range points {
			bounds.Add(p)
		}
	}

	ext := bounds.Extent()
	total := (math.Floor(ext.X/cellSize) + 1) * (math.Floor(ext.Y/cellSize) + 1) * (math.Floor(ext.Z/cellSize) + 1)
	if total > float64(maxCells) || math.IsNaN(total) {
		return nil, apt.ConfigurationTooFine(opBin,
			"cell size %g over extent %.3gx%.3gx%.3g needs %.4g cells (limit %d)",
			cellSize, ext.X, ext.Y, ext.Z, total, maxCells)
	}

	g := &CellGrid{
		CellSize: cellSize,
		Origin:   bounds.Min,
		Dims:     GridDims(bounds, cellSize),
		Cells:    make(map[int64][]int32, len(points)/4+1),
	}
	for i, p := range points {
		id := g.cellID(g.CellOf(p))
		g.Cells[id] = append(g.Cells[id], int32(i))
	}

	g.keys = make([]int64, 0, len(g.Cells))
	for id := range g.Cells {
		g.keys = append(g.keys, id)
	}
	slices.Sort(g.keys)
	return g, nil
}

// CellOf returns the integer cell coordinate of p, clamped to the grid.
func (g *CellGrid) CellOf(p l1ions.Point3D) [3]int {
	return [3]int{
		clampCell(p.X-g.Origin.X, g.CellSize, g.Dims[0]),
		clampCell(p.Y-g.Origin.Y, g.CellSize, g.Dims[1]),
		clampCell(p.Z-g.Origin.Z, g.CellSize, g.Dims[2]),
	}
}

func clampCell(offset, size float64, dim int) int {
	c := int(math.Floor(offset / size))
	if c < 0 {
		return 0
	}
	if c >= dim {
		return dim - 1
	}
	return c
}

func (g *CellGrid) cellID(c [3]int) int64 {
	return int64(c[0]) + int64(g.Dims[0])*(int64(c[1])+int64(g.Dims[1])*int64(c[2]))
}

func (g *CellGrid) cellCoord(id int64) [3]int {
	nx := int64(g.Dims[0])
	ny := int64(g.Dims[1])
	return [3]int{int(id % nx), int((id / nx) % ny), int(id / (nx * ny))}
}

// Occupied returns the occupied cell ids in ascending order.
func (g *CellGrid) Occupied() []int64 { return g.keys }

// Neighborhood calls fn with the id of every in-grid cell in the 3x3x3 block
// centred on id, the centre included.
func (g *CellGrid) Neighborhood(id int64, fn func(nid int64)) {
	c := g.cellCoord(id)
	for dz := -1; dz <= 1; dz++ {
		z := c[2] + dz
		if z < 0 || z >= g.Dims[2] {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			y := c[1] + dy
			if y < 0 || y >= g.Dims[1] {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				x := c[0] + dx
				if x < 0 || x >= g.Dims[0] {
					continue
				}
				fn(g.cellID([3]int{x, y, z}))
			}
		}
	}
}
