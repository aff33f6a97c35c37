package l4envelope

import (
	"math"

	"github.com/banshee-data/composition.report/internal/apt/l1ions"
	"github.com/banshee-data/composition.report/internal/apt/l3clusters"
)

// Envelope is the voxel volume grown around one surviving cluster plus every
// ranged ion that falls in its occupied cells.
type Envelope struct {
	Box  l1ions.Bounds
	Grid *VoxelGrid

	// Counts is indexed by species id and covers the re-scanned membership,
	// which may exceed the original cluster.
	Counts  []int
	Points  []l1ions.Point3D
	Members int
}

// Total returns the number of ions captured by the envelope.
func (e *Envelope) Total() int { return len(e.Points) }

// Volume returns the occupied volume in nm³.
func (e *Envelope) Volume() float64 {
	r := e.Grid.Resolution
	return float64(e.Grid.Occupied()) * r * r * r
}

// Density returns captured ions per nm³. ok is false, and the value NaN,
// when no voxel is occupied.
func (e *Envelope) Density() (float64, bool) {
	v := e.Volume()
	if v == 0 {
		return math.NaN(), false
	}
	return float64(e.Total()) / v, true
}

// Voxelizer builds envelopes at a fixed resolution.
type Voxelizer struct {
	Resolution float64
	FillIn     bool
	// MaxCells bounds a single envelope grid; <= 0 disables the check.
	MaxCells int64
}

// Build voxelizes cluster c over the dataset. index must cover
// ds.Positions.
func (v Voxelizer) Build(ds *l1ions.Dataset, index *l1ions.RangeIndex, c l3clusters.Cluster) (*Envelope, error) {
	var box l1ions.Bounds
	for _, m := range c.Members {
		box.Add(ds.Positions[m])
	}
	box = box.Pad(v.Resolution)

	grid, err := NewVoxelGrid(box, v.Resolution, v.MaxCells)
	if err != nil {
		return nil, err
	}
	for _, m := range c.Members {
		if cell, ok := grid.CellOf(ds.Positions[m]); ok {
			grid.Set(cell[0], cell[1], cell[2])
		}
	}
	if v.FillIn {
		grid.Fill()
	}

	env := &Envelope{
		Box:     box,
		Grid:    grid,
		Counts:  make([]int, ds.Catalog.Len()),
		Members: c.Size(),
	}
	index.Query(box, func(idx int) {
		p := ds.Positions[idx]
		if !grid.Contains(p) {
			return
		}
		env.Counts[ds.Species[idx]]++
		env.Points = append(env.Points, p)
	})
	return env, nil
}
