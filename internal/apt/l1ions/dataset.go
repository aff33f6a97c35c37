package l1ions

import (
	"context"
	"fmt"

	"github.com/banshee-data/composition.report/internal/apt"
)

// Dataset is the fully materialised input to clustering. Positions and
// Species are index-aligned and hold ranged ions only; Selected lists the
// indices whose species is in the selection, in ingestion order.
type Dataset struct {
	Catalog   SpeciesCatalog
	Bounds    Bounds
	Positions []Point3D
	Species   []SpeciesID
	Selected  []int

	// Totals holds the ranged-ion count per species as observed during the
	// materialisation pass.
	Totals []int
	// Unranged counts ions without a species. They are dropped from
	// Positions but kept here for normalisation.
	Unranged int

	Warnings []apt.Warning
}

// RangedCount returns the number of ranged ions.
func (d *Dataset) RangedCount() int { return len(d.Positions) }

// TotalCount returns ranged plus unranged ions.
func (d *Dataset) TotalCount() int { return len(d.Positions) + d.Unranged }

// Materialize pulls every chunk from src before returning, so clustering
// never sees a partial dataset.
func Materialize(ctx context.Context, src IonSource, selection []SpeciesID, chunkSize int) (*Dataset, error) {
	catalog := src.Catalog()
	mask := SelectionMask(selection, catalog.Len())

	ds := &Dataset{
		Catalog: catalog,
		Bounds:  src.Bounds(),
		Totals:  make([]int, catalog.Len()),
	}

	expected := src.SpeciesCounts()
	capacity := 0
	for _, n := range expected {
		capacity += n
	}
	ds.Positions = make([]Point3D, 0, capacity)
	ds.Species = make([]SpeciesID, 0, capacity)

	err := src.Chunks(ctx, chunkSize, func(c Chunk) error {
		if len(c.Positions) != len(c.Species) {
			return fmt.Errorf("chunk has %d positions but %d species ids", len(c.Positions), len(c.Species))
		}
		for i, s := range c.Species {
			if !s.Ranged() {
				ds.Unranged++
				continue
			}
			if !catalog.Contains(s) {
				return fmt.Errorf("species id %d outside catalog of %d", s, catalog.Len())
			}
			idx := len(ds.Positions)
			ds.Positions = append(ds.Positions, c.Positions[i])
			ds.Species = append(ds.Species, s)
			ds.Totals[s]++
			if mask[s] {
				ds.Selected = append(ds.Selected, idx)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("materialize ions: %w", err)
	}

	for id, n := range expected {
		if id < len(ds.Totals) && ds.Totals[id] != n {
			ds.Warnings = append(ds.Warnings, apt.Warnf(apt.WarnConsistency,
				"source reports %d %s ions but %d were read", n, catalog.Name(SpeciesID(id)), ds.Totals[id]))
		}
	}

	if ds.Bounds.Empty() {
		for _, p := range ds.Positions {
			ds.Bounds.Add(p)
		}
	}
	return ds, nil
}
