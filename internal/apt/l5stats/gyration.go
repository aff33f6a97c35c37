package l5stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

// Gyration summarises the spread of a point set about its centre of mass.
type Gyration struct {
	Members      int
	CenterOfMass l1ions.Point3D
	// Radius is sqrt of the summed per-axis mean-square deviations.
	Radius float64
	// Axis holds sqrt(mean-square deviation) along X, Y and Z.
	Axis [3]float64
}

// SpeciesGyration is the gyration of one species' members of a cluster.
type SpeciesGyration struct {
	Species l1ions.SpeciesID
	Gyration
}

// ClusterGyration holds the overall gyration and one entry per species
// present in the cluster, in species id order.
type ClusterGyration struct {
	Gyration
	BySpecies []SpeciesGyration
}

// ComputeGyration evaluates members (dataset indices) of one cluster. All
// sums are float64 via gonum/stat.
func ComputeGyration(ds *l1ions.Dataset, members []int) ClusterGyration {
	out := ClusterGyration{Gyration: gyrationOf(ds.Positions, members)}

	bySpecies := make([][]int, ds.Catalog.Len())
	for _, m := range members {
		s := ds.Species[m]
		bySpecies[s] = append(bySpecies[s], m)
	}
	for s, idx := range bySpecies {
		if len(idx) == 0 {
			continue
		}
		out.BySpecies = append(out.BySpecies, SpeciesGyration{
			Species:  l1ions.SpeciesID(s),
			Gyration: gyrationOf(ds.Positions, idx),
		})
	}
	return out
}

func gyrationOf(positions []l1ions.Point3D, members []int) Gyration {
	g := Gyration{Members: len(members)}
	if len(members) == 0 {
		nan := math.NaN()
		g.CenterOfMass = l1ions.Point3D{X: nan, Y: nan, Z: nan}
		g.Radius = nan
		g.Axis = [3]float64{nan, nan, nan}
		return g
	}

	coord := make([]float64, len(members))
	var com, msds [3]float64
	for axis := 0; axis < 3; axis++ {
		for i, m := range members {
			coord[i] = positions[m].Axis(axis)
		}
		mean := stat.Mean(coord, nil)
		msd := stat.MomentAbout(2, coord, mean, nil)
		com[axis] = mean
		g.Axis[axis] = math.Sqrt(msd)
		msds[axis] = msd
	}
	g.CenterOfMass = l1ions.Point3D{X: com[0], Y: com[1], Z: com[2]}
	g.Radius = math.Sqrt(floats.Sum(msds[:]))
	return g
}
