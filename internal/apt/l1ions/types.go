package l1ions

import "math"

// Point3D is a position in nanometres.
type Point3D struct {
	X, Y, Z float64
}

// Sub returns p - q.
func (p Point3D) Sub(q Point3D) Point3D {
	return Point3D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Dist2 returns the squared Euclidean distance between p and q.
func (p Point3D) Dist2(q Point3D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return dx*dx + dy*dy + dz*dz
}

// Axis returns the coordinate on axis 0 (X), 1 (Y) or 2 (Z).
func (p Point3D) Axis(a int) float64 {
	switch a {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// SpeciesID indexes the SpeciesCatalog.
type SpeciesID uint16

// Unranged marks an ion with no assigned species. Such ions never join a
// cluster and are absent from per-species totals, but they still count
// toward the whole-dataset atom total used for normalisation.
const Unranged SpeciesID = math.MaxUint16

// Ranged reports whether s names a catalog species.
func (s SpeciesID) Ranged() bool { return s != Unranged }

// IonRecord is one detected ion.
type IonRecord struct {
	Point3D
	Species SpeciesID
}

// Bounds is an axis-aligned box. The zero value is empty.
type Bounds struct {
	Min, Max Point3D
	valid    bool
}

// NewBounds returns the box spanning min and max.
func NewBounds(min, max Point3D) Bounds {
	return Bounds{Min: min, Max: max, valid: true}
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool { return !b.valid }

// Add grows b to include p.
func (b *Bounds) Add(p Point3D) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Min.Z = math.Min(b.Min.Z, p.Z)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
	b.Max.Z = math.Max(b.Max.Z, p.Z)
}

// Union grows b to include o.
func (b *Bounds) Union(o Bounds) {
	if o.Empty() {
		return
	}
	b.Add(o.Min)
	b.Add(o.Max)
}

// Extent returns Max - Min. An empty box has zero extent.
func (b Bounds) Extent() Point3D {
	if !b.valid {
		return Point3D{}
	}
	return b.Max.Sub(b.Min)
}

// Pad returns b grown by d on every side.
func (b Bounds) Pad(d float64) Bounds {
	if !b.valid {
		return b
	}
	return NewBounds(
		Point3D{X: b.Min.X - d, Y: b.Min.Y - d, Z: b.Min.Z - d},
		Point3D{X: b.Max.X + d, Y: b.Max.Y + d, Z: b.Max.Z + d},
	)
}

// Contains reports whether p lies inside b, faces included.
func (b Bounds) Contains(p Point3D) bool {
	return b.valid &&
		p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
