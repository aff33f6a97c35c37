// Package l1ions owns Layer 1 (Ions) of the atom-probe data model.
//
// Responsibilities: the ion record and species catalog, resolution of user
// species tokens into ids, the IonSource contract consumed from ingestion,
// and the two-phase materialisation of a source into an index-aligned
// Dataset. Species are carried in a slice parallel to positions, never
// looked up by coordinate.
// Key types: Point3D, IonRecord, SpeciesCatalog, Dataset.
//
// Dependency rule: L1 depends only on internal/apt.
package l1ions
