package l1ions

import (
	"context"
	"fmt"
)

// DefaultChunkSize is the number of ions requested per chunk when the
// caller does not choose one.
const DefaultChunkSize = 1 << 16

// Chunk carries parallel position and species arrays. Positions[i] belongs
// to Species[i].
type Chunk struct {
	Positions []Point3D
	Species   []SpeciesID
}

// Len returns the number of ions in the chunk.
func (c Chunk) Len() int { return len(c.Positions) }

// IonSource is the ingestion contract: chunked iteration over every ion,
// aggregate counts per species, and the dataset extents.
type IonSource interface {
	// Catalog returns the species catalog; ids in chunks index into it.
	Catalog() SpeciesCatalog

	// SpeciesCounts returns the ranged-ion count per species id.
	SpeciesCounts() []int

	// Bounds returns the min/max corners of all ions.
	Bounds() Bounds

	// Chunks calls fn for successive chunks of at most chunkSize ions until
	// the source is exhausted, fn returns an error, or ctx is done.
	Chunks(ctx context.Context, chunkSize int, fn func(Chunk) error) error
}

// MemorySource serves ions held in memory.
type MemorySource struct {
	catalog SpeciesCatalog
	records []IonRecord
	counts  []int
	bounds  Bounds
}

// NewMemorySource builds a source over records. Counts and bounds are
// computed once here.
func NewMemorySource(catalog SpeciesCatalog, records []IonRecord) *MemorySource {
	ms := &MemorySource{
		catalog: catalog,
		records: records,
		counts:  make([]int, catalog.Len()),
	}
	for _, r := range records {
		ms.bounds.Add(r.Point3D)
		if catalog.Contains(r.Species) {
			ms.counts[r.Species]++
		}
	}
	return ms
}

// Catalog implements IonSource.
func (ms *MemorySource) Catalog() SpeciesCatalog { return ms.catalog }

// SpeciesCounts implements IonSource.
func (ms *MemorySource) SpeciesCounts() []int {
	return append([]int(nil), ms.counts...)
}

// Bounds implements IonSource.
func (ms *MemorySource) Bounds() Bounds { return ms.bounds }

// Chunks implements IonSource.
func (ms *MemorySource) Chunks(ctx context.Context, chunkSize int, fn func(Chunk) error) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	for start := 0; start < len(ms.records); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+chunkSize, len(ms.records))
		chunk := Chunk{
			Positions: make([]Point3D, 0, end-start),
			Species:   make([]SpeciesID, 0, end-start),
		}
		for _, r := range ms.records[start:end] {
			chunk.Positions = append(chunk.Positions, r.Point3D)
			chunk.Species = append(chunk.Species, r.Species)
		}
		if err := fn(chunk); err != nil {
			return fmt.Errorf("chunk at %d: %w", start, err)
		}
	}
	return nil
}
