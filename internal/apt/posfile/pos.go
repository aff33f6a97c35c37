package posfile

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/composition.report/internal/apt"
	"github.com/banshee-data/composition.report/internal/apt/l1ions"
	"github.com/banshee-data/composition.report/internal/fsutil"
)

// RecordSize is the size of one POS record: four big-endian float32
// values x, y, z (nm) and mass-to-charge (Da).
const RecordSize = 16

const opReadPOS = "read pos file"

// Record is one decoded POS entry.
type Record struct {
	X, Y, Z      float32
	MassToCharge float32
}

// DecodeRecord decodes one record from the first RecordSize bytes of b.
func DecodeRecord(b []byte) Record {
	return Record{
		X:            math.Float32frombits(binary.BigEndian.Uint32(b[0:])),
		Y:            math.Float32frombits(binary.BigEndian.Uint32(b[4:])),
		Z:            math.Float32frombits(binary.BigEndian.Uint32(b[8:])),
		MassToCharge: math.Float32frombits(binary.BigEndian.Uint32(b[12:])),
	}
}

// EncodeRecord writes rec into the first RecordSize bytes of b.
func EncodeRecord(b []byte, rec Record) {
	binary.BigEndian.PutUint32(b[0:], math.Float32bits(rec.X))
	binary.BigEndian.PutUint32(b[4:], math.Float32bits(rec.Y))
	binary.BigEndian.PutUint32(b[8:], math.Float32bits(rec.Z))
	binary.BigEndian.PutUint32(b[12:], math.Float32bits(rec.MassToCharge))
}

// WritePOS writes records in POS layout.
func WritePOS(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	var buf [RecordSize]byte
	for _, rec := range records {
		EncodeRecord(buf[:], rec)
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// scanRecords calls fn for batches of at most batch records read from r.
// A trailing partial record is an error.
func scanRecords(r io.Reader, batch int, fn func([]Record) error) error {
	br := bufio.NewReaderSize(r, 1<<16)
	raw := make([]byte, batch*RecordSize)
	recs := make([]Record, 0, batch)
	var offset int64
	for {
		n, err := io.ReadFull(br, raw)
		if n%RecordSize != 0 {
			return apt.InvalidInput(opReadPOS, "truncated record at byte %d", offset+int64(n-n%RecordSize))
		}
		recs = recs[:0]
		for i := 0; i < n; i += RecordSize {
			recs = append(recs, DecodeRecord(raw[i:]))
		}
		offset += int64(n)
		if len(recs) > 0 {
			if ferr := fn(recs); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read at byte %d: %w", offset, err)
		}
	}
}

// Source streams a POS file through a RangeTable. Open makes one pass to
// collect counts and bounds; each Chunks call re-reads the file.
type Source struct {
	fs     fsutil.FileSystem
	path   string
	ranges *RangeTable

	counts   []int
	unranged int
	records  int
	bounds   l1ions.Bounds
}

// Open prepares a Source over the POS file at path.
func Open(fs fsutil.FileSystem, path string, ranges *RangeTable) (*Source, error) {
	if ranges == nil {
		return nil, apt.InvalidInput(opReadPOS, "no range table")
	}
	s := &Source{
		fs:     fs,
		path:   path,
		ranges: ranges,
		counts: make([]int, ranges.Catalog.Len()),
	}
	err := s.scan(context.Background(), l1ions.DefaultChunkSize, func(recs []Record) error {
		for _, rec := range recs {
			s.records++
			s.bounds.Add(point(rec))
			if id := ranges.Lookup(float64(rec.MassToCharge)); id.Ranged() {
				s.counts[id]++
			} else {
				s.unranged++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func point(rec Record) l1ions.Point3D {
	return l1ions.Point3D{X: float64(rec.X), Y: float64(rec.Y), Z: float64(rec.Z)}
}

func (s *Source) scan(ctx context.Context, batch int, fn func([]Record) error) error {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return scanRecords(f, batch, func(recs []Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(recs)
	})
}

// Records returns the number of ions in the file.
func (s *Source) Records() int { return s.records }

// Unranged returns the number of ions no range covers.
func (s *Source) Unranged() int { return s.unranged }

// Catalog implements l1ions.IonSource.
func (s *Source) Catalog() l1ions.SpeciesCatalog { return s.ranges.Catalog }

// SpeciesCounts implements l1ions.IonSource.
func (s *Source) SpeciesCounts() []int { return append([]int(nil), s.counts...) }

// Bounds implements l1ions.IonSource.
func (s *Source) Bounds() l1ions.Bounds { return s.bounds }

// Chunks implements l1ions.IonSource.
func (s *Source) Chunks(ctx context.Context, chunkSize int, fn func(l1ions.Chunk) error) error {
	if chunkSize <= 0 {
		chunkSize = l1ions.DefaultChunkSize
	}
	return s.scan(ctx, chunkSize, func(recs []Record) error {
		chunk := l1ions.Chunk{
			Positions: make([]l1ions.Point3D, len(recs)),
			Species:   make([]l1ions.SpeciesID, len(recs)),
		}
		for i, rec := range recs {
			chunk.Positions[i] = point(rec)
			chunk.Species[i] = s.ranges.Lookup(float64(rec.MassToCharge))
		}
		return fn(chunk)
	})
}
