package sink

import (
	"errors"

	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

// PointCloud is a set of points drawn in one colour.
type PointCloud struct {
	Name   string
	Group  int
	Color  Color
	Points []l1ions.Point3D
}

// Surface is a triangle mesh derived from a voxel grid.
type Surface struct {
	Name      string
	Group     int
	Color     Color
	Vertices  []l1ions.Point3D
	Triangles [][3]int32
}

// TextBlock is a titled free-text report section.
type TextBlock struct {
	Title string
	Body  string
}

// ResultSink receives the output of one analysis run.
type ResultSink interface {
	WriteTable(t *Table) error
	WritePointCloud(pc PointCloud) error
	WriteSurface(s Surface) error
	WriteText(b TextBlock) error
}

// MemorySink keeps everything it receives.
type MemorySink struct {
	Tables      []*Table
	PointClouds []PointCloud
	Surfaces    []Surface
	Texts       []TextBlock
}

// WriteTable implements ResultSink.
func (m *MemorySink) WriteTable(t *Table) error {
	m.Tables = append(m.Tables, t)
	return nil
}

// WritePointCloud implements ResultSink.
func (m *MemorySink) WritePointCloud(pc PointCloud) error {
	m.PointClouds = append(m.PointClouds, pc)
	return nil
}

// WriteSurface implements ResultSink.
func (m *MemorySink) WriteSurface(s Surface) error {
	m.Surfaces = append(m.Surfaces, s)
	return nil
}

// WriteText implements ResultSink.
func (m *MemorySink) WriteText(b TextBlock) error {
	m.Texts = append(m.Texts, b)
	return nil
}

// Table returns the table with the given name, or nil.
func (m *MemorySink) Table(name string) *Table {
	for _, t := range m.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Multi fans every write out to each sink in order and joins the errors.
type Multi []ResultSink

// WriteTable implements ResultSink.
func (ms Multi) WriteTable(t *Table) error {
	var errs []error
	for _, s := range ms {
		errs = append(errs, s.WriteTable(t))
	}
	return errors.Join(errs...)
}

// WritePointCloud implements ResultSink.
func (ms Multi) WritePointCloud(pc PointCloud) error {
	var errs []error
	for _, s := range ms {
		errs = append(errs, s.WritePointCloud(pc))
	}
	return errors.Join(errs...)
}

// WriteSurface implements ResultSink.
func (ms Multi) WriteSurface(surf Surface) error {
	var errs []error
	for _, s := range ms {
		errs = append(errs, s.WriteSurface(surf))
	}
	return errors.Join(errs...)
}

// WriteText implements ResultSink.
func (ms Multi) WriteText(b TextBlock) error {
	var errs []error
	for _, s := range ms {
		errs = append(errs, s.WriteText(b))
	}
	return errors.Join(errs...)
}
