package pipeline

import (
	"fmt"
	"strings"

	"github.com/banshee-data/composition.report/internal/apt/l4envelope"
	"github.com/banshee-data/composition.report/internal/apt/l5stats"
	"github.com/banshee-data/composition.report/internal/apt/sink"
)

// Table names written by Emit.
const (
	TableRemovedSizes        = "Removed Cluster Sizes"
	TableClusterSummary      = "Cluster Summary"
	TableGyration            = "Gyration"
	TableEnvelopeComposition = "Envelope Composition"
	TableComposition         = "Composition"
)

// Emit writes res to out. Colours come from palette by envelope ordinal.
func Emit(res *Result, out sink.ResultSink, palette sink.Palette) error {
	tables := []func(*Result) (*sink.Table, error){
		removedSizesTable,
		clusterSummaryTable,
		gyrationTable,
		envelopeCompositionTable,
		compositionTable,
	}
	for _, build := range tables {
		t, err := build(res)
		if err != nil {
			return err
		}
		if err := out.WriteTable(t); err != nil {
			return fmt.Errorf("write table %q: %w", t.Name, err)
		}
	}

	for _, cr := range res.Clusters {
		name := envelopeName(cr.Ordinal)
		color := palette.Color(cr.Ordinal)
		if err := out.WritePointCloud(sink.PointCloud{
			Name:   name,
			Group:  cr.Ordinal,
			Color:  color,
			Points: cr.Envelope.Points,
		}); err != nil {
			return fmt.Errorf("write point cloud %q: %w", name, err)
		}

		mesh := l4envelope.Surface(cr.Envelope.Grid)
		if err := out.WriteSurface(sink.Surface{
			Name:      name,
			Group:     cr.Ordinal,
			Color:     color,
			Vertices:  mesh.Vertices,
			Triangles: mesh.Triangles,
		}); err != nil {
			return fmt.Errorf("write surface %q: %w", name, err)
		}
	}

	if err := out.WriteText(sink.TextBlock{Title: "Summary", Body: Summary(res)}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func envelopeName(ordinal int) string {
	return fmt.Sprintf("Envelope %d", ordinal+1)
}

func removedSizesTable(res *Result) (*sink.Table, error) {
	t := sink.NewTable(TableRemovedSizes, sink.NumCol("size"), sink.NumCol("count"))
	for size := 1; size < len(res.Filter.RemovedBySize); size++ {
		if err := t.Append(sink.Int(size), sink.Int(res.Filter.RemovedBySize[size])); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func clusterSummaryTable(res *Result) (*sink.Table, error) {
	t := sink.NewTable(TableClusterSummary,
		sink.NumCol("cluster"),
		sink.NumCol("atoms"),
		sink.NumCol("envelope atoms"),
		sink.NumCol("occupied voxels"),
		sink.NumCol("density"),
		sink.NumCol("rg"),
	)
	for _, cr := range res.Clusters {
		density, _ := cr.Envelope.Density()
		err := t.Append(
			sink.Int(cr.Ordinal+1),
			sink.Int(cr.Cluster.Size()),
			sink.Int(cr.Envelope.Total()),
			sink.Int(cr.Envelope.Grid.Occupied()),
			sink.Num(density),
			sink.Num(cr.Gyration.Radius),
		)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func gyrationTable(res *Result) (*sink.Table, error) {
	t := sink.NewTable(TableGyration,
		sink.NumCol("cluster"),
		sink.StrCol("species"),
		sink.NumCol("members"),
		sink.NumCol("com x"), sink.NumCol("com y"), sink.NumCol("com z"),
		sink.NumCol("rg"),
		sink.NumCol("rg x"), sink.NumCol("rg y"), sink.NumCol("rg z"),
	)
	row := func(cluster int, species string, g l5stats.Gyration) error {
		return t.Append(
			sink.Int(cluster),
			sink.Str(species),
			sink.Int(g.Members),
			sink.Num(g.CenterOfMass.X), sink.Num(g.CenterOfMass.Y), sink.Num(g.CenterOfMass.Z),
			sink.Num(g.Radius),
			sink.Num(g.Axis[0]), sink.Num(g.Axis[1]), sink.Num(g.Axis[2]),
		)
	}
	for _, cr := range res.Clusters {
		if err := row(cr.Ordinal+1, "all", cr.Gyration.Gyration); err != nil {
			return nil, err
		}
		for _, sg := range cr.Gyration.BySpecies {
			if err := row(cr.Ordinal+1, res.Catalog.Name(sg.Species), sg.Gyration); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func envelopeCompositionTable(res *Result) (*sink.Table, error) {
	t := sink.NewTable(TableEnvelopeComposition,
		sink.NumCol("cluster"),
		sink.StrCol("species"),
		sink.NumCol("count"),
		sink.NumCol("percent"),
		sink.NumCol("error"),
	)
	for _, cr := range res.Clusters {
		comp := l5stats.EnvelopeComposition(cr.Envelope.Counts)
		for s, c := range cr.Envelope.Counts {
			if c == 0 {
				continue
			}
			p := comp[speciesID(s)]
			if err := t.Append(
				sink.Int(cr.Ordinal+1),
				sink.Str(res.Catalog.Name(speciesID(s))),
				sink.Int(c),
				sink.Num(p.Percent),
				sink.Num(p.Error),
			); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func compositionTable(res *Result) (*sink.Table, error) {
	t := sink.NewTable(TableComposition,
		sink.StrCol("species"),
		sink.NumCol("total"), sink.NumCol("total percent"), sink.NumCol("total error"),
		sink.NumCol("matrix"), sink.NumCol("matrix percent"), sink.NumCol("matrix error"),
	)
	for _, row := range res.Composition {
		if err := t.Append(
			sink.Str(row.Name),
			sink.Int(row.Whole.Count), sink.Num(row.Whole.Percent), sink.Num(row.Whole.Error),
			sink.Int(row.Matrix.Count), sink.Num(row.Matrix.Percent), sink.Num(row.Matrix.Error),
		); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Summary renders the run as a plain-text report block.
func Summary(res *Result) string {
	var b strings.Builder
	names := make([]string, len(res.Selection))
	for i, id := range res.Selection {
		names[i] = res.Catalog.Name(id)
	}
	fmt.Fprintf(&b, "Selected species: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "Max atom separation: %g nm\n", res.Config.MaxAtomSeparation)
	fmt.Fprintf(&b, "Min atoms per cluster: %d\n", res.Config.MinAtomsPerCluster)
	fmt.Fprintf(&b, "Grid resolution: %g nm (fill %t)\n", res.Config.GridResolution, res.Config.FillInGrid)
	fmt.Fprintf(&b, "Ions: %d total, %d ranged, %d selected\n", res.TotalAtoms, res.RangedAtoms, res.SelectedAtoms)
	fmt.Fprintf(&b, "Clusters: %d extracted, %d kept, %d removed (%d atoms)\n",
		res.Extracted, len(res.Filter.Kept), res.Filter.Removed, res.Filter.RemovedAtoms)
	fmt.Fprintf(&b, "Matrix atoms: %d\n", res.MatrixAtoms)
	if len(res.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}
	return b.String()
}
