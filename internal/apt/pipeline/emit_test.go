package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/composition.report/internal/apt/l1ions"
	"github.com/banshee-data/composition.report/internal/apt/sink"
)

func mixedSource() *l1ions.MemorySource {
	records := []l1ions.IonRecord{
		{Point3D: l1ions.Point3D{X: 0}, Species: 0},
		{Point3D: l1ions.Point3D{X: 0.3}, Species: 0},
		{Point3D: l1ions.Point3D{X: 0.6}, Species: 0},
		{Point3D: l1ions.Point3D{X: 0.2, Y: 0.1}, Species: 1},
		{Point3D: l1ions.Point3D{X: 10}, Species: 1},
		{Point3D: l1ions.Point3D{X: 12}, Species: 0},
		{Point3D: l1ions.Point3D{X: 11}, Species: l1ions.Unranged},
	}
	return l1ions.NewMemorySource(l1ions.NewSpeciesCatalog("Cu", "Fe"), records)
}

func TestEmit_WritesDeclaredTables(t *testing.T) {
	res, err := Run(context.Background(), mixedSource(), testConfig(0.5, 2))
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)

	out := &sink.MemorySink{}
	require.NoError(t, Emit(res, out, sink.NewPalette(3)))

	var names []string
	for _, tbl := range out.Tables {
		names = append(names, tbl.Name)
	}
	want := []string{TableRemovedSizes, TableClusterSummary, TableGyration, TableEnvelopeComposition, TableComposition}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("table order mismatch (-want +got):\n%s", diff)
	}

	removed := out.Table(TableRemovedSizes)
	require.Len(t, removed.Rows, 1)
	assert.Equal(t, 1.0, removed.Rows[0][1].Value())

	summary := out.Table(TableClusterSummary)
	require.Len(t, summary.Rows, 1)
	assert.Equal(t, 3.0, summary.Rows[0][1].Value())
	assert.Equal(t, 4.0, summary.Rows[0][2].Value())

	gyr := out.Table(TableGyration)
	require.Len(t, gyr.Rows, 2)
	assert.Equal(t, "all", gyr.Rows[0][1].Text())
	assert.Equal(t, "Cu", gyr.Rows[1][1].Text())

	envComp := out.Table(TableEnvelopeComposition)
	require.Len(t, envComp.Rows, 2)
	assert.Equal(t, "Cu", envComp.Rows[0][1].Text())
	assert.InDelta(t, 0.75, envComp.Rows[0][3].Value(), 1e-12)
	assert.Equal(t, "Fe", envComp.Rows[1][1].Text())

	comp := out.Table(TableComposition)
	require.Len(t, comp.Rows, 2)
	// Cu: 4 of 7 ions overall; 1 of 3 left in the matrix.
	assert.InDelta(t, 4.0/7, comp.Rows[0][2].Value(), 1e-12)
	assert.Equal(t, 1.0, comp.Rows[0][4].Value())
	assert.InDelta(t, 1.0/3, comp.Rows[0][5].Value(), 1e-12)

	require.Len(t, out.PointClouds, 1)
	assert.Equal(t, "Envelope 1", out.PointClouds[0].Name)
	assert.Equal(t, sink.NewPalette(3).Color(0), out.PointClouds[0].Color)
	assert.Len(t, out.PointClouds[0].Points, 4)

	require.Len(t, out.Surfaces, 1)
	assert.NotEmpty(t, out.Surfaces[0].Triangles)

	require.Len(t, out.Texts, 1)
	assert.Contains(t, out.Texts[0].Body, "Clusters: 2 extracted, 1 kept, 1 removed (1 atoms)")
	assert.Contains(t, out.Texts[0].Body, "Selected species: Cu")
}
