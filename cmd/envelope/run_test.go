package main

import (
	"bytes"
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/composition.report/internal/apt"
	"github.com/banshee-data/composition.report/internal/apt/posfile"
	"github.com/banshee-data/composition.report/internal/db"
	"github.com/banshee-data/composition.report/internal/fsutil"
	"github.com/banshee-data/composition.report/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

const testRRNG = `[Ions]
Number=2
Ion1=Cu
Ion2=Fe
[Ranges]
Number=2
Range1=62.5 63.5 Vol:0.01 Cu:1 Color:FF7F00
Range2=55.5 56.5 Vol:0.01 Fe:1 Color:FF0000
`

// writeInputs lays down a run with one Cu cluster of three atoms near the
// origin, a stray Fe inside its envelope, and an isolated Cu far away.
func writeInputs(t *testing.T, dir string) options {
	t.Helper()
	recs := []posfile.Record{
		{X: 0, MassToCharge: 63},
		{X: 0.3, MassToCharge: 63},
		{X: 0.6, MassToCharge: 63},
		{X: 0.2, Y: 0.1, MassToCharge: 56},
		{X: 10, MassToCharge: 56},
		{X: 12, MassToCharge: 63},
		{X: 11, MassToCharge: 40}, // unranged
	}
	var buf bytes.Buffer
	require.NoError(t, posfile.WritePOS(&buf, recs))

	opts := options{
		POSPath:  filepath.Join(dir, "run.pos"),
		RRNGPath: filepath.Join(dir, "run.rrng"),
	}
	require.NoError(t, os.WriteFile(opts.POSPath, buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(opts.RRNGPath, []byte(testRRNG), 0o644))

	cfgPath := filepath.Join(dir, "analysis.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"selected_species": ["1"], "min_atoms_per_cluster": 2}`), 0o644))
	opts.ConfigPath = cfgPath
	return opts
}

func TestRun_WritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	opts := writeInputs(t, dir)
	opts.DBPath = filepath.Join(dir, "results.db")
	opts.HTMLPath = filepath.Join(dir, "report.html")
	opts.PlotsDir = filepath.Join(dir, "plots")

	var stdout bytes.Buffer
	out, err := run(context.Background(), fsutil.OSFileSystem{}, opts, &stdout)
	require.NoError(t, err)

	require.Len(t, out.Result.Clusters, 1)
	assert.Equal(t, 7, out.Result.TotalAtoms)
	assert.Contains(t, stdout.String(), "Clusters: 2 extracted, 1 kept, 1 removed (1 atoms)")

	html, err := os.ReadFile(opts.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Envelope 1")

	assert.Len(t, out.Plots, 2)
	for _, p := range out.Plots {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	store, err := db.NewDB(opts.DBPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, out.RunID, runs[0].RunID)
	assert.Equal(t, "run.pos", runs[0].Source)
	assert.Equal(t, 1, runs[0].ClustersKept)
}

func TestRun_SpeciesFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	opts := writeInputs(t, dir)
	opts.Species = "2"

	out, err := run(context.Background(), fsutil.OSFileSystem{}, opts, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Result.SelectedAtoms)
}

func TestRun_InvalidSelectionWritesNothing(t *testing.T) {
	dir := t.TempDir()
	opts := writeInputs(t, dir)
	opts.Species = "x"
	opts.HTMLPath = filepath.Join(dir, "report.html")
	opts.DBPath = filepath.Join(dir, "results.db")

	var stdout bytes.Buffer
	_, err := run(context.Background(), fsutil.OSFileSystem{}, opts, &stdout)
	require.Error(t, err)
	assert.ErrorIs(t, err, apt.ErrInvalidInput)
	assert.Empty(t, stdout.String())

	// The selection is rejected from the range catalog alone, so a missing
	// ion file is never opened.
	opts.POSPath = filepath.Join(dir, "missing.pos")
	_, err = run(context.Background(), fsutil.OSFileSystem{}, opts, &stdout)
	require.Error(t, err)
	assert.ErrorIs(t, err, apt.ErrInvalidInput)
	assert.NotErrorIs(t, err, fs.ErrNotExist)

	opts.Species = "9"
	_, err = run(context.Background(), fsutil.OSFileSystem{}, opts, &stdout)
	assert.ErrorIs(t, err, apt.ErrInvalidInput)

	_, statErr := os.Stat(opts.HTMLPath)
	assert.True(t, os.IsNotExist(statErr))

	store, err := db.NewDB(opts.DBPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRun_MissingInputs(t *testing.T) {
	_, err := run(context.Background(), fsutil.NewMemoryFileSystem(), options{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "-pos and -rrng are required")
}

func TestRun_RejectsOutputOutsideAllowedDirs(t *testing.T) {
	opts := options{POSPath: "a.pos", RRNGPath: "a.rrng", HTMLPath: "/proc/nope/report.html"}
	_, err := run(context.Background(), fsutil.NewMemoryFileSystem(), opts, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewMux(t *testing.T) {
	dir := t.TempDir()
	opts := writeInputs(t, dir)
	out, err := run(context.Background(), fsutil.OSFileSystem{}, opts, &bytes.Buffer{})
	require.NoError(t, err)

	mux := newMux(out)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Envelope 1")

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summary", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Matrix atoms")

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
