package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/composition.report/internal/apt"
	"github.com/banshee-data/composition.report/internal/apt/l1ions"
	"github.com/banshee-data/composition.report/internal/apt/l2grid"
	"github.com/banshee-data/composition.report/internal/apt/l3clusters"
	"github.com/banshee-data/composition.report/internal/apt/l4envelope"
	"github.com/banshee-data/composition.report/internal/apt/l5stats"
	"github.com/banshee-data/composition.report/internal/monitoring"
)

var logf = monitoring.Tagged("pipeline")

// ClusterResult is everything computed for one surviving cluster.
type ClusterResult struct {
	Ordinal  int
	Cluster  l3clusters.Cluster
	Envelope *l4envelope.Envelope
	Gyration l5stats.ClusterGyration
}

// Result is the complete outcome of a successful run.
type Result struct {
	Config    Config
	Catalog   l1ions.SpeciesCatalog
	Selection []l1ions.SpeciesID

	TotalAtoms    int
	RangedAtoms   int
	SelectedAtoms int
	GraphEdges    int

	// Extracted is the cluster count before filtering.
	Extracted int
	Filter    l3clusters.FilterResult
	Clusters  []ClusterResult

	Composition []l5stats.CompositionRow
	MatrixAtoms int

	Warnings []apt.Warning
	Elapsed  time.Duration
}

// Run executes the analysis over src. It returns a complete Result or a
// single error; apt.ErrInvalidInput and apt.ErrConfigurationTooFine mark
// rejected input.
func Run(ctx context.Context, src l1ions.IonSource, cfg Config) (*Result, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog := src.Catalog()
	selection, err := l1ions.ResolveSelection(cfg.SelectedSpecies, catalog.Len())
	if err != nil {
		return nil, err
	}

	ds, err := l1ions.Materialize(ctx, src, selection, cfg.ChunkSize)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Config:        cfg,
		Catalog:       catalog,
		Selection:     selection,
		TotalAtoms:    ds.TotalCount(),
		RangedAtoms:   ds.RangedCount(),
		SelectedAtoms: len(ds.Selected),
		Warnings:      append([]apt.Warning(nil), ds.Warnings...),
	}
	logf("materialised %d ions (%d ranged, %d selected)", res.TotalAtoms, res.RangedAtoms, res.SelectedAtoms)

	selected := make([]l1ions.Point3D, len(ds.Selected))
	for i, idx := range ds.Selected {
		selected[i] = ds.Positions[idx]
	}
	grid, err := l2grid.Bin(selected, ds.Bounds, cfg.MaxAtomSeparation, cfg.MaxGridCells)
	if err != nil {
		return nil, err
	}
	graph := l2grid.BuildNeighborGraph(grid, selected, cfg.MaxAtomSeparation)
	res.GraphEdges = graph.EdgeCount()
	if graph.Coincident > 0 {
		res.Warnings = append(res.Warnings, apt.Warnf(apt.WarnConsistency,
			"%d pairs of selected ions share identical coordinates", graph.Coincident))
	}

	clusters := l3clusters.Extract(graph, ds.Selected)
	res.Extracted = len(clusters)
	res.Filter = l3clusters.Filter(clusters, cfg.MinAtomsPerCluster)
	logf("%d clusters extracted from %d edges, %d kept, %d removed",
		res.Extracted, res.GraphEdges, len(res.Filter.Kept), res.Filter.Removed)

	res.Clusters, err = buildClusters(ctx, ds, res.Filter.Kept, cfg)
	if err != nil {
		return nil, err
	}

	ledger := l5stats.NewLedger(catalog, ds.Totals, ds.Unranged)
	for _, cr := range res.Clusters {
		ledger.Subtract(cr.Ordinal, cr.Envelope.Counts)
		if _, ok := cr.Envelope.Density(); !ok {
			res.Warnings = append(res.Warnings, apt.Warnf(apt.WarnArithmeticGuard,
				"envelope %d has no occupied voxels; density omitted", cr.Ordinal))
		}
		if cr.Envelope.Total() == 0 {
			res.Warnings = append(res.Warnings, apt.Warnf(apt.WarnArithmeticGuard,
				"envelope %d captured no ions; composition omitted", cr.Ordinal))
		}
	}
	res.Composition = ledger.Rows()
	res.MatrixAtoms = ledger.RemainingAtoms()
	res.Warnings = append(res.Warnings, ledger.Warnings()...)

	for _, w := range res.Warnings {
		logf("warning: %s", w)
	}
	res.Elapsed = time.Since(start)
	logf("analysis finished in %s", res.Elapsed)
	return res, nil
}

// buildClusters voxelizes and measures every kept cluster. Work is shared
// across a bounded group; each worker writes only its own slot.
func buildClusters(ctx context.Context, ds *l1ions.Dataset, kept []l3clusters.Cluster, cfg Config) ([]ClusterResult, error) {
	index := l1ions.NewRangeIndex(ds.Positions)
	vox := l4envelope.Voxelizer{
		Resolution: cfg.GridResolution,
		FillIn:     cfg.FillInGrid,
		MaxCells:   cfg.MaxGridCells,
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]ClusterResult, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range kept {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			env, err := vox.Build(ds, index, c)
			if err != nil {
				return fmt.Errorf("cluster %d: %w", i, err)
			}
			out[i] = ClusterResult{
				Ordinal:  i,
				Cluster:  c,
				Envelope: env,
				Gyration: l5stats.ComputeGyration(ds, c.Members),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
