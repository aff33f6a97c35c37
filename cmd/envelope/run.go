package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/composition.report/internal/apt/l1ions"
	"github.com/banshee-data/composition.report/internal/apt/pipeline"
	"github.com/banshee-data/composition.report/internal/apt/posfile"
	"github.com/banshee-data/composition.report/internal/apt/report"
	"github.com/banshee-data/composition.report/internal/apt/sink"
	"github.com/banshee-data/composition.report/internal/config"
	"github.com/banshee-data/composition.report/internal/db"
	"github.com/banshee-data/composition.report/internal/fsutil"
)

// options are the resolved command-line inputs of one invocation.
type options struct {
	ConfigPath string
	POSPath    string
	RRNGPath   string
	Species    string // overrides selected_species when set
	DBPath     string
	HTMLPath   string
	PlotsDir   string
}

// outcome is what run produced, kept for -serve.
type outcome struct {
	Result    *pipeline.Result
	Collector *report.Collector
	HTML      []byte
	RunID     string
	Plots     []string
}

func loadConfig(opts options) (*config.AnalysisConfig, error) {
	ac := config.EmptyAnalysisConfig()
	if opts.ConfigPath != "" {
		var err error
		if ac, err = config.LoadAnalysisConfig(opts.ConfigPath); err != nil {
			return nil, err
		}
	}
	if s := strings.TrimSpace(opts.Species); s != "" {
		ac = ac.WithSelectedSpecies(strings.Split(s, ","))
	}
	return ac, nil
}

// openSource parses the range file, checks cfg and its species selection
// against the range catalog, and only then scans the ion file.
func openSource(fs fsutil.FileSystem, opts options, cfg pipeline.Config) (*posfile.Source, error) {
	if opts.POSPath == "" || opts.RRNGPath == "" {
		return nil, fmt.Errorf("both -pos and -rrng are required")
	}
	f, err := fs.Open(opts.RRNGPath)
	if err != nil {
		return nil, fmt.Errorf("open range file: %w", err)
	}
	ranges, err := posfile.ParseRRNG(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := l1ions.ResolveSelection(cfg.SelectedSpecies, ranges.Catalog.Len()); err != nil {
		return nil, err
	}
	return posfile.Open(fs, opts.POSPath, ranges)
}

// run executes one analysis and writes every requested output. Outputs are
// only written once the analysis has succeeded.
func run(ctx context.Context, fs fsutil.FileSystem, opts options, stdout io.Writer) (*outcome, error) {
	ac, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	for _, p := range []string{opts.HTMLPath, opts.PlotsDir} {
		if p == "" {
			continue
		}
		if err := fsutil.ValidateOutputPath(p); err != nil {
			return nil, err
		}
	}

	cfg := pipeline.FromAnalysisConfig(ac)
	src, err := openSource(fs, opts, cfg)
	if err != nil {
		return nil, err
	}
	logf("loaded %d ions (%d unranged) from %s", src.Records(), src.Unranged(), opts.POSPath)

	out := &outcome{Collector: report.NewCollector()}
	sinks := sink.Multi{out.Collector}

	var store *db.DB
	var dbSink *db.ResultSink
	if opts.DBPath != "" {
		if store, err = db.NewDB(opts.DBPath); err != nil {
			return nil, fmt.Errorf("open result store: %w", err)
		}
		defer store.Close()
		dbSink = db.NewResultSink(store)
		sinks = append(sinks, dbSink)
	}

	res, err := pipeline.Analyze(ctx, src, cfg, sinks, sink.NewPalette(ac.GetPaletteSeed()))
	if err != nil {
		return nil, err
	}
	out.Result = res

	if dbSink != nil {
		out.RunID, err = dbSink.Commit(ctx, db.RunMeta{
			Source:        filepath.Base(opts.POSPath),
			Config:        ac,
			TotalAtoms:    res.TotalAtoms,
			SelectedAtoms: res.SelectedAtoms,
			ClustersKept:  len(res.Clusters),
			Elapsed:       res.Elapsed,
		})
		if err != nil {
			return nil, fmt.Errorf("store run: %w", err)
		}
		logf("stored run %s in %s", out.RunID, opts.DBPath)
	}

	var html bytes.Buffer
	if err := out.Collector.RenderHTML(&html, "Composition report: "+filepath.Base(opts.POSPath)); err != nil {
		return nil, err
	}
	out.HTML = html.Bytes()
	if opts.HTMLPath != "" {
		if err := fs.WriteFile(opts.HTMLPath, out.HTML, 0o644); err != nil {
			return nil, fmt.Errorf("write html report: %w", err)
		}
	}
	if opts.PlotsDir != "" {
		if out.Plots, err = out.Collector.WritePlots(fs, opts.PlotsDir); err != nil {
			return nil, err
		}
	}

	fmt.Fprint(stdout, pipeline.Summary(res))
	return out, nil
}
