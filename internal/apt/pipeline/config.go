package pipeline

import (
	"math"

	"github.com/banshee-data/composition.report/internal/apt"
	"github.com/banshee-data/composition.report/internal/apt/l1ions"
	"github.com/banshee-data/composition.report/internal/apt/l2grid"
	"github.com/banshee-data/composition.report/internal/config"
)

// Accepted parameter domains.
const (
	MinSeparation  = 0.2
	MaxSeparation  = 5.0
	MinResolution  = 0.05
	MaxResolution  = 5.0
	opValidateConf = "validate configuration"
)

// Config is the immutable parameter set for one run.
type Config struct {
	SelectedSpecies    []string
	MaxAtomSeparation  float64 // nm
	MinAtomsPerCluster int
	GridResolution     float64 // nm
	FillInGrid         bool

	// Workers bounds per-cluster parallelism; <= 0 means GOMAXPROCS.
	Workers int
	// MaxGridCells caps both the binning grid and each envelope grid.
	MaxGridCells int64
	ChunkSize    int
}

// DefaultConfig returns the documented defaults with no species selected.
func DefaultConfig() Config {
	return Config{
		MaxAtomSeparation:  0.5,
		MinAtomsPerCluster: 10,
		GridResolution:     0.5,
		MaxGridCells:       l2grid.DefaultMaxCells,
		ChunkSize:          l1ions.DefaultChunkSize,
	}
}

// Validate checks parameter domains.
func (c Config) Validate() error {
	if math.IsNaN(c.MaxAtomSeparation) || c.MaxAtomSeparation < MinSeparation || c.MaxAtomSeparation > MaxSeparation {
		return apt.InvalidInput(opValidateConf, "max atom separation %g outside [%g, %g] nm", c.MaxAtomSeparation, MinSeparation, MaxSeparation)
	}
	if c.MinAtomsPerCluster < 1 {
		return apt.InvalidInput(opValidateConf, "min atoms per cluster must be at least 1, got %d", c.MinAtomsPerCluster)
	}
	if math.IsNaN(c.GridResolution) || c.GridResolution < MinResolution || c.GridResolution > MaxResolution {
		return apt.InvalidInput(opValidateConf, "grid resolution %g outside [%g, %g] nm", c.GridResolution, MinResolution, MaxResolution)
	}
	if c.MaxGridCells < 0 {
		return apt.InvalidInput(opValidateConf, "max grid cells must not be negative, got %d", c.MaxGridCells)
	}
	return nil
}

// FromAnalysisConfig converts a loaded analysis file into a run Config.
func FromAnalysisConfig(ac *config.AnalysisConfig) Config {
	if ac == nil {
		ac = config.EmptyAnalysisConfig()
	}
	return Config{
		SelectedSpecies:    ac.GetSelectedSpecies(),
		MaxAtomSeparation:  ac.GetMaxAtomSeparation(),
		MinAtomsPerCluster: ac.GetMinAtomsPerCluster(),
		GridResolution:     ac.GetGridResolution(),
		FillInGrid:         ac.GetFillInGrid(),
		Workers:            ac.GetWorkers(),
		MaxGridCells:       ac.GetMaxGridCells(),
		ChunkSize:          ac.GetChunkSize(),
	}
}
