package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// Built-in defaults used when a field is omitted.
const (
	defaultMaxAtomSeparation  = 0.5
	defaultMinAtomsPerCluster = 10
	defaultGridResolution     = 0.5
	defaultMaxGridCells       = 120_000_000
	defaultPaletteSeed        = 1
	defaultChunkSize          = 1 << 16
)

// AnalysisConfig is the on-disk form of one analysis run's parameters.
// Every field is optional; the Get* methods supply defaults.
type AnalysisConfig struct {
	// Species selection: 1-based catalog indices, possibly space separated
	// within a token (e.g. ["1 3", "4"]).
	SelectedSpecies []string `json:"selected_species,omitempty"`

	// Clustering params
	MaxAtomSeparation  *float64 `json:"max_atom_separation,omitempty"`   // nm, [0.2, 5.0]
	MinAtomsPerCluster *int     `json:"min_atoms_per_cluster,omitempty"` // >= 1

	// Envelope params
	GridResolution *float64 `json:"grid_resolution,omitempty"` // nm, [0.05, 5.0]
	FillInGrid     *bool    `json:"fill_in_grid,omitempty"`

	// Execution params
	Workers      *int   `json:"workers,omitempty"` // 0 = GOMAXPROCS
	MaxGridCells *int64 `json:"max_grid_cells,omitempty"`
	ChunkSize    *int   `json:"chunk_size,omitempty"`

	// Output params
	PaletteSeed *uint64 `json:"palette_seed,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Omitted fields
// keep their defaults, so partial configs are safe.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the analysis defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/apt/pipeline/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that set values lie in their domains.
func (c *AnalysisConfig) Validate() error {
	if c.MaxAtomSeparation != nil {
		if v := *c.MaxAtomSeparation; !(v >= 0.2 && v <= 5.0) {
			return fmt.Errorf("max_atom_separation must be between 0.2 and 5.0 nm, got %g", v)
		}
	}
	if c.MinAtomsPerCluster != nil && *c.MinAtomsPerCluster < 1 {
		return fmt.Errorf("min_atoms_per_cluster must be at least 1, got %d", *c.MinAtomsPerCluster)
	}
	if c.GridResolution != nil {
		if v := *c.GridResolution; !(v >= 0.05 && v <= 5.0) {
			return fmt.Errorf("grid_resolution must be between 0.05 and 5.0 nm, got %g", v)
		}
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.MaxGridCells != nil && *c.MaxGridCells < 1 {
		return fmt.Errorf("max_grid_cells must be positive, got %d", *c.MaxGridCells)
	}
	if c.ChunkSize != nil && *c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be positive, got %d", *c.ChunkSize)
	}
	return nil
}

// GetSelectedSpecies returns a copy of the selection tokens.
func (c *AnalysisConfig) GetSelectedSpecies() []string {
	return append([]string(nil), c.SelectedSpecies...)
}

// GetMaxAtomSeparation returns the max_atom_separation value or the default.
func (c *AnalysisConfig) GetMaxAtomSeparation() float64 {
	if c.MaxAtomSeparation == nil {
		return defaultMaxAtomSeparation
	}
	return *c.MaxAtomSeparation
}

// GetMinAtomsPerCluster returns the min_atoms_per_cluster value or the default.
func (c *AnalysisConfig) GetMinAtomsPerCluster() int {
	if c.MinAtomsPerCluster == nil {
		return defaultMinAtomsPerCluster
	}
	return *c.MinAtomsPerCluster
}

// GetGridResolution returns the grid_resolution value or the default.
func (c *AnalysisConfig) GetGridResolution() float64 {
	if c.GridResolution == nil {
		return defaultGridResolution
	}
	return *c.GridResolution
}

// GetFillInGrid returns the fill_in_grid value or the default.
func (c *AnalysisConfig) GetFillInGrid() bool {
	if c.FillInGrid == nil {
		return false // default: no sweep fill
	}
	return *c.FillInGrid
}

// GetWorkers returns the workers value or the default.
func (c *AnalysisConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetMaxGridCells returns the max_grid_cells value or the default.
func (c *AnalysisConfig) GetMaxGridCells() int64 {
	if c.MaxGridCells == nil {
		return defaultMaxGridCells
	}
	return *c.MaxGridCells
}

// GetChunkSize returns the chunk_size value or the default.
func (c *AnalysisConfig) GetChunkSize() int {
	if c.ChunkSize == nil {
		return defaultChunkSize
	}
	return *c.ChunkSize
}

// GetPaletteSeed returns the palette_seed value or the default.
func (c *AnalysisConfig) GetPaletteSeed() uint64 {
	if c.PaletteSeed == nil {
		return defaultPaletteSeed
	}
	return *c.PaletteSeed
}

// WithSelectedSpecies returns a copy of c with the selection replaced.
func (c *AnalysisConfig) WithSelectedSpecies(tokens []string) *AnalysisConfig {
	cp := *c
	cp.SelectedSpecies = append([]string(nil), tokens...)
	return &cp
}
