package pipeline

import (
	"context"

	"github.com/banshee-data/composition.report/internal/apt/l1ions"
	"github.com/banshee-data/composition.report/internal/apt/sink"
)

func speciesID(s int) l1ions.SpeciesID { return l1ions.SpeciesID(s) }

// Analyze runs the analysis and, only if it succeeds, emits the result.
func Analyze(ctx context.Context, src l1ions.IonSource, cfg Config, out sink.ResultSink, palette sink.Palette) (*Result, error) {
	res, err := Run(ctx, src, cfg)
	if err != nil {
		return nil, err
	}
	if err := Emit(res, out, palette); err != nil {
		return nil, err
	}
	return res, nil
}
