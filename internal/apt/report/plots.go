package report

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/composition.report/internal/apt/pipeline"
	"github.com/banshee-data/composition.report/internal/fsutil"
)

// Plot file names written by WritePlots.
const (
	RemovedSizesPlot = "removed_sizes.png"
	CompositionPlot  = "composition.png"
)

// WritePlots renders PNG charts into dir and returns the paths written.
func (c *Collector) WritePlots(fs fsutil.FileSystem, dir string) ([]string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}

	plots := []struct {
		name  string
		build func() (*plot.Plot, error)
	}{
		{RemovedSizesPlot, c.removedSizesPlot},
		{CompositionPlot, c.compositionPlot},
	}
	var written []string
	for _, pl := range plots {
		p, err := pl.build()
		if err != nil {
			return written, fmt.Errorf("build %s: %w", pl.name, err)
		}
		path := filepath.Join(dir, pl.name)
		if err := savePNG(fs, p, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func savePNG(fs fsutil.FileSystem, p *plot.Plot, path string) error {
	wt, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// finite replaces NaN with zero; gonum bar charts reject NaN.
func finite(values []float64) plotter.Values {
	out := make(plotter.Values, len(values))
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out
}

func (c *Collector) removedSizesPlot() (*plot.Plot, error) {
	sizes, counts := series(c.Table(pipeline.TableRemovedSizes), "size", "count")

	p := plot.New()
	p.Title.Text = pipeline.TableRemovedSizes
	p.X.Label.Text = "atoms"
	p.Y.Label.Text = "clusters"
	if len(counts) == 0 {
		return p, nil
	}

	bars, err := plotter.NewBarChart(finite(counts), vg.Points(8))
	if err != nil {
		return nil, err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = color.RGBA{R: 66, G: 133, B: 244, A: 255}
	p.Add(bars)
	p.NominalX(sizes...)
	return p, nil
}

func (c *Collector) compositionPlot() (*plot.Plot, error) {
	t := c.Table(pipeline.TableComposition)
	species, whole := series(t, "species", "total percent")
	_, matrix := series(t, "species", "matrix percent")

	p := plot.New()
	p.Title.Text = pipeline.TableComposition
	p.Y.Label.Text = "atomic %"
	if len(species) == 0 {
		return p, nil
	}

	w := vg.Points(12)
	wholeBars, err := plotter.NewBarChart(finite(asPercent(whole)), w)
	if err != nil {
		return nil, err
	}
	wholeBars.LineStyle.Width = vg.Length(0)
	wholeBars.Color = color.RGBA{R: 158, G: 158, B: 158, A: 255}
	wholeBars.Offset = -w / 2

	matrixBars, err := plotter.NewBarChart(finite(asPercent(matrix)), w)
	if err != nil {
		return nil, err
	}
	matrixBars.LineStyle.Width = vg.Length(0)
	matrixBars.Color = color.RGBA{R: 255, G: 82, B: 82, A: 255}
	matrixBars.Offset = w / 2

	p.Add(wholeBars, matrixBars)
	p.Legend.Add("dataset", wholeBars)
	p.Legend.Add("matrix", matrixBars)
	p.Legend.Top = true
	p.NominalX(species...)
	return p, nil
}
