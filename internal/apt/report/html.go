package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/composition.report/internal/apt/pipeline"
)

// maxScatterPoints bounds the points drawn per envelope; larger clouds are
// strided.
const maxScatterPoints = 5000

// barValue maps NaN to echarts' missing-value marker; JSON has no NaN.
func barValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}

// asPercent scales fractions in [0, 1] to atomic percent.
func asPercent(fractions []float64) []float64 {
	out := make([]float64, len(fractions))
	for i, f := range fractions {
		out[i] = f * 100
	}
	return out
}

func barData(values []float64) []opts.BarData {
	out := make([]opts.BarData, len(values))
	for i, v := range values {
		out[i] = opts.BarData{Value: barValue(v)}
	}
	return out
}

// RenderHTML writes a self-contained echarts page: the envelopes as a 3D
// scatter, then the removed-size histogram and the composition ledger.
func (c *Collector) RenderHTML(w io.Writer, title string) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(c.envelopeScatter(title), c.removedSizesBar(), c.compositionBar())
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func (c *Collector) envelopeScatter(title string) *charts.Scatter3D {
	total := 0
	for _, pc := range c.PointClouds {
		total += len(pc.Points)
	}

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Envelopes", Subtitle: fmt.Sprintf("envelopes=%d atoms=%d", len(c.PointClouds), total)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X (nm)"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y (nm)"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z (nm)"}),
	)

	for _, pc := range c.PointClouds {
		stride := 1
		if len(pc.Points) > maxScatterPoints {
			stride = (len(pc.Points) + maxScatterPoints - 1) / maxScatterPoints
		}
		data := make([]opts.Chart3DData, 0, len(pc.Points)/stride+1)
		for i := 0; i < len(pc.Points); i += stride {
			p := pc.Points[i]
			data = append(data, opts.Chart3DData{Value: []interface{}{p.X, p.Y, p.Z}})
		}
		scatter.AddSeries(pc.Name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: pc.Color.Hex()}))
	}
	return scatter
}

func (c *Collector) removedSizesBar() *charts.Bar {
	sizes, counts := series(c.Table(pipeline.TableRemovedSizes), "size", "count")

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: pipeline.TableRemovedSizes}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "atoms", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "clusters"}),
	)
	bar.SetXAxis(sizes).AddSeries("removed", barData(counts))
	return bar
}

func (c *Collector) compositionBar() *charts.Bar {
	t := c.Table(pipeline.TableComposition)
	species, whole := series(t, "species", "total percent")
	_, matrix := series(t, "species", "matrix percent")

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: pipeline.TableComposition, Subtitle: "atomic %"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(species).
		AddSeries("dataset", barData(asPercent(whole))).
		AddSeries("matrix", barData(asPercent(matrix)),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
