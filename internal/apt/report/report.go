// Package report renders a finished run for people: an interactive HTML
// page built with go-echarts and static PNG charts built with gonum/plot.
//
// Collector is a sink.ResultSink, so it is filled by pipeline.Emit like any
// other sink and rendered afterwards.
package report

import (
	"github.com/banshee-data/composition.report/internal/apt/sink"
)

// Collector buffers everything a run emits until it is rendered.
type Collector struct {
	sink.MemorySink
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// column returns the index of the named column in t, or -1.
func column(t *sink.Table, name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// series extracts a label column and a number column from t.
func series(t *sink.Table, label, value string) ([]string, []float64) {
	li, vi := column(t, label), column(t, value)
	if li < 0 || vi < 0 {
		return nil, nil
	}
	labels := make([]string, 0, len(t.Rows))
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		labels = append(labels, row[li].Format())
		values = append(values, row[vi].Value())
	}
	return labels, values
}
