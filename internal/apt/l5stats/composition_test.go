package l5stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/composition.report/internal/apt"
	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

func TestNewProportion(t *testing.T) {
	p := NewProportion(50, 100)
	assert.InDelta(t, 0.5, p.Percent, 1e-12)
	assert.InDelta(t, 0.05, p.Error, 1e-12)

	p = NewProportion(0, 10)
	assert.Zero(t, p.Percent)
	assert.Zero(t, p.Error)

	p = NewProportion(0, 0)
	assert.True(t, math.IsNaN(p.Percent))
	assert.True(t, math.IsNaN(p.Error))
}

func TestLedger_ConservesComposition(t *testing.T) {
	catalog := l1ions.NewSpeciesCatalog("Cu", "Fe", "Ni")
	totals := []int{40, 50, 10}
	l := NewLedger(catalog, totals, 5)

	envelopes := [][]int{{10, 2, 0}, {5, 0, 3}, {0, 1, 1}}
	for i, counts := range envelopes {
		assert.True(t, l.Subtract(i, counts))
	}

	rows := l.Rows()
	require.Len(t, rows, 3)
	for s, row := range rows {
		sum := 0
		for _, counts := range envelopes {
			sum += counts[s]
		}
		assert.Equal(t, totals[s], sum+row.Matrix.Count, "species %s", row.Name)
		assert.Equal(t, sum, row.Subtracted)
		assert.Equal(t, totals[s], row.Whole.Count)
	}

	assert.Equal(t, 105, l.TotalAtoms())
	assert.Equal(t, 105-22, l.RemainingAtoms())
	assert.Equal(t, 3, l.Envelopes())
	assert.InDelta(t, 40.0/105, rows[0].Whole.Percent, 1e-12)
	assert.InDelta(t, 25.0/83, rows[0].Matrix.Percent, 1e-12)
	assert.Empty(t, l.Warnings())
}

func TestLedger_NegativeResidualIsReportedNotClamped(t *testing.T) {
	l := NewLedger(l1ions.NewSpeciesCatalog("Cu"), []int{3}, 0)

	assert.True(t, l.Subtract(0, []int{2}))
	assert.False(t, l.Subtract(1, []int{2}))

	assert.Equal(t, []int{-1}, l.Remaining())
	require.Len(t, l.Warnings(), 1)
	assert.Equal(t, apt.WarnConsistency, l.Warnings()[0].Kind)
	assert.Contains(t, l.Warnings()[0].Message, "Cu count is -1 after envelope 1")
}

func TestEnvelopeComposition(t *testing.T) {
	comp := EnvelopeComposition([]int{3, 0, 1})
	require.Len(t, comp, 2)
	assert.InDelta(t, 0.75, comp[0].Percent, 1e-12)
	assert.InDelta(t, 0.25, comp[2].Percent, 1e-12)
}
