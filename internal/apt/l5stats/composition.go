package l5stats

import (
	"math"

	"github.com/banshee-data/composition.report/internal/apt"
	"github.com/banshee-data/composition.report/internal/apt/l1ions"
)

// Proportion is an observed count out of a total with its binomial
// standard error, sqrt(p(1-p)/n).
type Proportion struct {
	Count   int
	Total   int
	Percent float64
	Error   float64
}

// NewProportion computes c/n. A zero total yields NaN percent and error.
func NewProportion(c, n int) Proportion {
	p := Proportion{Count: c, Total: n}
	if n == 0 {
		p.Percent = math.NaN()
		p.Error = math.NaN()
		return p
	}
	p.Percent = float64(c) / float64(n)
	p.Error = math.Sqrt(p.Percent * (1 - p.Percent) / float64(n))
	return p
}

// Ledger tracks whole-dataset species totals and what remains after
// envelope contents are subtracted.
type Ledger struct {
	catalog l1ions.SpeciesCatalog

	totals     []int
	remaining  []int
	subtracted []int

	totalAtoms     int
	remainingAtoms int

	envelopes int
	warnings  []apt.Warning
}

// NewLedger starts from per-species ranged totals. unranged ions count
// toward the atom total used as the composition denominator.
func NewLedger(catalog l1ions.SpeciesCatalog, totals []int, unranged int) *Ledger {
	l := &Ledger{
		catalog:    catalog,
		totals:     append([]int(nil), totals...),
		remaining:  append([]int(nil), totals...),
		subtracted: make([]int, len(totals)),
		totalAtoms: unranged,
	}
	for _, n := range totals {
		l.totalAtoms += n
	}
	l.remainingAtoms = l.totalAtoms
	return l
}

// Subtract removes one envelope's species counts. A species going negative
// is recorded as a consistency warning and left negative. It reports
// whether every residual is still non-negative.
func (l *Ledger) Subtract(envelope int, counts []int) bool {
	l.envelopes++
	ok := true
	for s, c := range counts {
		if s >= len(l.remaining) || c == 0 {
			continue
		}
		l.remaining[s] -= c
		l.subtracted[s] += c
		l.remainingAtoms -= c
		if l.remaining[s] < 0 {
			ok = false
			l.warnings = append(l.warnings, apt.Warnf(apt.WarnConsistency,
				"matrix %s count is %d after envelope %d; envelopes overlap",
				l.catalog.Name(l1ions.SpeciesID(s)), l.remaining[s], envelope))
		}
	}
	return ok
}

// CompositionRow is one species' whole-dataset and matrix composition.
type CompositionRow struct {
	Species    l1ions.SpeciesID
	Name       string
	Whole      Proportion
	Matrix     Proportion
	Subtracted int
}

// Rows returns one row per catalog species in id order.
func (l *Ledger) Rows() []CompositionRow {
	rows := make([]CompositionRow, len(l.totals))
	for s := range l.totals {
		id := l1ions.SpeciesID(s)
		rows[s] = CompositionRow{
			Species:    id,
			Name:       l.catalog.Name(id),
			Whole:      NewProportion(l.totals[s], l.totalAtoms),
			Matrix:     NewProportion(l.remaining[s], l.remainingAtoms),
			Subtracted: l.subtracted[s],
		}
	}
	return rows
}

// Remaining returns the matrix residual per species.
func (l *Ledger) Remaining() []int { return append([]int(nil), l.remaining...) }

// TotalAtoms returns the whole-dataset atom count, unranged included.
func (l *Ledger) TotalAtoms() int { return l.totalAtoms }

// RemainingAtoms returns the atom count left after all subtractions.
func (l *Ledger) RemainingAtoms() int { return l.remainingAtoms }

// Envelopes returns how many envelopes have been subtracted.
func (l *Ledger) Envelopes() int { return l.envelopes }

// Warnings returns the consistency warnings raised so far.
func (l *Ledger) Warnings() []apt.Warning { return l.warnings }

// EnvelopeComposition returns per-species proportions within one envelope,
// skipping species with no captured ions.
func EnvelopeComposition(counts []int) map[l1ions.SpeciesID]Proportion {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make(map[l1ions.SpeciesID]Proportion)
	for s, c := range counts {
		if c > 0 {
			out[l1ions.SpeciesID(s)] = NewProportion(c, total)
		}
	}
	return out
}
