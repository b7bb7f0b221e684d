package gaitnotes

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/v3d"
)

// Mean column names used in per-side, combined and comparison tables.
const (
	LeftMeanColumn  = "Left Mean"
	RightMeanColumn = "Right Mean"
)

// PairedParameter binds the left and right waveforms of one kinematic
// parameter with its optional normative band and plot bounds.
type PairedParameter struct {
	Name  string
	Left  *v3d.Waveform
	Right *v3d.Waveform
	Norm  *v3d.NormBand
	// YAxis is [min, max] over both mean curves widened by the nominal range.
	YAxis  [2]float64
	YLabel string
	// Stats is the full-cycle row computed when the pair was built.
	Stats phase.Row
}

// Pair aligns left and right waveforms. A nil nominal range uses data extrema only.
func Pair(name string, left, right *v3d.Waveform, norm *v3d.NormBand, nominal *[2]float64) *PairedParameter {
	p := &PairedParameter{Name: name, Left: left, Right: right, Norm: norm}
	p.YAxis = yAxis(left.Mean, right.Mean, nominal)
	p.Stats = phase.Compute(phase.FullCycle, p.LeftCurve(), p.RightCurve())
	return p
}

// LeftCurve returns the left mean series for phase statistics.
func (p *PairedParameter) LeftCurve() phase.Curve {
	return phase.Curve{Cycle: p.Left.Cycle, Values: p.Left.Mean}
}

// RightCurve returns the right mean series for phase statistics.
func (p *PairedParameter) RightCurve() phase.Curve {
	return phase.Curve{Cycle: p.Right.Cycle, Values: p.Right.Mean}
}

// LeftTable returns the left trials with the mean as "Left Mean".
func (p *PairedParameter) LeftTable() v3d.Table { return p.Left.Table(LeftMeanColumn) }

// RightTable returns the right trials with the mean as "Right Mean".
func (p *PairedParameter) RightTable() v3d.Table { return p.Right.Table(RightMeanColumn) }

// BothTable returns the gait cycle with both mean columns; trial detail is dropped.
func (p *PairedParameter) BothTable() v3d.Table {
	left := p.LeftTable()
	cycle, _ := left.Column(v3d.CycleColumn)
	return v3d.Table{Columns: []v3d.Column{
		{Name: v3d.CycleColumn, Values: cycle},
		{Name: LeftMeanColumn, Values: p.Left.Mean},
		{Name: RightMeanColumn, Values: p.Right.Mean},
	}}
}

// NormTable returns the normative band table, or nil when none was loaded.
func (p *PairedParameter) NormTable() *v3d.Table {
	if p.Norm == nil {
		return nil
	}
	t := p.Norm.Table()
	return &t
}

func yAxis(left, right []float64, nominal *[2]float64) [2]float64 {
	lows := finite(left, right)
	highs := lows
	if nominal != nil {
		lows = append(append([]float64(nil), lows...), nominal[0])
		highs = append(append([]float64(nil), highs...), nominal[1])
	}
	out := [2]float64{math.NaN(), math.NaN()}
	if len(lows) > 0 {
		out[0] = floats.Min(lows)
	}
	if len(highs) > 0 {
		out[1] = floats.Max(highs)
	}
	return out
}

func finite(series ...[]float64) []float64 {
	var out []float64
	for _, s := range series {
		for _, v := range s {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				out = append(out, v)
			}
		}
	}
	return out
}
