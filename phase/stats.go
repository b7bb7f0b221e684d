// Package phase computes left/right extrema and range of motion over named
// windows of the gait cycle and keeps those statistics consistent while the
// window set is edited.
package phase

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Column names of a phase statistics row.
const (
	ColPhase = "Phase"
	ColStart = "% Start"
	ColEnd   = "% End"
	ColLMax  = "L Max"
	ColLMin  = "L Min"
	ColLROM  = "L ROM"
	ColRMax  = "R Max"
	ColRMin  = "R Min"
	ColRROM  = "R ROM"
	ColDMax  = "Δ Max"
	ColDMin  = "Δ Min"
	ColDROM  = "Δ ROM"
)

// Columns lists every column in display order.
var Columns = []string{
	ColPhase, ColStart, ColEnd,
	ColLMax, ColLMin, ColLROM,
	ColRMax, ColRMin, ColRROM,
	ColDMax, ColDMin, ColDROM,
}

// FullCycle is the window used to seed a parameter's statistics.
var FullCycle = Window{Name: "Full Cycle", Start: 0, End: 100}

// Window is a named sub-interval of the gait cycle in percent.
// Start > End is legal and means the phase has no data.
type Window struct {
	Name  string  `json:"name" toml:"name" yaml:"name"`
	Start float64 `json:"start" toml:"start" yaml:"start"`
	End   float64 `json:"end" toml:"end" yaml:"end"`
}

// Degenerate reports whether the window selects no samples by definition.
func (w Window) Degenerate() bool { return w.Start > w.End }

// Curve is a mean series indexed by gait cycle percentage.
type Curve struct {
	Cycle  []int
	Values []float64
}

// Extremum is a rounded value and the cycle at which it occurs.
// At is -1 when the value is missing.
type Extremum struct {
	Value float64
	At    int
}

// Side holds one side's statistics for a window.
type Side struct {
	Max Extremum
	Min Extremum
	ROM float64
}

// Row is the derived statistics for one window.
type Row struct {
	Window
	Left  Side
	Right Side
	DMax  float64
	DMin  float64
	DROM  float64
}

// Compute derives the statistics row for w from the left and right mean curves.
// Samples are selected with Start <= cycle <= End on each side independently,
// so one empty side never invalidates the other.
func Compute(w Window, left, right Curve) Row {
	row := Row{Window: w}
	if w.Degenerate() {
		row.Left = missingSide()
		row.Right = missingSide()
		row.DMax, row.DMin, row.DROM = math.NaN(), math.NaN(), math.NaN()
		return row
	}

	l, lraw := sideStats(w, left)
	r, rraw := sideStats(w, right)
	row.Left, row.Right = l, r
	row.DMax = round1(lraw.max - rraw.max)
	row.DMin = round1(lraw.min - rraw.min)
	row.DROM = round1((lraw.max - lraw.min) - (rraw.max - rraw.min))
	return row
}

type extrema struct{ max, min float64 }

func sideStats(w Window, c Curve) (Side, extrema) {
	var (
		values []float64
		cycles []int
	)
	for i, cy := range c.Cycle {
		if i >= len(c.Values) {
			break
		}
		v := c.Values[i]
		if math.IsNaN(v) || float64(cy) < w.Start || float64(cy) > w.End {
			continue
		}
		values = append(values, v)
		cycles = append(cycles, cy)
	}
	if len(values) == 0 {
		return missingSide(), extrema{math.NaN(), math.NaN()}
	}

	maxIdx := floats.MaxIdx(values)
	minIdx := floats.MinIdx(values)
	mx := round1(values[maxIdx])
	mn := round1(values[minIdx])
	return Side{
		Max: Extremum{Value: mx, At: cycles[maxIdx]},
		Min: Extremum{Value: mn, At: cycles[minIdx]},
		ROM: round1(mx - mn),
	}, extrema{values[maxIdx], values[minIdx]}
}

func missingSide() Side {
	nan := math.NaN()
	return Side{
		Max: Extremum{Value: nan, At: -1},
		Min: Extremum{Value: nan, At: -1},
		ROM: nan,
	}
}

func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*10) / 10
}

// Value returns the named column as a float; Phase is not numeric and reports false.
func (r Row) Value(col string) (float64, bool) {
	switch col {
	case ColStart:
		return r.Start, true
	case ColEnd:
		return r.End, true
	case ColLMax:
		return r.Left.Max.Value, true
	case ColLMin:
		return r.Left.Min.Value, true
	case ColLROM:
		return r.Left.ROM, true
	case ColRMax:
		return r.Right.Max.Value, true
	case ColRMin:
		return r.Right.Min.Value, true
	case ColRROM:
		return r.Right.ROM, true
	case ColDMax:
		return r.DMax, true
	case ColDMin:
		return r.DMin, true
	case ColDROM:
		return r.DROM, true
	}
	return 0, false
}

type rowJSON struct {
	Phase  string   `json:"Phase"`
	Start  float64  `json:"% Start"`
	End    float64  `json:"% End"`
	LMax   *float64 `json:"L Max"`
	LMin   *float64 `json:"L Min"`
	LROM   *float64 `json:"L ROM"`
	RMax   *float64 `json:"R Max"`
	RMin   *float64 `json:"R Min"`
	RROM   *float64 `json:"R ROM"`
	DMax   *float64 `json:"Δ Max"`
	DMin   *float64 `json:"Δ Min"`
	DROM   *float64 `json:"Δ ROM"`
	LMaxAt *int     `json:"l_max_at,omitempty"`
	LMinAt *int     `json:"l_min_at,omitempty"`
	RMaxAt *int     `json:"r_max_at,omitempty"`
	RMinAt *int     `json:"r_min_at,omitempty"`
}

// MarshalJSON writes the display columns with missing values as null.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowJSON{
		Phase:  r.Name,
		Start:  r.Start,
		End:    r.End,
		LMax:   floatOrNil(r.Left.Max.Value),
		LMin:   floatOrNil(r.Left.Min.Value),
		LROM:   floatOrNil(r.Left.ROM),
		RMax:   floatOrNil(r.Right.Max.Value),
		RMin:   floatOrNil(r.Right.Min.Value),
		RROM:   floatOrNil(r.Right.ROM),
		DMax:   floatOrNil(r.DMax),
		DMin:   floatOrNil(r.DMin),
		DROM:   floatOrNil(r.DROM),
		LMaxAt: posOrNil(r.Left.Max.At),
		LMinAt: posOrNil(r.Left.Min.At),
		RMaxAt: posOrNil(r.Right.Max.At),
		RMinAt: posOrNil(r.Right.Min.At),
	})
}

func floatOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func posOrNil(at int) *int {
	if at < 0 {
		return nil
	}
	return &at
}
