package v3d

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ParseWaveform converts one per-side trial export into a Waveform.
//
// The four label rows are dropped, every cell is coerced to a float
// (non-numeric cells become NaN), the frame index 1..101 becomes cycle
// 0..100, and Mean is the NaN-skipping row mean over every trial except
// the static calibration trial.
func ParseWaveform(t *RawTable) (*Waveform, error) {
	if t == nil {
		return nil, malformedWaveform("", "nil table")
	}
	cycle, data, err := numericBody(t)
	if err != nil {
		return nil, err
	}

	w := &Waveform{
		Source: t.Name,
		Cycle:  cycle,
		Trials: make([]Trial, 0, len(t.Header)-1),
		Mean:   make([]float64, CycleLength),
	}
	for j := 1; j < len(t.Header); j++ {
		values := make([]float64, CycleLength)
		for i, row := range data {
			values[i] = parseCell(cellAt(row, j))
		}
		w.Trials = append(w.Trials, Trial{
			Column: t.Header[j],
			Label:  DisplayLabel(t.Header[j]),
			Values: values,
		})
	}

	dynamic := make([]float64, 0, len(w.Trials))
	for i := range w.Mean {
		dynamic = dynamic[:0]
		for _, tr := range w.Trials {
			if tr.Static() || math.IsNaN(tr.Values[i]) {
				continue
			}
			dynamic = append(dynamic, tr.Values[i])
		}
		if len(dynamic) == 0 {
			w.Mean[i] = math.NaN()
			continue
		}
		w.Mean[i] = stat.Mean(dynamic, nil)
	}
	return w, nil
}

// ParseNormBand converts a normative export (index, mean, SD) into a NormBand.
func ParseNormBand(t *RawTable) (*NormBand, error) {
	if t == nil {
		return nil, malformedWaveform("", "nil table")
	}
	if len(t.Header) < 3 {
		return nil, malformedWaveform(t.Name, "%d columns, want cycle, mean and SD", len(t.Header))
	}
	cycle, data, err := numericBody(t)
	if err != nil {
		return nil, err
	}
	n := &NormBand{
		Source: t.Name,
		Cycle:  cycle,
		Mean:   make([]float64, CycleLength),
		SD:     make([]float64, CycleLength),
	}
	for i, row := range data {
		n.Mean[i] = parseCell(cellAt(row, 1))
		n.SD[i] = parseCell(cellAt(row, 2))
	}
	return n, nil
}

// numericBody drops the label rows and validates the cycle column.
func numericBody(t *RawTable) ([]int, [][]string, error) {
	if len(t.Header) == 0 {
		return nil, nil, malformedWaveform(t.Name, "no columns")
	}
	var data [][]string
	if len(t.Rows) > HeaderRows {
		data = t.Rows[HeaderRows:]
	}
	if len(data) != CycleLength {
		return nil, nil, malformedWaveform(t.Name, "%d samples, want %d", len(data), CycleLength)
	}
	cycle := make([]int, CycleLength)
	for i, row := range data {
		v := parseCell(cellAt(row, 0)) - 1
		if math.IsNaN(v) || v != float64(i) {
			return nil, nil, malformedWaveform(t.Name, "cycle sample %d is %q, want frame %d", i, cellAt(row, 0), i+1)
		}
		cycle[i] = i
	}
	return cycle, data, nil
}

func cellAt(row []string, j int) string {
	if j < len(row) {
		return row[j]
	}
	return ""
}
