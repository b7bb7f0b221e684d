// Package v3d parses tab-delimited Visual3D exports into canonical gait
// structures: 101-sample waveforms, normative bands, subject metadata,
// temporal-spatial parameters and gait profile scores.
package v3d

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

const (
	// CycleLength is the number of samples in a normalized gait cycle (0..100%).
	CycleLength = 101

	// HeaderRows is the number of label rows below the file header in every export.
	HeaderRows = 4

	// CycleColumn is the display name of the gait cycle column.
	CycleColumn = "Gait cycle"

	// StaticTrial is the display label of the static calibration trial.
	StaticTrial = "Static"
)

// RawTable is one tab-delimited export as read from disk.
// Header is the first line; Rows[0..3] are the label rows that precede numeric data.
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Cell returns the cell at row i, column j, or "" when the row is short.
func (t *RawTable) Cell(i, j int) string {
	if i < 0 || i >= len(t.Rows) || j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// Column is one named numeric series.
type Column struct {
	Name   string
	Values []float64
}

// Table is an ordered set of equally long columns, the shape handed to
// renderers and exporters.
type Table struct {
	Columns []Column
}

// Len returns the number of rows.
func (t Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Column looks up a column by name.
func (t Table) Column(name string) ([]float64, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (t Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Trial is one exported trial column.
type Trial struct {
	Column string // raw header, e.g. "Gait 03.c3d"
	Label  string // display name, e.g. "03"
	Values []float64
}

// Static reports whether the trial is the static calibration trial.
func (t Trial) Static() bool {
	return t.Label == StaticTrial
}

// Waveform is a parsed per-side trial export.
type Waveform struct {
	Source string
	Cycle  []int
	Trials []Trial
	Mean   []float64
}

// Table renders the waveform with the mean column named meanName.
func (w *Waveform) Table(meanName string) Table {
	cols := make([]Column, 0, len(w.Trials)+2)
	cols = append(cols, Column{Name: CycleColumn, Values: cycleValues(w.Cycle)})
	for _, tr := range w.Trials {
		cols = append(cols, Column{Name: tr.Label, Values: tr.Values})
	}
	cols = append(cols, Column{Name: meanName, Values: w.Mean})
	return Table{Columns: cols}
}

// NormBand is a normative reference curve with its standard deviation.
type NormBand struct {
	Source string
	Cycle  []int
	Mean   []float64
	SD     []float64
}

// Bounds returns mean-k*SD and mean+k*SD.
func (n *NormBand) Bounds(k float64) (lower, upper []float64) {
	lower = floats.AddScaledTo(make([]float64, len(n.Mean)), n.Mean, -k, n.SD)
	upper = floats.AddScaledTo(make([]float64, len(n.Mean)), n.Mean, k, n.SD)
	return lower, upper
}

// Table renders the band as Gait cycle / Mean / SD.
func (n *NormBand) Table() Table {
	return Table{Columns: []Column{
		{Name: CycleColumn, Values: cycleValues(n.Cycle)},
		{Name: "Mean", Values: n.Mean},
		{Name: "SD", Values: n.SD},
	}}
}

// Field is one metadata key/value pair.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Metadata is the ordered subject/session information.
type Metadata struct {
	Fields []Field `json:"fields"`
}

// Get returns the value stored under key.
func (m Metadata) Get(key string) (string, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// TemporalSpatialRow is one temporal-spatial parameter. Both-sides
// parameters leave Left/Right missing and vice versa.
type TemporalSpatialRow struct {
	Parameter string
	Both      float64
	Left      float64
	Right     float64
}

// TemporalSpatial is the temporal-spatial parameter table.
type TemporalSpatial struct {
	Rows []TemporalSpatialRow
}

// TemporalSpatialPlaceholder stands in for an absent temporal-spatial export.
func TemporalSpatialPlaceholder() TemporalSpatial {
	nan := math.NaN()
	return TemporalSpatial{Rows: []TemporalSpatialRow{{Both: nan, Left: nan, Right: nan}}}
}

// MetricScore is one gait variable score per side.
type MetricScore struct {
	Metric string
	Left   float64
	Right  float64
}

// GaitProfile holds the overall GPS and the per-metric GVS table.
type GaitProfile struct {
	Overall float64
	Metrics []MetricScore
}

// GaitProfilePlaceholder stands in for an absent gait profile export.
func GaitProfilePlaceholder() GaitProfile {
	nan := math.NaN()
	return GaitProfile{
		Overall: nan,
		Metrics: []MetricScore{{Left: nan, Right: nan}},
	}
}

// MetricLabel maps a raw metric code to its display label.
type MetricLabel struct {
	Code  string `toml:"code" yaml:"code" json:"code"`
	Label string `toml:"label" yaml:"label" json:"label"`
}

// DisplayLabel strips the "Gait " and ".c3d" fragments Visual3D adds to trial names.
func DisplayLabel(column string) string {
	return strings.ReplaceAll(strings.ReplaceAll(column, "Gait ", ""), ".c3d", "")
}

func cycleValues(cycle []int) []float64 {
	out := make([]float64, len(cycle))
	for i, c := range cycle {
		out[i] = float64(c)
	}
	return out
}
