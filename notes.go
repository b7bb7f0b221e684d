package gaitnotes

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasjlepore/gait-analyzer/phase"
)

// AsymmetryThreshold is the absolute left-right difference, in the
// parameter's unit, above which a full-cycle extreme is called out.
const AsymmetryThreshold = 5.0

// ParameterNotes is one parameter's section of the report.
type ParameterNotes struct {
	Name    string
	Rows    []phase.Row
	Comment string
}

// DefaultParameterNotes returns every loaded parameter with its default phase table.
func DefaultParameterNotes(d *Dataset) []ParameterNotes {
	out := make([]ParameterNotes, 0, len(d.order))
	for _, name := range d.Parameters() {
		rows, _ := d.SeedStats(name)
		out = append(out, ParameterNotes{Name: name, Rows: rows})
	}
	return out
}

// BuildReportNotes renders the dataset and the given parameter sections as
// a plain-text report. A nil params slice reports every parameter with its
// default phase table.
func BuildReportNotes(d *Dataset, params []ParameterNotes) string {
	if d == nil {
		return ""
	}
	if params == nil {
		params = DefaultParameterNotes(d)
	}

	var b strings.Builder

	title, err := d.Title()
	if err != nil {
		title = fmt.Sprintf("Untitled session (%v)", err)
	}
	fmt.Fprintf(&b, "%s\n", title)

	b.WriteString("\nSubject\n")
	for _, f := range d.Info.Fields {
		fmt.Fprintf(&b, "- %s: %s\n", f.Key, f.Value)
	}

	b.WriteString("\nTemporal-Spatial Parameters\n")
	for _, r := range d.TemporalSpatial.Rows {
		if r.Parameter == "" {
			b.WriteString("- not available\n")
			continue
		}
		if math.IsNaN(r.Left) && math.IsNaN(r.Right) {
			fmt.Fprintf(&b, "- %s: %s\n", r.Parameter, formatValue(r.Both))
			continue
		}
		fmt.Fprintf(&b, "- %s: L %s / R %s\n", r.Parameter, formatValue(r.Left), formatValue(r.Right))
	}

	b.WriteString("\nGait Profile\n")
	fmt.Fprintf(&b, "- Overall GPS: %s\n", formatValue(d.GaitProfile.Overall))
	for _, m := range d.GaitProfile.Metrics {
		if m.Metric == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: L %s / R %s\n", m.Metric, formatValue(m.Left), formatValue(m.Right))
	}

	for _, p := range params {
		fmt.Fprintf(&b, "\n%s\n", p.Name)
		writePhaseTable(&b, p.Rows)
		if c := strings.TrimSpace(p.Comment); c != "" {
			fmt.Fprintf(&b, "Comment: %s\n", c)
		}
	}

	if flagged := asymmetries(params); len(flagged) > 0 {
		b.WriteString("\nSymmetry Notes\n")
		for _, s := range flagged {
			b.WriteString("- ")
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}

	if problems := d.Problems(); len(problems) > 0 {
		b.WriteString("\nLoad Problems\n")
		for _, err := range problems {
			fmt.Fprintf(&b, "- %v\n", err)
		}
	}

	return strings.TrimSpace(b.String())
}

func writePhaseTable(b *strings.Builder, rows []phase.Row) {
	b.WriteString("| " + strings.Join(phase.Columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(phase.Columns)) + "\n")
	for _, r := range rows {
		cells := make([]string, 0, len(phase.Columns))
		cells = append(cells, r.Name)
		for _, col := range phase.Columns[1:] {
			v, _ := r.Value(col)
			cells = append(cells, formatValue(v))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

// asymmetries lists full-cycle rows whose max, min or ROM differ by more
// than AsymmetryThreshold between sides.
func asymmetries(params []ParameterNotes) []string {
	var out []string
	for _, p := range params {
		for _, r := range p.Rows {
			if r.Window != phase.FullCycle {
				continue
			}
			var parts []string
			for _, d := range []struct {
				label string
				v     float64
			}{{"max", r.DMax}, {"min", r.DMin}, {"ROM", r.DROM}} {
				if !math.IsNaN(d.v) && math.Abs(d.v) > AsymmetryThreshold {
					parts = append(parts, fmt.Sprintf("%s %+.1f", d.label, d.v))
				}
			}
			if len(parts) > 0 {
				out = append(out, fmt.Sprintf("%s: left-right %s", p.Name, strings.Join(parts, ", ")))
			}
		}
	}
	return out
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%g", v)
}
