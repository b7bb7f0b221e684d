package gaitnotes

import (
	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/v3d"
)

// ComparedParameter is one parameter present in both datasets.
type ComparedParameter struct {
	Name string
	A    *PairedParameter
	B    *PairedParameter
	// Stats is the phase table shown with the comparison, taken from dataset A.
	Stats []phase.Row
	// StatsB is dataset B's phase table. It is not part of Table.
	StatsB []phase.Row
}

// Table merges both subjects' means: Gait cycle, Left Mean 1, Right Mean 1,
// Left Mean 2, Right Mean 2. Samples are aligned by cycle position.
func (c ComparedParameter) Table() v3d.Table {
	both := c.A.BothTable()
	cycle, _ := both.Column(v3d.CycleColumn)
	return v3d.Table{Columns: []v3d.Column{
		{Name: v3d.CycleColumn, Values: cycle},
		{Name: LeftMeanColumn + " 1", Values: c.A.Left.Mean},
		{Name: RightMeanColumn + " 1", Values: c.A.Right.Mean},
		{Name: LeftMeanColumn + " 2", Values: c.B.Left.Mean},
		{Name: RightMeanColumn + " 2", Values: c.B.Right.Mean},
	}}
}

// Comparison is the read-only overlay of two datasets.
type Comparison struct {
	Entries []ComparedParameter
}

// Names lists the compared parameters in dataset A's order.
func (c *Comparison) Names() []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Name
	}
	return out
}

// Entry returns the comparison for one parameter.
func (c *Comparison) Entry(name string) (ComparedParameter, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return ComparedParameter{}, false
}

// Compare overlays every parameter loaded in both datasets. Parameters
// present in only one dataset are left out.
func Compare(a, b *Dataset) *Comparison {
	out := &Comparison{}
	for _, name := range a.Parameters() {
		pb, ok := b.Parameter(name)
		if !ok {
			continue
		}
		pa, _ := a.Parameter(name)
		statsA, _ := a.SeedStats(name)
		statsB, _ := b.SeedStats(name)
		out.Entries = append(out.Entries, ComparedParameter{
			Name:   name,
			A:      pa,
			B:      pb,
			Stats:  statsA,
			StatsB: statsB,
		})
	}
	return out
}
