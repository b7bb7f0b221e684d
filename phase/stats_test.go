package phase

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func ramp(from, to float64) Curve {
	c := Curve{Cycle: make([]int, 101), Values: make([]float64, 101)}
	for i := range c.Cycle {
		c.Cycle[i] = i
		c.Values[i] = from + (to-from)*float64(i)/100
	}
	return c
}

func constant(v float64) Curve {
	c := ramp(0, 0)
	for i := range c.Values {
		c.Values[i] = v
	}
	return c
}

func TestComputeStanceOnRamp(t *testing.T) {
	row := Compute(Window{Name: "Stance", Start: 0, End: 60}, ramp(0, 100), ramp(0, 100))
	if row.Left.Max.Value != 60 || row.Left.Max.At != 60 {
		t.Fatalf("left max = %+v, want 60 at 60", row.Left.Max)
	}
	if row.Left.Min.Value != 0 || row.Left.Min.At != 0 {
		t.Fatalf("left min = %+v, want 0 at 0", row.Left.Min)
	}
	if row.Left.ROM != 60 {
		t.Fatalf("left ROM = %v, want 60", row.Left.ROM)
	}
	if row.DMax != 0 || row.DMin != 0 || row.DROM != 0 {
		t.Fatalf("deltas = %v %v %v, want 0", row.DMax, row.DMin, row.DROM)
	}
}

func TestComputeDegenerateWindow(t *testing.T) {
	w := Window{Name: "Backwards", Start: 70, End: 20}
	row := Compute(w, ramp(0, 100), ramp(0, 100))
	if row.Window != w {
		t.Fatalf("window changed: %+v", row.Window)
	}
	for _, col := range Columns[3:] {
		v, _ := row.Value(col)
		if !math.IsNaN(v) {
			t.Fatalf("%s = %v, want missing", col, v)
		}
	}
	if row.Left.Max.At != -1 || row.Right.Min.At != -1 {
		t.Fatalf("positions should be unset: %+v %+v", row.Left, row.Right)
	}
}

func TestComputeSidesAreIndependent(t *testing.T) {
	right := ramp(0, 100)
	for i := 20; i <= 40; i++ {
		right.Values[i] = math.NaN()
	}
	row := Compute(Window{Name: "Gap", Start: 20, End: 40}, ramp(10, 20), right)
	if math.IsNaN(row.Left.Max.Value) || row.Left.Max.Value != 14 {
		t.Fatalf("left max = %v, want 14", row.Left.Max.Value)
	}
	if !math.IsNaN(row.Right.Max.Value) || !math.IsNaN(row.Right.ROM) {
		t.Fatalf("right side should be missing: %+v", row.Right)
	}
	if !math.IsNaN(row.DMax) {
		t.Fatalf("delta with a missing side = %v", row.DMax)
	}
}

func TestComputeFullCycleROMEqualsMaxMinusMin(t *testing.T) {
	left := ramp(-3.27, 41.86)
	row := Compute(FullCycle, left, constant(1))
	if got, want := row.Left.ROM, round1(row.Left.Max.Value-row.Left.Min.Value); got != want {
		t.Fatalf("ROM = %v, want %v", got, want)
	}
	if row.Left.Max.Value != 41.9 || row.Left.Min.Value != -3.3 {
		t.Fatalf("extrema = %v / %v", row.Left.Max.Value, row.Left.Min.Value)
	}
}

func TestComputeDeltaFromUnroundedValues(t *testing.T) {
	// 1.04 and 0.96 round to 1.0 each, so a delta from rounded values is 0.0.
	row := Compute(Window{Name: "Point", Start: 50, End: 50}, constant(1.04), constant(0.96))
	if row.Left.Max.Value != 1.0 || row.Right.Max.Value != 1.0 {
		t.Fatalf("rounded maxima = %v / %v", row.Left.Max.Value, row.Right.Max.Value)
	}
	if row.DMax != 0.1 {
		t.Fatalf("Δ Max = %v, want 0.1", row.DMax)
	}
}

func TestComputeFirstOccurrence(t *testing.T) {
	c := constant(5)
	c.Values[30] = 9
	c.Values[80] = 9
	row := Compute(FullCycle, c, c)
	if row.Left.Max.At != 30 {
		t.Fatalf("max position = %d, want first occurrence 30", row.Left.Max.At)
	}
	if row.Left.Min.At != 0 {
		t.Fatalf("min position = %d, want 0", row.Left.Min.At)
	}
}

func TestRowJSONWritesNullForMissing(t *testing.T) {
	row := Compute(Window{Name: "Backwards", Start: 70, End: 20}, ramp(0, 1), ramp(0, 1))
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"L Max":null`) || !strings.Contains(s, `"Phase":"Backwards"`) {
		t.Fatalf("json = %s", s)
	}
	if strings.Contains(s, "l_max_at") {
		t.Fatalf("missing position should be omitted: %s", s)
	}
}
