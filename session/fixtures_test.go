package session

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	gaitnotes "github.com/lucasjlepore/gait-analyzer"
	"github.com/lucasjlepore/gait-analyzer/v3d"
)

func testConfig() gaitnotes.Config {
	return gaitnotes.Config{
		Info: gaitnotes.FileConfig{File: "Info.txt"},
		Kinematics: []gaitnotes.ParameterConfig{
			{Name: "Hip", LeftFile: "Left Hip.txt", RightFile: "Right Hip.txt"},
			{Name: "Knee", LeftFile: "Left Knee.txt", RightFile: "Right Knee.txt"},
		},
		Phases: gaitnotes.PhasesConfig{
			Names:  []string{"Full Cycle", "Stance", "Swing"},
			Ranges: [][]float64{{0, 100}, {0, 60}, {60, 100}},
		},
	}
}

func rampTable(name string, f func(c int) float64) *v3d.RawTable {
	t := &v3d.RawTable{Name: name, Header: []string{"", "Gait 01.c3d"}}
	for r := 0; r < v3d.HeaderRows; r++ {
		t.Rows = append(t.Rows, []string{"", ""})
	}
	for c := 0; c < v3d.CycleLength; c++ {
		t.Rows = append(t.Rows, []string{strconv.Itoa(c + 1), strconv.FormatFloat(f(c), 'f', -1, 64)})
	}
	return t
}

func infoTable(first string) *v3d.RawTable {
	keys := []string{"First Name", "Last Name", "Creation date", "Folder Name"}
	values := []string{first, "Doe", "2024-05-02", `C:\gait\S1_Barefoot`}
	t := &v3d.RawTable{Name: "Info.txt", Header: make([]string, len(keys)+1)}
	for r := 0; r < 5; r++ {
		row := make([]string, len(keys)+1)
		switch r {
		case 0:
			copy(row[1:], keys)
		case 4:
			copy(row[1:], values)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// loadDataset builds a dataset whose left curves ramp by gain and whose
// right curves sit 5 below.
func loadDataset(t *testing.T, first string, gain float64, params ...string) *gaitnotes.Dataset {
	t.Helper()
	files := map[string]*v3d.RawTable{"Info.txt": infoTable(first)}
	for _, p := range params {
		files["Left "+p+".txt"] = rampTable("Left "+p+".txt", func(c int) float64 { return gain * float64(c) })
		files["Right "+p+".txt"] = rampTable("Right "+p+".txt", func(c int) float64 { return gain*float64(c) - 5 })
	}
	d, err := gaitnotes.Load(files, testConfig(), nil)
	require.NoError(t, err)
	return d
}
