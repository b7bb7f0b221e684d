package gaitnotes

import (
	"strconv"

	"github.com/lucasjlepore/gait-analyzer/v3d"
)

func testConfig() Config {
	return Config{
		Info:     FileConfig{File: "Info.txt"},
		Temporal: FileConfig{File: "Temporal Distance.txt"},
		GPS: ProfileConfig{File: "GPS.txt", Metrics: []v3d.MetricLabel{
			{Code: "GPS_mean_MEAN", Label: "Gait Profile Score"},
			{Code: "Knee Angles_X_gvs_MEDIAN", Label: "Knee Fle/Ext"},
		}},
		Kinematics: []ParameterConfig{
			{Name: "Hip", LeftFile: "Left Hip.txt", RightFile: "Right Hip.txt", NormFile: "Norm Hip.txt", YAxis: []float64{-20, 60}},
			{Name: "Knee", LeftFile: "Left Knee.txt", RightFile: "Right Knee.txt", NormFile: "Norm Knee.txt"},
			{Name: "Ankle", LeftFile: "Left Ankle.txt", RightFile: "Right Ankle.txt"},
			{Name: "Foot", LeftFile: "Left Foot.txt", RightFile: "Right Foot.txt"},
		},
		Phases: PhasesConfig{
			Names:  []string{"Full Cycle", "Stance", "Swing"},
			Ranges: [][]float64{{0, 100}, {0, 60}, {60, 100}},
		},
		Standard: LayoutConfig{Layout: [][]string{{"Hip", "Knee"}, {"Ankle", "Foot"}}},
	}
}

// waveformTable builds a Visual3D trial export where every trial follows f
// shifted by the trial index, plus a static trial that must not count.
func waveformTable(name string, trials int, f func(cycle int) float64) *v3d.RawTable {
	header := []string{""}
	for i := 0; i < trials; i++ {
		header = append(header, "Gait 0"+strconv.Itoa(i+1)+".c3d")
	}
	header = append(header, "Static.c3d")
	t := &v3d.RawTable{Name: name, Header: header}
	for r := 0; r < v3d.HeaderRows; r++ {
		t.Rows = append(t.Rows, make([]string, len(header)))
	}
	for c := 0; c < v3d.CycleLength; c++ {
		row := []string{strconv.Itoa(c + 1)}
		for i := 0; i < trials; i++ {
			// offsets -1, +1 (for two trials) cancel in the mean
			off := float64(2*i - (trials - 1))
			row = append(row, strconv.FormatFloat(f(c)+off, 'f', -1, 64))
		}
		row = append(row, "500")
		t.Rows = append(t.Rows, row)
	}
	return t
}

func normTable(name string) *v3d.RawTable {
	t := &v3d.RawTable{Name: name, Header: []string{"", "Mean", "SD"}}
	for r := 0; r < v3d.HeaderRows; r++ {
		t.Rows = append(t.Rows, []string{"", "", ""})
	}
	for c := 0; c < v3d.CycleLength; c++ {
		t.Rows = append(t.Rows, []string{strconv.Itoa(c + 1), strconv.Itoa(c / 2), "3"})
	}
	return t
}

func keyValueTable(name string, keys, values []string) *v3d.RawTable {
	t := &v3d.RawTable{Name: name, Header: make([]string, len(keys)+1)}
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

func infoTable(first, condition string) *v3d.RawTable {
	return keyValueTable("Info.txt",
		[]string{"First Name", "Last Name", "Creation date", "Folder Name"},
		[]string{first, "Doe", "2024-05-02", `C:\gait\S1_` + condition + `\`},
	)
}

// subjectFiles returns a full set of exports for the named parameters.
// Left curves are linear ramps scaled by gain; right curves are the ramp minus 5.
func subjectFiles(first string, gain float64, params ...string) map[string]*v3d.RawTable {
	files := map[string]*v3d.RawTable{
		"Info.txt": infoTable(first, "Barefoot"),
		"Temporal Distance.txt": keyValueTable("Temporal Distance.txt",
			[]string{"Speed", "Cycle_Time_Mean"}, []string{"1.2", "1.1"}),
		"GPS.txt": keyValueTable("GPS.txt",
			[]string{"Overall_GPS_mean_MEAN", "Left_GPS_mean_MEAN", "Right_GPS_mean_MEAN", "Left Knee Angles_X_gvs_MEDIAN", "Right Knee Angles_X_gvs_MEDIAN"},
			[]string{"7.1", "6.8", "7.4", "9.0", "8.5"}),
	}
	for _, p := range params {
		files["Left "+p+".txt"] = waveformTable("Left "+p+".txt", 2, func(c int) float64 { return gain * float64(c) })
		files["Right "+p+".txt"] = waveformTable("Right "+p+".txt", 2, func(c int) float64 { return gain*float64(c) - 5 })
		files["Norm "+p+".txt"] = normTable("Norm " + p + ".txt")
	}
	return files
}
