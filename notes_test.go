package gaitnotes

import (
	"strings"
	"testing"
)

func TestBuildReportNotes(t *testing.T) {
	files := subjectFiles("Ann", 1, "Hip")
	// push the right side down so the full-cycle extremes differ by 12
	files["Right Hip.txt"] = waveformTable("Right Hip.txt", 2, func(c int) float64 { return float64(c) - 12 })
	delete(files, "Temporal Distance.txt")
	d, err := Load(files, testConfig(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	rows, _ := d.SeedStats("Hip")
	notes := BuildReportNotes(d, []ParameterNotes{{Name: "Hip", Rows: rows, Comment: "Reduced terminal stance extension."}})

	for _, want := range []string{
		"Ann Doe, 2024-05-02, Barefoot",
		"- Subsession: S1",
		"- not available",
		"- Overall GPS: 7.1",
		"- Knee Fle/Ext: L 9 / R 8.5",
		"| Phase | % Start | % End | L Max |",
		"| Stance | 0 | 60 | 60 | 0 | 60 | 48 | -12 | 60 | 12 | 12 | 0 |",
		"Comment: Reduced terminal stance extension.",
		"Hip: left-right max +12.0, min +12.0",
		"Load Problems",
	} {
		if !strings.Contains(notes, want) {
			t.Fatalf("notes missing %q:\n%s", want, notes)
		}
	}
}

func TestBuildReportNotesDefaultsToEveryParameter(t *testing.T) {
	cfg := testConfig()
	cfg.Kinematics = cfg.Kinematics[:2]
	d, err := Load(subjectFiles("Ann", 1, "Hip", "Knee"), cfg, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	notes := BuildReportNotes(d, nil)
	if !strings.Contains(notes, "\nHip\n") || !strings.Contains(notes, "\nKnee\n") {
		t.Fatalf("notes = %s", notes)
	}
	if strings.Contains(notes, "Symmetry Notes") || strings.Contains(notes, "Load Problems") {
		t.Fatalf("unexpected sections:\n%s", notes)
	}
	if BuildReportNotes(nil, nil) != "" {
		t.Fatalf("nil dataset should render nothing")
	}
}
