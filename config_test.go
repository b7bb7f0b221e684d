package gaitnotes

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"

	"github.com/lucasjlepore/gait-analyzer/phase"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Info.File != "Info.txt" {
		t.Fatalf("info file = %q", cfg.Info.File)
	}
	windows := cfg.PhaseWindows()
	if len(windows) != 8 || windows[0] != phase.FullCycle {
		t.Fatalf("phase windows = %+v", windows)
	}
	if got := windows[5]; got.Name != "Initial Swing" || got.Start != 60 || got.End != 73 {
		t.Fatalf("initial swing = %+v", got)
	}
	if len(cfg.GPS.Metrics) != 10 || cfg.GPS.Metrics[0].Label != "Gait Profile Score" {
		t.Fatalf("gps metrics = %+v", cfg.GPS.Metrics)
	}
	for _, row := range cfg.Standard.Layout {
		for _, name := range row {
			if _, ok := cfg.Parameter(name); !ok {
				t.Fatalf("layout names unknown parameter %q", name)
			}
		}
	}
	hip, _ := cfg.Parameter("Hip Flexion/Extension")
	if n := hip.Nominal(); n == nil || *n != [2]float64{-20, 60} {
		t.Fatalf("hip nominal = %v", n)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gait.yaml")
	src := `
info: {file: Info.txt}
temporal: {file: TD.txt}
gps:
  file: GPS.txt
  metrics:
    - {code: GPS_mean_MEAN, label: GPS}
kinematics:
  - name: Knee
    left_file: L Knee.txt
    right_file: R Knee.txt
    y_axis: [-10, 70]
phases:
  names: [Full Cycle, Swing]
  ranges: [[0, 100], [60, 100]]
standard:
  layout: [[Knee]]
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Temporal.File != "TD.txt" || len(cfg.Kinematics) != 1 {
		t.Fatalf("config = %+v", cfg)
	}
	if n := cfg.Kinematics[0].Nominal(); n == nil || n[1] != 70 {
		t.Fatalf("nominal = %v", n)
	}
	if w := cfg.PhaseWindows(); len(w) != 2 || w[1].Start != 60 {
		t.Fatalf("windows = %+v", w)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gait.toml")
	src := `
[info]
file = "Info.txt"

[[kinematics]]
name = "Hip"
left_file = "L.txt"
right_file = "R.txt"

[phases]
names = ["Stance"]
ranges = [[0.0, 60.0]]

[colors]
left = "red"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if w := cfg.PhaseWindows(); len(w) != 1 || w[0].Name != "Stance" || w[0].End != 60 {
		t.Fatalf("windows = %+v", w)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	json := filepath.Join(dir, "gait.json")
	if err := os.WriteFile(json, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(json); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Config{
		Kinematics: []ParameterConfig{
			{Name: "Hip", LeftFile: "a", RightFile: "b"},
			{Name: "Hip", LeftFile: "a"},
		},
		Phases: PhasesConfig{Names: []string{"A", "B"}, Ranges: [][]float64{{0, 120}}},
	}
	err := cfg.Validate()
	// info file, duplicate name, missing right file, names/ranges mismatch, range bound
	if got := len(multierr.Errors(err)); got != 5 {
		t.Fatalf("problems = %d (%v), want 5", got, err)
	}
}

func TestParseConfigByFormat(t *testing.T) {
	yamlSrc := []byte("info: {file: Info.txt}\nphases: {names: [Swing], ranges: [[60, 100]]}\n")
	cfg, err := ParseConfig(yamlSrc, ".YML")
	if err != nil {
		t.Fatalf("ParseConfig(yaml) error: %v", err)
	}
	if w := cfg.PhaseWindows(); len(w) != 1 || w[0].Name != "Swing" {
		t.Fatalf("windows = %+v", w)
	}
	if _, err := ParseConfig(yamlSrc, "json"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if _, err := ParseConfig([]byte("[info]\nfile = \"\"\n"), ""); err == nil {
		t.Fatalf("expected validation error for empty info file")
	}
}
