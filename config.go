package gaitnotes

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/v3d"
)

//go:embed config/gait.defaults.toml
var defaultConfigTOML []byte

// FileConfig names one fixed-layout export.
type FileConfig struct {
	File string `toml:"file" yaml:"file" json:"file"`
}

// ProfileConfig names the gait profile export and the display label of each
// metric code in canonical order.
type ProfileConfig struct {
	File    string            `toml:"file" yaml:"file" json:"file"`
	Metrics []v3d.MetricLabel `toml:"metrics" yaml:"metrics" json:"metrics"`
}

// ParameterConfig binds one kinematic parameter to its export files.
type ParameterConfig struct {
	Name      string    `toml:"name" yaml:"name" json:"name"`
	LeftFile  string    `toml:"left_file" yaml:"left_file" json:"left_file"`
	RightFile string    `toml:"right_file" yaml:"right_file" json:"right_file"`
	NormFile  string    `toml:"norm_file" yaml:"norm_file" json:"norm_file,omitempty"`
	YAxis     []float64 `toml:"y_axis" yaml:"y_axis" json:"y_axis,omitempty"`
	YLabel    string    `toml:"y_label" yaml:"y_label" json:"y_label,omitempty"`
}

// Nominal returns the configured y-axis floor and ceiling, or nil.
func (p ParameterConfig) Nominal() *[2]float64 {
	if len(p.YAxis) != 2 {
		return nil
	}
	return &[2]float64{p.YAxis[0], p.YAxis[1]}
}

// PhasesConfig is the default phase table as parallel name/range lists.
type PhasesConfig struct {
	Names  []string    `toml:"names" yaml:"names" json:"names"`
	Ranges [][]float64 `toml:"ranges" yaml:"ranges" json:"ranges"`
}

// LayoutConfig is the summary grid, one row of parameter names per line.
type LayoutConfig struct {
	Layout [][]string `toml:"layout" yaml:"layout" json:"layout"`
}

// Config drives dataset assembly. It is passed explicitly to Load.
type Config struct {
	Info       FileConfig        `toml:"info" yaml:"info" json:"info"`
	Temporal   FileConfig        `toml:"temporal" yaml:"temporal" json:"temporal"`
	GPS        ProfileConfig     `toml:"gps" yaml:"gps" json:"gps"`
	Kinematics []ParameterConfig `toml:"kinematics" yaml:"kinematics" json:"kinematics"`
	Phases     PhasesConfig      `toml:"phases" yaml:"phases" json:"phases"`
	Standard   LayoutConfig      `toml:"standard" yaml:"standard" json:"standard"`
}

// DefaultConfig returns the built-in configuration for Visual3D CGM exports.
func DefaultConfig() Config {
	cfg, err := decodeTOML(defaultConfigTOML)
	if err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return cfg
}

// LoadConfig reads a TOML or YAML configuration file, chosen by extension.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates configuration text. format is a file
// extension or name: "toml" (the default when empty), "yaml" or "yml".
func ParseConfig(data []byte, format string) (Config, error) {
	var (
		cfg Config
		err error
	)
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "toml", "":
		cfg, err = decodeTOML(data)
	case "yaml", "yml":
		cfg, err = decodeYAML(data)
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (use toml, yaml or yml)", format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return cfg, nil
}

func decodeTOML(data []byte) (Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func decodeYAML(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks that file names are set, parameter names are unique and
// every default phase range lies within the gait cycle.
func (c Config) Validate() error {
	var err error
	if strings.TrimSpace(c.Info.File) == "" {
		err = multierr.Append(err, errors.New("info.file is required"))
	}

	seen := make(map[string]bool, len(c.Kinematics))
	for i, p := range c.Kinematics {
		switch {
		case strings.TrimSpace(p.Name) == "":
			err = multierr.Append(err, fmt.Errorf("kinematics[%d]: name is required", i))
		case seen[p.Name]:
			err = multierr.Append(err, fmt.Errorf("kinematics[%d]: duplicate name %q", i, p.Name))
		}
		seen[p.Name] = true
		if p.LeftFile == "" || p.RightFile == "" {
			err = multierr.Append(err, fmt.Errorf("kinematics[%d] %q: left_file and right_file are required", i, p.Name))
		}
		if len(p.YAxis) != 0 && len(p.YAxis) != 2 {
			err = multierr.Append(err, fmt.Errorf("kinematics[%d] %q: y_axis needs [min, max]", i, p.Name))
		}
	}

	if len(c.Phases.Names) != len(c.Phases.Ranges) {
		err = multierr.Append(err, fmt.Errorf("phases: %d names but %d ranges", len(c.Phases.Names), len(c.Phases.Ranges)))
	}
	for i, r := range c.Phases.Ranges {
		if len(r) != 2 {
			err = multierr.Append(err, fmt.Errorf("phases.ranges[%d]: want [start, end]", i))
			continue
		}
		for _, v := range r {
			if math.IsNaN(v) || v < 0 || v > 100 {
				err = multierr.Append(err, fmt.Errorf("phases.ranges[%d]: %v outside [0, 100]", i, v))
			}
		}
	}
	return err
}

// PhaseWindows returns the default phase table. An empty table falls back
// to the full cycle.
func (c Config) PhaseWindows() []phase.Window {
	n := min(len(c.Phases.Names), len(c.Phases.Ranges))
	if n == 0 {
		return []phase.Window{phase.FullCycle}
	}
	out := make([]phase.Window, 0, n)
	for i := 0; i < n; i++ {
		r := c.Phases.Ranges[i]
		if len(r) != 2 {
			continue
		}
		out = append(out, phase.Window{Name: c.Phases.Names[i], Start: r[0], End: r[1]})
	}
	return out
}

// Parameter returns the configuration entry for name.
func (c Config) Parameter(name string) (ParameterConfig, bool) {
	for _, p := range c.Kinematics {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterConfig{}, false
}
