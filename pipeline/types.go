package pipeline

import (
	"go.uber.org/zap"

	gaitnotes "github.com/lucasjlepore/gait-analyzer"
	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/v3d"
)

// Options configures the gait_analyze pipeline.
type Options struct {
	InputPath  string // zip archive or directory of exports
	OutDir     string
	ConfigPath string            // optional TOML/YAML config
	Config     *gaitnotes.Config // overrides ConfigPath when set
	Format     string            // parquet|csv
	Overwrite  bool
	Logger     *zap.Logger
}

// Result returns generated output paths.
type Result struct {
	OutputDir          string   `json:"output_dir"`
	ManifestPath       string   `json:"manifest_path"`
	WaveformsPath      string   `json:"waveforms_path"`
	PhaseStatsJSONPath string   `json:"phase_stats_json_path"`
	PhaseStatsPath     string   `json:"phase_stats_path"`
	ReportPath         string   `json:"report_path"`
	Parameters         []string `json:"parameters"`
	Warnings           []string `json:"warnings,omitempty"`
}

// BytesOptions configures the in-memory pipeline used by the wasm build.
type BytesOptions struct {
	SourceFileName string
	ArchiveData    []byte
	Config         *gaitnotes.Config
	Format         string // parquet|csv
	Logger         *zap.Logger
}

// BytesResult holds every artifact keyed by file name.
type BytesResult struct {
	Files      map[string][]byte
	Parameters []string
	Warnings   []string
}

// CompareOptions configures the gait_compare pipeline.
type CompareOptions struct {
	InputA     string
	InputB     string
	OutDir     string
	ConfigPath string
	Config     *gaitnotes.Config
	Overwrite  bool
	Logger     *zap.Logger
}

// CompareResult returns the comparison output paths.
type CompareResult struct {
	OutputDir          string   `json:"output_dir"`
	ComparisonJSONPath string   `json:"comparison_json_path"`
	ComparisonCSVPath  string   `json:"comparison_csv_path"`
	Parameters         []string `json:"parameters"`
	Warnings           []string `json:"warnings,omitempty"`
}

// ManifestFile describes one processed dataset.
type ManifestFile struct {
	Source          string                   `json:"source"`
	Title           string                   `json:"title,omitempty"`
	Metadata        []v3d.Field              `json:"metadata"`
	TemporalSpatial []TemporalSpatialRow     `json:"temporal_spatial"`
	GaitProfile     GaitProfileFile          `json:"gait_profile"`
	Parameters      []ParameterManifestEntry `json:"parameters"`
	Grid            [][]string               `json:"grid,omitempty"`
	Problems        []string                 `json:"problems,omitempty"`
	Warnings        []string                 `json:"warnings,omitempty"`
}

// TemporalSpatialRow is one temporal-spatial parameter; missing cells are null.
type TemporalSpatialRow struct {
	Parameter string   `json:"parameter"`
	Both      *float64 `json:"both"`
	Left      *float64 `json:"left"`
	Right     *float64 `json:"right"`
}

// GaitProfileFile is the overall score and per-metric table.
type GaitProfileFile struct {
	Overall *float64          `json:"overall"`
	Metrics []MetricScoreFile `json:"metrics"`
}

// MetricScoreFile is one gait variable score row.
type MetricScoreFile struct {
	Metric string   `json:"metric"`
	Left   *float64 `json:"left"`
	Right  *float64 `json:"right"`
}

// ParameterManifestEntry summarizes one loaded parameter.
type ParameterManifestEntry struct {
	Name        string      `json:"name"`
	YAxis       [2]*float64 `json:"y_axis"`
	YLabel      string      `json:"y_label,omitempty"`
	LeftTrials  []string    `json:"left_trials"`
	RightTrials []string    `json:"right_trials"`
	HasNorm     bool        `json:"has_norm"`
	FullCycle   phase.Row   `json:"full_cycle"`
}

// WaveformSample is one tidy waveform value.
type WaveformSample struct {
	Parameter string   `json:"parameter"`
	Side      string   `json:"side"`   // left|right|norm
	Series    string   `json:"series"` // trial label, mean, sd
	Cycle     int      `json:"cycle"`
	Value     *float64 `json:"value"`
}

// PhaseStatsFile holds the phase tables of every parameter.
type PhaseStatsFile struct {
	Parameters []ParameterStats `json:"parameters"`
}

// ParameterStats is one parameter's phase table.
type ParameterStats struct {
	Parameter string      `json:"parameter"`
	Rows      []phase.Row `json:"rows"`
}

// ComparisonFile is the serialized comparison of two datasets.
type ComparisonFile struct {
	TitleA     string                `json:"title_a,omitempty"`
	TitleB     string                `json:"title_b,omitempty"`
	SourceA    string                `json:"source_a"`
	SourceB    string                `json:"source_b"`
	Parameters []ComparisonParameter `json:"parameters"`
}

// ComparisonParameter is one shared parameter. Stats come from dataset A;
// StatsB is kept alongside for callers that need both.
type ComparisonParameter struct {
	Parameter string      `json:"parameter"`
	Stats     []phase.Row `json:"stats"`
	StatsB    []phase.Row `json:"stats_b"`
}
