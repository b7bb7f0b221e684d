package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	gaitnotes "github.com/lucasjlepore/gait-analyzer"
	"github.com/lucasjlepore/gait-analyzer/phase"
)

// Artifact file names.
const (
	ManifestFileName       = "manifest.json"
	WaveformsBaseName      = "waveforms"
	PhaseStatsJSONFileName = "phase_stats.json"
	PhaseStatsBaseName     = "phase_stats"
	ReportFileName         = "report.md"
	ComparisonJSONFileName = "comparison.json"
	ComparisonCSVFileName  = "comparison.csv"
)

// Run executes the full gait_analyze pipeline and writes all artifacts.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.InputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	logger := loggerOrNop(opts.Logger)

	cfg, err := resolveConfig(opts.Config, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	in, err := ReadInput(opts.InputPath, logger)
	if err != nil {
		return nil, err
	}
	art, err := buildArtifacts(in, cfg, logger)
	if err != nil {
		return nil, err
	}
	if format == "parquet" && !parquetSupported {
		format = "csv"
		art.warn("parquet output unavailable in this build: wrote csv instead")
	}

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(opts.OutDir, ManifestFileName)
	if err := writeJSON(manifestPath, art.manifest); err != nil {
		return nil, fmt.Errorf("write %s: %w", ManifestFileName, err)
	}

	waveformsPath := filepath.Join(opts.OutDir, WaveformsBaseName+"."+format)
	statsPath := filepath.Join(opts.OutDir, PhaseStatsBaseName+"."+format)
	switch format {
	case "csv":
		if err := writeFileWith(waveformsPath, func(w io.Writer) error { return encodeWaveformsCSV(w, art.samples) }); err != nil {
			return nil, fmt.Errorf("write waveforms csv: %w", err)
		}
		if err := writeFileWith(statsPath, func(w io.Writer) error { return encodePhaseStatsCSV(w, art.stats) }); err != nil {
			return nil, fmt.Errorf("write phase stats csv: %w", err)
		}
	case "parquet":
		if err := writeWaveformsParquet(waveformsPath, art.samples); err != nil {
			return nil, fmt.Errorf("write waveforms parquet: %w", err)
		}
		if err := writePhaseStatsParquet(statsPath, art.stats); err != nil {
			return nil, fmt.Errorf("write phase stats parquet: %w", err)
		}
	}

	statsJSONPath := filepath.Join(opts.OutDir, PhaseStatsJSONFileName)
	if err := writeJSON(statsJSONPath, art.stats); err != nil {
		return nil, fmt.Errorf("write %s: %w", PhaseStatsJSONFileName, err)
	}

	reportPath := filepath.Join(opts.OutDir, ReportFileName)
	if err := os.WriteFile(reportPath, []byte(art.report+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", ReportFileName, err)
	}

	logger.Info("gait_analyze complete",
		zap.String("out", opts.OutDir),
		zap.Int("parameters", len(art.dataset.Parameters())),
		zap.Int("warnings", len(art.warnings)),
	)
	return &Result{
		OutputDir:          opts.OutDir,
		ManifestPath:       manifestPath,
		WaveformsPath:      waveformsPath,
		PhaseStatsJSONPath: statsJSONPath,
		PhaseStatsPath:     statsPath,
		ReportPath:         reportPath,
		Parameters:         art.dataset.Parameters(),
		Warnings:           art.warnings,
	}, nil
}

// RunBytes runs the pipeline over an in-memory zip archive and returns the
// artifacts in memory.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	if len(opts.ArchiveData) == 0 {
		return nil, fmt.Errorf("archive bytes are required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	logger := loggerOrNop(opts.Logger)
	cfg, err := resolveConfig(opts.Config, "")
	if err != nil {
		return nil, err
	}
	name := opts.SourceFileName
	if strings.TrimSpace(name) == "" {
		name = "input.zip"
	}

	in, err := ReadArchiveBytes(name, opts.ArchiveData, logger)
	if err != nil {
		return nil, err
	}
	art, err := buildArtifacts(in, cfg, logger)
	if err != nil {
		return nil, err
	}
	if format == "parquet" && !parquetSupported {
		format = "csv"
		art.warn("parquet output unavailable in this build: wrote csv instead")
	}

	files := make(map[string][]byte, 5)
	if files[ManifestFileName], err = marshalJSON(art.manifest); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", ManifestFileName, err)
	}
	if files[PhaseStatsJSONFileName], err = marshalJSON(art.stats); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", PhaseStatsJSONFileName, err)
	}
	switch format {
	case "csv":
		var wb, sb bytes.Buffer
		if err := encodeWaveformsCSV(&wb, art.samples); err != nil {
			return nil, fmt.Errorf("encode waveforms csv: %w", err)
		}
		if err := encodePhaseStatsCSV(&sb, art.stats); err != nil {
			return nil, fmt.Errorf("encode phase stats csv: %w", err)
		}
		files[WaveformsBaseName+".csv"] = wb.Bytes()
		files[PhaseStatsBaseName+".csv"] = sb.Bytes()
	case "parquet":
		if files[WaveformsBaseName+".parquet"], err = marshalWaveformsParquet(art.samples); err != nil {
			return nil, fmt.Errorf("encode waveforms parquet: %w", err)
		}
		if files[PhaseStatsBaseName+".parquet"], err = marshalPhaseStatsParquet(art.stats); err != nil {
			return nil, fmt.Errorf("encode phase stats parquet: %w", err)
		}
	}
	files[ReportFileName] = []byte(art.report + "\n")

	return &BytesResult{
		Files:      files,
		Parameters: art.dataset.Parameters(),
		Warnings:   art.warnings,
	}, nil
}

type artifactSet struct {
	dataset  *gaitnotes.Dataset
	manifest ManifestFile
	samples  []WaveformSample
	stats    PhaseStatsFile
	report   string
	warnings []string
}

func (a *artifactSet) warn(msg string) {
	a.warnings = append(a.warnings, msg)
	a.manifest.Warnings = append(a.manifest.Warnings, msg)
}

func buildArtifacts(in *Inputs, cfg gaitnotes.Config, logger *zap.Logger) (*artifactSet, error) {
	d, err := gaitnotes.Load(in.Files, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("load dataset from %s: %w", in.Source, err)
	}
	art := &artifactSet{
		dataset:  d,
		manifest: buildManifest(in.Source, d),
		samples:  buildWaveformSamples(d),
		stats:    buildPhaseStats(d),
		report:   gaitnotes.BuildReportNotes(d, nil),
	}
	for _, s := range in.Skipped {
		art.warn(fmt.Sprintf("skipped unreadable input %s", s))
	}
	if _, err := d.Title(); err != nil {
		art.warn(fmt.Sprintf("title unavailable: %v", err))
	}
	return art, nil
}

func buildManifest(source string, d *gaitnotes.Dataset) ManifestFile {
	title, _ := d.Title()
	m := ManifestFile{
		Source:   source,
		Title:    title,
		Metadata: d.Info.Fields,
		Grid:     d.Grid(),
	}
	for _, r := range d.TemporalSpatial.Rows {
		m.TemporalSpatial = append(m.TemporalSpatial, TemporalSpatialRow{
			Parameter: r.Parameter,
			Both:      floatOrNil(r.Both),
			Left:      floatOrNil(r.Left),
			Right:     floatOrNil(r.Right),
		})
	}
	m.GaitProfile.Overall = floatOrNil(d.GaitProfile.Overall)
	for _, s := range d.GaitProfile.Metrics {
		m.GaitProfile.Metrics = append(m.GaitProfile.Metrics, MetricScoreFile{
			Metric: s.Metric,
			Left:   floatOrNil(s.Left),
			Right:  floatOrNil(s.Right),
		})
	}
	for _, name := range d.Parameters() {
		p, _ := d.Parameter(name)
		entry := ParameterManifestEntry{
			Name:      name,
			YAxis:     [2]*float64{floatOrNil(p.YAxis[0]), floatOrNil(p.YAxis[1])},
			YLabel:    p.YLabel,
			HasNorm:   p.Norm != nil,
			FullCycle: p.Stats,
		}
		for _, tr := range p.Left.Trials {
			entry.LeftTrials = append(entry.LeftTrials, tr.Label)
		}
		for _, tr := range p.Right.Trials {
			entry.RightTrials = append(entry.RightTrials, tr.Label)
		}
		m.Parameters = append(m.Parameters, entry)
	}
	for _, err := range d.Problems() {
		m.Problems = append(m.Problems, err.Error())
	}
	return m
}

func buildWaveformSamples(d *gaitnotes.Dataset) []WaveformSample {
	var out []WaveformSample
	add := func(param, side, series string, cycle []int, values []float64) {
		for i, c := range cycle {
			if i >= len(values) {
				break
			}
			out = append(out, WaveformSample{
				Parameter: param,
				Side:      side,
				Series:    series,
				Cycle:     c,
				Value:     floatOrNil(values[i]),
			})
		}
	}
	for _, name := range d.Parameters() {
		p, _ := d.Parameter(name)
		for _, tr := range p.Left.Trials {
			add(name, "left", tr.Label, p.Left.Cycle, tr.Values)
		}
		add(name, "left", "mean", p.Left.Cycle, p.Left.Mean)
		for _, tr := range p.Right.Trials {
			add(name, "right", tr.Label, p.Right.Cycle, tr.Values)
		}
		add(name, "right", "mean", p.Right.Cycle, p.Right.Mean)
		if p.Norm != nil {
			add(name, "norm", "mean", p.Norm.Cycle, p.Norm.Mean)
			add(name, "norm", "sd", p.Norm.Cycle, p.Norm.SD)
		}
	}
	return out
}

func buildPhaseStats(d *gaitnotes.Dataset) PhaseStatsFile {
	var out PhaseStatsFile
	for _, name := range d.Parameters() {
		rows, _ := d.SeedStats(name)
		out.Parameters = append(out.Parameters, ParameterStats{Parameter: name, Rows: rows})
	}
	return out
}

func resolveConfig(cfg *gaitnotes.Config, path string) (gaitnotes.Config, error) {
	if cfg != nil {
		return *cfg, nil
	}
	if strings.TrimSpace(path) == "" {
		return gaitnotes.DefaultConfig(), nil
	}
	return gaitnotes.LoadConfig(path)
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func marshalJSON(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func writeFileWith(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var waveformHeader = []string{"parameter", "side", "series", "cycle", "value"}

func encodeWaveformsCSV(out io.Writer, samples []WaveformSample) error {
	w := csv.NewWriter(out)
	if err := w.Write(waveformHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{s.Parameter, s.Side, s.Series, strconv.Itoa(s.Cycle), formatFloatPtr(s.Value)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func encodePhaseStatsCSV(out io.Writer, stats PhaseStatsFile) error {
	w := csv.NewWriter(out)
	header := append([]string{"parameter"}, phase.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range stats.Parameters {
		for _, r := range p.Rows {
			row := []string{p.Parameter, r.Name}
			for _, col := range phase.Columns[1:] {
				v, _ := r.Value(col)
				row = append(row, formatFloat(v))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func floatOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
