package gaitnotes

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/v3d"
)

// Dataset is one subject session assembled from a batch of exports.
// It is immutable after Load except for the per-parameter phase engines.
type Dataset struct {
	Info            v3d.Metadata
	TemporalSpatial v3d.TemporalSpatial
	GaitProfile     v3d.GaitProfile
	Kinematics      map[string]*PairedParameter

	cfg      Config
	order    []string
	problems error

	mu      sync.Mutex
	engines map[string]*phase.Engine
}

// Load assembles a dataset from exports keyed by file name.
//
// The metadata export is required. Absent temporal-spatial or gait profile
// exports become placeholders. A parameter whose left or right export is
// absent or malformed is skipped without affecting its siblings; each such
// problem is kept and reported by Problems.
func Load(files map[string]*v3d.RawTable, cfg Config, logger *zap.Logger) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	infoTable, ok := files[cfg.Info.File]
	if !ok {
		return nil, &MissingFileError{File: cfg.Info.File, Required: true}
	}
	info, err := v3d.ParseMetadata(infoTable)
	if err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	d := &Dataset{
		Info:       info,
		Kinematics: make(map[string]*PairedParameter, len(cfg.Kinematics)),
		cfg:        cfg,
		engines:    make(map[string]*phase.Engine),
	}
	d.loadTemporalSpatial(files, logger)
	d.loadGaitProfile(files, logger)

	for _, pc := range cfg.Kinematics {
		p, err := pairFromFiles(files, pc)
		if err != nil {
			d.problems = multierr.Append(d.problems, err)
			if p == nil {
				logger.Warn("skipping parameter", zap.String("parameter", pc.Name), zap.Error(err))
				continue
			}
			logger.Warn("norm band dropped", zap.String("parameter", pc.Name), zap.Error(err))
		}
		d.Kinematics[pc.Name] = p
		d.order = append(d.order, pc.Name)
	}

	logger.Info("dataset loaded",
		zap.Int("parameters", len(d.order)),
		zap.Int("configured", len(cfg.Kinematics)),
		zap.Int("problems", len(d.Problems())),
	)
	return d, nil
}

func (d *Dataset) loadTemporalSpatial(files map[string]*v3d.RawTable, logger *zap.Logger) {
	d.TemporalSpatial = v3d.TemporalSpatialPlaceholder()
	t, ok := files[d.cfg.Temporal.File]
	if !ok {
		logger.Warn("temporal-spatial export absent, using placeholder", zap.String("file", d.cfg.Temporal.File))
		d.problems = multierr.Append(d.problems, &MissingFileError{File: d.cfg.Temporal.File})
		return
	}
	ts, err := v3d.ParseTemporalSpatial(t)
	if err != nil {
		logger.Warn("temporal-spatial export unreadable, using placeholder", zap.Error(err))
		d.problems = multierr.Append(d.problems, err)
		return
	}
	d.TemporalSpatial = ts
}

func (d *Dataset) loadGaitProfile(files map[string]*v3d.RawTable, logger *zap.Logger) {
	d.GaitProfile = v3d.GaitProfilePlaceholder()
	t, ok := files[d.cfg.GPS.File]
	if !ok {
		logger.Warn("gait profile export absent, using placeholder", zap.String("file", d.cfg.GPS.File))
		d.problems = multierr.Append(d.problems, &MissingFileError{File: d.cfg.GPS.File})
		return
	}
	gp, err := v3d.ParseGaitProfile(t, d.cfg.GPS.Metrics)
	if err != nil {
		logger.Warn("gait profile export unreadable, using placeholder", zap.Error(err))
		d.problems = multierr.Append(d.problems, err)
		return
	}
	d.GaitProfile = gp
}

func pairFromFiles(files map[string]*v3d.RawTable, pc ParameterConfig) (*PairedParameter, error) {
	for _, f := range []string{pc.LeftFile, pc.RightFile} {
		if _, ok := files[f]; !ok {
			return nil, &MissingFileError{File: f, Parameter: pc.Name}
		}
	}
	left, err := v3d.ParseWaveform(files[pc.LeftFile])
	if err != nil {
		return nil, fmt.Errorf("%s left: %w", pc.Name, err)
	}
	right, err := v3d.ParseWaveform(files[pc.RightFile])
	if err != nil {
		return nil, fmt.Errorf("%s right: %w", pc.Name, err)
	}

	var (
		norm    *v3d.NormBand
		normErr error
	)
	if t, ok := files[pc.NormFile]; ok && pc.NormFile != "" {
		norm, normErr = v3d.ParseNormBand(t)
	}

	p := Pair(pc.Name, left, right, norm, pc.Nominal())
	p.YLabel = pc.YLabel
	if normErr != nil {
		return p, &normError{parameter: pc.Name, err: normErr}
	}
	return p, nil
}

// normError reports an unreadable norm band; the parameter itself still loads.
type normError struct {
	parameter string
	err       error
}

func (e *normError) Error() string { return fmt.Sprintf("%s norm: %v", e.parameter, e.err) }
func (e *normError) Unwrap() error { return e.err }

// Title returns the display title built from the subject metadata.
func (d *Dataset) Title() (string, error) { return d.Info.Title() }

// Config returns the configuration the dataset was built with.
func (d *Dataset) Config() Config { return d.cfg }

// Parameters lists the loaded parameters in configuration order.
func (d *Dataset) Parameters() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Parameter returns a loaded parameter by name.
func (d *Dataset) Parameter(name string) (*PairedParameter, bool) {
	p, ok := d.Kinematics[name]
	return p, ok
}

// Engine returns the phase engine of a loaded parameter, creating it on first use.
func (d *Dataset) Engine(name string) (*phase.Engine, bool) {
	p, ok := d.Kinematics[name]
	if !ok {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.engines[name]
	if !ok {
		e = phase.NewEngine(d.cfg.PhaseWindows(), p.LeftCurve(), p.RightCurve())
		d.engines[name] = e
	}
	return e, true
}

// SeedStats returns the default phase table of a parameter without touching its engine.
func (d *Dataset) SeedStats(name string) ([]phase.Row, bool) {
	p, ok := d.Kinematics[name]
	if !ok {
		return nil, false
	}
	return phase.NewEngine(d.cfg.PhaseWindows(), p.LeftCurve(), p.RightCurve()).Rows(), true
}

// Grid returns the summary layout with parameters that did not load as "".
func (d *Dataset) Grid() [][]string {
	out := make([][]string, len(d.cfg.Standard.Layout))
	for i, row := range d.cfg.Standard.Layout {
		out[i] = make([]string, len(row))
		for j, name := range row {
			if _, ok := d.Kinematics[name]; ok {
				out[i][j] = name
			}
		}
	}
	return out
}

// Problems lists everything that was skipped or replaced while loading.
func (d *Dataset) Problems() []error {
	return multierr.Errors(d.problems)
}
