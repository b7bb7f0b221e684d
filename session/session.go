// Package session holds the mutable state of one analysis session: up to
// two loaded datasets, the per-parameter phase engines and the clinician's
// comments, and persists it to sqlite.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	gaitnotes "github.com/lucasjlepore/gait-analyzer"
	"github.com/lucasjlepore/gait-analyzer/phase"
)

// Slot identifies one of the two dataset positions.
type Slot int

const (
	SlotA Slot = 1
	SlotB Slot = 2
)

var (
	ErrUnknownSlot      = errors.New("unknown dataset slot")
	ErrSlotEmpty        = errors.New("no dataset loaded in slot")
	ErrUnknownParameter = errors.New("parameter not loaded")
)

func (s Slot) valid() bool { return s == SlotA || s == SlotB }

// Analysis is the editable state of one parameter: its phase table,
// a free-text comment and whether it goes into the report.
type Analysis struct {
	Parameter string

	mu      sync.Mutex
	engine  *phase.Engine
	comment string
	include bool
}

// Rows returns the current phase table.
func (a *Analysis) Rows() []phase.Row { return a.engine.Rows() }

// Windows returns the current window set.
func (a *Analysis) Windows() []phase.Window { return a.engine.Windows() }

// ApplyEdits applies a batch of table edits.
func (a *Analysis) ApplyEdits(ed phase.Edits) ([]phase.Row, error) {
	return a.engine.ApplyEdits(ed)
}

// SetWindows replaces the window set.
func (a *Analysis) SetWindows(ws []phase.Window) ([]phase.Row, error) {
	return a.engine.SetWindows(ws)
}

// Comment returns the analysis comment.
func (a *Analysis) Comment() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.comment
}

// SetComment replaces the analysis comment.
func (a *Analysis) SetComment(c string) {
	a.mu.Lock()
	a.comment = c
	a.mu.Unlock()
}

// Included reports whether the parameter goes into the report.
func (a *Analysis) Included() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.include
}

// SetIncluded toggles the report flag.
func (a *Analysis) SetIncluded(v bool) {
	a.mu.Lock()
	a.include = v
	a.mu.Unlock()
}

// Reset restores the default windows and clears the comment.
func (a *Analysis) Reset() []phase.Row {
	a.SetComment("")
	return a.engine.Reset()
}

// Session is one user's workspace.
type Session struct {
	ID        string
	CreatedAt time.Time

	logger *zap.Logger

	mu       sync.Mutex
	datasets map[Slot]*gaitnotes.Dataset
	analyses map[Slot]map[string]*Analysis
}

// New returns an empty session with a fresh identifier.
func New(logger *zap.Logger) *Session {
	return newWithID(uuid.NewString(), logger)
}

func newWithID(id string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		logger:    logger.With(zap.String("session", id)),
		datasets:  make(map[Slot]*gaitnotes.Dataset, 2),
		analyses:  make(map[Slot]map[string]*Analysis, 2),
	}
}

// Bind loads d into slot. Existing analyses of parameters that d also has
// keep their windows and comments and are recomputed on the new curves;
// the others are dropped.
func (s *Session) Bind(slot Slot, d *gaitnotes.Dataset) error {
	if !slot.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, slot)
	}
	if d == nil {
		return fmt.Errorf("bind slot %d: nil dataset", slot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make(map[string]*Analysis)
	for name, a := range s.analyses[slot] {
		p, ok := d.Parameter(name)
		if !ok {
			continue
		}
		a.engine.Rebind(p.LeftCurve(), p.RightCurve())
		kept[name] = a
	}
	s.datasets[slot] = d
	s.analyses[slot] = kept

	title, _ := d.Title()
	s.logger.Info("dataset bound",
		zap.Int("slot", int(slot)),
		zap.String("title", title),
		zap.Int("kept_analyses", len(kept)),
	)
	return nil
}

// Unbind clears a slot and its analyses.
func (s *Session) Unbind(slot Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.datasets, slot)
	delete(s.analyses, slot)
}

// Dataset returns the dataset bound to slot.
func (s *Session) Dataset(slot Slot) (*gaitnotes.Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.datasets[slot]
	return d, ok
}

// Analysis returns the analysis of a parameter, creating it on first use.
func (s *Session) Analysis(slot Slot, parameter string) (*Analysis, error) {
	if !slot.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSlot, slot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.datasets[slot]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrSlotEmpty, slot)
	}
	if a, ok := s.analyses[slot][parameter]; ok {
		return a, nil
	}
	engine, ok := d.Engine(parameter)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, parameter)
	}
	a := &Analysis{Parameter: parameter, engine: engine, include: true}
	if s.analyses[slot] == nil {
		s.analyses[slot] = make(map[string]*Analysis)
	}
	s.analyses[slot][parameter] = a
	return a, nil
}

// Analyses returns the analyses opened so far in slot, sorted by parameter.
func (s *Session) Analyses(slot Slot) []*Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Analysis, 0, len(s.analyses[slot]))
	for _, a := range s.analyses[slot] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Parameter < out[j].Parameter })
	return out
}

// Compare overlays the two bound datasets.
func (s *Session) Compare() (*gaitnotes.Comparison, error) {
	s.mu.Lock()
	a, okA := s.datasets[SlotA]
	b, okB := s.datasets[SlotB]
	s.mu.Unlock()
	if !okA || !okB {
		return nil, fmt.Errorf("%w: comparison needs both slots", ErrSlotEmpty)
	}
	return gaitnotes.Compare(a, b), nil
}

// ReportNotes renders the report of slot. Every loaded parameter is
// included unless its analysis excludes it; opened analyses contribute their
// edited table and comment.
func (s *Session) ReportNotes(slot Slot) (string, error) {
	d, ok := s.Dataset(slot)
	if !ok {
		return "", fmt.Errorf("%w %d", ErrSlotEmpty, slot)
	}
	s.mu.Lock()
	opened := make(map[string]*Analysis, len(s.analyses[slot]))
	for name, a := range s.analyses[slot] {
		opened[name] = a
	}
	s.mu.Unlock()

	params := make([]gaitnotes.ParameterNotes, 0, len(d.Parameters()))
	for _, name := range d.Parameters() {
		a, ok := opened[name]
		if !ok {
			rows, _ := d.SeedStats(name)
			params = append(params, gaitnotes.ParameterNotes{Name: name, Rows: rows})
			continue
		}
		if !a.Included() {
			continue
		}
		params = append(params, gaitnotes.ParameterNotes{Name: name, Rows: a.Rows(), Comment: a.Comment()})
	}
	return gaitnotes.BuildReportNotes(d, params), nil
}
