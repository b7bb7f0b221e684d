package phase

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ErrInvalidEdit marks an edit set that cannot be applied.
var ErrInvalidEdit = errors.New("invalid phase edit")

// RowPatch carries cell values keyed by column name. Only Phase, % Start and
// % End are read; derived columns are always recomputed.
type RowPatch map[string]any

// Edits is one batch of table changes. Edited and Deleted indices refer to
// the row set as it was before the batch.
type Edits struct {
	Edited  map[int]RowPatch `json:"edited_rows,omitempty"`
	Added   []RowPatch       `json:"added_rows,omitempty"`
	Deleted []int            `json:"deleted_rows,omitempty"`
}

// Empty reports whether the batch changes nothing.
func (e Edits) Empty() bool {
	return len(e.Edited) == 0 && len(e.Added) == 0 && len(e.Deleted) == 0
}

// Engine owns the phase windows of one parameter of one dataset.
// It is seeded lazily from the default windows on first use.
type Engine struct {
	mu       sync.Mutex
	defaults []Window
	left     Curve
	right    Curve
	windows  []Window
	rows     []Row
	seeded   bool
}

// NewEngine returns an unseeded engine over the given mean curves.
func NewEngine(defaults []Window, left, right Curve) *Engine {
	d := make([]Window, len(defaults))
	copy(d, defaults)
	return &Engine{defaults: d, left: left, right: right}
}

// Seeded reports whether statistics have been requested yet.
func (e *Engine) Seeded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seeded
}

// Rows returns the current statistics, seeding from the defaults on first call.
func (e *Engine) Rows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seedLocked()
	return cloneRows(e.rows)
}

// Windows returns the current window set.
func (e *Engine) Windows() []Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seedLocked()
	out := make([]Window, len(e.windows))
	copy(out, e.windows)
	return out
}

// ApplyEdits merges edited cells, appended rows and deletions into the
// window set, then recomputes every row. A window renamed onto an existing
// name replaces it at the earlier position. On error the state is unchanged.
func (e *Engine) ApplyEdits(ed Edits) ([]Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seedLocked()

	next, err := mergeEdits(e.windows, ed)
	if err != nil {
		return nil, err
	}
	e.setLocked(next)
	return cloneRows(e.rows), nil
}

// SetWindows replaces the window set, e.g. when restoring a saved session.
func (e *Engine) SetWindows(ws []Window) ([]Row, error) {
	for i, w := range ws {
		if err := validateWindow(w); err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seeded = true
	e.setLocked(ws)
	return cloneRows(e.rows), nil
}

// Reset restores the default windows.
func (e *Engine) Reset() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seeded = true
	e.setLocked(e.defaults)
	return cloneRows(e.rows)
}

// Rebind swaps the underlying curves and recomputes the current windows.
func (e *Engine) Rebind(left, right Curve) []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.left, e.right = left, right
	if !e.seeded {
		return nil
	}
	e.setLocked(e.windows)
	return cloneRows(e.rows)
}

func (e *Engine) seedLocked() {
	if e.seeded {
		return
	}
	e.seeded = true
	e.setLocked(e.defaults)
}

func (e *Engine) setLocked(ws []Window) {
	ws = collapse(ws)
	rows := make([]Row, len(ws))
	for i, w := range ws {
		rows[i] = Compute(w, e.left, e.right)
	}
	e.windows = ws
	e.rows = rows
}

// collapse keeps one window per name: the last definition wins and sits at
// the position of the first.
func collapse(ws []Window) []Window {
	pos := make(map[string]int, len(ws))
	out := make([]Window, 0, len(ws))
	for _, w := range ws {
		if i, ok := pos[w.Name]; ok {
			out[i] = w
			continue
		}
		pos[w.Name] = len(out)
		out = append(out, w)
	}
	return out
}

func mergeEdits(current []Window, ed Edits) ([]Window, error) {
	next := make([]Window, len(current))
	copy(next, current)

	indices := make([]int, 0, len(ed.Edited))
	for i := range ed.Edited {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		if i < 0 || i >= len(current) {
			return nil, fmt.Errorf("%w: edited row %d out of range", ErrInvalidEdit, i)
		}
		w, err := patchWindow(next[i], ed.Edited[i], false)
		if err != nil {
			return nil, fmt.Errorf("edited row %d: %w", i, err)
		}
		next[i] = w
	}

	for i, p := range ed.Added {
		w, err := patchWindow(Window{}, p, true)
		if err != nil {
			return nil, fmt.Errorf("added row %d: %w", i, err)
		}
		next = append(next, w)
	}

	if len(ed.Deleted) > 0 {
		drop := make(map[int]bool, len(ed.Deleted))
		for _, i := range ed.Deleted {
			if i < 0 || i >= len(current) {
				return nil, fmt.Errorf("%w: deleted row %d out of range", ErrInvalidEdit, i)
			}
			drop[i] = true
		}
		kept := next[:0]
		for i, w := range next {
			if !drop[i] {
				kept = append(kept, w)
			}
		}
		next = kept
	}
	return next, nil
}

func patchWindow(w Window, p RowPatch, required bool) (Window, error) {
	if required {
		for _, col := range []string{ColPhase, ColStart, ColEnd} {
			if v, ok := p[col]; !ok || v == nil {
				return w, fmt.Errorf("%w: %q is required", ErrInvalidEdit, col)
			}
		}
	}
	for col, v := range p {
		switch col {
		case ColPhase:
			name, ok := v.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return w, fmt.Errorf("%w: %q must be a non-empty name, got %v", ErrInvalidEdit, col, v)
			}
			w.Name = name
		case ColStart, ColEnd:
			f, err := percent(v)
			if err != nil {
				return w, fmt.Errorf("%q: %w", col, err)
			}
			if col == ColStart {
				w.Start = f
			} else {
				w.End = f
			}
		}
	}
	return w, nil
}

func percent(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidEdit, x)
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidEdit, x)
		}
		f = n
	default:
		return 0, fmt.Errorf("%w: %v is not a number", ErrInvalidEdit, v)
	}
	if math.IsNaN(f) || f < 0 || f > 100 {
		return 0, fmt.Errorf("%w: %v outside [0, 100]", ErrInvalidEdit, f)
	}
	return f, nil
}

func validateWindow(w Window) error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: empty phase name", ErrInvalidEdit)
	}
	for _, f := range []float64{w.Start, w.End} {
		if math.IsNaN(f) || f < 0 || f > 100 {
			return fmt.Errorf("%w: %v outside [0, 100]", ErrInvalidEdit, f)
		}
	}
	return nil
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}
