package session

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/lucasjlepore/gait-analyzer/phase"
)

// ErrSessionNotFound is returned when no saved session has the requested id.
var ErrSessionNotFound = errors.New("session not found")

//go:embed schema.sql
var schemaSQL string

// Record is a saved session as listed by the store.
type Record struct {
	ID        string    `json:"session_id"`
	TitleA    string    `json:"title_a,omitempty"`
	TitleB    string    `json:"title_b,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists session comments, report flags and phase windows.
// Datasets are not stored; they are reloaded from their exports and the
// saved analyses are reapplied with Restore.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenStore opens (or creates) the sqlite database at path and applies the schema.
func OpenStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	logger.Debug("session store ready", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (st *Store) Close() error { return st.db.Close() }

// Save writes the session and every analysis opened in it, replacing any
// earlier save of the same session.
func (st *Store) Save(ctx context.Context, s *Session) error {
	now := time.Now().UTC().UnixNano()
	titles := [2]string{}
	for i, slot := range []Slot{SlotA, SlotB} {
		if d, ok := s.Dataset(slot); ok {
			titles[i], _ = d.Title()
		}
	}

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO gait_sessions (session_id, title_a, title_b, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			title_a = excluded.title_a,
			title_b = excluded.title_b,
			updated_at = excluded.updated_at`,
		s.ID, titles[0], titles[1], s.CreatedAt.UnixNano(), now,
	); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM gait_analyses WHERE session_id = ?`, s.ID); err != nil {
		return fmt.Errorf("clear analyses: %w", err)
	}

	saved := 0
	for _, slot := range []Slot{SlotA, SlotB} {
		for _, a := range s.Analyses(slot) {
			var windows any
			if a.engine.Seeded() {
				raw, err := json.Marshal(a.Windows())
				if err != nil {
					return fmt.Errorf("encode windows of %s: %w", a.Parameter, err)
				}
				windows = string(raw)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO gait_analyses (session_id, slot, parameter, comment, include, windows_json, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				s.ID, int(slot), a.Parameter, a.Comment(), a.Included(), windows, now,
			); err != nil {
				return fmt.Errorf("save analysis %s: %w", a.Parameter, err)
			}
			saved++
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	st.logger.Info("session saved", zap.String("session", s.ID), zap.Int("analyses", saved))
	return nil
}

// Load returns a session with the saved id and creation time. Bind its
// datasets, then call Restore to reapply the saved analyses.
func (st *Store) Load(ctx context.Context, id string) (*Session, error) {
	var created int64
	err := st.db.QueryRowContext(ctx,
		`SELECT created_at FROM gait_sessions WHERE session_id = ?`, id,
	).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s := newWithID(id, st.logger)
	s.CreatedAt = time.Unix(0, created).UTC()
	return s, nil
}

// Restore reapplies saved analyses to the datasets bound in s. Analyses of
// unbound slots or parameters the datasets no longer have are skipped.
// It returns the number of analyses restored.
func (st *Store) Restore(ctx context.Context, s *Session) (int, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT slot, parameter, comment, include, windows_json
		FROM gait_analyses
		WHERE session_id = ?
		ORDER BY slot, parameter`, s.ID)
	if err != nil {
		return 0, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	type saved struct {
		slot      Slot
		parameter string
		comment   string
		include   bool
		windows   sql.NullString
	}
	var all []saved
	for rows.Next() {
		var r saved
		if err := rows.Scan(&r.slot, &r.parameter, &r.comment, &r.include, &r.windows); err != nil {
			return 0, fmt.Errorf("scan analysis: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	restored := 0
	for _, r := range all {
		a, err := s.Analysis(r.slot, r.parameter)
		if err != nil {
			st.logger.Warn("skipping saved analysis",
				zap.Int("slot", int(r.slot)),
				zap.String("parameter", r.parameter),
				zap.Error(err),
			)
			continue
		}
		a.SetComment(r.comment)
		a.SetIncluded(r.include)
		if r.windows.Valid {
			var ws []phase.Window
			if err := json.Unmarshal([]byte(r.windows.String), &ws); err != nil {
				return restored, fmt.Errorf("decode windows of %s: %w", r.parameter, err)
			}
			if _, err := a.SetWindows(ws); err != nil {
				return restored, fmt.Errorf("restore windows of %s: %w", r.parameter, err)
			}
		}
		restored++
	}
	return restored, nil
}

// List returns every saved session, most recently updated first.
func (st *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT session_id, title_a, title_b, created_at, updated_at
		FROM gait_sessions
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r                Record
			titleA, titleB   sql.NullString
			created, updated int64
		)
		if err := rows.Scan(&r.ID, &titleA, &titleB, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		r.TitleA, r.TitleB = titleA.String, titleB.String
		r.CreatedAt = time.Unix(0, created).UTC()
		r.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes a saved session and its analyses.
func (st *Store) Delete(ctx context.Context, id string) error {
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM gait_analyses WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete analyses: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM gait_sessions WHERE session_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return tx.Commit()
}
