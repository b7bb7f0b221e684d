package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/gait-analyzer/phase"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := OpenStore(filepath.Join(t.TempDir(), "sessions.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestStoreSaveAndRestore(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	s := New(nil)
	require.NoError(t, s.Bind(SlotA, loadDataset(t, "Ann", 1, "Hip", "Knee")))
	hip, err := s.Analysis(SlotA, "Hip")
	require.NoError(t, err)
	_, err = hip.ApplyEdits(phase.Edits{
		Deleted: []int{2},
		Edited:  map[int]phase.RowPatch{1: {phase.ColEnd: 62.0}},
	})
	require.NoError(t, err)
	hip.SetComment("Prolonged stance.")
	knee, err := s.Analysis(SlotA, "Knee")
	require.NoError(t, err)
	knee.SetIncluded(false)

	require.NoError(t, st.Save(ctx, s))
	// saving twice replaces the first save
	require.NoError(t, st.Save(ctx, s))

	records, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, s.ID, records[0].ID)
	assert.Equal(t, "Ann Doe, 2024-05-02, Barefoot", records[0].TitleA)
	assert.Empty(t, records[0].TitleB)

	restored, err := st.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.CreatedAt.UnixNano(), restored.CreatedAt.UnixNano())
	require.NoError(t, restored.Bind(SlotA, loadDataset(t, "Ann", 1, "Hip", "Knee")))
	n, err := st.Restore(ctx, restored)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hip2, err := restored.Analysis(SlotA, "Hip")
	require.NoError(t, err)
	assert.Equal(t, "Prolonged stance.", hip2.Comment())
	assert.Equal(t, []phase.Window{
		{Name: "Full Cycle", Start: 0, End: 100},
		{Name: "Stance", Start: 0, End: 62},
	}, hip2.Windows())
	assert.Equal(t, hip.Rows(), hip2.Rows())

	knee2, err := restored.Analysis(SlotA, "Knee")
	require.NoError(t, err)
	assert.False(t, knee2.Included())
	// never edited, so it reseeds from the defaults
	assert.Len(t, knee2.Windows(), 3)
}

func TestStoreRestoreSkipsMissingParameters(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	s := New(nil)
	require.NoError(t, s.Bind(SlotA, loadDataset(t, "Ann", 1, "Hip", "Knee")))
	for _, name := range []string{"Hip", "Knee"} {
		a, err := s.Analysis(SlotA, name)
		require.NoError(t, err)
		a.SetComment(name)
	}
	require.NoError(t, st.Save(ctx, s))

	restored, err := st.Load(ctx, s.ID)
	require.NoError(t, err)
	require.NoError(t, restored.Bind(SlotA, loadDataset(t, "Ann", 1, "Hip")))
	n, err := st.Restore(ctx, restored)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	s := New(nil)
	require.NoError(t, st.Save(ctx, s))
	require.NoError(t, st.Delete(ctx, s.ID))

	_, err := st.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(ctx, s.ID), ErrSessionNotFound)

	records, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
