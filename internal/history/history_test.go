package history_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalex7/e-plan/internal/history"
)

func TestUndoRedo(t *testing.T) {
	h := history.New(10)
	assert.False(t, h.CanUndo())
	_, ok := h.Undo([]byte("x"))
	assert.False(t, ok)

	h.Record("Added contract №1", []byte("s0"))
	h.Record("Added contract №2", []byte("s1"))

	e, ok := h.Undo([]byte("s2"))
	require.True(t, ok)
	assert.Equal(t, "s1", string(e.Snapshot))
	assert.Equal(t, "Added contract №2", e.Description)
	assert.True(t, h.CanRedo())

	e, ok = h.Redo([]byte("s1"))
	require.True(t, ok)
	assert.Equal(t, "s2", string(e.Snapshot))
	assert.False(t, h.CanRedo())
	assert.Len(t, h.UndoEntries(), 2)
}

func TestRecordClearsRedo(t *testing.T) {
	h := history.New(10)
	h.Record("a", []byte("s0"))
	_, ok := h.Undo([]byte("s1"))
	require.True(t, ok)
	require.True(t, h.CanRedo())

	h.Record("b", []byte("s0"))
	assert.False(t, h.CanRedo())
}

func TestLimitEvictsOldest(t *testing.T) {
	h := history.New(3)
	for i := range 5 {
		h.Record(fmt.Sprintf("step %d", i), []byte{byte(i)})
	}
	entries := h.UndoEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "step 4", entries[0].Description)
	assert.Equal(t, "step 2", entries[2].Description)
	assert.Nil(t, entries[0].Snapshot)

	for range 3 {
		_, ok := h.Undo(nil)
		require.True(t, ok)
	}
	assert.False(t, h.CanUndo())
	assert.Len(t, h.RedoEntries(), 3)
}

func TestSnapshotsAreCopied(t *testing.T) {
	h := history.New(5)
	state := []byte("abc")
	h.Record("a", state)
	state[0] = 'z'

	e, ok := h.Undo(nil)
	require.True(t, ok)
	assert.Equal(t, "abc", string(e.Snapshot))
}

func TestRevert(t *testing.T) {
	h := history.New(5)
	h.Record("a", []byte("s0"))
	e, ok := h.Undo([]byte("s1"))
	require.True(t, ok)

	h.Revert(e, true)
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestClearAndClock(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	h := history.New(0).WithClock(func() time.Time { return fixed })
	assert.Equal(t, history.DefaultLimit, h.Limit())

	e := h.Record("a", nil)
	assert.Equal(t, fixed, e.Timestamp)
	assert.NotEmpty(t, e.ID)

	h.Clear()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}
