// Package history keeps bounded linear undo and redo stacks of serialized
// repository snapshots.
package history

import (
	"bytes"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultLimit = 50

// Entry is one restorable state. Snapshot holds the encoded dataset as it
// was before the described action.
type Entry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Snapshot    []byte    `json:"-"`
}

type History struct {
	mu    sync.Mutex
	limit int
	now   func() time.Time
	undo  []Entry
	redo  []Entry
}

func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit, now: time.Now}
}

// WithClock replaces the timestamp source.
func (h *History) WithClock(now func() time.Time) *History {
	h.now = now
	return h
}

func (h *History) entry(description string, snapshot []byte) Entry {
	return Entry{
		ID:          uuid.NewString(),
		Timestamp:   h.now().UTC(),
		Description: description,
		Snapshot:    bytes.Clone(snapshot),
	}
}

// Record pushes the state preceding an action and invalidates redo.
// The oldest entry is evicted once the limit is reached.
func (h *History) Record(description string, before []byte) Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := h.entry(description, before)
	h.undo = append(h.undo, e)
	if len(h.undo) > h.limit {
		h.undo = append([]Entry(nil), h.undo[len(h.undo)-h.limit:]...)
	}
	h.redo = nil
	return e
}

// Undo pops the latest entry and parks current on the redo stack under the
// same description. ok is false when there is nothing to undo.
func (h *History) Undo(current []byte) (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return Entry{}, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, h.entry(top.Description, current))
	return top, true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current []byte) (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return Entry{}, false
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, h.entry(top.Description, current))
	if len(h.undo) > h.limit {
		h.undo = append([]Entry(nil), h.undo[len(h.undo)-h.limit:]...)
	}
	return top, true
}

// Revert puts an entry taken by Undo or Redo back where it came from and
// drops the counterpart that call pushed. It is used when applying the
// entry failed.
func (h *History) Revert(e Entry, undone bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if undone {
		if len(h.redo) > 0 {
			h.redo = h.redo[:len(h.redo)-1]
		}
		h.undo = append(h.undo, e)
		return
	}
	if len(h.undo) > 0 {
		h.undo = h.undo[:len(h.undo)-1]
	}
	h.redo = append(h.redo, e)
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}

// UndoEntries lists undo entries, most recent first, without snapshots.
func (h *History) UndoEntries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return describe(h.undo)
}

func (h *History) RedoEntries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return describe(h.redo)
}

func describe(stack []Entry) []Entry {
	result := make([]Entry, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		e := stack[i]
		e.Snapshot = nil
		result = append(result, e)
	}
	return result
}

func (h *History) Limit() int { return h.limit }
