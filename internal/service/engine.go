package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evalex7/e-plan/internal/backup"
	"github.com/evalex7/e-plan/internal/history"
	"github.com/evalex7/e-plan/internal/kanban"
	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/repository"
	"github.com/evalex7/e-plan/internal/schedule"
)

type Options struct {
	Schedule     schedule.Options
	HistoryLimit int
}

func DefaultOptions() Options {
	return Options{Schedule: schedule.DefaultOptions(), HistoryLimit: history.DefaultLimit}
}

// Change is published to subscribers after a mutation is committed.
type Change struct {
	Action      string             `json:"action"`
	Description string             `json:"description"`
	Collections []model.Collection `json:"collections"`
	At          time.Time          `json:"at"`
}

// Engine is the single writer over the repository. Every mutation is
// applied to a clone, reconciled with the schedule and both boards,
// committed in one step, recorded for undo and written through to storage.
type Engine struct {
	repo    *repository.Repository
	history *history.History
	opts    Options
	log     zerolog.Logger
	clock   func() time.Time

	mu sync.Mutex

	subsMu  sync.RWMutex
	subs    map[int]func(Change)
	nextSub int
}

func NewEngine(repo *repository.Repository, opts Options, log zerolog.Logger) *Engine {
	if opts.Schedule.HoursPerDepartment <= 0 {
		opts.Schedule.HoursPerDepartment = schedule.DefaultOptions().HoursPerDepartment
	}
	return &Engine{
		repo:    repo,
		history: history.New(opts.HistoryLimit),
		opts:    opts,
		log:     log,
		clock:   time.Now,
		subs:    make(map[int]func(Change)),
	}
}

// WithClock replaces the time source used for "today" and audit stamps.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	e.history.WithClock(clock)
	return e
}

func (e *Engine) today() model.Date {
	return schedule.Today(e.clock())
}

// Subscribe registers fn for committed changes and returns a function that
// removes it.
func (e *Engine) Subscribe(fn func(Change)) func() {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Engine) notify(change Change) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, fn := range e.subs {
		fn(change)
	}
}

// Open loads the stored state and reconciles derived data without
// recording history.
func (e *Engine) Open(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.repo.Load(ctx); err != nil {
		return err
	}
	changed, err := e.repo.Apply(e.reconcile)
	if err != nil {
		return err
	}
	if len(changed) > 0 {
		e.log.Info().Interface("collections", changed).Msg("derived data reconciled on open")
	}
	return e.repo.Flush(ctx)
}

// reconcile re-derives tasks and cards, then checks the order of both boards.
func (e *Engine) reconcile(tx *repository.Tx) error {
	if _, err := schedule.Regenerate(tx, e.today(), e.opts.Schedule); err != nil {
		return err
	}
	if err := kanban.Validate(tx.KanbanTasks()); err != nil {
		return fmt.Errorf("task board: %w", err)
	}
	if err := kanban.Validate(tx.ContractKanbanTasks()); err != nil {
		return fmt.Errorf("contract board: %w", err)
	}
	return nil
}

// mutate runs fn followed by reconciliation in one transaction. fn returns
// the history description of what it did. Nothing is recorded when the
// state did not change.
func (e *Engine) mutate(ctx context.Context, action string, fn func(tx *repository.Tx) (string, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	before, err := backup.Marshal(e.repo.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	var description string
	changed, err := e.repo.Apply(func(tx *repository.Tx) error {
		var err error
		if description, err = fn(tx); err != nil {
			return err
		}
		return e.reconcile(tx)
	})
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return nil
	}

	e.history.Record(description, before)
	return e.commit(ctx, action, description, changed)
}

func (e *Engine) commit(ctx context.Context, action, description string, changed []model.Collection) error {
	flushErr := e.repo.Flush(ctx)
	e.notify(Change{
		Action:      action,
		Description: description,
		Collections: changed,
		At:          e.clock().UTC(),
	})
	e.log.Debug().
		Str("action", action).
		Str("description", description).
		Interface("collections", changed).
		Msg("state changed")
	return flushErr
}

// Flush retries writing collections a failed persistence left dirty.
func (e *Engine) Flush(ctx context.Context) error {
	return e.repo.Flush(ctx)
}

// Snapshot returns a deep copy of the whole state.
func (e *Engine) Snapshot() model.Dataset {
	return e.repo.Snapshot()
}

// ---- history

// Undo restores the state before the most recent action. ok is false when
// there is nothing to undo.
func (e *Engine) Undo(ctx context.Context) (history.Entry, bool, error) {
	return e.step(ctx, true)
}

func (e *Engine) Redo(ctx context.Context) (history.Entry, bool, error) {
	return e.step(ctx, false)
}

func (e *Engine) step(ctx context.Context, undo bool) (history.Entry, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := backup.Marshal(e.repo.Snapshot())
	if err != nil {
		return history.Entry{}, false, fmt.Errorf("encode snapshot: %w", err)
	}

	var (
		entry history.Entry
		ok    bool
	)
	if undo {
		entry, ok = e.history.Undo(current)
	} else {
		entry, ok = e.history.Redo(current)
	}
	if !ok {
		return history.Entry{}, false, nil
	}

	payload, err := backup.Unmarshal(entry.Snapshot)
	if err != nil {
		e.history.Revert(entry, undo)
		return history.Entry{}, false, fmt.Errorf("decode snapshot: %w", err)
	}

	action := "redo"
	if undo {
		action = "undo"
	}
	changed := e.repo.Restore(payload.Dataset)
	entry.Snapshot = nil
	e.log.Info().Str("action", action).Str("description", entry.Description).Msg("history step")
	return entry, true, e.commit(ctx, action, entry.Description, changed)
}

// RestoreState replaces every collection with ds as is. It neither
// reconciles nor records history.
func (e *Engine) RestoreState(ctx context.Context, ds model.Dataset) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed := e.repo.Restore(ds)
	return e.commit(ctx, "restore", "Restored state", changed)
}

func (e *Engine) CanUndo() bool                 { return e.history.CanUndo() }
func (e *Engine) CanRedo() bool                 { return e.history.CanRedo() }
func (e *Engine) UndoEntries() []history.Entry { return e.history.UndoEntries() }
func (e *Engine) RedoEntries() []history.Entry { return e.history.RedoEntries() }

// ClearHistory empties both stacks and leaves the state alone.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// ---- import / export

func (e *Engine) ExportData() ([]byte, error) {
	return backup.Marshal(e.repo.Snapshot())
}

func (e *Engine) ExportSelectedData(collections ...model.Collection) ([]byte, error) {
	if len(collections) == 0 {
		return nil, fmt.Errorf("%w: no collections selected", ErrInvalidInput)
	}
	return backup.MarshalSelected(e.repo.Snapshot(), collections...)
}

// ImportData replaces the collections present in data. A malformed document
// or an invalid entity rejects the whole import.
func (e *Engine) ImportData(ctx context.Context, data []byte) ([]model.Collection, error) {
	payload, err := backup.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	err = e.mutate(ctx, "import", func(tx *repository.Tx) (string, error) {
		if err := tx.Replace(payload.Dataset, payload.Collections...); err != nil {
			return "", err
		}
		if err := tx.Check(); err != nil {
			return "", err
		}
		return fmt.Sprintf("Imported %d collections", len(payload.Collections)), nil
	})
	if err != nil {
		return nil, err
	}
	return payload.Collections, nil
}

// ResetData empties every collection. It can be undone.
func (e *Engine) ResetData(ctx context.Context) error {
	return e.mutate(ctx, "reset", func(tx *repository.Tx) (string, error) {
		if err := tx.Replace(model.EmptyDataset(), model.Collections()...); err != nil {
			return "", err
		}
		return "Reset all data", nil
	})
}

// RegenerateAllTasks re-derives tasks and board cards from the contracts.
func (e *Engine) RegenerateAllTasks(ctx context.Context) (schedule.Result, error) {
	var result schedule.Result
	err := e.mutate(ctx, "regenerate", func(tx *repository.Tx) (string, error) {
		var err error
		result, err = schedule.Regenerate(tx, e.today(), e.opts.Schedule)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Regenerated tasks (%d new, %d updated, %d removed)",
			result.Created, result.Updated, result.Removed), nil
	})
	return result, err
}
