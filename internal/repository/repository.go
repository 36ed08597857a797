package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/storage"
)

// Repository is the single authoritative in-memory copy of every collection.
// Mutations run in a transaction on a private clone and become visible to
// readers in one step; changed collections are then written through to the
// store by Flush.
type Repository struct {
	store storage.Store
	log   zerolog.Logger
	newID func() string

	writeMu sync.Mutex
	flushMu sync.Mutex

	mu    sync.RWMutex
	state model.Dataset
	gen   uint64
	dirty map[model.Collection]uint64
}

func New(store storage.Store, log zerolog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log,
		newID: uuid.NewString,
		state: model.EmptyDataset(),
		dirty: make(map[model.Collection]uint64),
	}
}

// Load replaces the in-memory state with what the store holds. Missing keys
// load as empty collections.
func (r *Repository) Load(ctx context.Context) error {
	ds := model.EmptyDataset()
	for _, c := range model.Collections() {
		raw, err := r.store.Get(ctx, c.StorageKey())
		if errors.Is(err, storage.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: load %s: %w", ErrPersistence, c.StorageKey(), err)
		}
		if err := json.Unmarshal(raw, ds.SectionTarget(c)); err != nil {
			return fmt.Errorf("%w: decode %s: %w", ErrPersistence, c.StorageKey(), err)
		}
	}
	ds.Normalize()

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.Lock()
	r.state = ds
	r.dirty = make(map[model.Collection]uint64)
	r.mu.Unlock()

	r.log.Debug().
		Int("contracts", len(ds.Contracts)).
		Int("tasks", len(ds.Tasks)).
		Msg("repository loaded")
	return nil
}

// Snapshot returns a deep copy of every collection.
func (r *Repository) Snapshot() model.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Clone()
}

// View runs fn against the live state under the read lock. fn must not
// retain or modify anything it is given.
func (r *Repository) View(fn func(tx *Tx)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(&Tx{state: &r.state, readOnly: true})
}

// Apply runs fn in a transaction. Nothing is committed when fn fails. It
// returns the collections whose contents actually changed.
func (r *Repository) Apply(fn func(tx *Tx) error) ([]model.Collection, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.RLock()
	work := r.state.Clone()
	r.mu.RUnlock()

	tx := &Tx{state: &work, newID: r.newID, touched: make(map[model.Collection]struct{})}
	if err := fn(tx); err != nil {
		return nil, err
	}
	work.Normalize()

	touched := make([]model.Collection, 0, len(tx.touched))
	for _, c := range model.Collections() {
		if _, ok := tx.touched[c]; ok {
			touched = append(touched, c)
		}
	}
	return r.commit(work, touched), nil
}

// Restore overwrites the listed collections (all of them when none are
// given) with the contents of ds.
func (r *Repository) Restore(ds model.Dataset, collections ...model.Collection) []model.Collection {
	if len(collections) == 0 {
		collections = model.Collections()
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.RLock()
	work := r.state.Clone()
	r.mu.RUnlock()

	work.Replace(ds, collections...)
	return r.commit(work, collections)
}

func (r *Repository) commit(work model.Dataset, candidates []model.Collection) []model.Collection {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := make([]model.Collection, 0, len(candidates))
	for _, c := range candidates {
		if !reflect.DeepEqual(r.state.Section(c), work.Section(c)) {
			changed = append(changed, c)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	r.gen++
	r.state = work
	for _, c := range changed {
		r.dirty[c] = r.gen
	}
	return changed
}

// Dirty lists collections changed in memory but not yet written to the store.
func (r *Repository) Dirty() []model.Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.Collection, 0, len(r.dirty))
	for _, c := range model.Collections() {
		if _, ok := r.dirty[c]; ok {
			result = append(result, c)
		}
	}
	return result
}

// Flush writes every dirty collection in one batch. On failure the
// collections stay dirty so a later Flush can retry.
func (r *Repository) Flush(ctx context.Context) error {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	r.mu.RLock()
	entries := make(map[string][]byte, len(r.dirty))
	versions := make(map[model.Collection]uint64, len(r.dirty))
	for c, version := range r.dirty {
		data, err := json.Marshal(r.state.Section(c))
		if err != nil {
			r.mu.RUnlock()
			return fmt.Errorf("%w: encode %s: %w", ErrPersistence, c.StorageKey(), err)
		}
		entries[c.StorageKey()] = data
		versions[c] = version
	}
	r.mu.RUnlock()

	if len(entries) == 0 {
		return nil
	}

	if err := r.store.SetMany(ctx, entries); err != nil {
		r.log.Error().Err(err).Int("collections", len(entries)).Msg("flush failed")
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	r.mu.Lock()
	for c, version := range versions {
		if r.dirty[c] == version {
			delete(r.dirty, c)
		}
	}
	r.mu.Unlock()
	return nil
}
