package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

// BOMRepository provides in-memory bill of materials storage
type BOMRepository struct {
	mu         sync.RWMutex
	entries    []entities.BOMEntry
	keyIndex   map[entities.BOMKey]int
	bomIndexes map[entities.ProductID][]int
}

// NewBOMRepository creates a new in-memory BOM repository
func NewBOMRepository(expectedEntries int) *BOMRepository {
	return &BOMRepository{
		entries:    make([]entities.BOMEntry, 0, expectedEntries),
		keyIndex:   make(map[entities.BOMKey]int, expectedEntries),
		bomIndexes: make(map[entities.ProductID][]int),
	}
}

// Verify interface compliance
var _ repositories.BOMRepository = (*BOMRepository)(nil)

// Checkpoint copies the entries for a later restore
func (r *BOMRepository) Checkpoint() func() {
	r.mu.RLock()
	entries := slices.Clone(r.entries)
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.entries = entries
		r.reindex()
	}
}

// LoadEntries loads BOM entries into the repository
func (r *BOMRepository) LoadEntries(ctx context.Context, entries []*entities.BOMEntry) error {
	for _, e := range entries {
		if _, err := r.Add(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Add stores an entry, summing quantities for a repeated pair
func (r *BOMRepository) Add(_ context.Context, entry *entities.BOMEntry) (*entities.BOMEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := entry.Key()
	if i, exists := r.keyIndex[key]; exists {
		r.entries[i].Quantity += entry.Quantity
		merged := r.entries[i]
		return &merged, nil
	}

	index := len(r.entries)
	r.entries = append(r.entries, *entry)
	r.keyIndex[key] = index
	r.bomIndexes[entry.FinishedProductID] = append(r.bomIndexes[entry.FinishedProductID], index)
	stored := *entry
	return &stored, nil
}

// GetByFinishedProduct returns the entries of one finished product
func (r *BOMRepository) GetByFinishedProduct(_ context.Context, id entities.ProductID) ([]*entities.BOMEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indexes, exists := r.bomIndexes[id]
	if !exists {
		return []*entities.BOMEntry{}, nil
	}

	entries := make([]*entities.BOMEntry, 0, len(indexes))
	for _, index := range indexes {
		e := r.entries[index]
		entries = append(entries, &e)
	}
	return entries, nil
}

// GetAll returns every BOM entry in insertion order
func (r *BOMRepository) GetAll(_ context.Context) ([]*entities.BOMEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*entities.BOMEntry, 0, len(r.entries))
	for i := range r.entries {
		e := r.entries[i]
		entries = append(entries, &e)
	}
	return entries, nil
}

// Delete removes the entry for a (finished, material) pair
func (r *BOMRepository) Delete(_ context.Context, key entities.BOMKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, exists := r.keyIndex[key]
	if !exists {
		return entities.NotFoundError("bom entry", key)
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	r.reindex()
	return nil
}

func (r *BOMRepository) reindex() {
	r.keyIndex = make(map[entities.BOMKey]int, len(r.entries))
	r.bomIndexes = make(map[entities.ProductID][]int)
	for i, e := range r.entries {
		r.keyIndex[e.Key()] = i
		r.bomIndexes[e.FinishedProductID] = append(r.bomIndexes[e.FinishedProductID], i)
	}
}
