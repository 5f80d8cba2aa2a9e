package memory

import (
	"cmp"
	"maps"
	"slices"
	"sync"
)

// table keeps rows in insertion order with an index map for lookups.
// Rows are stored and returned by value so callers never alias stored state.
// Keys are the int64-backed entity ids so reserve can count upwards.
type table[K ~int64, V any] struct {
	mu     sync.RWMutex
	rows   []V
	index  map[K]int
	nextID K
}

func newTable[K ~int64, V any](expected int) *table[K, V] {
	return &table[K, V]{
		rows:  make([]V, 0, expected),
		index: make(map[K]int, expected),
	}
}

func (t *table[K, V]) get(id K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, ok := t.index[id]
	if !ok {
		var zero V
		return zero, false
	}
	return t.rows[i], true
}

// put inserts or replaces the row stored under id
func (t *table[K, V]) put(id K, row V) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.putLocked(id, row)
}

func (t *table[K, V]) putLocked(id K, row V) {
	if i, ok := t.index[id]; ok {
		t.rows[i] = row
		return
	}
	t.index[id] = len(t.rows)
	t.rows = append(t.rows, row)
	if id > t.nextID {
		t.nextID = id
	}
}

// insert stores a new row and fails when the id is taken
func (t *table[K, V]) insert(id K, row V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.index[id]; ok {
		return false
	}
	t.putLocked(id, row)
	return true
}

// replace updates an existing row
func (t *table[K, V]) replace(id K, row V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.index[id]
	if !ok {
		return false
	}
	t.rows[i] = row
	return true
}

func (t *table[K, V]) remove(id K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.index[id]
	if !ok {
		return false
	}
	t.rows = slices.Delete(t.rows, i, i+1)
	delete(t.index, id)
	for k, j := range t.index {
		if j > i {
			t.index[k] = j - 1
		}
	}
	return true
}

// reserve returns the next free id. Ids are never reused after a delete.
func (t *table[K, V]) reserve() K {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	return t.nextID
}

// sorted returns the rows accepted by keep ordered by id
func (t *table[K, V]) sorted(keep func(V) bool) []V {
	t.mu.RLock()
	defer t.mu.RUnlock()

	type pair struct {
		id  K
		row V
	}
	pairs := make([]pair, 0, len(t.rows))
	for id, i := range t.index {
		if keep == nil || keep(t.rows[i]) {
			pairs = append(pairs, pair{id, t.rows[i]})
		}
	}
	slices.SortFunc(pairs, func(a, b pair) int { return cmp.Compare(a.id, b.id) })

	out := make([]V, len(pairs))
	for i, p := range pairs {
		out[i] = p.row
	}
	return out
}

// checkpoint copies the rows and returns a func that puts them back
func (t *table[K, V]) checkpoint() func() {
	t.mu.RLock()
	rows := slices.Clone(t.rows)
	index := maps.Clone(t.index)
	next := t.nextID
	t.mu.RUnlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.rows, t.index, t.nextID = rows, index, next
	}
}

func (t *table[K, V]) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
