package graph

import (
	"context"
)

// MemoryStore is an in-memory Store. It keeps insertion order and indexes
// triples by subject, predicate and object. It is not safe for concurrent use.
type MemoryStore struct {
	triples []Triple
	live    []bool
	index   map[Triple]int
	bySubj  map[Term][]int
	byPred  map[Term][]int
	byObj   map[Term][]int
	count   int
	closed  bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index:  make(map[Triple]int),
		bySubj: make(map[Term][]int),
		byPred: make(map[Term][]int),
		byObj:  make(map[Term][]int),
	}
}

// Add inserts t if it is not already present.
func (m *MemoryStore) Add(_ context.Context, t Triple) (bool, error) {
	if m.closed {
		return false, ErrClosed
	}
	if err := t.Validate(); err != nil {
		return false, err
	}
	if _, ok := m.index[t]; ok {
		return false, nil
	}
	pos := len(m.triples)
	m.triples = append(m.triples, t)
	m.live = append(m.live, true)
	m.index[t] = pos
	m.bySubj[t.Subject] = append(m.bySubj[t.Subject], pos)
	m.byPred[t.Predicate] = append(m.byPred[t.Predicate], pos)
	m.byObj[t.Object] = append(m.byObj[t.Object], pos)
	m.count++
	return true, nil
}

// Remove deletes every triple matching p.
func (m *MemoryStore) Remove(_ context.Context, p Pattern) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	removed := 0
	for _, pos := range m.candidates(p) {
		t := m.triples[pos]
		if !m.live[pos] || !p.Matches(t) {
			continue
		}
		m.live[pos] = false
		delete(m.index, t)
		m.count--
		removed++
	}
	if removed > 0 && m.count < len(m.triples)/2 {
		m.compact()
	}
	return removed, nil
}

// Match returns the live triples matching p in insertion order.
func (m *MemoryStore) Match(_ context.Context, p Pattern) ([]Triple, error) {
	if m.closed {
		return nil, ErrClosed
	}
	var out []Triple
	for _, pos := range m.candidates(p) {
		if m.live[pos] && p.Matches(m.triples[pos]) {
			out = append(out, m.triples[pos])
		}
	}
	return out, nil
}

// Len returns the number of live triples.
func (m *MemoryStore) Len(_ context.Context) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	return m.count, nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.closed = true
	return nil
}

// candidates returns the smallest position list that can satisfy p. Position
// lists are ascending, so callers see insertion order.
func (m *MemoryStore) candidates(p Pattern) []int {
	var best []int
	found := false
	pick := func(idx map[Term][]int, t *Term) {
		if t == nil {
			return
		}
		list := idx[*t]
		if !found || len(list) < len(best) {
			best = list
			found = true
		}
	}
	pick(m.bySubj, p.Subject)
	pick(m.byPred, p.Predicate)
	pick(m.byObj, p.Object)
	if found {
		return best
	}
	all := make([]int, len(m.triples))
	for i := range all {
		all[i] = i
	}
	return all
}

// compact drops dead slots and rebuilds the indexes.
func (m *MemoryStore) compact() {
	triples := m.triples
	live := m.live
	m.triples = make([]Triple, 0, m.count)
	m.live = make([]bool, 0, m.count)
	m.index = make(map[Triple]int, m.count)
	m.bySubj = make(map[Term][]int)
	m.byPred = make(map[Term][]int)
	m.byObj = make(map[Term][]int)
	for i, t := range triples {
		if !live[i] {
			continue
		}
		pos := len(m.triples)
		m.triples = append(m.triples, t)
		m.live = append(m.live, true)
		m.index[t] = pos
		m.bySubj[t.Subject] = append(m.bySubj[t.Subject], pos)
		m.byPred[t.Predicate] = append(m.byPred[t.Predicate], pos)
		m.byObj[t.Object] = append(m.byObj[t.Object], pos)
	}
}
