// Package graph provides the RDF statement model and the triple store
// abstraction the pedigree builder writes into.
package graph

import (
	"context"
	"errors"
)

// ErrClosed is returned by store operations after Close.
var ErrClosed = errors.New("store closed")

// Pattern selects triples. A nil position matches any term.
type Pattern struct {
	Subject   *Term
	Predicate *Term
	Object    *Term
}

// Matches reports whether t satisfies the pattern.
func (p Pattern) Matches(t Triple) bool {
	if p.Subject != nil && *p.Subject != t.Subject {
		return false
	}
	if p.Predicate != nil && *p.Predicate != t.Predicate {
		return false
	}
	if p.Object != nil && *p.Object != t.Object {
		return false
	}
	return true
}

// Ref returns a pointer to a copy of t, for building patterns inline.
func Ref(t Term) *Term {
	return &t
}

// Store is a set of triples. Adding a triple that is already present is a
// no-op. Implementations assume a single writer.
type Store interface {
	// Add inserts t. It reports whether the triple was new.
	Add(ctx context.Context, t Triple) (bool, error)

	// Remove deletes every triple matching p and returns how many were removed.
	Remove(ctx context.Context, p Pattern) (int, error)

	// Match returns the triples matching p in insertion order.
	Match(ctx context.Context, p Pattern) ([]Triple, error)

	// Len returns the number of triples in the store.
	Len(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// Subjects returns the distinct subjects of the triples matching p, in
// first-seen order.
func Subjects(ctx context.Context, s Store, p Pattern) ([]Term, error) {
	triples, err := s.Match(ctx, p)
	if err != nil {
		return nil, err
	}
	seen := make(map[Term]bool, len(triples))
	var out []Term
	for _, t := range triples {
		if !seen[t.Subject] {
			seen[t.Subject] = true
			out = append(out, t.Subject)
		}
	}
	return out, nil
}

// Count returns the number of triples matching p.
func Count(ctx context.Context, s Store, p Pattern) (int, error) {
	triples, err := s.Match(ctx, p)
	if err != nil {
		return 0, err
	}
	return len(triples), nil
}
