package pedigree

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/c360studio/pedigraph/graph"
	"github.com/c360studio/pedigraph/vocabulary/genealogy"
)

// LookupStatus is the outcome of a label lookup.
type LookupStatus int

const (
	// NotFound means no node carries the label.
	NotFound LookupStatus = iota
	// Found means exactly one node carries the label and it is typed as a
	// country exactly once.
	Found
	// Inconsistent means the label is shared by several nodes, or its only
	// holder is not a country.
	Inconsistent
)

func (s LookupStatus) String() string {
	switch s {
	case Found:
		return "found"
	case Inconsistent:
		return "inconsistent"
	default:
		return "not_found"
	}
}

// CountryLookup is the result of LookupCountry. ID is set only when Status
// is Found.
type CountryLookup struct {
	Status  LookupStatus
	ID      graph.Term
	Holders []graph.Term
}

// LookupCountry finds the country entity labelled name.
func (b *Builder) LookupCountry(ctx context.Context, name string) (CountryLookup, error) {
	holders, err := graph.Subjects(ctx, b.store, graph.Pattern{
		Predicate: graph.Ref(graph.IRI(genealogy.RDFSLabel)),
		Object:    graph.Ref(countryLabel(name)),
	})
	if err != nil {
		return CountryLookup{}, fmt.Errorf("lookup country %q: %w", name, err)
	}

	switch len(holders) {
	case 0:
		return CountryLookup{Status: NotFound}, nil
	case 1:
	default:
		return CountryLookup{Status: Inconsistent, Holders: holders}, nil
	}

	types, err := graph.Count(ctx, b.store, graph.Pattern{
		Subject:   &holders[0],
		Predicate: graph.Ref(graph.IRI(genealogy.RDFType)),
		Object:    graph.Ref(graph.IRI(genealogy.ClassCountry)),
	})
	if err != nil {
		return CountryLookup{}, fmt.Errorf("lookup country %q: %w", name, err)
	}
	if types != 1 {
		return CountryLookup{Status: Inconsistent, Holders: holders}, nil
	}
	return CountryLookup{Status: Found, ID: holders[0], Holders: holders}, nil
}

// GetOrCreateCountry returns the country entity labelled name, minting the
// next C-numbered entity when none is found or the existing label is
// inconsistent. It reports whether an entity was minted. An empty name
// yields the zero Term.
func (b *Builder) GetOrCreateCountry(ctx context.Context, name string) (graph.Term, bool, error) {
	if name == "" {
		return graph.Term{}, false, nil
	}

	res, err := b.LookupCountry(ctx, name)
	if err != nil {
		return graph.Term{}, false, err
	}
	switch res.Status {
	case Found:
		return res.ID, false, nil
	case Inconsistent:
		b.logger.Warn("Inconsistent country label, minting a new entity",
			"label", name, "holders", len(res.Holders))
		b.metrics.incInconsistent()
	}

	id := b.Entity(countryLocalID(len(b.countries) + 1))
	if err := b.add(ctx,
		graph.T(id, graph.IRI(genealogy.RDFType), graph.IRI(genealogy.ClassCountry)),
		graph.T(id, graph.IRI(genealogy.RDFSLabel), countryLabel(name)),
	); err != nil {
		return graph.Term{}, false, fmt.Errorf("create country %q: %w", name, err)
	}
	b.countries = append(b.countries, id)
	b.metrics.incCountries()
	b.logger.Debug("Created country", "id", id.Value, "label", name)
	return id, true, nil
}

func countryLabel(name string) graph.Term {
	return graph.TypedLiteral(name, genealogy.XSDString)
}

func countryLocalID(seq int) string {
	return fmt.Sprintf("C%03d", seq)
}

// countrySeq parses the sequence number of a minted country IRI.
func countrySeq(namespace string, t graph.Term) (int, bool) {
	local, ok := strings.CutPrefix(t.Value, namespace)
	if !ok || !t.IsIRI() || len(local) < 2 || local[0] != 'C' {
		return 0, false
	}
	n, err := strconv.Atoi(local[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
