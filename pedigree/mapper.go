package pedigree

import (
	"context"
	"fmt"
	"strings"

	"github.com/c360studio/pedigraph/graph"
	"github.com/c360studio/pedigraph/vocabulary/genealogy"
)

// genderClasses maps sex codes to gender class local names.
var genderClasses = map[string]string{
	"M": genealogy.LocalMan,
	"F": genealogy.LocalWoman,
}

// FullName joins the non-empty parts of a name with a space.
func FullName(given, family string) string {
	return strings.TrimSpace(given + " " + family)
}

// MapIndividual asserts the type, names and birthplace of rec and returns its
// entity. Missing data only omits statements; errors come from the store.
func (b *Builder) MapIndividual(ctx context.Context, rec Record) (graph.Term, error) {
	subject := b.Entity(LocalID(rec.Pointer()))

	class := graph.IRI(genealogy.ClassPerson)
	if local, ok := genderClasses[rec.Gender()]; ok {
		class = b.Entity(local)
	}
	if err := b.add(ctx, graph.T(subject, graph.IRI(genealogy.RDFType), class)); err != nil {
		return subject, fmt.Errorf("map %s: %w", rec.Pointer(), err)
	}

	given, family := rec.Name()
	given, family = strings.TrimSpace(given), strings.TrimSpace(family)
	names := []struct {
		prop  string
		value string
	}{
		{genealogy.PropGivenName, given},
		{genealogy.PropFamilyName, family},
		{genealogy.PropName, FullName(given, family)},
	}
	for _, n := range names {
		if n.value == "" {
			continue
		}
		lit := graph.TypedLiteral(n.value, genealogy.XSDString)
		if err := b.add(ctx, graph.T(subject, graph.IRI(n.prop), lit)); err != nil {
			return subject, fmt.Errorf("map %s: %w", rec.Pointer(), err)
		}
	}

	if err := b.mapBirthPlace(ctx, subject, rec); err != nil {
		return subject, fmt.Errorf("map %s: %w", rec.Pointer(), err)
	}

	b.metrics.incIndividuals()
	return subject, nil
}

func (b *Builder) mapBirthPlace(ctx context.Context, subject graph.Term, rec Record) error {
	if b.places == nil {
		return nil
	}
	place := rec.BirthPlace()
	country, ok := b.places.Resolve(place)
	if !ok {
		if place != "" {
			b.logger.Debug("Birthplace not resolved", "individual", rec.Pointer(), "place", place)
		}
		return nil
	}

	id, _, err := b.GetOrCreateCountry(ctx, country)
	if err != nil {
		return err
	}
	if id.IsZero() {
		return nil
	}
	return b.add(ctx, graph.T(subject, graph.IRI(genealogy.PropBirthPlace), id))
}
