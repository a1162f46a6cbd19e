package pedigree

import (
	"context"
	"fmt"

	"github.com/c360studio/pedigraph/graph"
	"github.com/c360studio/pedigraph/vocabulary/genealogy"
)

// Edge kinds reported to metrics.
const (
	EdgeParentOf = "parent_of"
	EdgeChildOf  = "child_of"
	EdgeSpouseOf = "spouse_of"
)

// LinkRelationships asserts kinship edges between subject, the entity of
// rec, and the individuals src relates it to:
//
//	parent  rel:parentOf subject
//	spouse  rel:spouseOf subject
//	subject rel:parentOf child
//	child   rel:childOf  subject
//
// Related records that are not individuals are skipped. Related entities are
// derived from their pointers, so they need not be mapped yet.
func (b *Builder) LinkRelationships(ctx context.Context, src Source, rec Record, subject graph.Term) error {
	parentOf := graph.IRI(genealogy.PropParentOf)
	childOf := graph.IRI(genealogy.PropChildOf)
	spouseOf := graph.IRI(genealogy.PropSpouseOf)

	for _, parent := range individuals(src.Parents(rec)) {
		if err := b.link(ctx, EdgeParentOf, graph.T(b.related(parent), parentOf, subject)); err != nil {
			return err
		}
	}
	for _, spouse := range individuals(src.Spouses(rec)) {
		if err := b.link(ctx, EdgeSpouseOf, graph.T(b.related(spouse), spouseOf, subject)); err != nil {
			return err
		}
	}
	for _, child := range individuals(src.Children(rec)) {
		c := b.related(child)
		if err := b.link(ctx, EdgeParentOf, graph.T(subject, parentOf, c)); err != nil {
			return err
		}
		if err := b.link(ctx, EdgeChildOf, graph.T(c, childOf, subject)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) related(rec Record) graph.Term {
	return b.Entity(LocalID(rec.Pointer()))
}

func (b *Builder) link(ctx context.Context, kind string, t graph.Triple) error {
	added, err := b.store.Add(ctx, t)
	if err != nil {
		return fmt.Errorf("link %s: %w", kind, err)
	}
	if added {
		b.metrics.incEdge(kind)
	}
	return nil
}

func individuals(recs []Record) []Record {
	out := recs[:0:0]
	for _, r := range recs {
		if r != nil && r.IsIndividual() {
			out = append(out, r)
		}
	}
	return out
}
