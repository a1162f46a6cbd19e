// Package pedigree turns parsed genealogical records into an RDF graph.
//
// A Builder owns the ingestion pass over one graph.Store. Bootstrap seeds the
// gender classes and prunes conflicting vocabulary nodes; MapIndividual and
// LinkRelationships then add one person and its kinship edges at a time.
// Countries reached through birthplaces are deduplicated by label.
//
// A Builder assumes it is the only writer to its store and is not safe for
// concurrent use.
package pedigree

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/pedigraph/graph"
	"github.com/c360studio/pedigraph/vocabulary/genealogy"
)

// PlaceResolver maps a free-text place to a country name.
type PlaceResolver interface {
	Resolve(text string) (country string, ok bool)
}

// OntologyLoader adds external vocabulary statements to a store and returns
// the prefix bindings it loaded.
type OntologyLoader interface {
	Load(ctx context.Context, store graph.Store) (map[string]string, error)
}

// DefaultProgressInterval is how many individuals are mapped between
// progress log lines.
const DefaultProgressInterval = 100

// Builder writes persons, countries and kinship edges into a store.
type Builder struct {
	store     graph.Store
	namespace string
	places    PlaceResolver
	ontology  OntologyLoader
	denylist  []string
	logger    *slog.Logger
	metrics   *Metrics
	progress  int

	// countries is the ledger of minted country entities in creation order.
	countries    []graph.Term
	bootstrapped bool
	namespaces   map[string]string
}

// Option configures a Builder.
type Option func(*Builder)

// WithNamespace sets the base IRI for minted entities.
func WithNamespace(ns string) Option {
	return func(b *Builder) {
		if ns != "" {
			b.namespace = ns
		}
	}
}

// WithPlaceResolver sets the birthplace resolver. Without one, no birthplace
// statements are asserted.
func WithPlaceResolver(r PlaceResolver) Option {
	return func(b *Builder) { b.places = r }
}

// WithOntologyLoader sets the loader run by Bootstrap.
func WithOntologyLoader(l OntologyLoader) Option {
	return func(b *Builder) { b.ontology = l }
}

// WithDenylist replaces the vocabulary nodes removed by Bootstrap.
func WithDenylist(iris []string) Option {
	return func(b *Builder) { b.denylist = iris }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics records builder activity in m.
func WithMetrics(m *Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

// WithProgressInterval sets how often Load logs progress. Zero disables it.
func WithProgressInterval(n int) Option {
	return func(b *Builder) { b.progress = n }
}

// NewBuilder returns a Builder writing into store.
func NewBuilder(store graph.Store, opts ...Option) *Builder {
	b := &Builder{
		store:     store,
		namespace: genealogy.DefaultEntityNamespace,
		denylist:  genealogy.DefaultDenylist(),
		logger:    slog.Default(),
		progress:  DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Store returns the store the builder writes into.
func (b *Builder) Store() graph.Store {
	return b.store
}

// Namespace returns the base IRI of minted entities.
func (b *Builder) Namespace() string {
	return b.namespace
}

// Namespaces returns the prefix bindings loaded by Bootstrap.
func (b *Builder) Namespaces() map[string]string {
	return b.namespaces
}

// Countries returns the minted country entities in creation order.
func (b *Builder) Countries() []graph.Term {
	return append([]graph.Term(nil), b.countries...)
}

// Entity returns the IRI of a local identifier in the builder's namespace.
func (b *Builder) Entity(local string) graph.Term {
	return graph.IRI(b.namespace + local)
}

// Bootstrap loads the ontology, declares the Man and Woman classes and
// removes denylisted vocabulary nodes. It runs once; later calls are no-ops.
// An ontology load failure is returned and leaves the builder
// un-bootstrapped.
func (b *Builder) Bootstrap(ctx context.Context) error {
	if b.bootstrapped {
		return nil
	}

	if b.ontology != nil {
		loaded, err := b.ontology.Load(ctx, b.store)
		if err != nil {
			return fmt.Errorf("load ontology: %w", err)
		}
		b.namespaces = loaded
		b.logger.Info("Loaded namespaces", "prefixes", sortedKeys(loaded))
	}

	if err := b.declareGenderClasses(ctx); err != nil {
		return err
	}

	before, err := b.store.Len(ctx)
	if err != nil {
		return fmt.Errorf("count triples: %w", err)
	}
	removed, err := b.removeDenylisted(ctx)
	if err != nil {
		return err
	}
	after, err := b.store.Len(ctx)
	if err != nil {
		return fmt.Errorf("count triples: %w", err)
	}
	b.logger.Info("Removed denylisted vocabulary nodes",
		"triples_before", before, "triples_after", after, "removed", removed)
	b.metrics.addRemoved(removed)

	if err := b.resumeLedger(ctx); err != nil {
		return err
	}

	b.bootstrapped = true
	return nil
}

func (b *Builder) declareGenderClasses(ctx context.Context) error {
	person := graph.IRI(genealogy.ClassPerson)
	for _, local := range []string{genealogy.LocalMan, genealogy.LocalWoman} {
		class := b.Entity(local)
		if err := b.add(ctx,
			graph.T(class, graph.IRI(genealogy.RDFSSubClassOf), person),
			graph.T(class, graph.IRI(genealogy.RDFSLabel), graph.TypedLiteral(local, genealogy.XSDString)),
		); err != nil {
			return fmt.Errorf("declare %s class: %w", local, err)
		}
	}
	return nil
}

func (b *Builder) removeDenylisted(ctx context.Context) (int, error) {
	total := 0
	for _, iri := range b.denylist {
		node := graph.IRI(iri)
		for _, p := range []graph.Pattern{{Subject: &node}, {Object: &node}} {
			n, err := b.store.Remove(ctx, p)
			if err != nil {
				return total, fmt.Errorf("remove %s: %w", iri, err)
			}
			total += n
		}
	}
	return total, nil
}

// resumeLedger seeds the country ledger from countries already present in a
// persistent store, so minted identifiers continue the existing sequence.
func (b *Builder) resumeLedger(ctx context.Context) error {
	holders, err := graph.Subjects(ctx, b.store, graph.Pattern{
		Predicate: graph.Ref(graph.IRI(genealogy.RDFType)),
		Object:    graph.Ref(graph.IRI(genealogy.ClassCountry)),
	})
	if err != nil {
		return fmt.Errorf("scan countries: %w", err)
	}
	for _, h := range holders {
		if _, ok := countrySeq(b.namespace, h); ok {
			b.countries = append(b.countries, h)
		}
	}
	if len(b.countries) > 0 {
		b.logger.Info("Resumed country ledger", "countries", len(b.countries))
	}
	return nil
}

func (b *Builder) add(ctx context.Context, triples ...graph.Triple) error {
	for _, t := range triples {
		if _, err := b.store.Add(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
