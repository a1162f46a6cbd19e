package pedigree

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/pedigraph/gedcom"
	"github.com/c360studio/pedigraph/graph"
	"github.com/c360studio/pedigraph/place"
	"github.com/c360studio/pedigraph/vocabulary/genealogy"
)

const ns = "http://example.org/royals/"

type fakeRecord struct {
	ptr    string
	notInd bool
	given  string
	family string
	sex    string
	place  string
}

func (r *fakeRecord) Pointer() string              { return r.ptr }
func (r *fakeRecord) IsIndividual() bool           { return !r.notInd }
func (r *fakeRecord) Name() (given, family string) { return r.given, r.family }
func (r *fakeRecord) Gender() string               { return r.sex }
func (r *fakeRecord) BirthPlace() string           { return r.place }

type fakeSource struct {
	records  []Record
	parents  map[string][]Record
	spouses  map[string][]Record
	children map[string][]Record
}

func (s *fakeSource) Individuals() []Record      { return s.records }
func (s *fakeSource) Parents(r Record) []Record  { return s.parents[r.Pointer()] }
func (s *fakeSource) Spouses(r Record) []Record  { return s.spouses[r.Pointer()] }
func (s *fakeSource) Children(r Record) []Record { return s.children[r.Pointer()] }

type mapResolver map[string]string

func (m mapResolver) Resolve(text string) (string, bool) {
	c, ok := m[text]
	return c, ok
}

type fakeOntology struct {
	triples []graph.Triple
	err     error
	calls   int
}

func (o *fakeOntology) Load(ctx context.Context, store graph.Store) (map[string]string, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	for _, t := range o.triples {
		if _, err := store.Add(ctx, t); err != nil {
			return nil, err
		}
	}
	return map[string]string{"schema": "https://schema.org/"}, nil
}

func iri(local string) graph.Term { return graph.IRI(ns + local) }

func str(s string) graph.Term { return graph.TypedLiteral(s, genealogy.XSDString) }

func count(t *testing.T, s graph.Store, p graph.Pattern) int {
	t.Helper()
	n, err := graph.Count(context.Background(), s, p)
	require.NoError(t, err)
	return n
}

func has(t *testing.T, s graph.Store, subj, pred, obj graph.Term) bool {
	t.Helper()
	return count(t, s, graph.Pattern{Subject: &subj, Predicate: &pred, Object: &obj}) == 1
}

func newTestBuilder(opts ...Option) *Builder {
	return NewBuilder(graph.NewMemoryStore(), append([]Option{WithNamespace(ns)}, opts...)...)
}

func TestGetOrCreateCountrySequence(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder()

	names := []string{"Greece", "United Kingdom", "Greece", "France", "United Kingdom"}
	want := []string{"C001", "C002", "C001", "C003", "C002"}
	wantCreated := []bool{true, true, false, true, false}

	for i, name := range names {
		id, created, err := b.GetOrCreateCountry(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, iri(want[i]), id, name)
		assert.Equal(t, wantCreated[i], created, name)
	}
	assert.Equal(t, []graph.Term{iri("C001"), iri("C002"), iri("C003")}, b.Countries())

	store := b.Store()
	assert.True(t, has(t, store, iri("C002"), graph.IRI(genealogy.RDFType), graph.IRI(genealogy.ClassCountry)))
	assert.True(t, has(t, store, iri("C002"), graph.IRI(genealogy.RDFSLabel), str("United Kingdom")))
}

func TestGetOrCreateCountryEmpty(t *testing.T) {
	b := newTestBuilder()
	id, created, err := b.GetOrCreateCountry(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, id.IsZero())
	assert.False(t, created)
	assert.Empty(t, b.Countries())
}

func TestLookupCountry(t *testing.T) {
	ctx := context.Background()
	label := graph.IRI(genealogy.RDFSLabel)
	typ := graph.IRI(genealogy.RDFType)
	country := graph.IRI(genealogy.ClassCountry)

	tests := []struct {
		name   string
		seed   []graph.Triple
		status LookupStatus
	}{
		{
			name:   "no holder",
			status: NotFound,
		},
		{
			name: "single country holder",
			seed: []graph.Triple{
				graph.T(iri("X"), typ, country),
				graph.T(iri("X"), label, str("Greece")),
			},
			status: Found,
		},
		{
			name: "holder not a country",
			seed: []graph.Triple{
				graph.T(iri("X"), label, str("Greece")),
			},
			status: Inconsistent,
		},
		{
			name: "two holders",
			seed: []graph.Triple{
				graph.T(iri("X"), typ, country),
				graph.T(iri("X"), label, str("Greece")),
				graph.T(iri("Y"), typ, country),
				graph.T(iri("Y"), label, str("Greece")),
			},
			status: Inconsistent,
		},
		{
			name: "plain literal does not match",
			seed: []graph.Triple{
				graph.T(iri("X"), typ, country),
				graph.T(iri("X"), label, graph.Literal("Greece")),
			},
			status: NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder()
			for _, tr := range tt.seed {
				_, err := b.Store().Add(ctx, tr)
				require.NoError(t, err)
			}
			res, err := b.LookupCountry(ctx, "Greece")
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.Status)
			if tt.status == Found {
				assert.Equal(t, iri("X"), res.ID)
			} else {
				assert.True(t, res.ID.IsZero())
			}
		})
	}
}

func TestGetOrCreateCountryInconsistentMintsNew(t *testing.T) {
	ctx := context.Background()
	metrics := NewMetrics()
	b := newTestBuilder(WithMetrics(metrics))

	_, err := b.Store().Add(ctx, graph.T(iri("Stray"), graph.IRI(genealogy.RDFSLabel), str("Greece")))
	require.NoError(t, err)

	id, created, err := b.GetOrCreateCountry(ctx, "Greece")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, iri("C001"), id)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.inconsistent))

	// The label now has two holders, so every call mints again.
	id, created, err = b.GetOrCreateCountry(ctx, "Greece")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, iri("C002"), id)
}

func TestMapIndividualNames(t *testing.T) {
	tests := []struct {
		name       string
		given      string
		family     string
		wantGiven  string
		wantFamily string
		full       string
	}{
		{"both", "Jane", "Doe", "Jane", "Doe", "Jane Doe"},
		{"given only", "Jane", "", "Jane", "", "Jane"},
		{"family only", "", "Doe", "", "Doe", "Doe"},
		{"neither", "", "", "", "", ""},
		{"blank given", "  ", "Doe", "", "Doe", "Doe"},
		{"padded", " Jane ", "Doe  ", "Jane", "Doe", "Jane Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder()
			subject, err := b.MapIndividual(context.Background(), &fakeRecord{ptr: "@I7@", given: tt.given, family: tt.family, sex: "F"})
			require.NoError(t, err)
			assert.Equal(t, iri("I7"), subject)

			s := b.Store()
			checks := []struct {
				prop  string
				value string
			}{
				{genealogy.PropGivenName, tt.wantGiven},
				{genealogy.PropFamilyName, tt.wantFamily},
				{genealogy.PropName, tt.full},
			}
			for _, c := range checks {
				n := count(t, s, graph.Pattern{Subject: &subject, Predicate: graph.Ref(graph.IRI(c.prop))})
				if c.value == "" {
					assert.Zero(t, n, c.prop)
				} else {
					assert.True(t, has(t, s, subject, graph.IRI(c.prop), str(c.value)), c.prop)
				}
			}
		})
	}
}

func TestMapIndividualGender(t *testing.T) {
	tests := []struct {
		sex  string
		want graph.Term
	}{
		{"M", iri(genealogy.LocalMan)},
		{"F", iri(genealogy.LocalWoman)},
		{"U", graph.IRI(genealogy.ClassPerson)},
		{"", graph.IRI(genealogy.ClassPerson)},
	}
	for _, tt := range tests {
		t.Run("sex "+tt.sex, func(t *testing.T) {
			b := newTestBuilder()
			subject, err := b.MapIndividual(context.Background(), &fakeRecord{ptr: "@I1@", sex: tt.sex})
			require.NoError(t, err)

			types, err := b.Store().Match(context.Background(), graph.Pattern{
				Subject:   &subject,
				Predicate: graph.Ref(graph.IRI(genealogy.RDFType)),
			})
			require.NoError(t, err)
			require.Len(t, types, 1)
			assert.Equal(t, tt.want, types[0].Object)
		})
	}
}

func TestMapIndividualBirthPlace(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(WithPlaceResolver(mapResolver{
		"Athens, Greece":   "Greece",
		"Corfu, Greece":    "Greece",
		"Paris, France":    "France",
		"Somewhere, Empty": "",
	}))

	recs := []*fakeRecord{
		{ptr: "@I1@", place: "Athens, Greece"},
		{ptr: "@I2@", place: "Paris, France"},
		{ptr: "@I3@", place: "Corfu, Greece"},
		{ptr: "@I4@", place: "Atlantis"},
		{ptr: "@I5@", place: "Somewhere, Empty"},
		{ptr: "@I6@"},
	}
	for _, r := range recs {
		_, err := b.MapIndividual(ctx, r)
		require.NoError(t, err)
	}

	bp := graph.IRI(genealogy.PropBirthPlace)
	assert.True(t, has(t, b.Store(), iri("I1"), bp, iri("C001")))
	assert.True(t, has(t, b.Store(), iri("I2"), bp, iri("C002")))
	assert.True(t, has(t, b.Store(), iri("I3"), bp, iri("C001")))
	assert.Equal(t, 3, count(t, b.Store(), graph.Pattern{Predicate: &bp}))
	assert.Len(t, b.Countries(), 2)
}

func TestLinkRelationshipsOrderIndependent(t *testing.T) {
	parent := &fakeRecord{ptr: "@P@"}
	child := &fakeRecord{ptr: "@C@"}
	note := &fakeRecord{ptr: "@N@", notInd: true}

	src := &fakeSource{
		parents:  map[string][]Record{"@C@": {parent, note}},
		children: map[string][]Record{"@P@": {child, note}},
	}

	orders := map[string][]Record{
		"parent first": {parent, child},
		"child first":  {child, parent},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			b := newTestBuilder()
			src.records = order
			_, err := b.Load(context.Background(), src)
			require.NoError(t, err)

			s := b.Store()
			parentOf := graph.IRI(genealogy.PropParentOf)
			childOf := graph.IRI(genealogy.PropChildOf)
			assert.True(t, has(t, s, iri("P"), parentOf, iri("C")))
			assert.True(t, has(t, s, iri("C"), childOf, iri("P")))
			assert.Equal(t, 1, count(t, s, graph.Pattern{Predicate: &parentOf}))
			assert.Equal(t, 1, count(t, s, graph.Pattern{Predicate: &childOf}))
			assert.Zero(t, count(t, s, graph.Pattern{Object: graph.Ref(iri("N"))}))
			assert.Zero(t, count(t, s, graph.Pattern{Subject: graph.Ref(iri("N"))}))
		})
	}
}

func TestLinkRelationshipsSpouseOneDirection(t *testing.T) {
	a := &fakeRecord{ptr: "@A@"}
	b2 := &fakeRecord{ptr: "@B@"}
	src := &fakeSource{spouses: map[string][]Record{"@A@": {b2}, "@B@": {a}}}

	b := newTestBuilder()
	err := b.LinkRelationships(context.Background(), src, a, iri("A"))
	require.NoError(t, err)

	spouseOf := graph.IRI(genealogy.PropSpouseOf)
	assert.True(t, has(t, b.Store(), iri("B"), spouseOf, iri("A")))
	assert.False(t, has(t, b.Store(), iri("A"), spouseOf, iri("B")))
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	bad := "https://schema.org/Bad"
	onto := &fakeOntology{triples: []graph.Triple{
		graph.T(graph.IRI(bad), graph.IRI(genealogy.RDFType), graph.IRI(genealogy.OWL+"Class")),
		graph.T(graph.IRI("https://schema.org/Other"), graph.IRI(genealogy.RDFType), graph.IRI(bad)),
		graph.T(graph.IRI("https://schema.org/Good"), graph.IRI(genealogy.RDFSLabel), graph.Literal("good")),
	}}
	metrics := NewMetrics()
	b := newTestBuilder(WithOntologyLoader(onto), WithDenylist([]string{bad}), WithMetrics(metrics))

	require.NoError(t, b.Bootstrap(ctx))
	require.NoError(t, b.Bootstrap(ctx))
	assert.Equal(t, 1, onto.calls)
	assert.Equal(t, map[string]string{"schema": "https://schema.org/"}, b.Namespaces())

	s := b.Store()
	subClassOf := graph.IRI(genealogy.RDFSSubClassOf)
	assert.Equal(t, 2, count(t, s, graph.Pattern{Predicate: &subClassOf}))
	assert.True(t, has(t, s, iri("Man"), subClassOf, graph.IRI(genealogy.ClassPerson)))
	assert.True(t, has(t, s, iri("Woman"), graph.IRI(genealogy.RDFSLabel), str("Woman")))

	assert.Zero(t, count(t, s, graph.Pattern{Subject: graph.Ref(graph.IRI(bad))}))
	assert.Zero(t, count(t, s, graph.Pattern{Object: graph.Ref(graph.IRI(bad))}))
	assert.Equal(t, 1, count(t, s, graph.Pattern{Subject: graph.Ref(graph.IRI("https://schema.org/Good"))}))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.removed))
}

func TestBootstrapOntologyFailure(t *testing.T) {
	errFetch := errors.New("fetch failed")
	onto := &fakeOntology{err: errFetch}
	b := newTestBuilder(WithOntologyLoader(onto))

	_, err := b.Load(context.Background(), &fakeSource{records: []Record{&fakeRecord{ptr: "@I1@"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, errFetch)

	n, err := b.Store().Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	// Not marked bootstrapped, so the next call retries.
	require.Error(t, b.Bootstrap(context.Background()))
	assert.Equal(t, 2, onto.calls)
}

func TestBootstrapResumesLedger(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	first := NewBuilder(store, WithNamespace(ns))
	require.NoError(t, first.Bootstrap(ctx))
	_, _, err := first.GetOrCreateCountry(ctx, "Greece")
	require.NoError(t, err)

	second := NewBuilder(store, WithNamespace(ns))
	require.NoError(t, second.Bootstrap(ctx))
	id, created, err := second.GetOrCreateCountry(ctx, "France")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, iri("C002"), id)

	id, created, err = second.GetOrCreateCountry(ctx, "Greece")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, iri("C001"), id)
}

func TestLoadGEDCOM(t *testing.T) {
	doc, err := gedcom.ParseFile("../gedcom/testdata/family.ged")
	require.NoError(t, err)

	metrics := NewMetrics()
	b := newTestBuilder(WithMetrics(metrics), WithPlaceResolver(mapResolver{
		"Mayfair, London, England": "United Kingdom",
		"Mon Repos, Corfu, Greece": "Greece",
	}))
	stats, err := b.Load(context.Background(), FromGEDCOM(doc))
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Individuals)
	assert.Equal(t, 2, stats.Countries)

	s := b.Store()
	total, err := s.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, total, stats.Triples)

	parentOf := graph.IRI(genealogy.PropParentOf)
	childOf := graph.IRI(genealogy.PropChildOf)
	spouseOf := graph.IRI(genealogy.PropSpouseOf)
	assert.Equal(t, 4, count(t, s, graph.Pattern{Predicate: &parentOf}))
	assert.Equal(t, 4, count(t, s, graph.Pattern{Predicate: &childOf}))
	assert.Equal(t, 4, count(t, s, graph.Pattern{Predicate: &spouseOf}))

	assert.True(t, has(t, s, iri("I4"), parentOf, iri("I1")))
	assert.True(t, has(t, s, iri("I1"), childOf, iri("I5")))
	assert.True(t, has(t, s, iri("I2"), spouseOf, iri("I1")))
	assert.True(t, has(t, s, iri("I1"), graph.IRI(genealogy.PropBirthPlace), iri("C001")))
	assert.True(t, has(t, s, iri("I2"), graph.IRI(genealogy.PropName), str("Philip Mountbatten")))
	assert.True(t, has(t, s, iri("I5"), graph.IRI(genealogy.PropName), str("Bowes-Lyon")))
	assert.Zero(t, count(t, s, graph.Pattern{Object: graph.Ref(iri("N1"))}))

	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.individuals))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.countries))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.edges.WithLabelValues(EdgeSpouseOf)))
	assert.Equal(t, float64(total), testutil.ToFloat64(metrics.triples))
}

func TestLoadSingleIndividualEndToEnd(t *testing.T) {
	resolver, err := place.NewDefaultResolver([]place.Entry{{Name: "Ruritania"}})
	require.NoError(t, err)

	b := newTestBuilder(WithPlaceResolver(resolver))
	jane := &fakeRecord{ptr: "@I1@", given: "Jane", family: "Doe", sex: "F", place: "Anytown, Ruritania"}
	stats, err := b.Load(context.Background(), &fakeSource{records: []Record{jane}})
	require.NoError(t, err)
	assert.Equal(t, Stats{Individuals: 1, Countries: 1, Triples: 11}, stats)

	s := b.Store()
	jd := iri("I1")
	assert.True(t, has(t, s, jd, graph.IRI(genealogy.RDFType), iri(genealogy.LocalWoman)))
	assert.True(t, has(t, s, jd, graph.IRI(genealogy.PropGivenName), str("Jane")))
	assert.True(t, has(t, s, jd, graph.IRI(genealogy.PropFamilyName), str("Doe")))
	assert.True(t, has(t, s, jd, graph.IRI(genealogy.PropName), str("Jane Doe")))
	assert.True(t, has(t, s, iri("C001"), graph.IRI(genealogy.RDFSLabel), str("Ruritania")))
	assert.True(t, has(t, s, iri("C001"), graph.IRI(genealogy.RDFType), graph.IRI(genealogy.ClassCountry)))
	assert.True(t, has(t, s, jd, graph.IRI(genealogy.PropBirthPlace), iri("C001")))

	for _, p := range []string{genealogy.PropParentOf, genealogy.PropChildOf, genealogy.PropSpouseOf} {
		assert.Zero(t, count(t, s, graph.Pattern{Predicate: graph.Ref(graph.IRI(p))}), p)
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := newTestBuilder()
	require.NoError(t, b.Bootstrap(ctx))
	cancel()

	_, err := b.Load(ctx, &fakeSource{records: []Record{&fakeRecord{ptr: "@I1@"}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalIDAndFullName(t *testing.T) {
	assert.Equal(t, "I12", LocalID("@I12@"))
	assert.Equal(t, "I12", LocalID("I12"))
	assert.Equal(t, "Jane Doe", FullName("Jane", "Doe"))
	assert.Equal(t, "Doe", FullName("", "Doe"))
	assert.Equal(t, "", FullName("", ""))
}
