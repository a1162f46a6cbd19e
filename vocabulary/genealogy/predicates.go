package genealogy

import "github.com/c360studio/semstreams/vocabulary"

// Type and label predicates.
const (
	// EntityType is the rdf:type of a person, country or class node.
	EntityType = "entity.rdf.type"

	// EntityLabel is the human-readable label of a country or class node.
	EntityLabel = "entity.rdfs.label"

	// ClassParent links a gender class to foaf:Person.
	ClassParent = "entity.rdfs.subclass_of"
)

// Person predicates.
const (
	PersonGivenName  = "person.name.given"
	PersonFamilyName = "person.name.family"

	// PersonFullName is "given family", or whichever part is present.
	PersonFullName = "person.name.full"

	// PersonBirthPlace links a person to a country entity.
	PersonBirthPlace = "person.birth.place"
)

// Kinship predicates.
const (
	KinshipParentOf = "kinship.parent_of"
	KinshipChildOf  = "kinship.child_of"
	KinshipSpouseOf = "kinship.spouse_of"
)

// predicateIRIs pairs each dotted predicate with its standard IRI.
var predicateIRIs = map[string]string{
	EntityType:       RDFType,
	EntityLabel:      RDFSLabel,
	ClassParent:      RDFSSubClassOf,
	PersonGivenName:  PropGivenName,
	PersonFamilyName: PropFamilyName,
	PersonFullName:   PropName,
	PersonBirthPlace: PropBirthPlace,
	KinshipParentOf:  PropParentOf,
	KinshipChildOf:   PropChildOf,
	KinshipSpouseOf:  PropSpouseOf,
}

var iriPredicates = func() map[string]string {
	m := make(map[string]string, len(predicateIRIs))
	for pred, iri := range predicateIRIs {
		m[iri] = pred
	}
	return m
}()

// PredicateForIRI returns the dotted predicate registered for iri, or false
// when the IRI is not part of this vocabulary.
func PredicateForIRI(iri string) (string, bool) {
	pred, ok := iriPredicates[iri]
	return pred, ok
}

// IRIForPredicate returns the standard IRI of a dotted predicate.
func IRIForPredicate(pred string) (string, bool) {
	iri, ok := predicateIRIs[pred]
	return iri, ok
}

func init() {
	vocabulary.Register(EntityType,
		vocabulary.WithDescription("Class of the entity (Man, Woman, foaf:Person, schema:Country)"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RDFType))

	vocabulary.Register(EntityLabel,
		vocabulary.WithDescription("Human-readable label"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFSLabel))

	vocabulary.Register(ClassParent,
		vocabulary.WithDescription("Superclass of a locally minted class"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RDFSSubClassOf))

	vocabulary.Register(PersonGivenName,
		vocabulary.WithDescription("Given name of an individual"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropGivenName))

	vocabulary.Register(PersonFamilyName,
		vocabulary.WithDescription("Family name of an individual"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropFamilyName))

	vocabulary.Register(PersonFullName,
		vocabulary.WithDescription("Full name: given and family joined by a space"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropName))

	vocabulary.Register(PersonBirthPlace,
		vocabulary.WithDescription("Country the individual was born in"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(PropBirthPlace))

	vocabulary.Register(KinshipParentOf,
		vocabulary.WithDescription("Subject is a parent of the object"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(PropParentOf))

	vocabulary.Register(KinshipChildOf,
		vocabulary.WithDescription("Subject is a child of the object"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(PropChildOf))

	vocabulary.Register(KinshipSpouseOf,
		vocabulary.WithDescription("Subject is a spouse of the object (one direction per family link)"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(PropSpouseOf))
}
