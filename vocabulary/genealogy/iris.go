package genealogy

// DefaultEntityNamespace is the base IRI for persons, countries and the
// gender classes when no base IRI is configured.
const DefaultEntityNamespace = "https://pedigraph.dev/entity/"

// Standard namespaces.
const (
	RDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS   = "http://www.w3.org/2000/01/rdf-schema#"
	XSD    = "http://www.w3.org/2001/XMLSchema#"
	OWL    = "http://www.w3.org/2002/07/owl#"
	FOAF   = "http://xmlns.com/foaf/0.1/"
	Schema = "https://schema.org/"
	Rel    = "http://purl.org/vocab/relationship/"
)

// RDF and RDFS terms.
const (
	RDFType        = RDF + "type"
	RDFSSubClassOf = RDFS + "subClassOf"
	RDFSLabel      = RDFS + "label"
	XSDString      = XSD + "string"
)

// Class IRIs.
const (
	// ClassPerson is the base class for every individual.
	ClassPerson = FOAF + "Person"

	// ClassCountry types deduplicated birthplace countries.
	ClassCountry = Schema + "Country"
)

// Gender class local names, resolved against the entity namespace.
const (
	LocalMan   = "Man"
	LocalWoman = "Woman"
)

// Property IRIs.
const (
	PropGivenName  = FOAF + "givenName"
	PropFamilyName = FOAF + "familyName"
	PropName       = FOAF + "name"
	PropBirthPlace = Schema + "birthPlace"

	// PropParentOf points from a parent to a child.
	PropParentOf = Rel + "parentOf"

	// PropChildOf points from a child to a parent.
	PropChildOf = Rel + "childOf"

	// PropSpouseOf points from a spouse to the individual being linked.
	// It is not mirrored.
	PropSpouseOf = Rel + "spouseOf"
)

// Prefixes returns the prefix bindings used by the export writers. The entity
// namespace is bound to the empty prefix.
func Prefixes(entityNamespace string) map[string]string {
	if entityNamespace == "" {
		entityNamespace = DefaultEntityNamespace
	}
	return map[string]string{
		"":       entityNamespace,
		"rdf":    RDF,
		"rdfs":   RDFS,
		"xsd":    XSD,
		"owl":    OWL,
		"foaf":   FOAF,
		"schema": Schema,
		"rel":    Rel,
	}
}

// DefaultOntologySources maps vocabulary prefixes to the documents that
// define them.
func DefaultOntologySources() map[string]string {
	return map[string]string{
		"foaf":   "http://xmlns.com/foaf/spec/index.rdf",
		"schema": "https://schema.org/version/latest/schemaorg-current-https.rdf",
		"rel":    "https://vocab.org/relationship/rel-vocab-20100607.rdf",
	}
}
