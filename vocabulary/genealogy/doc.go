// Package genealogy provides the vocabulary used to describe pedigree graphs.
//
// Persons, names and classes come from FOAF, places and the birthplace link
// from schema.org, and kinship edges from the RELATIONSHIP vocabulary
// (http://purl.org/vocab/relationship/). Two classes are minted in the
// entity namespace, Man and Woman, each a subclass of foaf:Person.
//
// # Semstreams Integration
//
// Every predicate the converter asserts also has a dotted name registered in
// init() with vocabulary.Register(), carrying the standard IRI through
// vocabulary.WithIRI(). The dotted names are what published entity messages
// carry; the IRIs are what the RDF export writes.
//
//	person.name.given    → foaf:givenName
//	person.birth.place   → schema:birthPlace
//	kinship.parent_of    → rel:parentOf
//
// # Denylist
//
// DefaultDenylist holds schema.org nodes that the published schema declares
// both as a class and as an instance of a class. It is pinned to
// DenylistVersion and can be replaced from configuration.
package genealogy
