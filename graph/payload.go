package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/pedigraph/vocabulary/genealogy"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "pedigree",
		Category:    "entity",
		Version:     "v1",
		Description: "Person, country or gender class from a converted family tree",
		Factory:     func() any { return &EntityPayload{} },
	})
	if err != nil {
		panic("register pedigree entity payload: " + err.Error())
	}
}

// EntityType identifies pedigree entity messages on the bus.
var EntityType = message.Type{Domain: "pedigree", Category: "entity", Version: "v1"}

// Kinds of pedigree entity.
const (
	KindPerson  = "person"
	KindCountry = "country"
	KindClass   = "class"
)

// EntityPayload carries every statement about one node of a pedigree graph.
// The ID is the node's IRI with the graph namespace removed, so a person
// keeps the pointer of its GEDCOM record.
type EntityPayload struct {
	EntityID_  string           `json:"id"`
	Kind       string           `json:"kind,omitempty"`
	RunID      string           `json:"run_id,omitempty"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (e *EntityPayload) EntityID() string          { return e.EntityID_ }
func (e *EntityPayload) Triples() []message.Triple { return e.TripleData }
func (e *EntityPayload) Schema() message.Type      { return EntityType }

// Validate rejects payloads without an ID or statements.
func (e *EntityPayload) Validate() error {
	if e.EntityID_ == "" {
		return errors.New("pedigree entity has no id")
	}
	if len(e.TripleData) == 0 {
		return errors.New("pedigree entity " + e.EntityID_ + " has no statements")
	}
	return nil
}

func (e *EntityPayload) MarshalJSON() ([]byte, error) {
	type plain EntityPayload
	return json.Marshal((*plain)(e))
}

func (e *EntityPayload) UnmarshalJSON(data []byte) error {
	type plain EntityPayload
	return json.Unmarshal(data, (*plain)(e))
}

// observe updates the kind from one of the entity's own statements. A
// subclass statement marks a gender class; otherwise rdf:type decides.
func (e *EntityPayload) observe(t Triple) {
	switch t.Predicate.Value {
	case genealogy.RDFSSubClassOf:
		e.Kind = KindClass
	case genealogy.RDFType:
		if e.Kind == KindClass {
			return
		}
		if t.Object.Value == genealogy.ClassCountry {
			e.Kind = KindCountry
		} else {
			e.Kind = KindPerson
		}
	}
}
