package pedigree

import (
	"strings"

	"github.com/c360studio/pedigraph/gedcom"
)

// Record is one parsed source record. Only records for which IsIndividual
// is true are mapped to persons.
type Record interface {
	Pointer() string
	IsIndividual() bool
	Name() (given, family string)
	Gender() string
	BirthPlace() string
}

// Source exposes the records of a parsed file and the traversal helpers the
// linker walks. Related records may include non-individuals.
type Source interface {
	Individuals() []Record
	Parents(Record) []Record
	Spouses(Record) []Record
	Children(Record) []Record
}

// LocalID derives an entity identifier from an external pointer by stripping
// the "@" delimiters.
func LocalID(pointer string) string {
	return strings.Trim(pointer, "@")
}

type gedcomRecord struct {
	el *gedcom.Element
}

func (r gedcomRecord) Pointer() string              { return r.el.Pointer }
func (r gedcomRecord) IsIndividual() bool           { return r.el.IsIndividual() }
func (r gedcomRecord) Name() (given, family string) { return r.el.Name() }
func (r gedcomRecord) Gender() string               { return r.el.Gender() }
func (r gedcomRecord) BirthPlace() string           { return r.el.BirthPlace() }

type gedcomSource struct {
	doc *gedcom.Document
}

// FromGEDCOM adapts a parsed GEDCOM document to a Source.
func FromGEDCOM(doc *gedcom.Document) Source {
	return gedcomSource{doc: doc}
}

func (s gedcomSource) Individuals() []Record {
	return wrap(s.doc.Individuals())
}

func (s gedcomSource) Parents(r Record) []Record {
	return wrap(s.doc.Parents(element(r)))
}

func (s gedcomSource) Spouses(r Record) []Record {
	return wrap(s.doc.Spouses(element(r)))
}

func (s gedcomSource) Children(r Record) []Record {
	return wrap(s.doc.Children(element(r)))
}

func element(r Record) *gedcom.Element {
	if g, ok := r.(gedcomRecord); ok {
		return g.el
	}
	return nil
}

func wrap(els []*gedcom.Element) []Record {
	out := make([]Record, len(els))
	for i, el := range els {
		out[i] = gedcomRecord{el: el}
	}
	return out
}
