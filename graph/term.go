package graph

import (
	"fmt"
	"strings"
)

// TermKind distinguishes the three kinds of RDF term.
type TermKind uint8

const (
	KindIRI TermKind = iota + 1
	KindBlank
	KindLiteral
)

// String returns a short name for the kind.
func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is an RDF node: an IRI, a blank node, or a literal with an optional
// datatype IRI or language tag. Terms are comparable and can be used as map
// keys.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Blank returns a blank node term with the given label.
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// Literal returns a plain literal.
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// TypedLiteral returns a literal with a datatype IRI.
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: lang}
}

// IsZero reports whether t is the zero Term.
func (t Term) IsZero() bool {
	return t.Kind == 0
}

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool {
	return t.Kind == KindIRI
}

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool {
	return t.Kind == KindLiteral
}

// String renders t in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + EscapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return "<>"
	}
}

// Triple is a single subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// T is shorthand for constructing a Triple.
func T(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// String renders the triple as an N-Triples line without the trailing newline.
func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// Validate checks the positional constraints of RDF: subjects are IRIs or
// blank nodes and predicates are IRIs.
func (t Triple) Validate() error {
	switch t.Subject.Kind {
	case KindIRI, KindBlank:
	default:
		return fmt.Errorf("invalid subject %s", t.Subject)
	}
	if t.Predicate.Kind != KindIRI {
		return fmt.Errorf("invalid predicate %s", t.Predicate)
	}
	if t.Object.IsZero() {
		return fmt.Errorf("missing object")
	}
	return nil
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeLiteral escapes a literal's lexical form for Turtle and N-Triples.
func EscapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}
