package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/c360studio/pedigraph/graph"
	"github.com/c360studio/pedigraph/vocabulary/genealogy"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// subjectGroup holds the statements of one subject, predicates in first-seen
// order.
type subjectGroup struct {
	subject    graph.Term
	predicates []graph.Term
	objects    map[graph.Term][]graph.Term
}

func groupBySubject(triples []graph.Triple) []*subjectGroup {
	var groups []*subjectGroup
	index := make(map[graph.Term]*subjectGroup)
	for _, t := range triples {
		g, ok := index[t.Subject]
		if !ok {
			g = &subjectGroup{subject: t.Subject, objects: make(map[graph.Term][]graph.Term)}
			index[t.Subject] = g
			groups = append(groups, g)
		}
		if _, seen := g.objects[t.Predicate]; !seen {
			g.predicates = append(g.predicates, t.Predicate)
		}
		g.objects[t.Predicate] = append(g.objects[t.Predicate], t.Object)
	}
	return groups
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	keys     []string
}

// NewTurtleWriter creates a Turtle writer using the given prefixes.
func NewTurtleWriter(prefixes map[string]string) *TurtleWriter {
	w := &TurtleWriter{prefixes: prefixes}
	for k := range prefixes {
		w.keys = append(w.keys, k)
	}
	// Longest namespace first so the most specific prefix wins.
	sort.Slice(w.keys, func(i, j int) bool {
		a, b := prefixes[w.keys[i]], prefixes[w.keys[j]]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return w.keys[i] < w.keys[j]
	})
	return w
}

// Write writes prefix declarations and one block per subject.
func (w *TurtleWriter) Write(out io.Writer, triples []graph.Triple) error {
	sorted := append([]string(nil), w.keys...)
	sort.Strings(sorted)
	for _, prefix := range sorted {
		if _, err := fmt.Fprintf(out, "@prefix %s: <%s> .\n", prefix, w.prefixes[prefix]); err != nil {
			return err
		}
	}

	for _, g := range groupBySubject(triples) {
		var sb strings.Builder
		sb.WriteString("\n")
		sb.WriteString(w.term(g.subject))
		sb.WriteString("\n")
		for i, p := range g.predicates {
			objs := make([]string, len(g.objects[p]))
			for j, o := range g.objects[p] {
				objs[j] = w.term(o)
			}
			pred := w.term(p)
			if p.Value == genealogy.RDFType {
				pred = "a"
			}
			terminator := " ;"
			if i == len(g.predicates)-1 {
				terminator = " ."
			}
			sb.WriteString(fmt.Sprintf("    %s %s%s\n", pred, strings.Join(objs, ", "), terminator))
		}
		if _, err := io.WriteString(out, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func (w *TurtleWriter) term(t graph.Term) string {
	switch t.Kind {
	case graph.KindIRI:
		return w.iri(t.Value)
	case graph.KindLiteral:
		s := `"` + graph.EscapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^" + w.iri(t.Datatype)
		}
		return s
	default:
		return t.String()
	}
}

func (w *TurtleWriter) iri(iri string) string {
	if name, ok := compact(w.keys, w.prefixes, iri); ok {
		return name
	}
	return "<" + iri + ">"
}

// compact shortens iri to prefix:local when local is a safe Turtle local
// name. keys must be ordered longest namespace first.
func compact(keys []string, prefixes map[string]string, iri string) (string, bool) {
	for _, k := range keys {
		ns := prefixes[k]
		if ns == "" {
			continue
		}
		local, ok := strings.CutPrefix(iri, ns)
		if ok && safeLocal(local) {
			return k + ":" + local, true
		}
	}
	return "", false
}

func safeLocal(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9', r == '-':
			if i == 0 && r == '-' {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// WriteNTriples writes one line per statement.
func WriteNTriples(out io.Writer, triples []graph.Triple) error {
	for _, t := range triples {
		if _, err := io.WriteString(out, t.String()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]string `json:"@context"`
	Graph   []JSONLDNode      `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string
	Type       []string
	Properties map[string][]any
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

// JSONLDWriter writes RDF in JSON-LD format.
type JSONLDWriter struct {
	prefixes map[string]string
	keys     []string
}

// NewJSONLDWriter creates a JSON-LD writer. Prefixes become the @context.
func NewJSONLDWriter(prefixes map[string]string) *JSONLDWriter {
	// The empty prefix is not a JSON-LD term, so entity IRIs stay absolute.
	p := make(map[string]string, len(prefixes))
	for k, v := range prefixes {
		if k != "" {
			p[k] = v
		}
	}
	return &JSONLDWriter{prefixes: p, keys: NewTurtleWriter(p).keys}
}

// Document builds the JSON-LD document for triples.
func (w *JSONLDWriter) Document(triples []graph.Triple) JSONLDDocument {
	doc := JSONLDDocument{Context: w.prefixes, Graph: make([]JSONLDNode, 0)}
	for _, g := range groupBySubject(triples) {
		node := JSONLDNode{ID: w.id(g.subject), Properties: make(map[string][]any)}
		for _, p := range g.predicates {
			if p.Value == genealogy.RDFType {
				for _, o := range g.objects[p] {
					node.Type = append(node.Type, w.id(o))
				}
				continue
			}
			key := w.id(p)
			for _, o := range g.objects[p] {
				node.Properties[key] = append(node.Properties[key], w.value(o))
			}
		}
		doc.Graph = append(doc.Graph, node)
	}
	return doc
}

// Write writes the document as indented JSON.
func (w *JSONLDWriter) Write(out io.Writer, triples []graph.Triple) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(w.Document(triples))
}

func (w *JSONLDWriter) id(t graph.Term) string {
	if t.Kind == graph.KindBlank {
		return "_:" + t.Value
	}
	if name, ok := compact(w.keys, w.prefixes, t.Value); ok {
		return name
	}
	return t.Value
}

func (w *JSONLDWriter) value(t graph.Term) any {
	if t.Kind != graph.KindLiteral {
		return map[string]string{"@id": w.id(t)}
	}
	v := map[string]string{"@value": t.Value}
	switch {
	case t.Lang != "":
		v["@language"] = t.Lang
	case t.Datatype != "":
		v["@type"] = w.id(graph.IRI(t.Datatype))
	}
	return v
}
