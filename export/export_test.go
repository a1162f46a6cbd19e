package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/pedigraph/graph"
	"github.com/c360studio/pedigraph/vocabulary/genealogy"
)

const ns = "http://example.org/royals/"

func sampleStore(t *testing.T) graph.Store {
	t.Helper()
	s := graph.NewMemoryStore()
	for _, tr := range []graph.Triple{
		graph.T(graph.IRI(ns+"I1"), graph.IRI(genealogy.RDFType), graph.IRI(ns+"Woman")),
		graph.T(graph.IRI(ns+"I1"), graph.IRI(genealogy.PropName), graph.TypedLiteral(`Jane "JD" Doe`, genealogy.XSDString)),
		graph.T(graph.IRI(ns+"I1"), graph.IRI(genealogy.PropBirthPlace), graph.IRI(ns+"C001")),
		graph.T(graph.IRI(ns+"C001"), graph.IRI(genealogy.RDFSLabel), graph.TypedLiteral("Ruritania", genealogy.XSDString)),
		graph.T(graph.IRI(ns+"C001"), graph.IRI(genealogy.RDFSLabel), graph.LangLiteral("Ruritanie", "fr")),
		graph.T(graph.IRI(genealogy.FOAF+"Person"), graph.IRI(genealogy.RDFSLabel), graph.Literal("Person")),
	} {
		_, err := s.Add(context.Background(), tr)
		require.NoError(t, err)
	}
	return s
}

func export(t *testing.T, e *Exporter, format Format) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, e.Export(context.Background(), &buf, sampleStore(t), format))
	return buf.String()
}

func TestExportTurtle(t *testing.T) {
	e := NewExporter(ProfileFull, ns, genealogy.Prefixes(ns))
	out := export(t, e, FormatTurtle)

	assert.Contains(t, out, "@prefix : <"+ns+"> .\n")
	assert.Contains(t, out, "@prefix foaf: <http://xmlns.com/foaf/0.1/> .\n")
	assert.Contains(t, out, ":I1\n    a :Woman ;\n")
	assert.Contains(t, out, `    foaf:name "Jane \"JD\" Doe"^^xsd:string ;`)
	assert.Contains(t, out, "    schema:birthPlace :C001 .\n")
	assert.Contains(t, out, `    rdfs:label "Ruritania"^^xsd:string, "Ruritanie"@fr .`)
	assert.Contains(t, out, "foaf:Person\n")

	// Subjects appear in first-seen order.
	assert.Less(t, strings.Index(out, ":I1\n"), strings.Index(out, ":C001\n"))
}

func TestExportTurtleUnknownNamespace(t *testing.T) {
	e := NewExporter(ProfileFull, ns, map[string]string{"xsd": genealogy.XSD})
	out := export(t, e, FormatTurtle)
	assert.Contains(t, out, "<"+ns+"I1>\n    a <"+ns+"Woman> ;")
}

func TestExportNTriples(t *testing.T) {
	e := NewExporter(ProfileFull, ns, nil)
	out := export(t, e, FormatNTriples)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "<"+ns+"I1> <"+genealogy.RDFType+"> <"+ns+"Woman> .", lines[0])
	assert.Equal(t, `<`+ns+`C001> <`+genealogy.RDFSLabel+`> "Ruritanie"@fr .`, lines[4])
}

func TestExportDataProfile(t *testing.T) {
	e := NewExporter(ProfileData, ns, nil)
	out := export(t, e, FormatNTriples)
	assert.Equal(t, 5, strings.Count(out, "\n"))
	assert.NotContains(t, out, "foaf/0.1/Person>")
}

func TestExportJSONLD(t *testing.T) {
	e := NewExporter(ProfileFull, ns, genealogy.Prefixes(ns))
	out := export(t, e, FormatJSONLD)

	var doc struct {
		Context map[string]string `json:"@context"`
		Graph   []map[string]any  `json:"@graph"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, genealogy.FOAF, doc.Context["foaf"])
	_, hasEmpty := doc.Context[""]
	assert.False(t, hasEmpty)

	require.Len(t, doc.Graph, 3)
	jane := doc.Graph[0]
	assert.Equal(t, ns+"I1", jane["@id"])
	assert.Equal(t, []any{ns + "Woman"}, jane["@type"])
	assert.Equal(t, []any{map[string]any{"@value": `Jane "JD" Doe`, "@type": "xsd:string"}}, jane["foaf:name"])
	assert.Equal(t, []any{map[string]any{"@id": ns + "C001"}}, jane["schema:birthPlace"])

	assert.Equal(t, "foaf:Person", doc.Graph[2]["@id"])
}

func TestExportUnsupportedFormat(t *testing.T) {
	e := NewExporter(ProfileFull, ns, nil)
	err := e.Export(context.Background(), &bytes.Buffer{}, sampleStore(t), Format("rdfxml"))
	assert.Error(t, err)
}

func TestExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "royals.ttl")
	e := NewExporter(ProfileFull, ns, genealogy.Prefixes(ns))
	require.NoError(t, e.ExportFile(context.Background(), path, sampleStore(t), FormatForPath(path)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "@prefix")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"out.ttl":    FormatTurtle,
		"out.nt":     FormatNTriples,
		"out.jsonld": FormatJSONLD,
		"out.txt":    FormatTurtle,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatForPath(path), path)
	}
	info, ok := GetFormatInfo(FormatJSONLD)
	require.True(t, ok)
	assert.Equal(t, "application/ld+json", info.MIMEType)
}
