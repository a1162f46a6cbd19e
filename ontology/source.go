package ontology

import (
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/knakk/rdf"
)

// Source is one vocabulary document bound to a prefix.
type Source struct {
	Prefix string
	URL    string
}

// SourcesFromMap converts a prefix to URL map into sources sorted by prefix.
func SourcesFromMap(m map[string]string) []Source {
	out := make([]Source, 0, len(m))
	for prefix, u := range m {
		out = append(out, Source{Prefix: prefix, URL: u})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

// ValidateURL checks that raw is an absolute http, https or file URL.
func ValidateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch parsed.Scheme {
	case "http", "https":
		if parsed.Hostname() == "" {
			return fmt.Errorf("URL %q has no host", raw)
		}
	case "file":
		if parsed.Path == "" {
			return fmt.Errorf("URL %q has no path", raw)
		}
	default:
		return fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	return nil
}

// DetectFormat picks the RDF serialization from the response content type,
// then the document extension, then the first bytes of the body.
func DetectFormat(contentType, location string, head []byte) rdf.Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "rdf+xml"), strings.Contains(ct, "application/xml"), strings.Contains(ct, "text/xml"):
		return rdf.RDFXML
	case strings.Contains(ct, "turtle"):
		return rdf.Turtle
	case strings.Contains(ct, "n-triples"):
		return rdf.NTriples
	}

	if u, err := url.Parse(location); err == nil {
		switch strings.ToLower(path.Ext(u.Path)) {
		case ".rdf", ".owl", ".xml":
			return rdf.RDFXML
		case ".ttl":
			return rdf.Turtle
		case ".nt":
			return rdf.NTriples
		}
	}

	trimmed := strings.TrimSpace(string(head))
	if strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<rdf:RDF") {
		return rdf.RDFXML
	}
	return rdf.Turtle
}
