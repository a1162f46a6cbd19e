// Package export serializes a graph store as Turtle, N-Triples or JSON-LD.
package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360studio/pedigraph/graph"
)

// Profile selects which statements are exported.
type Profile string

const (
	// ProfileFull exports every statement, including imported vocabulary.
	ProfileFull Profile = "full"

	// ProfileData exports only statements about entities in the entity
	// namespace.
	ProfileData Profile = "data"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// Exporter writes the contents of a store.
type Exporter struct {
	profile   Profile
	namespace string
	prefixes  map[string]string
}

// NewExporter creates an exporter. namespace is the entity namespace used by
// ProfileData; prefixes are used for compact IRIs in Turtle and JSON-LD.
func NewExporter(profile Profile, namespace string, prefixes map[string]string) *Exporter {
	if profile == "" {
		profile = ProfileFull
	}
	p := make(map[string]string, len(prefixes))
	for k, v := range prefixes {
		p[k] = v
	}
	return &Exporter{profile: profile, namespace: namespace, prefixes: p}
}

// SetPrefix binds a namespace prefix.
func (e *Exporter) SetPrefix(prefix, iri string) {
	e.prefixes[prefix] = iri
}

// Triples returns the statements selected by the profile, in store order.
func (e *Exporter) Triples(ctx context.Context, store graph.Store) ([]graph.Triple, error) {
	all, err := store.Match(ctx, graph.Pattern{})
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	if e.profile != ProfileData || e.namespace == "" {
		return all, nil
	}
	out := all[:0:0]
	for _, t := range all {
		if t.Subject.IsIRI() && strings.HasPrefix(t.Subject.Value, e.namespace) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Export writes the store to w in the given format.
func (e *Exporter) Export(ctx context.Context, w io.Writer, store graph.Store, format Format) error {
	triples, err := e.Triples(ctx, store)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	switch format {
	case FormatTurtle:
		err = NewTurtleWriter(e.prefixes).Write(bw, triples)
	case FormatNTriples:
		err = WriteNTriples(bw, triples)
	case FormatJSONLD:
		err = NewJSONLDWriter(e.prefixes).Write(bw, triples)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return bw.Flush()
}

// ExportFile writes the store to path, creating parent directories. The file
// is written to a temporary name and renamed into place with mode 0644.
func (e *Exporter) ExportFile(ctx context.Context, path string, store graph.Store, format Format) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := e.Export(ctx, tmp, store, format); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("set output file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output file: %w", err)
	}
	return nil
}

// FormatForPath guesses the format from a file extension, defaulting to
// Turtle.
func FormatForPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	for f, info := range FormatRegistry {
		if info.Extension == ext {
			return f
		}
	}
	return FormatTurtle
}
