// Package ontology fetches vocabulary documents and loads their statements
// into a graph store.
package ontology

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knakk/rdf"
	"golang.org/x/net/html/charset"

	"github.com/c360studio/pedigraph/graph"
)

// ErrFetch is returned when a vocabulary document cannot be retrieved or
// decoded.
var ErrFetch = errors.New("ontology fetch failed")

// DefaultTimeout bounds a single document fetch.
const DefaultTimeout = 60 * time.Second

const acceptHeader = "application/rdf+xml, text/turtle;q=0.9, application/n-triples;q=0.8, */*;q=0.1"

// Loader fetches a fixed set of sources. A failure on any source aborts the
// load.
type Loader struct {
	sources []Source
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithTimeout sets the per-document fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader validates sources and returns a loader for them.
func NewLoader(sources []Source, opts ...Option) (*Loader, error) {
	for _, s := range sources {
		if s.Prefix == "" {
			return nil, fmt.Errorf("ontology source %q has no prefix", s.URL)
		}
		if err := ValidateURL(s.URL); err != nil {
			return nil, fmt.Errorf("ontology source %s: %w", s.Prefix, err)
		}
	}

	l := &Loader{
		sources: sources,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load fetches every source in order and adds its statements to store. It
// returns the prefix to URL bindings that were loaded.
func (l *Loader) Load(ctx context.Context, store graph.Store) (map[string]string, error) {
	loaded := make(map[string]string, len(l.sources))
	for _, src := range l.sources {
		n, err := l.loadSource(ctx, store, src)
		if err != nil {
			return loaded, err
		}
		loaded[src.Prefix] = src.URL
		l.logger.Info("Loaded ontology", "prefix", src.Prefix, "url", src.URL, "triples", n)
	}
	return loaded, nil
}

func (l *Loader) loadSource(ctx context.Context, store graph.Store, src Source) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	body, contentType, err := l.open(ctx, src.URL)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrFetch, src.URL, err)
	}
	defer body.Close()

	reader, err := charset.NewReader(body, contentType)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: decode charset: %v", ErrFetch, src.URL, err)
	}

	br := bufio.NewReader(reader)
	head, _ := br.Peek(512)
	format := DetectFormat(contentType, src.URL, head)

	n, err := Decode(ctx, store, br, format, src.Prefix)
	if err != nil {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		return n, fmt.Errorf("%w: %s: %v", ErrFetch, src.URL, err)
	}
	return n, nil
}

func (l *Loader) open(ctx context.Context, raw string) (io.ReadCloser, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", err
	}
	if u.Scheme == "file" {
		f, err := os.Open(u.Path)
		if err != nil {
			return nil, "", err
		}
		return f, "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// Decode reads RDF statements in the given format from r into store and
// returns how many were new. Blank node labels are prefixed with scope so
// documents decoded into the same store keep their anonymous nodes apart.
func Decode(ctx context.Context, store graph.Store, r io.Reader, format rdf.Format, scope string) (int, error) {
	dec := rdf.NewTripleDecoder(r, format)
	added := 0
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			return added, nil
		}
		if err != nil {
			return added, fmt.Errorf("decode statement: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return added, err
		}

		t := graph.Triple{
			Subject:   convertTerm(tr.Subj, scope),
			Predicate: convertTerm(tr.Pred, scope),
			Object:    convertTerm(tr.Obj, scope),
		}
		if t.Validate() != nil {
			continue
		}
		ok, err := store.Add(ctx, t)
		if err != nil {
			return added, fmt.Errorf("add statement: %w", err)
		}
		if ok {
			added++
		}
	}
}

func convertTerm(t rdf.Term, scope string) graph.Term {
	switch v := t.(type) {
	case rdf.IRI:
		return graph.IRI(v.String())
	case rdf.Blank:
		label := strings.TrimPrefix(v.String(), "_:")
		if scope != "" {
			label = scope + "_" + label
		}
		return graph.Blank(label)
	case rdf.Literal:
		if lang := v.Lang(); lang != "" {
			return graph.LangLiteral(v.String(), lang)
		}
		return graph.TypedLiteral(v.String(), v.DataType.String())
	}
	return graph.Term{}
}
