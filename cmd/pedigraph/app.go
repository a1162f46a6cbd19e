package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/c360studio/pedigraph/config"
	"github.com/c360studio/pedigraph/export"
	"github.com/c360studio/pedigraph/gedcom"
	"github.com/c360studio/pedigraph/graph"
	"github.com/c360studio/pedigraph/ontology"
	"github.com/c360studio/pedigraph/pedigree"
	"github.com/c360studio/pedigraph/place"
	"github.com/c360studio/pedigraph/storage"
	"github.com/c360studio/pedigraph/vocabulary/genealogy"
	"github.com/c360studio/pedigraph/watch"
)

// GraphSummary describes the graph built from one input file.
type GraphSummary struct {
	Input       string
	Output      string
	Individuals int
	Countries   int
	Triples     int
	Published   int
}

// Summary describes one conversion run.
type Summary struct {
	RunID  string
	Graphs []GraphSummary
}

// Individuals returns the number of individuals mapped across all graphs.
func (s Summary) Individuals() int {
	n := 0
	for _, g := range s.Graphs {
		n += g.Individuals
	}
	return n
}

// dialFunc connects to a message server.
type dialFunc func(url string) (graph.Conn, func(), error)

// App wires configuration to the conversion pipeline.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	dial   dialFunc
}

// NewApp validates cfg and creates an application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		dial:   dialNATS,
	}, nil
}

func dialNATS(url string) (graph.Conn, func(), error) {
	nc, err := nats.Connect(url, nats.Name("pedigraph"))
	if err != nil {
		return nil, nil, err
	}
	return nc, nc.Close, nil
}

// run holds the state shared by the graphs of one conversion.
type run struct {
	id       string
	logger   *slog.Logger
	metrics  *pedigree.Metrics
	resolver *place.Resolver
	ontology pedigree.OntologyLoader
}

// target is where the graph of one input file is written.
type target struct {
	input  string
	output string
	sqlite string
}

// Convert builds one graph per input file, exports it and optionally
// publishes its entities. Entity identifiers come from record pointers,
// which are only unique within a file, so files are never merged.
func (a *App) Convert(ctx context.Context, patterns []string) (Summary, error) {
	if len(patterns) == 0 {
		patterns = a.cfg.Input.Patterns
	}
	if len(patterns) == 0 {
		return Summary{}, errors.New("no input files given")
	}
	files, err := watch.ExpandInputs(patterns)
	if err != nil {
		return Summary{}, err
	}
	targets, err := a.targets(files)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{RunID: uuid.NewString()}
	r, err := a.newRun(summary.RunID)
	if err != nil {
		return summary, err
	}

	for _, t := range targets {
		gs, err := a.convertFile(ctx, r, t)
		if err != nil {
			return summary, err
		}
		summary.Graphs = append(summary.Graphs, gs)
	}

	if a.cfg.Metrics.Textfile != "" {
		if err := r.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (a *App) newRun(id string) (*run, error) {
	r := &run{
		id:      id,
		logger:  a.logger.With("run_id", id),
		metrics: pedigree.NewMetrics(),
	}

	resolver, err := place.NewDefaultResolver(a.cfg.Places.Historic,
		place.WithLogger(r.logger),
		place.WithObserver(r.metrics))
	if err != nil {
		return nil, err
	}
	r.resolver = resolver

	if a.cfg.Ontology.Enabled {
		loader, err := ontology.NewLoader(ontology.SourcesFromMap(a.cfg.Ontology.Sources),
			ontology.WithTimeout(a.cfg.Ontology.Timeout),
			ontology.WithLogger(r.logger))
		if err != nil {
			return nil, err
		}
		r.ontology = &cachedOntology{loader: loader}
		r.logger.Debug("Ontology bootstrap enabled", "denylist_version", a.cfg.Ontology.DenylistVersion)
	}
	return r, nil
}

// targets assigns output locations. A single input uses the configured
// paths; several inputs each get files named after the input, next to the
// configured ones.
func (a *App) targets(files []string) ([]target, error) {
	if len(files) == 1 {
		return []target{{input: files[0], output: a.cfg.Output.Path, sqlite: a.cfg.Graph.SQLitePath}}, nil
	}

	out := make([]target, 0, len(files))
	owner := make(map[string]string, len(files))
	for _, f := range files {
		t := target{
			input:  f,
			output: sibling(a.cfg.Output.Path, f),
			sqlite: sibling(a.cfg.Graph.SQLitePath, f),
		}
		if prev, dup := owner[t.output]; dup {
			return nil, fmt.Errorf("inputs %s and %s would both be written to %s", prev, f, t.output)
		}
		owner[t.output] = f
		out = append(out, t)
	}
	return out, nil
}

// sibling names a file in the directory of path, with its extension and the
// base name of input.
func sibling(path, input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(path), stem+filepath.Ext(path))
}

func (a *App) convertFile(ctx context.Context, r *run, t target) (GraphSummary, error) {
	gs := GraphSummary{Input: t.input, Output: t.output}
	logger := r.logger.With("input", t.input)

	doc, err := gedcom.ParseFile(t.input)
	if err != nil {
		return gs, err
	}
	logger.Info("Parsed GEDCOM file", "individuals", len(doc.Individuals()), "skipped_lines", doc.Skipped())

	store, err := a.openStore(t.sqlite)
	if err != nil {
		return gs, err
	}
	defer store.Close()

	builder := pedigree.NewBuilder(store, a.builderOptions(r, logger)...)
	stats, err := builder.Load(ctx, pedigree.FromGEDCOM(doc))
	if err != nil {
		return gs, fmt.Errorf("convert %s: %w", t.input, err)
	}
	gs.Individuals = stats.Individuals
	gs.Countries = stats.Countries
	gs.Triples = stats.Triples

	ns := a.cfg.Graph.BaseIRI
	exporter := export.NewExporter(export.Profile(a.cfg.Output.Profile), ns, genealogy.Prefixes(ns))
	if err := exporter.ExportFile(ctx, t.output, store, a.cfg.OutputFormat()); err != nil {
		return gs, fmt.Errorf("export graph: %w", err)
	}
	logger.Info("Wrote graph", "path", t.output, "format", a.cfg.OutputFormat(), "triples", gs.Triples)

	if a.cfg.NATS.URL != "" {
		n, err := a.publish(ctx, store, r.id, logger)
		if err != nil {
			return gs, err
		}
		gs.Published = n
	}
	return gs, nil
}

func (a *App) openStore(sqlitePath string) (graph.Store, error) {
	if a.cfg.Graph.Backend == config.BackendSQLite {
		s, err := storage.OpenSQLite(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open graph store: %w", err)
		}
		return s, nil
	}
	return graph.NewMemoryStore(), nil
}

func (a *App) builderOptions(r *run, logger *slog.Logger) []pedigree.Option {
	opts := []pedigree.Option{
		pedigree.WithNamespace(a.cfg.Graph.BaseIRI),
		pedigree.WithPlaceResolver(r.resolver),
		pedigree.WithDenylist(a.cfg.Ontology.Denylist),
		pedigree.WithLogger(logger),
		pedigree.WithMetrics(r.metrics),
	}
	if r.ontology != nil {
		opts = append(opts, pedigree.WithOntologyLoader(r.ontology))
	}
	return opts
}

// cachedOntology fetches the vocabularies on first use and copies them into
// every later store.
type cachedOntology struct {
	loader *ontology.Loader
	store  *graph.MemoryStore
	loaded map[string]string
}

func (c *cachedOntology) Load(ctx context.Context, store graph.Store) (map[string]string, error) {
	if c.store == nil {
		s := graph.NewMemoryStore()
		loaded, err := c.loader.Load(ctx, s)
		if err != nil {
			return nil, err
		}
		c.store, c.loaded = s, loaded
	}

	triples, err := c.store.Match(ctx, graph.Pattern{})
	if err != nil {
		return nil, err
	}
	for _, t := range triples {
		if _, err := store.Add(ctx, t); err != nil {
			return nil, fmt.Errorf("copy vocabulary: %w", err)
		}
	}
	return c.loaded, nil
}

func (a *App) publish(ctx context.Context, store graph.Store, runID string, logger *slog.Logger) (int, error) {
	conn, closeConn, err := a.dial(a.cfg.NATS.URL)
	if err != nil {
		return 0, fmt.Errorf("connect to NATS: %w", err)
	}
	defer closeConn()

	pub := graph.NewPublisher(conn, a.cfg.NATS.Subject, a.cfg.Graph.BaseIRI, runID, logger)
	n, err := pub.PublishStore(ctx, store)
	if err != nil {
		return n, fmt.Errorf("publish entities: %w", err)
	}
	return n, nil
}

// Watch converts once, then again whenever a matching input file changes.
func (a *App) Watch(ctx context.Context, patterns []string) error {
	if len(patterns) == 0 {
		patterns = a.cfg.Input.Patterns
	}
	if len(patterns) == 0 {
		return errors.New("no input files given")
	}
	roots, err := watch.Roots(patterns)
	if err != nil {
		return err
	}

	if _, err := a.Convert(ctx, patterns); err != nil {
		a.logger.Error("Conversion failed", "error", err)
	}

	w, err := watch.New(roots, a.cfg.Watch.Debounce, a.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	for event := range w.Events() {
		a.logger.Info("Input changed", "path", event.Path, "op", event.Operation)
		if _, err := a.Convert(ctx, patterns); err != nil {
			if ctx.Err() != nil {
				break
			}
			a.logger.Error("Conversion failed", "error", err)
		}
	}
	return nil
}
