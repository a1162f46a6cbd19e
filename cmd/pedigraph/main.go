// Package main provides the pedigraph binary entry point.
// Pedigraph converts GEDCOM pedigree files into RDF graphs built on FOAF,
// schema.org and the RELATIONSHIP vocabulary.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/pedigraph/config"
	"github.com/c360studio/pedigraph/place"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "pedigraph"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert GEDCOM pedigrees to RDF",
		Long: `Pedigraph converts GEDCOM pedigree files into an RDF graph.

Individuals become FOAF persons typed Man or Woman, birthplaces are resolved
to deduplicated schema.org countries, and family links become parentOf,
childOf and spouseOf edges from the RELATIONSHIP vocabulary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		convertCmd(&g),
		watchCmd(&g),
		placesCmd(&g),
		configCmd(&g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

// overrideFlags are command-line settings merged over the loaded config.
type overrideFlags struct {
	output     string
	format     string
	profile    string
	baseIRI    string
	backend    string
	sqlitePath string
	natsURL    string
	metrics    string
	noOntology bool
}

func (o *overrideFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "Output file path")
	f.StringVar(&o.format, "format", "", "Output format (turtle, ntriples, jsonld)")
	f.StringVar(&o.profile, "profile", "", "Export profile (full, data)")
	f.StringVar(&o.baseIRI, "base-iri", "", "Namespace of generated entities")
	f.StringVar(&o.backend, "backend", "", "Graph backend (memory, sqlite)")
	f.StringVar(&o.sqlitePath, "sqlite-path", "", "SQLite database path for the sqlite backend")
	f.StringVar(&o.natsURL, "nats-url", "", "Publish entities to this NATS server")
	f.StringVar(&o.metrics, "metrics-file", "", "Write Prometheus metrics to this file")
	f.BoolVar(&o.noOntology, "no-ontology", false, "Skip fetching external vocabularies")
}

func (o *overrideFlags) apply(cfg *config.Config) {
	cfg.Merge(&config.Config{
		Output:  config.OutputConfig{Path: o.output, Format: o.format, Profile: o.profile},
		Graph:   config.GraphConfig{BaseIRI: o.baseIRI, Backend: o.backend, SQLitePath: o.sqlitePath},
		NATS:    config.NATSConfig{URL: o.natsURL},
		Metrics: config.MetricsConfig{Textfile: o.metrics},
	})
	if o.noOntology {
		cfg.Ontology.Enabled = false
	}
}

func convertCmd(g *globalFlags) *cobra.Command {
	var o overrideFlags
	cmd := &cobra.Command{
		Use:   "convert [files or globs...]",
		Short: "Convert GEDCOM files to an RDF graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, cancel, err := setup(g, &o)
			if err != nil {
				return err
			}
			defer cancel()

			summary, err := app.Convert(ctx, args)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	o.register(cmd)
	return cmd
}

func watchCmd(g *globalFlags) *cobra.Command {
	var o overrideFlags
	cmd := &cobra.Command{
		Use:   "watch [files or globs...]",
		Short: "Convert GEDCOM files and reconvert on change",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, cancel, err := setup(g, &o)
			if err != nil {
				return err
			}
			defer cancel()
			return app.Watch(ctx, args)
		},
	}
	o.register(cmd)
	return cmd
}

func placesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "places <place>...",
		Short: "Resolve birthplace strings to country names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(g.logLevel)
			cfg, err := config.NewLoader(logger).Load(g.configPath)
			if err != nil {
				return err
			}
			resolver, err := place.NewDefaultResolver(cfg.Places.Historic, place.WithLogger(logger))
			if err != nil {
				return err
			}
			for _, text := range args {
				country, tier, ok := resolver.ResolveTier(text)
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t-\n", text)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", text, country, tier)
			}
			return nil
		},
	}
}

func configCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(newLogger(g.logLevel)).Load(g.configPath)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default pedigraph.yaml in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.NewLoader(newLogger(g.logLevel)).WriteProjectConfig()
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cmd
}

// setup configures logging, loads and validates config, and returns an app
// with a context cancelled on SIGINT or SIGTERM.
func setup(g *globalFlags, o *overrideFlags) (*App, context.Context, context.CancelFunc, error) {
	logger := newLogger(g.logLevel)
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(g.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	o.apply(cfg)

	app, err := NewApp(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return app, ctx, cancel, nil
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "run:         %s\n", s.RunID)
	for _, g := range s.Graphs {
		fmt.Fprintf(w, "\ninput:       %s\n", g.Input)
		fmt.Fprintf(w, "individuals: %d\n", g.Individuals)
		fmt.Fprintf(w, "countries:   %d\n", g.Countries)
		fmt.Fprintf(w, "triples:     %d\n", g.Triples)
		fmt.Fprintf(w, "output:      %s\n", g.Output)
		if g.Published > 0 {
			fmt.Fprintf(w, "published:   %d\n", g.Published)
		}
	}
}
