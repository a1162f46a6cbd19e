// Package config provides configuration loading and management for pedigraph.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/pedigraph/export"
	"github.com/c360studio/pedigraph/graph"
	"github.com/c360studio/pedigraph/ontology"
	"github.com/c360studio/pedigraph/place"
	"github.com/c360studio/pedigraph/vocabulary/genealogy"
)

// Graph backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config represents the complete pedigraph configuration
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Graph    GraphConfig    `yaml:"graph"`
	Ontology OntologyConfig `yaml:"ontology"`
	Places   PlacesConfig   `yaml:"places"`
	NATS     NATSConfig     `yaml:"nats"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`
}

// InputConfig lists the GEDCOM files to convert
type InputConfig struct {
	// Patterns are file paths or doublestar globs (e.g. "trees/**/*.ged")
	Patterns []string `yaml:"patterns"`
}

// OutputConfig configures the graph export
type OutputConfig struct {
	Path string `yaml:"path"`
	// Format is turtle, ntriples or jsonld (default: from the path extension)
	Format string `yaml:"format"`
	// Profile is full (everything) or data (entity statements only)
	Profile string `yaml:"profile"`
}

// GraphConfig configures the triple store
type GraphConfig struct {
	// BaseIRI is the namespace of persons, countries and gender classes
	BaseIRI string `yaml:"base_iri"`
	// Backend is memory or sqlite
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
}

// OntologyConfig configures the vocabulary bootstrap
type OntologyConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
	// Sources maps prefixes to vocabulary documents
	Sources map[string]string `yaml:"sources"`
	// Denylist holds vocabulary IRIs removed after loading
	Denylist        []string `yaml:"denylist"`
	DenylistVersion string   `yaml:"denylist_version"`
}

// PlacesConfig configures birthplace resolution
type PlacesConfig struct {
	// Historic adds entries to the historic-countries tier
	Historic []place.Entry `yaml:"historic"`
}

// NATSConfig configures optional entity publication
type NATSConfig struct {
	// URL is the NATS server URL (empty = do not publish)
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the metrics dump
type MetricsConfig struct {
	// Textfile is where Prometheus text metrics are written after a run
	Textfile string `yaml:"textfile"`
}

// WatchConfig configures `pedigraph watch`
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Path:    filepath.Join("data", "royals.ttl"),
			Profile: string(export.ProfileFull),
		},
		Graph: GraphConfig{
			BaseIRI:    genealogy.DefaultEntityNamespace,
			Backend:    BackendMemory,
			SQLitePath: filepath.Join("data", "pedigraph.db"),
		},
		Ontology: OntologyConfig{
			Enabled:         true,
			Timeout:         ontology.DefaultTimeout,
			Sources:         genealogy.DefaultOntologySources(),
			Denylist:        genealogy.DefaultDenylist(),
			DenylistVersion: genealogy.DenylistVersion,
		},
		NATS: NATSConfig{
			Subject: graph.DefaultIngestSubject,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// OutputFormat returns the configured format, or the one implied by the
// output path.
func (c *Config) OutputFormat() export.Format {
	if c.Output.Format != "" {
		return export.Format(c.Output.Format)
	}
	return export.FormatForPath(c.Output.Path)
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	if _, ok := export.GetFormatInfo(c.OutputFormat()); !ok {
		return fmt.Errorf("output.format %q is not supported", c.Output.Format)
	}
	switch export.Profile(c.Output.Profile) {
	case "", export.ProfileFull, export.ProfileData:
	default:
		return fmt.Errorf("output.profile %q is not supported", c.Output.Profile)
	}

	u, err := url.Parse(c.Graph.BaseIRI)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("graph.base_iri must be an absolute IRI")
	}
	if !strings.HasSuffix(c.Graph.BaseIRI, "/") && !strings.HasSuffix(c.Graph.BaseIRI, "#") {
		return fmt.Errorf("graph.base_iri must end with / or #")
	}
	switch c.Graph.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Graph.SQLitePath == "" {
			return fmt.Errorf("graph.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("graph.backend %q is not supported", c.Graph.Backend)
	}

	if c.Ontology.Enabled {
		if c.Ontology.Timeout <= 0 {
			return fmt.Errorf("ontology.timeout must be positive")
		}
		for prefix, src := range c.Ontology.Sources {
			if err := ontology.ValidateURL(src); err != nil {
				return fmt.Errorf("ontology.sources.%s: %w", prefix, err)
			}
		}
	}

	for i, e := range c.Places.Historic {
		if e.Name == "" {
			return fmt.Errorf("places.historic[%d].name is required", i)
		}
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.applyFile(path); err != nil {
		return nil, err
	}
	return config, nil
}

// applyFile overlays the keys present in a YAML file onto c.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Input.Patterns) > 0 {
		c.Input.Patterns = other.Input.Patterns
	}

	if other.Output.Path != "" {
		c.Output.Path = other.Output.Path
	}
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Profile != "" {
		c.Output.Profile = other.Output.Profile
	}

	if other.Graph.BaseIRI != "" {
		c.Graph.BaseIRI = other.Graph.BaseIRI
	}
	if other.Graph.Backend != "" {
		c.Graph.Backend = other.Graph.Backend
	}
	if other.Graph.SQLitePath != "" {
		c.Graph.SQLitePath = other.Graph.SQLitePath
	}

	if other.Ontology.Timeout != 0 {
		c.Ontology.Timeout = other.Ontology.Timeout
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}

	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}

	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}
