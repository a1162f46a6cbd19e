// Package place maps free-text birthplaces to country names.
//
// A Resolver looks at the last comma-separated fragment of a place string and
// searches a sequence of reference tiers (current countries, subdivisions,
// historic countries). The first tier with a hit decides the answer; a miss
// everywhere is reported as no match, never as an error.
package place

import (
	"errors"
	"log/slog"
	"strings"
)

// Tier names used by the default resolver.
const (
	TierCountries    = "countries"
	TierSubdivisions = "subdivisions"
	TierHistoric     = "historic_countries"
)

// trimCutset is stripped from both ends of the trailing fragment.
const trimCutset = " ,.:;-"

// Tier is one named reference set.
type Tier struct {
	Name  string
	Index *Index
}

// Observer is notified of every resolution attempt. tier is empty on a miss.
type Observer interface {
	ObserveResolution(tier string)
}

type result struct {
	country string
	tier    string
	ok      bool
}

// Resolver resolves place strings against ordered tiers. Results are cached
// per input. A Resolver is not safe for concurrent use.
type Resolver struct {
	tiers    []Tier
	logger   *slog.Logger
	observer Observer
	cache    map[string]result
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for the per-lookup trace.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithObserver registers an observer for resolution outcomes.
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// NewResolver creates a resolver over the given tiers, searched in order.
func NewResolver(tiers []Tier, opts ...Option) *Resolver {
	r := &Resolver{
		tiers:  tiers,
		logger: slog.Default(),
		cache:  make(map[string]result),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefaultResolver builds the three standard tiers. extraHistoric entries
// are appended to the historic tier after the ISO 3166-3 names.
func NewDefaultResolver(extraHistoric []Entry, opts ...Option) (*Resolver, error) {
	historic, err := HistoricCountries()
	if err != nil {
		return nil, err
	}
	historic = append(historic, extraHistoric...)
	current, err := CurrentCountries(historic)
	if err != nil {
		return nil, err
	}

	tiers := []Tier{
		{Name: TierCountries, Index: NewIndex(current)},
		{Name: TierSubdivisions, Index: NewIndex(Subdivisions())},
		{Name: TierHistoric, Index: NewIndex(historic)},
	}
	return NewResolver(tiers, opts...), nil
}

// SearchTerm extracts the trailing fragment of a place string and trims
// surrounding spaces and punctuation.
func SearchTerm(text string) string {
	parts := strings.Split(text, ",")
	return strings.Trim(parts[len(parts)-1], trimCutset)
}

// Resolve returns the country name for a place string, or false when the
// trailing fragment is empty or no tier matches.
func (r *Resolver) Resolve(text string) (string, bool) {
	country, _, ok := r.ResolveTier(text)
	return country, ok
}

// ResolveTier is Resolve that also reports which tier matched.
func (r *Resolver) ResolveTier(text string) (country, tier string, ok bool) {
	term := SearchTerm(text)
	if term == "" {
		return "", "", false
	}

	if res, hit := r.cache[term]; hit {
		r.observe(res.tier)
		return res.country, res.tier, res.ok
	}

	res := r.lookup(term)
	r.cache[term] = res
	r.observe(res.tier)

	if res.ok {
		r.logger.Debug("Resolved place", "term", term, "country", res.country, "tier", res.tier, "place", text)
	} else {
		r.logger.Debug("Unresolved place", "term", term, "place", text)
	}
	return res.country, res.tier, res.ok
}

// lookup searches the tiers in order. A tier fails when its search returns
// ErrNotFound or a match without a country; any failure falls through.
func (r *Resolver) lookup(term string) result {
	for _, tier := range r.tiers {
		if tier.Index == nil {
			continue
		}
		entry, err := tier.Index.Search(term)
		if err == nil {
			country := entry.Name
			if entry.Country != "" {
				country = entry.Country
			} else if tier.Name == TierSubdivisions {
				err = ErrNoCountry
			}
			if err == nil {
				return result{country: country, tier: tier.Name, ok: true}
			}
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrNoCountry) {
			r.logger.Warn("Place search failed", "tier", tier.Name, "term", term, "error", err)
		}
	}
	return result{}
}

func (r *Resolver) observe(tier string) {
	if r.observer != nil {
		r.observer.ObserveResolution(tier)
	}
}
