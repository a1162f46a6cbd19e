package pedigree

import (
	"context"
	"fmt"
	"sort"
)

// Stats summarises one ingestion pass.
type Stats struct {
	Individuals int
	Countries   int
	Triples     int
}

// Load bootstraps the graph if needed, then maps and links every individual
// of src in order.
func (b *Builder) Load(ctx context.Context, src Source) (Stats, error) {
	if err := b.Bootstrap(ctx); err != nil {
		return Stats{}, err
	}

	records := src.Individuals()
	b.logger.Info("Mapping individuals", "individuals", len(records))

	var stats Stats
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		subject, err := b.MapIndividual(ctx, rec)
		if err != nil {
			return stats, err
		}
		if err := b.LinkRelationships(ctx, src, rec, subject); err != nil {
			return stats, fmt.Errorf("link %s: %w", rec.Pointer(), err)
		}
		stats.Individuals++
		if b.progress > 0 && (i+1)%b.progress == 0 {
			b.logger.Info("Progress", "mapped", i+1, "total", len(records))
		}
	}

	n, err := b.store.Len(ctx)
	if err != nil {
		return stats, fmt.Errorf("count triples: %w", err)
	}
	stats.Countries = len(b.countries)
	stats.Triples = n
	b.metrics.setTriples(n)
	b.logger.Info("Mapped individuals",
		"individuals", stats.Individuals, "countries", stats.Countries, "triples", stats.Triples)
	return stats, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
