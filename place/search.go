package place

import (
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned when no reference entry matches a query.
var ErrNotFound = errors.New("place not found")

// ErrNoCountry is returned when the best match has no country to resolve to.
var ErrNoCountry = errors.New("place has no country")

// Entry is one reference place. Country is the name of the containing
// country for subdivisions and empty for countries. Code and Alpha3 only
// match exactly; Name and Aliases also match as substrings.
type Entry struct {
	Name    string   `yaml:"name"`
	Code    string   `yaml:"code,omitempty"`
	Alpha3  string   `yaml:"alpha3,omitempty"`
	Aliases []string `yaml:"aliases,omitempty"`
	Country string   `yaml:"country,omitempty"`
}

// Index is a searchable list of reference places with pre-folded names.
type Index struct {
	entries []Entry
	folded  [][]string
	exact   map[string]int
}

// NewIndex builds an index over entries. Earlier entries win ties, and
// names win over codes.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		entries: entries,
		folded:  make([][]string, len(entries)),
		exact:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		names := append([]string{e.Name}, e.Aliases...)
		for _, n := range names {
			f := Fold(n)
			if f == "" {
				continue
			}
			idx.folded[i] = append(idx.folded[i], f)
			idx.addExact(f, i)
		}
	}
	for i, e := range entries {
		for _, code := range []string{e.Code, e.Alpha3} {
			if f := Fold(code); f != "" {
				idx.addExact(f, i)
			}
		}
	}
	return idx
}

func (x *Index) addExact(key string, i int) {
	if _, dup := x.exact[key]; !dup {
		x.exact[key] = i
	}
}

// Len returns the number of entries.
func (x *Index) Len() int {
	return len(x.entries)
}

// Search finds the best entry for query. An exact case- and accent-
// insensitive match on a code, name or alias wins outright. Otherwise every entry
// with a name containing the query is scored by how early the query occurs,
// then by edit distance, then by reference order.
func (x *Index) Search(query string) (Entry, error) {
	q := Fold(query)
	if q == "" {
		return Entry{}, ErrNotFound
	}
	if i, ok := x.exact[q]; ok {
		return x.entries[i], nil
	}

	type candidate struct {
		index    int
		score    int
		distance int
	}
	var candidates []candidate
	for i, names := range x.folded {
		best := -1
		dist := 0
		for _, n := range names {
			pos := strings.Index(n, q)
			if pos < 0 {
				continue
			}
			score := max(5, 30-2*pos)
			d := fuzzy.LevenshteinDistance(q, n)
			if score > best || (score == best && d < dist) {
				best, dist = score, d
			}
		}
		if best >= 0 {
			candidates = append(candidates, candidate{index: i, score: best, distance: dist})
		}
	}
	if len(candidates) == 0 {
		return Entry{}, ErrNotFound
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return candidates[a].distance < candidates[b].distance
	})
	return x.entries[candidates[0].index], nil
}

var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s, strips diacritics and collapses inner whitespace.
func Fold(s string) string {
	out, _, err := transform.String(folder, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
