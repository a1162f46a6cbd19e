package place

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/biter777/countries"
	"gopkg.in/yaml.v3"
)

//go:embed historic.yaml
var historicYAML []byte

//go:embed official.yaml
var officialYAML []byte

// CurrentCountries returns the ISO 3166-1 countries with their alpha-2 and
// alpha-3 codes and official names. Countries superseded by an entry of
// historic are left out: an entry supersedes a country when its ISO 3166-3
// code starts with the country's alpha-2 code and it carries the country's
// name.
func CurrentCountries(historic []Entry) ([]Entry, error) {
	official, err := officialNames()
	if err != nil {
		return nil, err
	}

	all := countries.All()
	out := make([]Entry, 0, len(all))
	for _, c := range all {
		if !c.IsValid() {
			continue
		}
		e := Entry{
			Name:    c.String(),
			Code:    c.Alpha2(),
			Alpha3:  c.Alpha3(),
			Aliases: official[c.Alpha2()],
		}
		if superseded(e, historic) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func officialNames() (map[string][]string, error) {
	var names map[string][]string
	if err := yaml.Unmarshal(officialYAML, &names); err != nil {
		return nil, fmt.Errorf("parse official names: %w", err)
	}
	return names, nil
}

func superseded(country Entry, historic []Entry) bool {
	name := Fold(country.Name)
	for _, h := range historic {
		if len(h.Code) != 4 || !strings.EqualFold(h.Code[:2], country.Code) {
			continue
		}
		for _, n := range append([]string{h.Name}, h.Aliases...) {
			if Fold(n) == name {
				return true
			}
		}
	}
	return false
}

// Subdivisions returns the ISO 3166-2 subdivisions, each carrying the name of
// its country.
func Subdivisions() []Entry {
	all := countries.AllSubdivisions()
	out := make([]Entry, 0, len(all))
	for _, s := range all {
		if !s.IsValid() {
			continue
		}
		// Bilingual subdivisions are listed as "Name; Other name".
		names := strings.Split(s.String(), "; ")
		e := Entry{Name: names[0], Code: string(s), Aliases: names[1:]}
		if c := s.Country(); c.IsValid() {
			e.Country = c.String()
		}
		out = append(out, e)
	}
	return out
}

// HistoricCountries returns the ISO 3166-3 formerly used country names.
func HistoricCountries() ([]Entry, error) {
	return ParseEntries(historicYAML)
}

// ParseEntries decodes a YAML list of entries.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse place entries: %w", err)
	}
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("place entry %d has no name", i)
		}
	}
	return entries, nil
}
