package place

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTerm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mayfair, London, England", "England"},
		{"Athens, Greece.", "Greece"},
		{"  Ruritania ;", "Ruritania"},
		{"London,", ""},
		{"", ""},
		{" - : ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchTerm(tt.in))
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "cote d'ivoire", Fold("  Côte  D'Ivoire "))
	assert.Equal(t, "", Fold("   "))
}

func TestIndexSearch(t *testing.T) {
	t.Run("exact alias wins", func(t *testing.T) {
		idx := NewIndex([]Entry{
			{Name: "Union of Soviet Socialist Republics", Aliases: []string{"USSR"}},
			{Name: "USSR Extended"},
		})
		got, err := idx.Search("ussr")
		require.NoError(t, err)
		assert.Equal(t, "Union of Soviet Socialist Republics", got.Name)
	})

	t.Run("earlier position scores higher", func(t *testing.T) {
		idx := NewIndex([]Entry{{Name: "Northland"}, {Name: "Land of Oz"}})
		got, err := idx.Search("land")
		require.NoError(t, err)
		assert.Equal(t, "Land of Oz", got.Name)
	})

	t.Run("edit distance breaks ties", func(t *testing.T) {
		idx := NewIndex([]Entry{{Name: "Landaaaa"}, {Name: "Landa"}})
		got, err := idx.Search("land")
		require.NoError(t, err)
		assert.Equal(t, "Landa", got.Name)
	})

	t.Run("reference order breaks remaining ties", func(t *testing.T) {
		idx := NewIndex([]Entry{{Name: "Landx"}, {Name: "Landy"}})
		got, err := idx.Search("land")
		require.NoError(t, err)
		assert.Equal(t, "Landx", got.Name)
	})

	t.Run("accents ignored", func(t *testing.T) {
		idx := NewIndex([]Entry{{Name: "Réunion"}})
		got, err := idx.Search("REUNION")
		require.NoError(t, err)
		assert.Equal(t, "Réunion", got.Name)
	})

	t.Run("codes match exactly", func(t *testing.T) {
		idx := NewIndex([]Entry{
			{Name: "Austria", Code: "AT", Alpha3: "AUT"},
			{Name: "United States", Code: "US", Alpha3: "USA"},
		})
		got, err := idx.Search("us")
		require.NoError(t, err)
		assert.Equal(t, "United States", got.Name)

		got, err = idx.Search("USA")
		require.NoError(t, err)
		assert.Equal(t, "United States", got.Name)

		_, err = idx.Search("SA")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("names win over codes", func(t *testing.T) {
		idx := NewIndex([]Entry{{Name: "Peru", Code: "PE", Alpha3: "PER"}, {Name: "Per"}})
		got, err := idx.Search("per")
		require.NoError(t, err)
		assert.Equal(t, "Per", got.Name)
	})

	t.Run("miss", func(t *testing.T) {
		idx := NewIndex([]Entry{{Name: "Greece"}})
		_, err := idx.Search("Atlantis")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = idx.Search("")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

type countingObserver struct {
	tiers []string
}

func (c *countingObserver) ObserveResolution(tier string) {
	c.tiers = append(c.tiers, tier)
}

func TestResolverTiers(t *testing.T) {
	obs := &countingObserver{}
	r := NewResolver([]Tier{
		{Name: TierCountries, Index: NewIndex([]Entry{{Name: "Freedonia"}})},
		{Name: TierSubdivisions, Index: NewIndex([]Entry{
			{Name: "Upper Shire", Country: "Freedonia"},
			{Name: "Lost Shire"},
		})},
		{Name: TierHistoric, Index: NewIndex([]Entry{{Name: "Lost Shire Kingdom"}})},
	}, WithObserver(obs))

	country, tier, ok := r.ResolveTier("Town, Upper Shire")
	require.True(t, ok)
	assert.Equal(t, "Freedonia", country)
	assert.Equal(t, TierSubdivisions, tier)

	// A subdivision without a country falls through to the next tier.
	country, tier, ok = r.ResolveTier("Lost Shire")
	require.True(t, ok)
	assert.Equal(t, "Lost Shire Kingdom", country)
	assert.Equal(t, TierHistoric, tier)

	_, ok = r.Resolve("Atlantis")
	assert.False(t, ok)

	// Cached lookups are still observed.
	country, ok = r.Resolve("freedonia.")
	require.True(t, ok)
	assert.Equal(t, "Freedonia", country)
	country, ok = r.Resolve("Capital, Freedonia")
	require.True(t, ok)
	assert.Equal(t, "Freedonia", country)

	assert.Equal(t, []string{TierSubdivisions, TierHistoric, "", TierCountries, TierCountries}, obs.tiers)
}

func TestDefaultResolver(t *testing.T) {
	r, err := NewDefaultResolver([]Entry{{Name: "Ruritania"}})
	require.NoError(t, err)

	tests := []struct {
		place string
		want  string
		ok    bool
	}{
		{"Athens, Greece", "Greece", true},
		{"Paris, France.", "France", true},
		{"Mayfair, London, England", "United Kingdom", true},
		{"Berlin, German Democratic Republic", "German Democratic Republic", true},
		{"Prague, Czechoslovakia", "Czechoslovakia, Czechoslovak Socialist Republic", true},
		{"Strelsau, Ruritania", "Ruritania", true},
		{"Nowhere, Qwxzvbnm", "", false},
		{"London,", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.place, func(t *testing.T) {
			got, ok := r.Resolve(tt.place)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultResolverTiers(t *testing.T) {
	r, err := NewDefaultResolver(nil)
	require.NoError(t, err)

	tests := []struct {
		place   string
		country string
		tier    string
	}{
		{"New York, USA", "United States", TierCountries},
		{"Boston, US", "United States", TierCountries},
		{"Amsterdam, The Netherlands", "Netherlands", TierCountries},
		{"Glasgow, Great Britain", "United Kingdom", TierCountries},
		{"Minsk, Belarus", "Belarus", TierCountries},
		{"Belgrade, Yugoslavia", "Yugoslavia, (Socialist) Federal Republic of", TierHistoric},
		{"Willemstad, Netherlands Antilles", "Netherlands Antilles", TierHistoric},
		{"Leningrad, USSR", "USSR, Union of Soviet Socialist Republics", TierHistoric},
	}
	for _, tt := range tests {
		t.Run(tt.place, func(t *testing.T) {
			country, tier, ok := r.ResolveTier(tt.place)
			require.True(t, ok)
			assert.Equal(t, tt.country, country)
			assert.Equal(t, tt.tier, tier)
		})
	}
}

func TestCurrentCountries(t *testing.T) {
	historic, err := HistoricCountries()
	require.NoError(t, err)
	current, err := CurrentCountries(historic)
	require.NoError(t, err)

	byCode := make(map[string]Entry, len(current))
	for _, e := range current {
		byCode[e.Code] = e
	}

	// Withdrawn codes belong to the historic tier.
	assert.NotContains(t, byCode, "YU")
	assert.NotContains(t, byCode, "AN")

	// Reassigned codes stay current.
	for _, code := range []string{"BY", "BQ", "GE", "SK", "AI"} {
		assert.Contains(t, byCode, code)
	}

	us := byCode["US"]
	assert.Equal(t, "United States", us.Name)
	assert.Equal(t, "USA", us.Alpha3)
	assert.Contains(t, us.Aliases, "United States of America")

	all, err := CurrentCountries(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(current)+2)
}

func TestParseEntries(t *testing.T) {
	entries, err := ParseEntries([]byte("- name: Ruritania\n  aliases: [Kingdom of Ruritania]\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"Kingdom of Ruritania"}, entries[0].Aliases)

	_, err = ParseEntries([]byte("- code: XX\n"))
	assert.Error(t, err)

	historic, err := HistoricCountries()
	require.NoError(t, err)
	assert.NotEmpty(t, historic)
}
