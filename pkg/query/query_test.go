package query

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inkwell/pkg/catalogs"
)

func card(id, name, text string, typ catalogs.CardType, inks string) catalogs.Card {
	return catalogs.Card{
		ID:     id,
		Name:   name,
		Text:   text,
		Type:   typ,
		Inks:   catalogs.ParseInks(inks),
		Rarity: catalogs.RarityCommon,
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Card.ID
	}
	return out
}

func sampleItems() []Item {
	return []Item{
		{Card: card("TFC-001", "Maleficent", "Transforms into a DRAGON.", catalogs.CardTypeCharacter, "Ruby")},
		{Card: card("TFC-002", "Dragon Fire", "Banish chosen character.", catalogs.CardTypeAction, "Ruby")},
		{Card: card("TFC-003", "Mushu", "Little dragon guardian.", catalogs.CardTypeCharacter, "Amber/Ruby")},
		{Card: card("TFC-004", "Dragon Whelp", "", catalogs.CardTypeCharacter, "Steel")},
		{Card: card("TFC-005", "Stitch", "Rock star.", catalogs.CardTypeCharacter, "Ruby")},
	}
}

func TestApplyFilterComposition(t *testing.T) {
	got := Apply(sampleItems(), Options{
		Text: "dragon",
		Type: catalogs.CardTypeCharacter,
		Ink:  catalogs.InkRuby,
	})
	assert.Equal(t, []string{"TFC-001", "TFC-003"}, ids(got))

	for _, it := range got {
		assert.Equal(t, catalogs.CardTypeCharacter, it.Card.Type)
		assert.True(t, it.Card.Inks.Contains(catalogs.InkRuby))
	}
}

func TestSearch(t *testing.T) {
	items := sampleItems()

	t.Run("empty text keeps all", func(t *testing.T) {
		assert.Len(t, Search(items, "  "), len(items))
	})

	t.Run("matches name or text ignoring case", func(t *testing.T) {
		assert.Equal(t, []string{"TFC-001", "TFC-002", "TFC-003", "TFC-004"}, ids(Search(items, "DrAgOn")))
	})

	t.Run("matches version subtitle", func(t *testing.T) {
		c := card("TFC-006", "Mickey Mouse", "", catalogs.CardTypeCharacter, "Amber")
		c.Version = "Brave Little Tailor"
		got := Search([]Item{{Card: c}}, "tailor")
		assert.Len(t, got, 1)
	})

	t.Run("does not modify input", func(t *testing.T) {
		before := ids(items)
		_ = Search(items, "stitch")
		assert.Equal(t, before, ids(items))
	})
}

func TestFilterInkMultiColor(t *testing.T) {
	got := FilterInk(sampleItems(), catalogs.InkAmber)
	assert.Equal(t, []string{"TFC-003"}, ids(got))
}

func TestFilterUnknownType(t *testing.T) {
	items := append(sampleItems(), Item{Card: card("TFC-009", "Odd", "", catalogs.CardTypeUnknown, "")})
	got := FilterType(items, catalogs.CardTypeUnknown)
	assert.Equal(t, []string{"TFC-009"}, ids(got))
}

func TestSortRecentStable(t *testing.T) {
	day := func(d int) utc.Time {
		return utc.New(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC))
	}
	items := []Item{
		{Card: catalogs.Card{ID: "a"}},
		{Card: catalogs.Card{ID: "b"}, DateAdded: day(1)},
		{Card: catalogs.Card{ID: "c"}},
		{Card: catalogs.Card{ID: "d"}, DateAdded: day(3)},
		{Card: catalogs.Card{ID: "e"}, DateAdded: day(1)},
		{Card: catalogs.Card{ID: "f"}},
	}

	got := Sort(items, SortRecent)
	assert.Equal(t, []string{"d", "b", "e", "a", "c", "f"}, ids(got))
}

func TestSortKeys(t *testing.T) {
	items := []Item{
		{Card: catalogs.Card{ID: "1", Name: "Zeus", Cost: 2, Rarity: catalogs.RarityLegendary, SetName: "Into the Inklands"}},
		{Card: catalogs.Card{ID: "2", Name: "Ariel", Cost: 5, Rarity: catalogs.RarityCommon, SetName: "The First Chapter"}},
		{Card: catalogs.Card{ID: "3", Name: "Belle", Cost: 2, Rarity: catalogs.RaritySuperRare, SetName: "Into the Inklands"}},
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortNone, []string{"1", "2", "3"}},
		{SortName, []string{"2", "3", "1"}},
		{SortCost, []string{"1", "3", "2"}},
		{SortRarity, []string{"2", "3", "1"}},
		{SortSet, []string{"1", "3", "2"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(items, tt.key)))
		})
	}
}

func TestRank(t *testing.T) {
	items := []Item{
		{Card: catalogs.Card{ID: "1", Name: "Stitch", Version: "Rock Star"}},
		{Card: catalogs.Card{ID: "2", Name: "Mickey Mouse"}},
		{Card: catalogs.Card{ID: "3", Name: "Stitch", Version: "Carefree Surfer"}},
	}

	got := Rank(items, "stch")
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"1", "3"}, ids(got))

	assert.Equal(t, []string{"1", "2", "3"}, ids(Rank(items, "")))
}

func TestApplyRelevanceKeepsTextMatches(t *testing.T) {
	got := Apply(sampleItems(), Options{Text: "dragon", Sort: SortRelevance})
	require.Len(t, got, 4)
	assert.ElementsMatch(t, []string{"TFC-002", "TFC-004"}, ids(got[:2]))
	assert.Equal(t, []string{"TFC-001", "TFC-003"}, ids(got[2:]), "rules text hits follow name hits")
}

func TestParse(t *testing.T) {
	typ, err := ParseType("all")
	require.NoError(t, err)
	assert.Equal(t, catalogs.CardType(""), typ)

	typ, err = ParseType("character")
	require.NoError(t, err)
	assert.Equal(t, catalogs.CardTypeCharacter, typ)

	_, err = ParseType("dragon")
	assert.Error(t, err)

	ink, err := ParseInk("RUBY")
	require.NoError(t, err)
	assert.Equal(t, catalogs.InkRuby, ink)

	_, err = ParseInk("purple")
	assert.Error(t, err)

	v, err := ParseVariant("foil")
	require.NoError(t, err)
	assert.Equal(t, catalogs.VariantFoil, v)

	key, err := ParseSort("recently-added")
	require.NoError(t, err)
	assert.Equal(t, SortRecent, key)

	_, err = ParseSort("price")
	assert.Error(t, err)
}

func TestSearchIgnoresAccents(t *testing.T) {
	items := []Item{
		{Card: card("ROF-001", "Te Kā", "The Burning One.", catalogs.CardTypeCharacter, "Ruby")},
		{Card: card("ROF-002", "Moana", "Chosen by the Ocean.", catalogs.CardTypeCharacter, "Amber")},
	}
	assert.Equal(t, []string{"ROF-001"}, ids(Search(items, "te ka")))
	assert.Equal(t, []string{"ROF-001"}, ids(Search(items, "TE KĀ")))
	assert.Equal(t, []string{"ROF-001"}, ids(Rank(items, "tk")))
}
