package catalogs

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inkwell/pkg/errors"
)

const testSetsYAML = `version: "2025.1"
sets:
  - name: The First Chapter
    code: TFC
    remote_code: "1"
    card_count: 204
    release_order: 1
  - name: Mini Set
    code: MIN
    card_count: 12
    release_order: 2
`

const testMiniYAML = `set_name: Mini Set
set_code: MIN
cards:
  - number: 1
    name: Ariel
    version: On Human Legs
    type: Character
    cost: 4
    ink: Amber
    rarity: Uncommon
    text: VOICELESS This character can't sing songs.
  - id: MIN-002
    number: 2
    name: Dragon Fire
    type: Action
    ink: Ruby/Steel
    rarity: super_rare
  - number: 3
    name: Glitched
    type: Starship
    ink: Plaid
`

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		SetsFile:         {Data: []byte(testSetsYAML)},
		"cards/min.yaml": {Data: []byte(testMiniYAML)},
		MigrationsFile:   {Data: []byte("aliases:\n  ENCH-1: MIN-002\n")},
	}

	b, err := Load(fsys)
	require.NoError(t, err)
	assert.Equal(t, "2025.1", b.Version)
	require.Len(t, b.Sets, 2)
	assert.Equal(t, "1", b.Sets[0].RemoteCode)
	assert.Equal(t, "MIN-002", b.Migrations.Aliases["ENCH-1"])

	cards := b.Cards["Mini Set"]
	require.Len(t, cards, 3)
	assert.Equal(t, "MIN-001", cards[0].ID, "id derived from set code and number")
	assert.Equal(t, CardTypeCharacter, cards[0].Type)
	assert.Equal(t, Inks{InkRuby, InkSteel}, cards[1].Inks)
	assert.Equal(t, RaritySuperRare, cards[1].Rarity)
	assert.Equal(t, CardTypeUnknown, cards[2].Type, "malformed type degrades to unknown")
	assert.Equal(t, Inks{InkUnknown}, cards[2].Inks)
	assert.Equal(t, RarityUnknown, cards[2].Rarity)
	assert.Equal(t, VariantNormal, cards[2].Variant)

	_, ok := b.Cards["The First Chapter"]
	assert.False(t, ok)

	s, err := NewStore(b)
	require.NoError(t, err)
	assert.Equal(t, 3, s.EffectiveTotal("Mini Set"))
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing sets file", func(t *testing.T) {
		_, err := Load(fstest.MapFS{})
		var ioErr *errors.IOError
		assert.ErrorAs(t, err, &ioErr)
	})

	t.Run("malformed sets file", func(t *testing.T) {
		_, err := Load(fstest.MapFS{SetsFile: {Data: []byte("sets: [unterminated")}})
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("empty sets", func(t *testing.T) {
		_, err := Load(fstest.MapFS{SetsFile: {Data: []byte("version: x\nsets: []\n")}})
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("card file for other set", func(t *testing.T) {
		_, err := Load(fstest.MapFS{
			SetsFile:         {Data: []byte(testSetsYAML)},
			"cards/tfc.yaml": {Data: []byte("set_name: Mini Set\ncards: []\n")},
		})
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}
