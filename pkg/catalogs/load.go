package catalogs

import (
	"io/fs"
	"path"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/inkwell/pkg/errors"
)

// Bundle file layout inside the catalog filesystem.
const (
	SetsFile       = "sets.yaml"
	CardsDir       = "cards"
	MigrationsFile = "migrations.yaml"
)

// Bundle is the decoded bundled snapshot.
type Bundle struct {
	Version    string
	Sets       []Set
	Cards      map[string][]Card // set name -> full card list
	Migrations Migrations
}

type setsFile struct {
	Version string `yaml:"version"`
	Sets    []Set  `yaml:"sets"`
}

type cardsFile struct {
	SetName string `yaml:"set_name"`
	SetCode string `yaml:"set_code"`
	Cards   []Card `yaml:"cards"`
}

// Load decodes a bundled snapshot from fsys. The sets file is required; a card
// file per set code is optional and, when present, is the full card list of
// that set. Any read or parse failure is returned, since the engine cannot run
// without its catalog.
func Load(fsys fs.FS) (*Bundle, error) {
	data, err := fs.ReadFile(fsys, SetsFile)
	if err != nil {
		return nil, errors.WrapIO("read", SetsFile, err)
	}

	var sf setsFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, errors.WrapParse("yaml", SetsFile, err)
	}
	if len(sf.Sets) == 0 {
		return nil, errors.NewParseError("yaml", SetsFile, "no sets defined", nil)
	}

	b := &Bundle{
		Version: sf.Version,
		Sets:    sf.Sets,
		Cards:   make(map[string][]Card),
	}

	for _, set := range sf.Sets {
		if set.Code == "" {
			continue
		}
		cards, ok, err := loadCardFile(fsys, set)
		if err != nil {
			return nil, err
		}
		if ok {
			b.Cards[set.Name] = cards
		}
	}

	migrations, err := loadMigrations(fsys)
	if err != nil {
		return nil, err
	}
	b.Migrations = migrations

	return b, nil
}

func loadCardFile(fsys fs.FS, set Set) ([]Card, bool, error) {
	file := path.Join(CardsDir, strings.ToLower(set.Code)+".yaml")
	data, err := fs.ReadFile(fsys, file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.WrapIO("read", file, err)
	}

	var cf cardsFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, false, errors.WrapParse("yaml", file, err)
	}
	if cf.SetName != "" && cf.SetName != set.Name {
		return nil, false, errors.NewParseError("yaml", file, "set_name "+cf.SetName+" does not match "+set.Name, nil)
	}

	for i := range cf.Cards {
		c := &cf.Cards[i]
		c.SetName = set.Name
		if c.ID == "" && c.Number > 0 {
			c.ID = UniqueID(set.Code, c.Number)
		}
		if c.Type == "" {
			c.Type = CardTypeUnknown
		}
		if c.Rarity == "" {
			c.Rarity = RarityUnknown
		}
		if c.Variant == "" {
			c.Variant = VariantNormal
		}
	}
	return cf.Cards, true, nil
}

func loadMigrations(fsys fs.FS) (Migrations, error) {
	data, err := fs.ReadFile(fsys, MigrationsFile)
	if errors.Is(err, fs.ErrNotExist) {
		return Migrations{}, nil
	}
	if err != nil {
		return Migrations{}, errors.WrapIO("read", MigrationsFile, err)
	}
	var m Migrations
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Migrations{}, errors.WrapParse("yaml", MigrationsFile, err)
	}
	return m, nil
}
