package catalogs

import (
	"slices"
	"strings"
)

// CardType is the closed set of card types. Values that do not parse become
// CardTypeUnknown so they stay visible to filters.
type CardType string

// Card types.
const (
	CardTypeCharacter CardType = "Character"
	CardTypeAction    CardType = "Action"
	CardTypeSong      CardType = "Song"
	CardTypeItem      CardType = "Item"
	CardTypeLocation  CardType = "Location"
	CardTypeUnknown   CardType = "Unknown"
)

// CardTypes lists every known card type in display order.
var CardTypes = []CardType{
	CardTypeCharacter,
	CardTypeAction,
	CardTypeSong,
	CardTypeItem,
	CardTypeLocation,
}

// String returns the string representation of a CardType.
func (t CardType) String() string {
	return string(t)
}

// ParseCardType maps free-form type text to a CardType.
// Songs are printed as "Action - Song", so a song tag wins over action.
func ParseCardType(s string) CardType {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return CardTypeUnknown
	case strings.Contains(s, "song"):
		return CardTypeSong
	case strings.Contains(s, "character"):
		return CardTypeCharacter
	case strings.Contains(s, "action"):
		return CardTypeAction
	case strings.Contains(s, "item"):
		return CardTypeItem
	case strings.Contains(s, "location"):
		return CardTypeLocation
	default:
		return CardTypeUnknown
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t CardType) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CardType) UnmarshalText(b []byte) error {
	*t = ParseCardType(string(b))
	return nil
}

// InkColor is one of the six inks, or InkUnknown.
type InkColor string

// Ink colors.
const (
	InkAmber    InkColor = "Amber"
	InkAmethyst InkColor = "Amethyst"
	InkEmerald  InkColor = "Emerald"
	InkRuby     InkColor = "Ruby"
	InkSapphire InkColor = "Sapphire"
	InkSteel    InkColor = "Steel"
	InkUnknown  InkColor = "Unknown"
)

// InkColors lists every known ink.
var InkColors = []InkColor{InkAmber, InkAmethyst, InkEmerald, InkRuby, InkSapphire, InkSteel}

// String returns the string representation of an InkColor.
func (c InkColor) String() string {
	return string(c)
}

// ParseInkColor maps a single ink tag to an InkColor.
func ParseInkColor(s string) InkColor {
	s = strings.TrimSpace(s)
	for _, c := range InkColors {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return InkUnknown
}

// Inks is the set of inks printed on a card. Dual-ink cards carry two.
// The text form is the tags joined by "/".
type Inks []InkColor

// inkSeparators are the delimiters seen in card data.
const inkSeparators = "/,|&-"

// ParseInks splits a delimited ink string into a deduplicated set.
// Empty input yields an empty set; unrecognized tags become InkUnknown.
func ParseInks(s string) Inks {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(inkSeparators, r)
	})
	inks := make(Inks, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		c := ParseInkColor(f)
		if !slices.Contains(inks, c) {
			inks = append(inks, c)
		}
	}
	return inks
}

// Contains reports whether the set holds c.
func (i Inks) Contains(c InkColor) bool {
	return slices.Contains(i, c)
}

// String joins the inks with "/".
func (i Inks) String() string {
	parts := make([]string, len(i))
	for n, c := range i {
		parts[n] = string(c)
	}
	return strings.Join(parts, "/")
}

// MarshalText implements encoding.TextMarshaler.
func (i Inks) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Inks) UnmarshalText(b []byte) error {
	*i = ParseInks(string(b))
	return nil
}

// Rarity is the printed rarity of a card. Rarities have a fixed order used
// for sorting, see Rank.
type Rarity string

// Rarities in ascending order.
const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RaritySuperRare Rarity = "Super Rare"
	RarityLegendary Rarity = "Legendary"
	RarityEpic      Rarity = "Epic"
	RarityEnchanted Rarity = "Enchanted"
	RarityIconic    Rarity = "Iconic"
	RarityPromo     Rarity = "Promo"
	RarityUnknown   Rarity = "Unknown"
)

// Rarities lists every known rarity in ascending order.
var Rarities = []Rarity{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RaritySuperRare,
	RarityLegendary,
	RarityEpic,
	RarityEnchanted,
	RarityIconic,
	RarityPromo,
}

// String returns the string representation of a Rarity.
func (r Rarity) String() string {
	return string(r)
}

// Rank returns the sort position of r. Unknown rarities sort last.
func (r Rarity) Rank() int {
	if i := slices.Index(Rarities, r); i >= 0 {
		return i
	}
	return len(Rarities)
}

// ParseRarity normalizes rarity text such as "super_rare" or "SUPER RARE".
func ParseRarity(s string) Rarity {
	s = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", " ")))
	if s == "special" {
		return RarityPromo
	}
	for _, r := range Rarities {
		if s == strings.ToLower(string(r)) {
			return r
		}
	}
	return RarityUnknown
}

// MarshalText implements encoding.TextMarshaler.
func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rarity) UnmarshalText(b []byte) error {
	*r = ParseRarity(string(b))
	return nil
}

// Variant distinguishes printings of the same card.
type Variant string

// Card variants.
const (
	VariantNormal    Variant = "Normal"
	VariantFoil      Variant = "Foil"
	VariantEnchanted Variant = "Enchanted"
	VariantPromo     Variant = "Promo"
	VariantEpic      Variant = "Epic"
	VariantIconic    Variant = "Iconic"
	VariantUnknown   Variant = "Unknown"
)

// Variants lists every known variant.
var Variants = []Variant{VariantNormal, VariantFoil, VariantEnchanted, VariantPromo, VariantEpic, VariantIconic}

// String returns the string representation of a Variant.
func (v Variant) String() string {
	return string(v)
}

// ParseVariant maps variant text to a Variant. Empty text is a normal printing.
func ParseVariant(s string) Variant {
	s = strings.TrimSpace(s)
	if s == "" {
		return VariantNormal
	}
	for _, v := range Variants {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	return VariantUnknown
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(b []byte) error {
	*v = ParseVariant(string(b))
	return nil
}
