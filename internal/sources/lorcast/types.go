package lorcast

// setsResponse is the body of GET /sets.
type setsResponse struct {
	Results []Set `json:"results"`
}

// Set is a set as listed by Lorcast.
type Set struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	ReleasedAt    string `json:"released_at,omitempty"`
	PrereleasedAt string `json:"prereleased_at,omitempty"`
}

// Card is a card as returned by GET /sets/{code}/cards.
type Card struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Version         *string   `json:"version"`
	Layout          string    `json:"layout,omitempty"`
	ReleasedAt      string    `json:"released_at,omitempty"`
	ImageURIs       ImageURIs `json:"image_uris"`
	Cost            *int      `json:"cost"`
	Inkwell         *bool     `json:"inkwell"`
	Ink             *string   `json:"ink"`
	Type            []string  `json:"type"`
	Classifications []string  `json:"classifications,omitempty"`
	Text            *string   `json:"text"`
	MoveCost        *int      `json:"move_cost"`
	Strength        *int      `json:"strength"`
	Willpower       *int      `json:"willpower"`
	Lore            *int      `json:"lore"`
	Rarity          string    `json:"rarity"`
	Illustrators    []string  `json:"illustrators,omitempty"`
	CollectorNumber string    `json:"collector_number"`
	Lang            string    `json:"lang,omitempty"`
	FlavorText      *string   `json:"flavor_text"`
	TCGPlayerID     *int      `json:"tcgplayer_id"`
	Set             CardSet   `json:"set"`
	Prices          Prices    `json:"prices"`
}

// CardSet is the set reference embedded in a card.
type CardSet struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ImageURIs holds the card image links by format.
type ImageURIs struct {
	Digital struct {
		Small  string `json:"small"`
		Normal string `json:"normal"`
		Large  string `json:"large"`
	} `json:"digital"`
}

// Prices holds market prices as decimal strings, null when unknown.
type Prices struct {
	USD     *string `json:"usd"`
	USDFoil *string `json:"usd_foil"`
}
