package card

import "strings"

// Game names as reported by the vision model and written to listings.
const (
	GamePokemon = "Pokemon"
	GameMTG     = "Magic: The Gathering"
)

// Raw is a card record as returned by the Pokémon TCG API. Only the fields
// the pipeline reads are decoded; anything missing stays at its zero value.
type Raw struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Number         string     `json:"number"`
	Rarity         string     `json:"rarity"`
	Supertype      string     `json:"supertype"`
	Subtypes       []string   `json:"subtypes"`
	HP             string     `json:"hp"`
	Types          []string   `json:"types"`
	Artist         string     `json:"artist"`
	RegulationMark string     `json:"regulationMark"`
	Set            Set        `json:"set"`
	TCGPlayer      *TCGPlayer `json:"tcgplayer,omitempty"`
}

// Set is the set a raw card belongs to.
type Set struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Series      string `json:"series"`
	Total       int    `json:"total"`
	ReleaseDate string `json:"releaseDate"`
}

// TCGPlayer holds the TCGPlayer product link and prices keyed by price
// category ("holofoil", "reverseHolofoil", "1stEditionHolofoil", ...).
type TCGPlayer struct {
	URL       string                `json:"url"`
	UpdatedAt string                `json:"updatedAt"`
	Prices    map[string]PricePoint `json:"prices"`
}

// PricePoint is one TCGPlayer price row. Values are dollars; zero means
// the API did not report one.
type PricePoint struct {
	Low    float64 `json:"low"`
	Mid    float64 `json:"mid"`
	High   float64 `json:"high"`
	Market float64 `json:"market"`
}

// Identification is what the vision model reads off the card images.
type Identification struct {
	Name            string   `json:"name"`
	SetName         string   `json:"set_name"`
	Number          string   `json:"number"`
	Rarity          string   `json:"rarity"`
	Game            string   `json:"game"`
	Language        string   `json:"language"`
	Characteristics []string `json:"characteristics"`
	Confidence      float64  `json:"confidence"`
	RawText         string   `json:"raw_text"`
}

// Review flags written to the listing spreadsheet.
const (
	ReviewOK            = "OK"
	ReviewNeeded        = "REVIEW"
	ReviewLowConfidence = "LOW CONFIDENCE"
)

// Listing is a fully processed card ready for the spreadsheet.
type Listing struct {
	GroupKey        string
	Name            string
	SetName         string
	Number          string
	Rarity          string
	Game            string
	Language        string
	Confidence      float64
	Finish          Finish
	Characteristics []string

	APIPrice      float64
	FinalPrice    float64
	PriceSource   string
	PriceCategory string
	TCGPlayerLink string

	ReviewFlag      string
	ProcessingNotes string

	ImagePaths []string

	HP          string
	Types       []string
	Subtypes    []string
	Artist      string
	ReleaseDate string

	// MTG only
	Power     string
	Toughness string
}

// IsPokemon reports whether the listing is for a Pokémon card.
func (l *Listing) IsPokemon() bool {
	return IsPokemonGame(l.Game)
}

// IsMTG reports whether the listing is for a Magic: The Gathering card.
func (l *Listing) IsMTG() bool {
	return IsMTGGame(l.Game)
}

// IsPokemonGame reports whether game names the Pokémon TCG, accepting the
// accented and unaccented spellings.
func IsPokemonGame(game string) bool {
	g := strings.ToLower(strings.TrimSpace(game))
	g = strings.ReplaceAll(g, "é", "e")
	return g == "pokemon" || g == "pokemon tcg"
}

// IsMTGGame reports whether game names Magic: The Gathering.
func IsMTGGame(game string) bool {
	g := strings.ToLower(strings.TrimSpace(game))
	return g == "mtg" || strings.Contains(g, "magic")
}
