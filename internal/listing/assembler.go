// Package listing turns groups of card scans into priced listings.
package listing

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/raine/tcg-card-lister/internal/llm"
	"github.com/raine/tcg-card-lister/internal/ocr"
	"github.com/raine/tcg-card-lister/internal/pricing"
	"github.com/raine/tcg-card-lister/internal/scan"
	"github.com/raine/tcg-card-lister/internal/tcgapi"
	"github.com/rs/zerolog/log"
)

const (
	ReviewThreshold        = 0.85
	LowConfidenceThreshold = 0.30
)

type AssemblerOpts struct {
	Analyzer   llm.Analyzer
	Pokemon    PokemonLookup
	MTG        MTGLookup
	PriceCache PriceCache
	Pricer     *pricing.PromoPricer
	Calculator pricing.Calculator

	// ReadFile loads an image. Defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// Assembler identifies, prices and classifies a single group of scans.
type Assembler struct {
	analyzer   llm.Analyzer
	pokemon    PokemonLookup
	mtg        MTGLookup
	cache      PriceCache
	pricer     *pricing.PromoPricer
	calculator pricing.Calculator
	readFile   func(path string) ([]byte, error)
}

func NewAssembler(opts AssemblerOpts) *Assembler {
	a := &Assembler{
		analyzer:   opts.Analyzer,
		pokemon:    opts.Pokemon,
		mtg:        opts.MTG,
		cache:      opts.PriceCache,
		pricer:     opts.Pricer,
		calculator: pricing.NewCalculator(opts.Calculator.Markup, opts.Calculator.Floor),
		readFile:   opts.ReadFile,
	}
	if a.pricer == nil {
		a.pricer = pricing.NewPromoPricer(nil)
	}
	if a.readFile == nil {
		a.readFile = os.ReadFile
	}
	return a
}

// Assemble builds a listing for g. Lookup failures only lower the quality
// of the listing; an error is returned when the images cannot be read or
// identified.
func (a *Assembler) Assemble(ctx context.Context, g scan.Group) (*card.Listing, error) {
	images := make([][]byte, 0, len(g.Paths))
	for _, p := range g.Paths {
		data, err := a.readFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", p, err)
		}
		images = append(images, data)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("group %s has no images", g.Key)
	}

	result, err := a.analyzer.IdentifyCard(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("failed to identify card: %w", err)
	}
	if result == nil || result.Card == nil {
		return nil, fmt.Errorf("no identification for group %s", g.Key)
	}
	id := *result.Card

	var notes []string
	if id.Name == "" {
		if name, ok := ocr.ExtractCardName(id.RawText); ok {
			id.Name = name
			notes = append(notes, "Name read from card text")
		}
	}
	if id.Number == "" {
		if number, ok := ocr.ExtractCardNumber(id.RawText); ok {
			id.Number = number
			notes = append(notes, "Number read from card text")
		}
	}
	if id.Game == "" {
		id.Game = card.GamePokemon
	}
	if id.Language == "" {
		id.Language = "English"
	}

	l := &card.Listing{
		GroupKey:        g.Key,
		Name:            id.Name,
		SetName:         id.SetName,
		Number:          id.Number,
		Rarity:          id.Rarity,
		Game:            id.Game,
		Language:        id.Language,
		Confidence:      id.Confidence,
		Characteristics: card.MergeCharacteristics(id.Characteristics),
		ImagePaths:      g.Paths,
	}

	var base pricing.Price
	var priced bool
	switch {
	case card.IsMTGGame(id.Game):
		l.Game = card.GameMTG
		base, priced = a.priceMTG(ctx, &id, l)
	case card.IsPokemonGame(id.Game):
		l.Game = card.GamePokemon
		base, priced = a.pricePokemon(ctx, &id, l)
	default:
		log.Info().Str("game", id.Game).Str("group", g.Key).Msg("no price lookup for game")
		l.Finish = card.ClassifyFinish(rawFromIdentification(&id), "")
	}

	if !priced {
		q := a.pricer.FallbackPrice(l.Name, l.SetName, l.Rarity, l.Number, l.Characteristics)
		base = q.Price
		l.PriceSource = q.Source
		notes = append(notes, "No market price found, using "+q.Source)
	}

	l.APIPrice = base.Float64()
	l.FinalPrice = a.calculator.Final(base).Float64()

	if l.TCGPlayerLink == "" {
		l.TCGPlayerLink = SearchLink(l)
	}

	l.ReviewFlag = ReviewFlag(l.Name, l.Confidence)
	l.ProcessingNotes = strings.Join(notes, "; ")

	log.Info().
		Str("group", g.Key).
		Str("name", l.Name).
		Str("set", l.SetName).
		Str("finish", string(l.Finish)).
		Float64("price", l.FinalPrice).
		Str("review", l.ReviewFlag).
		Msg("listing assembled")

	return l, nil
}

func (a *Assembler) pricePokemon(ctx context.Context, id *card.Identification, l *card.Listing) (pricing.Price, bool) {
	var raw *card.Raw
	if a.pokemon != nil && id.Name != "" {
		var err error
		raw, err = cachedLookup(a.cache, priceCacheKey("pokemon", id), func() (*card.Raw, error) {
			return a.pokemon.FindCard(ctx, tcgapi.Query{Name: id.Name, SetName: id.SetName, Number: id.Number})
		})
		if err != nil {
			log.Warn().Err(err).Str("name", id.Name).Msg("pokemon lookup failed")
		}
	}

	if raw == nil {
		l.Finish = card.ClassifyFinish(rawFromIdentification(id), "")
		l.Characteristics = card.MergeCharacteristics(l.Characteristics, card.ExtractFeatures(rawFromIdentification(id), "")...)
		return 0, false
	}

	l.HP = raw.HP
	l.Types = raw.Types
	l.Subtypes = raw.Subtypes
	l.Artist = raw.Artist
	l.ReleaseDate = raw.Set.ReleaseDate
	if l.Rarity == "" {
		l.Rarity = raw.Rarity
	}
	if l.SetName == "" {
		l.SetName = raw.Set.Name
	}
	if l.Number == "" {
		l.Number = raw.Number
	}

	var market pricing.MarketPrice
	var priced bool
	if raw.TCGPlayer != nil {
		l.TCGPlayerLink = raw.TCGPlayer.URL
		market, priced = pricing.SelectMarketPrice(raw.TCGPlayer.Prices, id.Characteristics, id.Language, raw.Set.Name)
	}
	if priced {
		l.PriceCategory = market.Category
		l.PriceSource = fmt.Sprintf("Pokemon TCG API (%s) - Near Mint", market.Category)
	}

	l.Finish = card.ClassifyFinish(*raw, l.PriceCategory)
	l.Characteristics = card.MergeCharacteristics(l.Characteristics, card.ExtractFeatures(*raw, l.PriceCategory)...)

	return market.Price, priced
}

func (a *Assembler) priceMTG(ctx context.Context, id *card.Identification, l *card.Listing) (pricing.Price, bool) {
	if a.mtg == nil || id.Name == "" {
		return 0, false
	}

	mtg, err := cachedLookup(a.cache, priceCacheKey("mtg", id), func() (*tcgapi.MTGCard, error) {
		return a.mtg.FindCard(ctx, id.Name, id.SetName, id.Characteristics)
	})
	if err != nil {
		log.Warn().Err(err).Str("name", id.Name).Msg("scryfall lookup failed")
	}
	if mtg == nil {
		l.Finish = card.Finish((&tcgapi.MTGCard{Foil: tcgapi.MentionsFoil(id.Characteristics)}).Finish())
		return 0, false
	}
	// Foil is not part of the cached payload
	mtg.Foil = tcgapi.MentionsFoil(id.Characteristics)

	l.Finish = card.Finish(mtg.Finish())
	l.Power = mtg.Power
	l.Toughness = mtg.Toughness
	l.Artist = mtg.Artist
	l.ReleaseDate = mtg.ReleasedAt
	l.TCGPlayerLink = mtg.TCGPlayerURL()
	if l.SetName == "" {
		l.SetName = mtg.SetName
	}
	if l.Number == "" {
		l.Number = mtg.CollectorNumber
	}
	if l.Rarity == "" {
		l.Rarity = mtg.Rarity
	}

	price, ok := mtg.NearMintPrice()
	if ok {
		l.PriceSource = "Scryfall API - Near Mint"
	}
	return price, ok
}

// rawFromIdentification lets the finish and feature rules run on what the
// vision model saw when no API record was found.
func rawFromIdentification(id *card.Identification) card.Raw {
	return card.Raw{
		Name:     id.Name,
		Number:   id.Number,
		Rarity:   id.Rarity,
		Subtypes: id.Characteristics,
		Set:      card.Set{Name: id.SetName},
	}
}

// ReviewFlag decides whether a listing needs a human look. Names that are
// missing, a single character or only digits are always flagged.
func ReviewFlag(name string, confidence float64) string {
	name = strings.TrimSpace(name)
	if len([]rune(name)) <= 1 || isDigits(name) {
		return card.ReviewNeeded
	}
	switch {
	case confidence >= ReviewThreshold:
		return card.ReviewOK
	case confidence >= LowConfidenceThreshold:
		return card.ReviewNeeded
	default:
		return card.ReviewLowConfidence
	}
}

// SearchLink builds a TCGPlayer search URL for listings without a product
// link.
func SearchLink(l *card.Listing) string {
	q := url.Values{}
	q.Set("q", l.Name)

	switch {
	case l.IsPokemon():
		if l.SetName != "" {
			q.Set("setName", l.SetName)
		}
		return "https://www.tcgplayer.com/search/pokemon/product?" + q.Encode()
	case l.IsMTG():
		if l.SetName != "" {
			q.Set("setName", l.SetName)
		}
		return "https://www.tcgplayer.com/search/magic/product?" + q.Encode()
	default:
		return "https://www.tcgplayer.com/search/all/product?" + q.Encode()
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
