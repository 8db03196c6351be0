package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Price sources reported by PromoPricer.
const (
	SourceHighValue   = "High-Value Promo Estimate"
	SourceMcDonalds   = "McDonald's Collection Estimate"
	SourceGenericHolo = "Generic Holo Promo Estimate"
	SourceGeneric     = "Generic Promo Estimate"
	SourceDefault     = "Default (No Market Data)"
)

// RarityPrice is one row of a rarity price table.
type RarityPrice struct {
	Rarity string
	Price  Price
}

// RarityTable prices a card by rarity. Entries are kept in order because
// Containing returns the first entry that matches.
type RarityTable struct {
	Entries []RarityPrice
	Default Price
}

// Exact returns the price of the entry whose key equals rarity, or the
// table default.
func (t RarityTable) Exact(rarity string) Price {
	for _, e := range t.Entries {
		if e.Rarity == rarity {
			return e.Price
		}
	}
	return t.Default
}

// Containing returns the price of the first entry whose key is a substring
// of rarity, or the table default. An empty rarity gets the default.
func (t RarityTable) Containing(rarity string) Price {
	if rarity == "" {
		return t.Default
	}
	for _, e := range t.Entries {
		if strings.Contains(rarity, e.Rarity) {
			return e.Price
		}
	}
	return t.Default
}

// PromoSet is a promotional product line recognised by a set name fragment.
type PromoSet struct {
	Key    string
	Source string
	Prices RarityTable
}

// PromoTables is the static configuration used by PromoPricer. Build it
// once and share it; nothing mutates it after construction.
type PromoTables struct {
	HighValueKeywords []string
	HighValuePrice    Price

	McDonaldsSetKeywords []string
	McDonaldsHoloTerms   []string
	McDonaldsMinTotal    int
	McDonaldsMaxTotal    int
	McDonalds            RarityTable

	PromoSets []PromoSet

	PromoNumberPatterns []*regexp.Regexp
	GenericHoloTerms    []string
	GenericHoloPrice    Price
	GenericPrice        Price

	DefaultPrice Price
}

var defaultPromoTables = newDefaultPromoTables()

// DefaultPromoTables returns the shared built-in promo price tables.
func DefaultPromoTables() *PromoTables {
	return defaultPromoTables
}

func newDefaultPromoTables() *PromoTables {
	mcdonalds := RarityTable{
		Entries: []RarityPrice{
			{"holo", 399},
			{"holofoil", 399},
			{"non-holo", 249},
			{"normal", 249},
			{"promo", 299},
			{"default", 249},
		},
		Default: 249,
	}

	title := cases.Title(language.English)
	promoSet := func(key string, prices RarityTable) PromoSet {
		return PromoSet{Key: key, Source: title.String(key) + " Promo Estimate", Prices: prices}
	}
	flat := func(p Price) RarityTable { return RarityTable{Default: p} }

	return &PromoTables{
		HighValueKeywords: []string{
			"staff",
			"championship",
			"worlds",
			"regional",
			"national",
			"winner",
			"participant",
			"judge",
			"professor",
			"league leader",
			"prerelease",
			"launch",
		},
		HighValuePrice: 1999,

		McDonaldsSetKeywords: []string{"mcdonald", "mc donald"},
		McDonaldsHoloTerms:   []string{"holo", "foil", "shiny"},
		McDonaldsMinTotal:    6,
		McDonaldsMaxTotal:    25,
		McDonalds:            mcdonalds,

		PromoSets: []PromoSet{
			promoSet("mcdonald", mcdonalds),
			promoSet("burger king", flat(299)),
			promoSet("general mills", flat(349)),
			promoSet("toys r us", flat(399)),
			promoSet("pokemon center", flat(499)),
			promoSet("pokemon go", flat(299)),
			promoSet("celebrations", flat(399)),
			promoSet("pokemon rumble", flat(249)),
			promoSet("25th anniversary", flat(499)),
		},

		PromoNumberPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^(BW|XY|SM|SWSH|SV)\d+$`),
			regexp.MustCompile(`(?i)^PR-`),
			regexp.MustCompile(`(?i)PROMO`),
			regexp.MustCompile(`(?i)^P\d+`),
		},
		GenericHoloTerms: []string{"holo", "foil", "reverse"},
		GenericHoloPrice: 349,
		GenericPrice:     249,

		DefaultPrice: 500,
	}
}

// PromoPricer estimates a price for cards that have no market data,
// typically promos. It is safe for concurrent use.
type PromoPricer struct {
	tables *PromoTables
}

// NewPromoPricer creates a pricer over tables. A nil tables uses
// DefaultPromoTables.
func NewPromoPricer(tables *PromoTables) *PromoPricer {
	if tables == nil {
		tables = DefaultPromoTables()
	}
	return &PromoPricer{tables: tables}
}

// FallbackPrice estimates a price from the card's name, set, rarity,
// collector number and characteristics. Empty strings and nil
// characteristics are treated as unknown. It always returns a quote.
func (p *PromoPricer) FallbackPrice(cardName, setName, rarity, cardNumber string, characteristics []string) Quote {
	t := p.tables
	setLower := strings.ToLower(setName)
	nameLower := strings.ToLower(cardName)
	rarityLower := strings.ToLower(rarity)
	chars := strings.ToLower(strings.Join(characteristics, " "))

	combined := nameLower + " " + setLower
	if chars != "" {
		combined += " " + chars
	}
	if containsAny(combined, t.HighValueKeywords) {
		return Quote{Price: t.HighValuePrice, Source: SourceHighValue}
	}

	if p.isMcDonalds(setLower, cardNumber) {
		price := t.McDonalds.Containing(rarityLower)
		if containsAny(chars, t.McDonaldsHoloTerms) {
			price = t.McDonalds.Exact("holo")
		}
		return Quote{Price: price, Source: SourceMcDonalds}
	}

	for _, set := range t.PromoSets {
		if strings.Contains(setLower, set.Key) {
			return Quote{Price: set.Prices.Exact(rarityLower), Source: set.Source}
		}
	}

	if strings.Contains(setLower, "promo") || p.hasPromoNumber(cardNumber) {
		if containsAny(chars, t.GenericHoloTerms) {
			return Quote{Price: t.GenericHoloPrice, Source: SourceGenericHolo}
		}
		return Quote{Price: t.GenericPrice, Source: SourceGeneric}
	}

	return Quote{Price: t.DefaultPrice, Source: SourceDefault}
}

// isMcDonalds matches McDonald's sets by name, or "collection" sets whose
// collector number total is in the small range those sets use.
func (p *PromoPricer) isMcDonalds(setLower, cardNumber string) bool {
	t := p.tables
	if containsAny(setLower, t.McDonaldsSetKeywords) {
		return true
	}

	parts := strings.Split(cardNumber, "/")
	if len(parts) != 2 {
		return false
	}
	total, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return false
	}
	return total >= t.McDonaldsMinTotal && total <= t.McDonaldsMaxTotal &&
		strings.Contains(setLower, "collection")
}

func (p *PromoPricer) hasPromoNumber(cardNumber string) bool {
	if cardNumber == "" {
		return false
	}
	for _, re := range p.tables.PromoNumberPatterns {
		if re.MatchString(cardNumber) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
