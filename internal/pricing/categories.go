package pricing

import (
	"sort"
	"strings"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/rs/zerolog/log"
)

// characteristicCategories maps a lower-cased characteristic to the
// TCGPlayer price categories worth trying for it, best first.
var characteristicCategories = map[string][]string{
	// Editions
	"1st edition":   {"1stEdition", "1stEditionHolofoil", "1stEditionNormal"},
	"first edition": {"1stEdition", "1stEditionHolofoil", "1stEditionNormal"},
	"shadowless":    {"shadowless", "shadowlessHolofoil", "shadowlessFirst"},
	"unlimited":     {"unlimited", "unlimitedHolofoil", "normal", "holofoil"},
	"base set 2":    {"unlimited", "normal"},

	// Print errors
	"error":     {"error", "misprint", "unlimited", "normal"},
	"misprint":  {"error", "misprint", "unlimited", "normal"},
	"miscut":    {"error", "misprint", "unlimited", "normal"},
	"crimp":     {"error", "unlimited", "normal"},
	"ink error": {"error", "misprint", "unlimited", "normal"},

	// Events and promos
	"staff":              {"staff", "promo", "normal"},
	"stamped":            {"stamped", "promo", "normal"},
	"promo":              {"promo", "promotional", "normal"},
	"promotional":        {"promo", "promotional", "normal"},
	"pre-release":        {"prerelease", "promo", "normal"},
	"prerelease":         {"prerelease", "promo", "normal"},
	"championship":       {"championship", "promo", "normal"},
	"world championship": {"worldChampionship", "championship", "promo"},
	"tournament":         {"tournament", "promo", "normal"},
	"league":             {"league", "promo", "normal"},
	"winner":             {"winner", "promo", "normal"},
	"city championship":  {"cityChampionship", "championship", "promo"},
	"regional":           {"regional", "championship", "promo"},
	"national":           {"national", "championship", "promo"},

	// Holo treatments
	"reverse holo":     {"reverseHolofoil", "holofoil", "normal"},
	"reverse holofoil": {"reverseHolofoil", "holofoil", "normal"},
	"holo":             {"holofoil", "unlimited", "normal"},
	"holofoil":         {"holofoil", "unlimited", "normal"},
	"cosmos holo":      {"cosmosHolo", "holofoil", "normal"},
	"cracked ice":      {"crackedIce", "holofoil", "normal"},

	// Languages
	"japanese":   {"japanese", "normal"},
	"german":     {"german", "normal"},
	"french":     {"french", "normal"},
	"italian":    {"italian", "normal"},
	"spanish":    {"spanish", "normal"},
	"korean":     {"korean", "normal"},
	"chinese":    {"chinese", "normal"},
	"portuguese": {"portuguese", "normal"},
	"russian":    {"russian", "normal"},
	"dutch":      {"dutch", "normal"},

	// Rarity treatments
	"gold star":       {"goldStar", "holofoil", "normal"},
	"shining":         {"shining", "holofoil", "normal"},
	"crystal":         {"crystal", "holofoil", "normal"},
	"amazing rare":    {"amazingRare", "holofoil", "normal"},
	"secret rare":     {"secretRare", "holofoil", "normal"},
	"rainbow rare":    {"rainbowRare", "secretRare", "holofoil"},
	"gold rare":       {"goldRare", "secretRare", "holofoil"},
	"full art":        {"fullArt", "holofoil", "normal"},
	"alternate art":   {"alternateArt", "fullArt", "holofoil"},
	"trainer gallery": {"trainerGallery", "holofoil", "normal"},
}

type combinationRule struct {
	requires   []string
	categories []string
}

// Checked in order; every rule whose requirements are all present applies.
var combinationRules = []combinationRule{
	{
		requires:   []string{"shadowless", "1st edition"},
		categories: []string{"shadowless1stEdition", "shadowlessFirst", "1stEdition"},
	},
	{
		requires:   []string{"staff", "promo"},
		categories: []string{"staffPromo", "staff", "promo"},
	},
	{
		requires:   []string{"championship", "promo"},
		categories: []string{"championshipPromo", "championship", "promo"},
	},
}

type setRule struct {
	pattern    string
	exclude    []string
	additional []string
	force      []string
}

var setRules = []setRule{
	{
		pattern: "base set 2",
		exclude: []string{"1stEdition", "1stEditionHolofoil", "1stEditionNormal"},
		force:   []string{"unlimited", "normal"},
	},
	{pattern: "evolutions", additional: []string{"evolutions", "normal"}},
	{pattern: "celebrations", additional: []string{"celebrations", "normal"}},
}

var defaultCategories = []string{
	"unlimited",
	"unlimitedHolofoil",
	"normal",
	"holofoil",
	"reverseHolofoil",
	"nonHolo",
	"common",
	"uncommon",
	"rare",
	"rareHolo",
}

var (
	notFirstEditionCategories = []string{
		"1stEdition", "1stEditionHolofoil", "1stEditionNormal",
		"shadowless1stEdition", "shadowlessFirst",
	}
	notShadowlessCategories = []string{
		"shadowless", "shadowlessHolofoil", "shadowlessFirst", "shadowless1stEdition",
	}
	notPromoCategories = []string{
		"promo", "promotional", "staffPromo", "championshipPromo", "prerelease", "staff",
	}
	promoTerms = []string{"promo", "staff", "championship", "tournament"}
)

// MarketPrice is a near mint market price and the TCGPlayer category it
// was read from.
type MarketPrice struct {
	Price    Price
	Category string
}

// PriceCategories returns the TCGPlayer price categories to try, best
// first, for a card with the given characteristics, language and set.
// When available is non-empty the result is restricted to those keys.
func PriceCategories(characteristics []string, lang, setName string, available []string) []string {
	chars := make([]string, 0, len(characteristics))
	for _, c := range characteristics {
		chars = append(chars, strings.ToLower(c))
	}

	var categories []string

	for _, rule := range combinationRules {
		if containsAll(chars, rule.requires) {
			categories = append(categories, rule.categories...)
		}
	}

	for _, c := range chars {
		categories = append(categories, characteristicCategories[c]...)
	}

	if lang != "" && strings.ToLower(lang) != "english" {
		categories = append(categories, characteristicCategories[strings.ToLower(lang)]...)
	}

	categories = append(categories, defaultCategories...)

	if setName != "" {
		setLower := strings.ToLower(setName)
		for _, rule := range setRules {
			if !strings.Contains(setLower, rule.pattern) {
				continue
			}
			categories = without(categories, rule.exclude)
			categories = append(categories, rule.additional...)
			if len(rule.force) > 0 {
				categories = append(append([]string{}, rule.force...), categories...)
			}
		}
	}

	if !anyContains(chars, "1st edition", "first edition") {
		categories = without(categories, notFirstEditionCategories)
	}
	if !anyContains(chars, "shadowless") {
		categories = without(categories, notShadowlessCategories)
	}
	if !anyContains(chars, promoTerms...) {
		categories = without(categories, notPromoCategories)
	}

	categories = dedupe(categories)

	if len(available) > 0 {
		avail := make(map[string]bool, len(available))
		for _, a := range available {
			avail[a] = true
		}
		filtered := categories[:0]
		for _, c := range categories {
			if avail[c] {
				filtered = append(filtered, c)
			}
		}
		categories = filtered
	}

	return categories
}

// SelectMarketPrice picks the near mint price that best fits the card's
// characteristics from a TCGPlayer price table. Market prices are preferred
// over mid prices. If no preferred category has a price, any category with
// one is used. ok is false when the table holds no usable price.
func SelectMarketPrice(prices map[string]card.PricePoint, characteristics []string, lang, setName string) (MarketPrice, bool) {
	if len(prices) == 0 {
		return MarketPrice{}, false
	}

	available := make([]string, 0, len(prices))
	for k := range prices {
		available = append(available, k)
	}
	sort.Strings(available)

	for _, category := range PriceCategories(characteristics, lang, setName, available) {
		if p, ok := nearMint(prices[category]); ok {
			return MarketPrice{Price: p, Category: category}, true
		}
	}

	for _, category := range available {
		if p, ok := nearMint(prices[category]); ok {
			log.Warn().
				Str("category", category).
				Str("price", p.String()).
				Msg("no matching price category, using first available")
			return MarketPrice{Price: p, Category: category}, true
		}
	}

	return MarketPrice{}, false
}

func nearMint(pp card.PricePoint) (Price, bool) {
	if pp.Market > 0 {
		return Dollars(pp.Market), true
	}
	if pp.Mid > 0 {
		return Dollars(pp.Mid), true
	}
	return 0, false
}

func containsAll(list, required []string) bool {
	for _, r := range required {
		found := false
		for _, l := range list {
			if l == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// anyContains reports whether any element of list contains any of terms.
func anyContains(list []string, terms ...string) bool {
	for _, l := range list {
		if containsAny(l, terms) {
			return true
		}
	}
	return false
}

func without(list, drop []string) []string {
	out := make([]string, 0, len(list))
	for _, l := range list {
		keep := true
		for _, d := range drop {
			if l == d {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, l)
		}
	}
	return out
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, l := range list {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
