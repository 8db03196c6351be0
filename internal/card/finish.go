package card

import "strings"

// Finish is the print treatment of a card.
type Finish string

const (
	FinishHolo         Finish = "Holo"
	FinishReverseHolo  Finish = "Reverse Holo"
	FinishFirstEdition Finish = "1st Edition"
	FinishFullArt      Finish = "Full Art"
	FinishSecretRare   Finish = "Secret Rare"
	FinishRainbow      Finish = "Rainbow"
	FinishGold         Finish = "Gold"
	FinishShining      Finish = "Shining"
	FinishNonHolo      Finish = "Non-Holo"
)

// Finishes lists every finish ClassifyFinish can return.
var Finishes = []Finish{
	FinishHolo,
	FinishReverseHolo,
	FinishFirstEdition,
	FinishFullArt,
	FinishSecretRare,
	FinishRainbow,
	FinishGold,
	FinishShining,
	FinishNonHolo,
}

// keywordRule maps a set of substrings to a finish.
type keywordRule struct {
	keywords []string
	finish   Finish
}

var priceCategoryRules = []keywordRule{
	{[]string{"reverse"}, FinishReverseHolo},
	{[]string{"holofoil"}, FinishHolo},
	{[]string{"1st"}, FinishFirstEdition},
}

var subtypeRules = []keywordRule{
	{[]string{"full art", "fullart"}, FinishFullArt},
	{[]string{"secret"}, FinishSecretRare},
	{[]string{"rainbow"}, FinishRainbow},
	{[]string{"gold"}, FinishGold},
}

// Name suffixes of mechanics that are always printed holo.
var holoNameSuffixes = []string{" ex", " gx", " v", " vmax", " vstar"}

// ClassifyFinish derives the finish of a card from its API record and the
// price category its market price was taken from. An empty priceCategory
// means no price category is known.
//
// Rules are tried in a fixed order and the first match wins. A reverse holo
// promo without a price category falls through to the promo rule and comes
// back as plain Holo.
func ClassifyFinish(raw Raw, priceCategory string) Finish {
	if priceCategory != "" {
		if f, ok := matchRules(strings.ToLower(priceCategory), priceCategoryRules); ok {
			return f
		}
	}

	rarity := strings.ToLower(raw.Rarity)
	if strings.Contains(rarity, "holo") {
		if strings.Contains(rarity, "reverse") {
			return FinishReverseHolo
		}
		return FinishHolo
	}

	for _, subtype := range raw.Subtypes {
		if f, ok := matchRules(strings.ToLower(subtype), subtypeRules); ok {
			return f
		}
	}

	setName := strings.ToLower(raw.Set.Name)
	name := strings.ToLower(raw.Name)

	if strings.Contains(setName, "shining") && strings.Contains(name, "shining") {
		return FinishShining
	}

	for _, suffix := range holoNameSuffixes {
		if strings.HasSuffix(name, suffix) {
			return FinishHolo
		}
	}

	if strings.Contains(name, "break") {
		return FinishHolo
	}

	if strings.Contains(setName, "promo") {
		return FinishHolo
	}

	return FinishNonHolo
}

func matchRules(s string, rules []keywordRule) (Finish, bool) {
	for _, rule := range rules {
		if containsAny(s, rule.keywords) {
			return rule.finish, true
		}
	}
	return "", false
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
