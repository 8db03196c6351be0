package listing

import (
	"context"
	"strings"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/raine/tcg-card-lister/internal/llm"
	"github.com/rs/zerolog/log"
)

var (
	skippedPokemonRarities = []string{"common", "uncommon", "normal", "regular"}
	skippedRarities        = []string{"normal", "regular"}
	skippedFinishes        = []string{"normal", "regular", "standard", "non-foil", "nonfoil", "non-holo"}
)

// Title returns an eBay title for l. The title writer is tried first; its
// errors are logged and the rule based title is used instead.
func Title(ctx context.Context, w llm.TitleWriter, l *card.Listing) string {
	if w != nil {
		title, err := w.GenerateTitle(ctx, l)
		if err == nil {
			return title
		}
		log.Warn().Err(err).Str("name", l.Name).Msg("title generation failed, using fallback title")
	}
	return FallbackTitle(l)
}

// FallbackTitle builds a title from the listing fields:
// game, name, number, set, rarity, finish, one characteristic, condition.
func FallbackTitle(l *card.Listing) string {
	isPokemon := l.IsPokemon() || l.Game == ""

	var parts []string
	switch {
	case isPokemon:
		parts = append(parts, "Pokémon")
	case l.IsMTG():
		parts = append(parts, "MTG")
	default:
		parts = append(parts, l.Game)
	}

	if l.Name != "" {
		parts = append(parts, l.Name)
	}
	if l.Number != "" {
		parts = append(parts, l.Number)
	}
	if l.SetName != "" {
		setName := l.SetName
		if strings.Contains(setName, "Promos") && hasLabel(l.Characteristics, "Promo") {
			setName = strings.TrimSpace(strings.ReplaceAll(setName, "Promos", ""))
		}
		if setName != "" {
			parts = append(parts, setName)
		}
	}

	rarity := strings.TrimSpace(l.Rarity)
	skipped := skippedRarities
	if isPokemon {
		skipped = skippedPokemonRarities
	}
	if rarity != "" && !hasLabel(skipped, rarity) {
		parts = append(parts, rarity)
	}

	finish := strings.TrimSpace(string(l.Finish))
	finishLower := strings.ToLower(finish)
	if finish != "" && !hasLabel(skippedFinishes, finish) &&
		(strings.Contains(finishLower, "holo") || strings.Contains(finishLower, "foil")) &&
		!partsContain(parts, finish) {
		parts = append(parts, finish)
	}

	if len(l.Characteristics) > 0 {
		c := l.Characteristics[0]
		if !partsContain(parts, c) {
			parts = append(parts, c)
		}
	}

	parts = append(parts, "NM/LP")
	if lang := strings.ToLower(l.Language); lang == "japanese" || lang == "jp" {
		parts = append(parts, "JP")
	}

	title := strings.Join(parts, " ")
	if len([]rune(title)) <= llm.MaxTitleLength {
		return title
	}

	essential := parts
	if len(parts) > 5 {
		essential = append(append([]string{}, parts[:4]...), parts[len(parts)-1])
	}
	title = strings.Join(essential, " ")
	if r := []rune(title); len(r) > llm.MaxTitleLength {
		title = string(r[:llm.MaxTitleLength-3]) + "..."
	}
	return title
}

func hasLabel(list []string, label string) bool {
	for _, l := range list {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// partsContain reports whether s already appears inside one of parts.
func partsContain(parts []string, s string) bool {
	s = strings.ToLower(s)
	for _, p := range parts {
		if strings.Contains(strings.ToLower(p), s) {
			return true
		}
	}
	return false
}
