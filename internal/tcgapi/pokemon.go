package tcgapi

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/rs/zerolog/log"
)

const PokemonAPIBaseURL = "https://api.pokemontcg.io/v2"

type PokemonClientOpts struct {
	BaseURL string
	APIKey  string
	// Pause before every request; the free tier is rate limited.
	RateLimit time.Duration
	Timeout   time.Duration
}

// PokemonClient searches the Pokémon TCG API.
type PokemonClient struct {
	httpClient *resty.Client
	apiKey     string
	rateLimit  time.Duration
}

func NewPokemonClient(opts PokemonClientOpts) *PokemonClient {
	baseURL := PokemonAPIBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	return &PokemonClient{
		httpClient: newHTTPClient(baseURL, opts.Timeout),
		apiKey:     opts.APIKey,
		rateLimit:  opts.RateLimit,
	}
}

// Query describes the card being searched for, as read from the card.
type Query struct {
	Name    string
	SetName string
	Number  string
}

type strategy struct {
	name     string
	q        string
	pageSize int
}

type cardsResponse struct {
	Data []card.Raw `json:"data"`
}

var (
	nameSpecialChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	promoNumberRe    = regexp.MustCompile(`(?i)(SWSH|SM|XY|BW|DP|HGSS)\s*-?\s*P?\s*(\d+)`)
	firstNumberRe    = regexp.MustCompile(`\d+`)
)

// Common spellings of the black star promo sets.
var setAliases = []struct {
	alias string
	name  string
}{
	{"sword shield promos", "SWSH Black Star Promos"},
	{"swsh promos", "SWSH Black Star Promos"},
	{"sword & shield promos", "SWSH Black Star Promos"},
	{"sun moon promos", "SM Black Star Promos"},
	{"sm promos", "SM Black Star Promos"},
	{"xy promos", "XY Black Star Promos"},
	{"black white promos", "BW Black Star Promos"},
	{"bw promos", "BW Black Star Promos"},
}

// FindCard runs a series of increasingly broad searches and returns the
// best scoring card. A match that carries TCGPlayer prices ends the search;
// otherwise the first unpriced match is returned once all strategies are
// exhausted. Errors from single strategies are logged and skipped.
func (c *PokemonClient) FindCard(ctx context.Context, q Query) (*card.Raw, error) {
	var unpriced *card.Raw

	for _, s := range buildStrategies(q) {
		if err := wait(ctx, c.rateLimit); err != nil {
			return nil, err
		}

		log.Debug().Str("strategy", s.name).Str("q", s.q).Msg("searching pokemon tcg api")

		cards, err := c.search(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error().Err(err).Str("strategy", s.name).Msg("pokemon tcg api search failed")
			continue
		}

		best := bestMatch(cards, q)
		if best == nil {
			continue
		}
		if hasPrices(best) {
			log.Info().
				Str("strategy", s.name).
				Str("name", best.Name).
				Str("set", best.Set.Name).
				Str("number", best.Number).
				Msg("found card")
			return best, nil
		}
		if unpriced == nil {
			unpriced = best
		}
	}

	if unpriced != nil {
		log.Warn().Str("name", unpriced.Name).Str("set", unpriced.Set.Name).Msg("found card without prices")
		return unpriced, nil
	}

	log.Warn().Str("name", q.Name).Str("set", q.SetName).Msg("no match found after trying all strategies")
	return nil, ErrNotFound
}

func (c *PokemonClient) search(ctx context.Context, s strategy) ([]card.Raw, error) {
	result := &cardsResponse{}
	req := c.httpClient.NewRequest().
		SetContext(ctx).
		SetResult(result).
		SetQueryParams(map[string]string{
			"q":        s.q,
			"pageSize": fmt.Sprint(s.pageSize),
			"orderBy":  "-set.releaseDate",
		})
	if c.apiKey != "" {
		req.SetHeader("X-Api-Key", c.apiKey)
	}

	_, err := handleError(req.Get("/cards"))
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

func buildStrategies(q Query) []strategy {
	var strategies []strategy

	name := CleanCardName(q.Name)
	set := CleanSetName(q.SetName)

	if set != "" && strings.ToLower(set) != "unknown" {
		strategies = append(strategies, strategy{
			name:     "exact name + set",
			q:        fmt.Sprintf(`name:"%s" set.name:"%s"`, unquote(q.Name), unquote(set)),
			pageSize: 10,
		})
	}

	if number := CleanCardNumber(q.Number); number != "" {
		strategies = append(strategies,
			strategy{name: "card number", q: "number:" + number, pageSize: 20},
			strategy{name: "card number wildcard", q: "number:*" + number + "*", pageSize: 20},
		)
	}

	if name != "" {
		strategies = append(strategies, strategy{
			name:     "name only",
			q:        fmt.Sprintf(`name:"%s"`, name),
			pageSize: 15,
		})
	}

	if parts := strings.Fields(name); len(parts) > 1 {
		strategies = append(strategies, strategy{
			name:     "partial name",
			q:        fmt.Sprintf(`name:"%s"`, strings.Join(parts[:2], " ")),
			pageSize: 20,
		})
	}

	if name != "" && strings.Contains(strings.ToLower(q.SetName), "promo") {
		strategies = append(strategies, strategy{
			name:     "promo search",
			q:        fmt.Sprintf(`name:"%s" set.name:*promo*`, name),
			pageSize: 20,
		})
	}

	return strategies
}

// CleanCardName strips characters that break the API's query syntax.
func CleanCardName(name string) string {
	return strings.TrimSpace(nameSpecialChars.ReplaceAllString(name, ""))
}

// CleanSetName maps informal promo set names to their API names.
func CleanSetName(set string) string {
	lower := strings.ToLower(set)
	for _, a := range setAliases {
		if strings.Contains(lower, a.alias) {
			return a.name
		}
	}
	return set
}

// CleanCardNumber extracts the searchable part of a collector number:
// "SM-P 283" becomes "SM283" and "11/20" becomes "11".
func CleanCardNumber(number string) string {
	if number == "" {
		return ""
	}
	if m := promoNumberRe.FindStringSubmatch(number); m != nil {
		return strings.ToUpper(m[1] + m[2])
	}
	if m := firstNumberRe.FindString(number); m != "" {
		return m
	}
	return number
}

func unquote(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

// bestMatch returns the highest scoring card, preferring earlier results on
// ties. Nil if nothing scores above zero.
func bestMatch(cards []card.Raw, q Query) *card.Raw {
	bestScore := 0
	var best *card.Raw
	for i := range cards {
		if s := score(&cards[i], q); s > bestScore {
			bestScore = s
			best = &cards[i]
		}
	}
	if best != nil {
		log.Debug().Int("score", bestScore).Str("name", best.Name).Str("set", best.Set.Name).Msg("best match")
	}
	return best
}

func score(c *card.Raw, q Query) int {
	s := 0
	targetName := strings.ToLower(q.Name)
	targetSet := strings.ToLower(q.SetName)
	name := strings.ToLower(c.Name)
	set := strings.ToLower(c.Set.Name)
	number := strings.ToLower(c.Number)

	switch {
	case name == targetName:
		s += 100
	case strings.Contains(name, targetName) || strings.Contains(targetName, name):
		s += 50
	}

	switch {
	case set == targetSet:
		s += 50
	case strings.Contains(targetSet, "promo") && strings.Contains(set, "promo"):
		s += 30
	case strings.Contains(set, targetSet) || strings.Contains(targetSet, set):
		s += 20
	}

	if q.Number != "" {
		target := strings.ToLower(CleanCardNumber(q.Number))
		switch {
		case number == target:
			s += 80
		case strings.Contains(number, target):
			s += 40
		}
	}

	if c.TCGPlayer != nil {
		if c.TCGPlayer.URL != "" {
			s += 10
		}
		if len(c.TCGPlayer.Prices) > 0 {
			s += 10
		}
	}

	return s
}

func hasPrices(c *card.Raw) bool {
	if c.TCGPlayer == nil {
		return false
	}
	for _, p := range c.TCGPlayer.Prices {
		if p.Market > 0 || p.Mid > 0 {
			return true
		}
	}
	return false
}
