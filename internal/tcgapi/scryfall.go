package tcgapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/raine/tcg-card-lister/internal/pricing"
	"github.com/rs/zerolog/log"
)

const ScryfallBaseURL = "https://api.scryfall.com"

type ScryfallClientOpts struct {
	BaseURL   string
	RateLimit time.Duration
	Timeout   time.Duration
}

// ScryfallClient searches Scryfall for Magic: The Gathering cards.
type ScryfallClient struct {
	httpClient *resty.Client
	rateLimit  time.Duration
}

func NewScryfallClient(opts ScryfallClientOpts) *ScryfallClient {
	baseURL := ScryfallBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	return &ScryfallClient{
		httpClient: newHTTPClient(baseURL, opts.Timeout),
		rateLimit:  opts.RateLimit,
	}
}

// MTGCard is a Scryfall card object. Foil is not part of the API response;
// FindCard sets it from the card's characteristics.
type MTGCard struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	SetName         string            `json:"set_name"`
	SetCode         string            `json:"set"`
	CollectorNumber string            `json:"collector_number"`
	Rarity          string            `json:"rarity"`
	ReleasedAt      string            `json:"released_at"`
	Artist          string            `json:"artist"`
	TypeLine        string            `json:"type_line"`
	Power           string            `json:"power"`
	Toughness       string            `json:"toughness"`
	Finishes        []string          `json:"finishes"`
	FrameEffects    []string          `json:"frame_effects"`
	BorderColor     string            `json:"border_color"`
	Prices          ScryfallPrices    `json:"prices"`
	PurchaseURIs    map[string]string `json:"purchase_uris"`

	Foil bool `json:"-"`
}

// ScryfallPrices are decimal strings; null prices decode to "".
type ScryfallPrices struct {
	USD     string `json:"usd"`
	USDFoil string `json:"usd_foil"`
}

type scryfallList struct {
	Data []MTGCard `json:"data"`
}

// FindCard returns the first Scryfall search result for name in setName.
// If the set filter finds nothing the search is retried by name alone.
func (c *ScryfallClient) FindCard(ctx context.Context, name, setName string, characteristics []string) (*MTGCard, error) {
	name = unquote(strings.TrimSpace(name))
	if name == "" {
		return nil, ErrNotFound
	}

	queries := []string{}
	if setName != "" && strings.ToLower(setName) != "unknown" {
		queries = append(queries, fmt.Sprintf(`name:"%s" set:"%s"`, name, unquote(setName)))
	}
	queries = append(queries, fmt.Sprintf(`name:"%s"`, name))

	for _, q := range queries {
		if err := wait(ctx, c.rateLimit); err != nil {
			return nil, err
		}

		result := &scryfallList{}
		_, err := handleError(c.httpClient.NewRequest().
			SetContext(ctx).
			SetResult(result).
			SetQueryParams(map[string]string{
				"q":      q,
				"format": "json",
				"page":   "1",
			}).
			Get("/cards/search"))
		if errors.Is(err, ErrNotFound) || (err == nil && len(result.Data) == 0) {
			log.Debug().Str("q", q).Msg("no scryfall results")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scryfall search: %w", err)
		}

		mtg := result.Data[0]
		mtg.Foil = MentionsFoil(characteristics)
		log.Info().
			Str("name", mtg.Name).
			Str("set", mtg.SetName).
			Bool("foil", mtg.Foil).
			Msg("found mtg card")
		return &mtg, nil
	}

	return nil, ErrNotFound
}

// MentionsFoil reports whether any characteristic names a foil printing.
func MentionsFoil(characteristics []string) bool {
	for _, c := range characteristics {
		if strings.Contains(strings.ToLower(c), "foil") {
			return true
		}
	}
	return false
}

// NearMintPrice returns the foil or regular USD price. Scryfall prices are
// near mint.
func (m *MTGCard) NearMintPrice() (pricing.Price, bool) {
	raw := m.Prices.USD
	if m.Foil && m.Prices.USDFoil != "" {
		raw = m.Prices.USDFoil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return pricing.Dollars(v), true
}

// TCGPlayerURL returns Scryfall's TCGPlayer purchase link, if any.
func (m *MTGCard) TCGPlayerURL() string {
	return m.PurchaseURIs["tcgplayer"]
}

var frameTreatments = map[string]string{
	"showcase":       "Showcase",
	"extendedart":    "Extended Art",
	"borderless":     "Borderless",
	"fullart":        "Full Art",
	"textless":       "Textless",
	"inverted":       "Inverted",
	"etched":         "Etched",
	"shatteredglass": "Shattered Glass",
}

// Treatments that combine with foil into a single label.
var foilCombinable = map[string]bool{
	"Showcase":     true,
	"Extended Art": true,
	"Borderless":   true,
	"Full Art":     true,
	"Etched":       true,
}

// Finish describes the printing: a frame treatment, foil or both, falling
// back to border colour and then "Non-Foil".
func (m *MTGCard) Finish() string {
	treatment := ""
	for _, effect := range m.FrameEffects {
		if t, ok := frameTreatments[effect]; ok {
			treatment = t
			break
		}
	}
	if treatment == "" {
		for _, f := range m.Finishes {
			if f == "etched" {
				treatment = "Etched"
				break
			}
		}
	}

	switch {
	case treatment != "" && m.Foil && foilCombinable[treatment]:
		return treatment + " Foil"
	case treatment != "":
		return treatment
	case m.Foil:
		return "Foil"
	case m.BorderColor == "gold":
		return "Gold Border"
	case m.BorderColor == "silver":
		return "Silver Border"
	}
	return "Non-Foil"
}
