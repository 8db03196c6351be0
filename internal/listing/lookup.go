package listing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/raine/tcg-card-lister/internal/storage"
	"github.com/raine/tcg-card-lister/internal/tcgapi"
	"github.com/rs/zerolog/log"
)

// PokemonLookup finds Pokémon cards with TCGPlayer prices.
type PokemonLookup interface {
	FindCard(ctx context.Context, q tcgapi.Query) (*card.Raw, error)
}

// MTGLookup finds Magic: The Gathering cards.
type MTGLookup interface {
	FindCard(ctx context.Context, name, setName string, characteristics []string) (*tcgapi.MTGCard, error)
}

// PriceCache stores lookup results between runs.
type PriceCache interface {
	GetPriceCache(key string) (*storage.PriceCacheEntry, error)
	SetPriceCache(key string, payload []byte) error
}

// priceCacheKey identifies a lookup by everything that can change its
// result. Characteristics are sorted so their order does not matter.
func priceCacheKey(game string, id *card.Identification) string {
	chars := make([]string, len(id.Characteristics))
	for i, c := range id.Characteristics {
		chars[i] = strings.ToLower(strings.TrimSpace(c))
	}
	sort.Strings(chars)

	parts := []string{
		game,
		strings.ToLower(id.Name),
		strings.ToLower(id.SetName),
		strings.ToLower(id.Number),
		strings.ToLower(id.Language),
		strings.Join(chars, ","),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return game + ":" + hex.EncodeToString(sum[:])
}

// cachedLookup serves v from the price cache or calls fetch and caches its
// result. Cache failures are logged and ignored. A nil result with a nil
// error means nothing was found.
func cachedLookup[T any](cache PriceCache, key string, fetch func() (*T, error)) (*T, error) {
	if cache != nil {
		entry, err := cache.GetPriceCache(key)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check price cache")
		} else if entry != nil {
			var v T
			if err := json.Unmarshal(entry.Payload, &v); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("ignoring unreadable price cache entry")
			} else {
				log.Debug().Str("key", key).Msg("price cache hit")
				return &v, nil
			}
		}
	}

	v, err := fetch()
	if errors.Is(err, tcgapi.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if cache != nil && v != nil {
		payload, err := json.Marshal(v)
		if err == nil {
			err = cache.SetPriceCache(key, payload)
		}
		if err != nil {
			log.Warn().Err(err).Msg("failed to cache price lookup")
		}
	}

	return v, nil
}
