package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/rs/zerolog/log"
)

// VisionCache stores identifications by image hash.
type VisionCache interface {
	GetVisionCache(imageHash string) (*card.Identification, error)
	SetVisionCache(imageHash string, id *card.Identification) error
}

// CachedAnalyzer wraps an Analyzer with a persistent cache.
type CachedAnalyzer struct {
	inner Analyzer
	cache VisionCache
}

// NewCachedAnalyzer creates a cached analyzer. A nil cache disables
// caching.
func NewCachedAnalyzer(inner Analyzer, cache VisionCache) *CachedAnalyzer {
	return &CachedAnalyzer{inner: inner, cache: cache}
}

// hashImages creates a SHA256 hash from image data.
// Includes length prefix for each image to prevent boundary collisions.
func hashImages(images [][]byte) string {
	h := sha256.New()
	for _, img := range images {
		// Write length to prevent boundary collisions (e.g. [A,B] vs [AB])
		binary.Write(h, binary.LittleEndian, int64(len(img)))
		h.Write(img)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IdentifyCard implements the Analyzer interface with caching.
func (c *CachedAnalyzer) IdentifyCard(ctx context.Context, images [][]byte) (*IdentifyResult, error) {
	hash := hashImages(images)

	// Check cache
	if c.cache != nil {
		cached, err := c.cache.GetVisionCache(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check vision cache")
		} else if cached != nil {
			log.Debug().Str("hash", hash[:16]).Msg("vision cache hit")
			return &IdentifyResult{
				Card:  cached,
				Usage: Usage{}, // Zero usage for cached result
			}, nil
		}
	}

	// Call underlying analyzer
	result, err := c.inner.IdentifyCard(ctx, images)
	if err != nil {
		return nil, err
	}

	// Cache the result
	if c.cache != nil && result.Card != nil {
		if err := c.cache.SetVisionCache(hash, result.Card); err != nil {
			log.Warn().Err(err).Msg("failed to cache vision result")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached vision result")
		}
	}

	return result, nil
}

// GetGeminiAnalyzer extracts GeminiAnalyzer from an Analyzer.
// Recursively unwraps CachedAnalyzer wrappers to find the underlying GeminiAnalyzer.
func GetGeminiAnalyzer(a Analyzer) *GeminiAnalyzer {
	curr := a
	for {
		switch t := curr.(type) {
		case *GeminiAnalyzer:
			return t
		case *CachedAnalyzer:
			curr = t.inner
		default:
			return nil
		}
	}
}
