package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) IdentifyCard(ctx context.Context, images [][]byte) (*IdentifyResult, error) {
	args := m.Called(ctx, images)
	if r := args.Get(0); r != nil {
		return r.(*IdentifyResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type memoryCache struct {
	entries map[string]*card.Identification
	getErr  error
}

func (c *memoryCache) GetVisionCache(hash string) (*card.Identification, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[hash], nil
}

func (c *memoryCache) SetVisionCache(hash string, id *card.Identification) error {
	c.entries[hash] = id
	return nil
}

func TestHashImages(t *testing.T) {
	a := hashImages([][]byte{[]byte("ab"), []byte("c")})
	b := hashImages([][]byte{[]byte("a"), []byte("bc")})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, hashImages([][]byte{[]byte("ab"), []byte("c")}))
	assert.Len(t, a, 64)
}

func TestCachedAnalyzer(t *testing.T) {
	ctx := context.Background()
	images := [][]byte{[]byte("front"), []byte("back")}
	result := &IdentifyResult{
		Card:  &card.Identification{Name: "Mew", Confidence: 0.9},
		Usage: Usage{InputTokens: 100, CostUSD: 0.01},
	}

	inner := new(MockAnalyzer)
	inner.On("IdentifyCard", ctx, images).Return(result, nil).Once()

	cache := &memoryCache{entries: map[string]*card.Identification{}}
	analyzer := NewCachedAnalyzer(inner, cache)

	got, err := analyzer.IdentifyCard(ctx, images)
	require.NoError(t, err)
	assert.Equal(t, result, got)

	// Second call is served from the cache with zero usage
	got, err = analyzer.IdentifyCard(ctx, images)
	require.NoError(t, err)
	assert.Equal(t, "Mew", got.Card.Name)
	assert.Equal(t, Usage{}, got.Usage)

	inner.AssertExpectations(t)
}

func TestCachedAnalyzer_CacheErrorFallsThrough(t *testing.T) {
	ctx := context.Background()
	images := [][]byte{[]byte("front")}

	inner := new(MockAnalyzer)
	inner.On("IdentifyCard", ctx, images).Return(&IdentifyResult{Card: &card.Identification{Name: "Mew"}}, nil)

	cache := &memoryCache{entries: map[string]*card.Identification{}, getErr: errors.New("disk full")}
	got, err := NewCachedAnalyzer(inner, cache).IdentifyCard(ctx, images)
	require.NoError(t, err)
	assert.Equal(t, "Mew", got.Card.Name)
}

func TestCachedAnalyzer_InnerError(t *testing.T) {
	ctx := context.Background()
	images := [][]byte{[]byte("front")}

	inner := new(MockAnalyzer)
	inner.On("IdentifyCard", ctx, images).Return(nil, errors.New("quota exceeded"))

	cache := &memoryCache{entries: map[string]*card.Identification{}}
	_, err := NewCachedAnalyzer(inner, cache).IdentifyCard(ctx, images)
	assert.EqualError(t, err, "quota exceeded")
	assert.Empty(t, cache.entries)
}

func TestGetGeminiAnalyzer(t *testing.T) {
	g := &GeminiAnalyzer{}
	assert.Same(t, g, GetGeminiAnalyzer(NewCachedAnalyzer(NewCachedAnalyzer(g, nil), nil)))
	assert.Nil(t, GetGeminiAnalyzer(new(MockAnalyzer)))
}
