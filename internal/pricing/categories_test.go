package pricing

import (
	"testing"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/stretchr/testify/assert"
)

func TestPriceCategories(t *testing.T) {
	t.Run("no characteristics uses defaults without edition or promo categories", func(t *testing.T) {
		got := PriceCategories(nil, "English", "Base Set", nil)
		assert.Equal(t, defaultCategories, got)
	})

	t.Run("first edition goes first", func(t *testing.T) {
		got := PriceCategories([]string{"1st Edition"}, "", "Jungle", nil)
		assert.Equal(t, []string{"1stEdition", "1stEditionHolofoil", "1stEditionNormal"}, got[:3])
	})

	t.Run("combination rule comes before single mappings", func(t *testing.T) {
		got := PriceCategories([]string{"Staff", "Promo"}, "", "", nil)
		assert.Equal(t, []string{"staffPromo", "staff", "promo", "normal", "promotional"}, got[:5])
	})

	t.Run("language mapping", func(t *testing.T) {
		got := PriceCategories(nil, "Japanese", "", nil)
		assert.Equal(t, "japanese", got[0])
	})

	t.Run("base set 2 forces unlimited and drops first edition", func(t *testing.T) {
		got := PriceCategories([]string{"1st Edition"}, "", "Base Set 2", nil)
		assert.Equal(t, []string{"unlimited", "normal"}, got[:2])
		assert.NotContains(t, got, "1stEdition")
	})

	t.Run("filtered to available", func(t *testing.T) {
		got := PriceCategories([]string{"Reverse Holo"}, "", "", []string{"normal", "reverseHolofoil", "1stEdition"})
		assert.Equal(t, []string{"reverseHolofoil", "normal"}, got)
	})
}

func TestSelectMarketPrice(t *testing.T) {
	prices := map[string]card.PricePoint{
		"normal":          {Market: 0.25, Mid: 0.30},
		"holofoil":        {Market: 4.10, Mid: 4.50},
		"reverseHolofoil": {Mid: 1.20},
	}

	t.Run("characteristic picks category", func(t *testing.T) {
		mp, ok := SelectMarketPrice(prices, []string{"Holo"}, "English", "")
		assert.True(t, ok)
		assert.Equal(t, "holofoil", mp.Category)
		assert.Equal(t, Price(410), mp.Price)
	})

	t.Run("mid used when market missing", func(t *testing.T) {
		mp, ok := SelectMarketPrice(prices, []string{"Reverse Holo"}, "", "")
		assert.True(t, ok)
		assert.Equal(t, "reverseHolofoil", mp.Category)
		assert.Equal(t, Price(120), mp.Price)
	})

	t.Run("defaults order", func(t *testing.T) {
		mp, ok := SelectMarketPrice(prices, nil, "", "")
		assert.True(t, ok)
		assert.Equal(t, "normal", mp.Category)
	})

	t.Run("falls back to any priced category", func(t *testing.T) {
		mp, ok := SelectMarketPrice(map[string]card.PricePoint{
			"1stEditionHolofoil": {Market: 350},
			"zzz":                {},
		}, nil, "", "")
		assert.True(t, ok)
		assert.Equal(t, "1stEditionHolofoil", mp.Category)
		assert.Equal(t, Price(35000), mp.Price)
	})

	t.Run("no usable price", func(t *testing.T) {
		_, ok := SelectMarketPrice(map[string]card.PricePoint{"normal": {}}, nil, "", "")
		assert.False(t, ok)

		_, ok = SelectMarketPrice(nil, nil, "", "")
		assert.False(t, ok)
	})
}
