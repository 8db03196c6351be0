package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestVisionCache(t *testing.T) {
	store := newTestStore(t, 0)

	got, err := store.GetVisionCache("missing")
	assert.NoError(t, err)
	assert.Nil(t, got)

	id := &card.Identification{
		Name:            "Pikachu",
		SetName:         "Base Set",
		Number:          "58/102",
		Game:            card.GamePokemon,
		Characteristics: []string{"1st Edition"},
		Confidence:      0.92,
	}
	require.NoError(t, store.SetVisionCache("abc", id))

	got, err = store.GetVisionCache("abc")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	id.Confidence = 0.5
	require.NoError(t, store.SetVisionCache("abc", id))
	got, err = store.GetVisionCache("abc")
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Confidence)
}

func TestPriceCache_TTL(t *testing.T) {
	store := newTestStore(t, 24*time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	assert.Equal(t, 24*time.Hour, store.priceTTL)

	entry, err := store.GetPriceCache("pikachu|base set")
	assert.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, store.SetPriceCache("pikachu|base set", []byte(`{"name":"Pikachu"}`)))

	entry, err = store.GetPriceCache("pikachu|base set")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.JSONEq(t, `{"name":"Pikachu"}`, string(entry.Payload))
	assert.True(t, entry.FetchedAt.Equal(now))

	now = now.Add(23 * time.Hour)
	entry, err = store.GetPriceCache("pikachu|base set")
	require.NoError(t, err)
	assert.NotNil(t, entry)

	now = now.Add(2 * time.Hour)
	entry, err = store.GetPriceCache("pikachu|base set")
	require.NoError(t, err)
	assert.Nil(t, entry)

	removed, err := store.PrunePriceCache()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestDefaultPriceCacheTTL(t *testing.T) {
	store := newTestStore(t, 0)
	assert.Equal(t, DefaultPriceCacheTTL, store.priceTTL)
}

func TestListings(t *testing.T) {
	store := newTestStore(t, 0)

	batch, err := store.CreateBatch("/scans")
	require.NoError(t, err)
	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, "/scans", batch.ScansDir)

	other, err := store.CreateBatch("/scans")
	require.NoError(t, err)
	assert.NotEqual(t, batch.ID, other.ID)

	require.NoError(t, store.SaveListing(batch.ID, &card.Listing{
		GroupKey:        "Card_001",
		Name:            "Charizard",
		SetName:         "Base Set",
		Number:          "4/102",
		Finish:          card.FinishHolo,
		Characteristics: []string{"1st Edition", "Shadowless"},
		FinalPrice:      520.00,
		PriceSource:     "Pokemon TCG API (1stEditionHolofoil) - Near Mint",
		ReviewFlag:      card.ReviewOK,
	}))
	require.NoError(t, store.SaveListing(batch.ID, &card.Listing{
		GroupKey:   "Card_002",
		Name:       "Pikachu",
		Finish:     card.FinishNonHolo,
		FinalPrice: 1.99,
		ReviewFlag: card.ReviewNeeded,
	}))
	require.NoError(t, store.SaveListing(other.ID, &card.Listing{GroupKey: "Card_001", Name: "Mew"}))

	records, err := store.GetListings(batch.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Card_001", records[0].GroupKey)
	assert.Equal(t, "Holo", records[0].Finish)
	assert.Equal(t, []string{"1st Edition", "Shadowless"}, records[0].Features)
	assert.Equal(t, 520.00, records[0].FinalPrice)
	assert.Equal(t, "Card_002", records[1].GroupKey)
	assert.Nil(t, records[1].Features)
	assert.Equal(t, card.ReviewNeeded, records[1].ReviewFlag)

	records, err = store.GetListings("unknown")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListBatches(t *testing.T) {
	store := newTestStore(t, 0)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	first, err := store.CreateBatch("/scans/june")
	require.NoError(t, err)
	require.NoError(t, store.SaveListing(first.ID, &card.Listing{GroupKey: "Card_001", Name: "Mew"}))
	require.NoError(t, store.SaveListing(first.ID, &card.Listing{GroupKey: "Card_002", Name: "Mewtwo"}))

	now = now.Add(time.Hour)
	second, err := store.CreateBatch("/scans/july")
	require.NoError(t, err)

	batches, err := store.ListBatches(10)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, second.ID, batches[0].ID)
	assert.Equal(t, 0, batches[0].Listings)
	assert.Equal(t, first.ID, batches[1].ID)
	assert.Equal(t, "/scans/june", batches[1].ScansDir)
	assert.Equal(t, 2, batches[1].Listings)

	batches, err = store.ListBatches(1)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}
