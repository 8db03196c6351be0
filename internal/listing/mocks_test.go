package listing

import (
	"context"
	"sync"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/raine/tcg-card-lister/internal/llm"
	"github.com/raine/tcg-card-lister/internal/storage"
	"github.com/raine/tcg-card-lister/internal/tcgapi"
	"github.com/stretchr/testify/mock"
)

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) IdentifyCard(ctx context.Context, images [][]byte) (*llm.IdentifyResult, error) {
	args := m.Called(ctx, images)
	if r := args.Get(0); r != nil {
		return r.(*llm.IdentifyResult), args.Error(1)
	}
	return nil, args.Error(1)
}

var _ llm.Analyzer = (*MockAnalyzer)(nil)

type MockPokemonLookup struct {
	mu           sync.Mutex
	FindCardFunc func(ctx context.Context, q tcgapi.Query) (*card.Raw, error)
	Calls        []tcgapi.Query
}

func (m *MockPokemonLookup) FindCard(ctx context.Context, q tcgapi.Query) (*card.Raw, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, q)
	m.mu.Unlock()
	if m.FindCardFunc != nil {
		return m.FindCardFunc(ctx, q)
	}
	return nil, tcgapi.ErrNotFound
}

var _ PokemonLookup = (*MockPokemonLookup)(nil)

type MockMTGLookup struct {
	mu           sync.Mutex
	FindCardFunc func(ctx context.Context, name, setName string, characteristics []string) (*tcgapi.MTGCard, error)
	Calls        []string
}

func (m *MockMTGLookup) FindCard(ctx context.Context, name, setName string, characteristics []string) (*tcgapi.MTGCard, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, name)
	m.mu.Unlock()
	if m.FindCardFunc != nil {
		return m.FindCardFunc(ctx, name, setName, characteristics)
	}
	return nil, tcgapi.ErrNotFound
}

var _ MTGLookup = (*MockMTGLookup)(nil)

type memoryPriceCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryPriceCache() *memoryPriceCache {
	return &memoryPriceCache{entries: make(map[string][]byte)}
}

func (c *memoryPriceCache) GetPriceCache(key string) (*storage.PriceCacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return &storage.PriceCacheEntry{Key: key, Payload: payload}, nil
}

func (c *memoryPriceCache) SetPriceCache(key string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
	return nil
}

var _ PriceCache = (*memoryPriceCache)(nil)

type fakeRecorder struct {
	mu    sync.Mutex
	saved map[string][]*card.Listing
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{saved: make(map[string][]*card.Listing)}
}

func (r *fakeRecorder) CreateBatch(scansDir string) (*storage.Batch, error) {
	return &storage.Batch{ID: "batch-1", ScansDir: scansDir}, nil
}

func (r *fakeRecorder) SaveListing(batchID string, l *card.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved[batchID] = append(r.saved[batchID], l)
	return nil
}

var _ ListingRecorder = (*fakeRecorder)(nil)

// readPath stands in for os.ReadFile and returns the path as the image.
func readPath(path string) ([]byte, error) {
	return []byte(path), nil
}
