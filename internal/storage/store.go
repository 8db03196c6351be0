package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/raine/tcg-card-lister/internal/card"
	_ "modernc.org/sqlite"
)

// DefaultPriceCacheTTL is how long looked up prices stay fresh.
const DefaultPriceCacheTTL = 30 * 24 * time.Hour

// PriceCacheEntry is a cached card lookup. Payload is the lookup client's
// JSON card record.
type PriceCacheEntry struct {
	Key       string
	Payload   json.RawMessage
	FetchedAt time.Time
}

// Store defines the persistence used by the listing pipeline.
type Store interface {
	Close() error

	// Vision cache methods
	GetVisionCache(imageHash string) (*card.Identification, error)
	SetVisionCache(imageHash string, id *card.Identification) error

	// Price cache methods
	GetPriceCache(key string) (*PriceCacheEntry, error)
	SetPriceCache(key string, payload []byte) error

	// Listing history methods
	CreateBatch(scansDir string) (*Batch, error)
	SaveListing(batchID string, l *card.Listing) error
	GetListings(batchID string) ([]ListingRecord, error)
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	priceTTL time.Duration
	now      func() time.Time
	mu       sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based store at dbPath. Cached prices
// older than priceTTL are treated as missing; zero uses
// DefaultPriceCacheTTL.
func NewSQLiteStore(dbPath string, priceTTL time.Duration) (*SQLiteStore, error) {
	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if priceTTL <= 0 {
		priceTTL = DefaultPriceCacheTTL
	}

	store := &SQLiteStore{
		db:       db,
		priceTTL: priceTTL,
		now:      time.Now,
	}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions once the file exists
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		db.Close()
		return nil, fmt.Errorf("failed to set database permissions: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	visionCacheQuery := `
	CREATE TABLE IF NOT EXISTS vision_cache (
		image_hash TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(visionCacheQuery)
	if err != nil {
		return fmt.Errorf("failed to create vision_cache table: %w", err)
	}

	priceCacheQuery := `
	CREATE TABLE IF NOT EXISTS price_cache (
		cache_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);
	`
	_, err = s.db.Exec(priceCacheQuery)
	if err != nil {
		return fmt.Errorf("failed to create price_cache table: %w", err)
	}

	batchesQuery := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		scans_dir TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	_, err = s.db.Exec(batchesQuery)
	if err != nil {
		return fmt.Errorf("failed to create batches table: %w", err)
	}

	listingsQuery := `
	CREATE TABLE IF NOT EXISTS listings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL,
		group_key TEXT NOT NULL,
		name TEXT NOT NULL,
		set_name TEXT,
		number TEXT,
		finish TEXT,
		features TEXT,
		final_price REAL NOT NULL,
		price_source TEXT,
		review_flag TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
	);
	`
	_, err = s.db.Exec(listingsQuery)
	if err != nil {
		return fmt.Errorf("failed to create listings table: %w", err)
	}

	// Enable foreign keys for cascade delete
	_, err = s.db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetVisionCache retrieves a cached identification by image hash.
// Returns nil, nil if no cache entry exists.
func (s *SQLiteStore) GetVisionCache(imageHash string) (*card.Identification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM vision_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vision cache: %w", err)
	}

	var id card.Identification
	if err := json.Unmarshal([]byte(payload), &id); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vision cache entry: %w", err)
	}

	return &id, nil
}

// SetVisionCache stores an identification in the cache.
func (s *SQLiteStore) SetVisionCache(imageHash string, id *card.Identification) error {
	payload, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to marshal identification: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO vision_cache (image_hash, payload)
		VALUES (?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			payload = excluded.payload,
			created_at = CURRENT_TIMESTAMP
	`, imageHash, string(payload))

	if err != nil {
		return fmt.Errorf("failed to cache vision result: %w", err)
	}
	return nil
}

// GetPriceCache retrieves a cached lookup by key. Entries older than the
// store's TTL count as missing. Returns nil, nil on a miss.
func (s *SQLiteStore) GetPriceCache(key string) (*PriceCacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := PriceCacheEntry{Key: key}
	var payload string
	err := s.db.QueryRow(
		"SELECT payload, fetched_at FROM price_cache WHERE cache_key = ?",
		key,
	).Scan(&payload, &entry.FetchedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query price cache: %w", err)
	}

	if s.now().Sub(entry.FetchedAt) > s.priceTTL {
		return nil, nil
	}

	entry.Payload = json.RawMessage(payload)
	return &entry, nil
}

// SetPriceCache stores a lookup payload under key.
func (s *SQLiteStore) SetPriceCache(key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO price_cache (cache_key, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, key, string(payload), s.now().UTC())

	if err != nil {
		return fmt.Errorf("failed to cache price: %w", err)
	}
	return nil
}

// PrunePriceCache deletes entries older than the TTL and returns how many
// were removed.
func (s *SQLiteStore) PrunePriceCache() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"DELETE FROM price_cache WHERE fetched_at < ?",
		s.now().Add(-s.priceTTL).UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune price cache: %w", err)
	}
	return res.RowsAffected()
}
