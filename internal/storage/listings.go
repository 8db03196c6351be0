package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raine/tcg-card-lister/internal/card"
)

// Batch is one run of the pipeline over a scans folder.
type Batch struct {
	ID        string
	ScansDir  string
	CreatedAt time.Time
}

type BatchSummary struct {
	Batch
	Listings int
}

// ListingRecord is a processed card as recorded in the listing history.
type ListingRecord struct {
	BatchID     string
	GroupKey    string
	Name        string
	SetName     string
	Number      string
	Finish      string
	Features    []string
	FinalPrice  float64
	PriceSource string
	ReviewFlag  string
	CreatedAt   time.Time
}

// CreateBatch starts a new batch for scansDir.
func (s *SQLiteStore) CreateBatch(scansDir string) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := &Batch{
		ID:        uuid.New().String(),
		ScansDir:  scansDir,
		CreatedAt: s.now(),
	}

	_, err := s.db.Exec(
		`INSERT INTO batches (id, scans_dir, created_at) VALUES (?, ?, ?)`,
		batch.ID, batch.ScansDir, batch.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	return batch, nil
}

// SaveListing records a processed listing under batchID.
func (s *SQLiteStore) SaveListing(batchID string, l *card.Listing) error {
	features, err := json.Marshal(l.Characteristics)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO listings (batch_id, group_key, name, set_name, number, finish, features, final_price, price_source, review_flag, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, batchID, l.GroupKey, l.Name, l.SetName, l.Number, string(l.Finish), string(features),
		l.FinalPrice, l.PriceSource, l.ReviewFlag, s.now())

	if err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

// GetListings retrieves the listings recorded for a batch in insertion
// order.
func (s *SQLiteStore) GetListings(batchID string) ([]ListingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT batch_id, group_key, name, set_name, number, finish, features, final_price, price_source, review_flag, created_at
		FROM listings WHERE batch_id = ? ORDER BY id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var records []ListingRecord
	for rows.Next() {
		var r ListingRecord
		var features string
		if err := rows.Scan(&r.BatchID, &r.GroupKey, &r.Name, &r.SetName, &r.Number, &r.Finish,
			&features, &r.FinalPrice, &r.PriceSource, &r.ReviewFlag, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &r.Features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// ListBatches returns the most recent batches, newest first, with the number
// of listings recorded in each.
func (s *SQLiteStore) ListBatches(limit int) ([]BatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT b.id, b.scans_dir, b.created_at, COUNT(l.id)
		FROM batches b LEFT JOIN listings l ON l.batch_id = b.id
		GROUP BY b.id, b.scans_dir, b.created_at
		ORDER BY b.created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []BatchSummary
	for rows.Next() {
		var b BatchSummary
		if err := rows.Scan(&b.ID, &b.ScansDir, &b.CreatedAt, &b.Listings); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}

	return batches, rows.Err()
}
