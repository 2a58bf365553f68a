// Package store provides a SQLite-backed cache of raw API payloads and a
// history of spending snapshots.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/finburn/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no cached payload matches.
var ErrNotFound = errors.New("store: payload not found")

// Store wraps the cache database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Payload is a raw response body as last fetched.
type Payload struct {
	Resource  string
	AccountID string
	Query     string
	Body      []byte
	FetchedAt time.Time
}

// Age returns how old the payload is relative to now.
func (p Payload) Age(now time.Time) time.Duration {
	return now.Sub(p.FetchedAt)
}

// SavePayload stores the latest body for a resource, replacing any older copy.
func (s *Store) SavePayload(resource, accountID, query string, body []byte) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO payloads
		(resource, account_id, query, body, fetched_at)
		VALUES (?, ?, ?, ?, ?)`,
		resource, accountID, query, body, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving payload %s: %w", resource, err)
	}
	return nil
}

// LoadPayload returns the cached body for a resource, or ErrNotFound.
func (s *Store) LoadPayload(resource, accountID, query string) (Payload, error) {
	p := Payload{Resource: resource, AccountID: accountID, Query: query}
	var fetched string
	err := s.db.QueryRow(`SELECT body, fetched_at FROM payloads
		WHERE resource = ? AND account_id = ? AND query = ?`,
		resource, accountID, query,
	).Scan(&p.Body, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return Payload{}, ErrNotFound
	}
	if err != nil {
		return Payload{}, fmt.Errorf("loading payload %s: %w", resource, err)
	}
	p.FetchedAt, _ = time.Parse(timeLayout, fetched)
	return p, nil
}

// PayloadCount returns the number of cached payloads.
func (s *Store) PayloadCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM payloads").Scan(&count)
	return count, err
}

// DeletePayloads removes every cached payload for an account.
func (s *Store) DeletePayloads(accountID string) error {
	_, err := s.db.Exec("DELETE FROM payloads WHERE account_id = ?", accountID)
	return err
}

// SaveSnapshot appends a snapshot and its category breakdown.
func (s *Store) SaveSnapshot(snap model.Snapshot) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`INSERT INTO snapshots
		(account_id, taken_at, total_spent, monthly_average, spending_ratio,
		 bills_total, upcoming_bills, top_category, top_category_amount, high_predictions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Account, snap.At.UTC().Format(timeLayout), snap.TotalSpent, snap.MonthlyAverage,
		snap.SpendingRatio, snap.BillsTotal, snap.UpcomingBills, snap.TopCategory,
		snap.TopCategoryAmount, snap.HighPredictions,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for cat, amt := range snap.Categories {
		_, err = tx.Exec(`INSERT INTO snapshot_categories (snapshot_id, category, amount)
			VALUES (?, ?, ?)`, id, cat, amt)
		if err != nil {
			return 0, err
		}
	}

	return id, tx.Commit()
}

// Snapshots returns up to limit snapshots for an account, newest first.
// A limit of zero or less returns all of them.
func (s *Store) Snapshots(accountID string, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT
		id, account_id, taken_at, total_spent, monthly_average, spending_ratio,
		bills_total, upcoming_bills, top_category, top_category_amount, high_predictions
		FROM snapshots WHERE account_id = ?
		ORDER BY taken_at DESC, id DESC LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var (
		snaps []model.Snapshot
		ids   []int64
	)
	for rows.Next() {
		var (
			id       int64
			snap     model.Snapshot
			takenAt  string
			topCat   sql.NullString
			topCatAm sql.NullFloat64
		)
		err := rows.Scan(&id, &snap.Account, &takenAt, &snap.TotalSpent, &snap.MonthlyAverage,
			&snap.SpendingRatio, &snap.BillsTotal, &snap.UpcomingBills, &topCat, &topCatAm,
			&snap.HighPredictions)
		if err != nil {
			return nil, err
		}
		snap.At, _ = time.Parse(timeLayout, takenAt)
		snap.TopCategory = topCat.String
		snap.TopCategoryAmount = topCatAm.Float64
		snaps = append(snaps, snap)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return snaps, nil
	}

	idx := make(map[int64]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}

	catRows, err := s.db.Query(`SELECT c.snapshot_id, c.category, c.amount
		FROM snapshot_categories c JOIN snapshots s ON s.id = c.snapshot_id
		WHERE s.account_id = ?`, accountID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = catRows.Close() }()

	for catRows.Next() {
		var (
			sid int64
			cat string
			amt float64
		)
		if err := catRows.Scan(&sid, &cat, &amt); err != nil {
			return nil, err
		}
		i, ok := idx[sid]
		if !ok {
			continue
		}
		if snaps[i].Categories == nil {
			snaps[i].Categories = make(map[string]float64)
		}
		snaps[i].Categories[cat] = amt
	}
	return snaps, catRows.Err()
}

// PruneSnapshots keeps the newest keep snapshots per account and deletes the rest.
func (s *Store) PruneSnapshots(accountID string, keep int) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE account_id = ? AND id NOT IN (
		SELECT id FROM snapshots WHERE account_id = ? ORDER BY taken_at DESC, id DESC LIMIT ?)`,
		accountID, accountID, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
