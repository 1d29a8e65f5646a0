// Package store persists price observations and the scan log in SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/utils"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotFound is returned when a product has no observations.
var ErrNotFound = errors.New("store: not found")

// Store is the SQLite-backed price and scan log.
type Store struct {
	db     *sql.DB
	path   string
	limit  int
	logger logging.Logger
}

// Open creates the storage directory if needed and opens the database.
func Open(cfg Config, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With(logging.Field{Key: "component", Value: "store"})

	dir := utils.ExpandHome(strings.TrimSpace(cfg.StoragePath))
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	name := cfg.DBName
	if name == "" {
		name = DefaultConfig().DBName
	}
	dbPath := filepath.Join(dir, name)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	limit := cfg.ObservationLimit
	if limit <= 0 {
		limit = DefaultConfig().ObservationLimit
	}

	logger.Info("store opened", logging.Field{Key: "path", Value: dbPath})
	return &Store{db: db, path: dbPath, limit: limit, logger: logger}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordObservation stores one price. ID and ObservedAt are filled in when
// empty. The stored observation is returned.
func (s *Store) RecordObservation(ctx context.Context, obs Observation) (Observation, error) {
	if obs.ProductKey == "" {
		return obs, errors.New("store: observation without product key")
	}
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO observations (id, product_key, url, title, price, source, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		obs.ID, obs.ProductKey, obs.URL, obs.Title, float64(obs.Price), obs.Source, obs.ObservedAt.UnixMilli())
	if err != nil {
		return obs, fmt.Errorf("insert observation: %w", err)
	}

	s.logger.Debug("observation recorded",
		logging.Field{Key: "product_key", Value: obs.ProductKey},
		logging.Field{Key: "price", Value: float64(obs.Price)})
	return obs, nil
}

// Stats summarizes the positive-price observations of productKey. It returns
// ErrNotFound when there are none.
func (s *Store) Stats(ctx context.Context, productKey string) (*Stats, error) {
	var (
		count   int
		lowest  sql.NullFloat64
		average sql.NullFloat64
		first   sql.NullInt64
		last    sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(price), AVG(price), MIN(observed_at), MAX(observed_at)
		 FROM observations WHERE product_key = ? AND price > 0`, productKey).
		Scan(&count, &lowest, &average, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return &Stats{
		ProductKey: productKey,
		Lowest:     scan.Price(lowest.Float64),
		Average:    scan.Price(average.Float64),
		Count:      count,
		FirstSeen:  time.UnixMilli(first.Int64).UTC(),
		LastSeen:   time.UnixMilli(last.Int64).UTC(),
	}, nil
}

// Observations returns the most recent observations of productKey, newest
// first. A limit <= 0 means the configured default.
func (s *Store) Observations(ctx context.Context, productKey string, limit int) ([]Observation, error) {
	if limit <= 0 {
		limit = s.limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_key, url, title, price, source, observed_at
		 FROM observations WHERE product_key = ?
		 ORDER BY observed_at DESC, rowid DESC LIMIT ?`, productKey, limit)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	out := []Observation{}
	for rows.Next() {
		var (
			o     Observation
			price float64
			at    int64
		)
		if err := rows.Scan(&o.ID, &o.ProductKey, &o.URL, &o.Title, &price, &o.Source, &at); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Price = scan.Price(price)
		o.ObservedAt = time.UnixMilli(at).UTC()
		out = append(out, o)
	}
	return out, rows.Err()
}

// RecordScan appends rec to the scan log.
func (s *Store) RecordScan(ctx context.Context, rec ScanRecord) (ScanRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	payload := []byte("{}")
	if rec.Response != nil {
		b, err := json.Marshal(rec.Response)
		if err != nil {
			return rec, fmt.Errorf("encode scan response: %w", err)
		}
		payload = b
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (id, url, product_key, verdict, level, reason, product, price, response, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.URL, rec.ProductKey, rec.Verdict, rec.Level, rec.Reason, rec.Product,
		float64(rec.Price), string(payload), rec.CreatedAt.UnixMilli())
	if err != nil {
		return rec, fmt.Errorf("insert scan: %w", err)
	}
	return rec, nil
}

// RecentScans returns the latest scan log entries, newest first.
func (s *Store) RecentScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, product_key, verdict, level, reason, product, price, response, created_at
		 FROM scans ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	out := []ScanRecord{}
	for rows.Next() {
		var (
			r       ScanRecord
			price   float64
			payload string
			at      int64
		)
		if err := rows.Scan(&r.ID, &r.URL, &r.ProductKey, &r.Verdict, &r.Level, &r.Reason,
			&r.Product, &price, &payload, &at); err != nil {
			return nil, fmt.Errorf("scan scan record: %w", err)
		}
		r.Price = scan.Price(price)
		r.CreatedAt = time.UnixMilli(at).UTC()
		if payload != "" && payload != "{}" {
			var resp scan.ScanResponse
			if err := json.Unmarshal([]byte(payload), &resp); err != nil {
				s.logger.Warn("dropping undecodable scan payload",
					logging.Field{Key: "id", Value: r.ID},
					logging.Field{Key: "error", Value: err})
			} else {
				r.Response = &resp
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
