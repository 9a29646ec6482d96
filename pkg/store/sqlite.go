// Package store provides the repository layer over the SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"safaigo/pkg/db"
	"safaigo/pkg/model"
)

// Store composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	BinStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Bins ---

func (s *SQLiteStore) GetBin(ctx context.Context, id string) (*model.Bin, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, ward, kind, lat, lon, created_at FROM bins WHERE id = ?`, id)

	b, err := scanBin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return b, nil
}

// SaveBin inserts or updates a bin. A missing ID gets a fresh UUID.
func (s *SQLiteStore) SaveBin(ctx context.Context, bin *model.Bin) error {
	if bin.ID == "" {
		bin.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bins (id, name, ward, kind, lat, lon)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			ward = excluded.ward,
			kind = excluded.kind,
			lat = excluded.lat,
			lon = excluded.lon`,
		bin.ID, bin.Name, bin.Ward, string(bin.Kind), bin.Lat, bin.Lon)
	return err
}

func (s *SQLiteStore) DeleteBin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bins WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) ListBins(ctx context.Context) ([]*model.Bin, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, ward, kind, lat, lon, created_at FROM bins ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBins(rows)
}

func (s *SQLiteStore) BinsInBounds(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]*model.Bin, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, ward, kind, lat, lon, created_at FROM bins
		 WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?`,
		minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBins(rows)
}

func (s *SQLiteStore) CountBins(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bins`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBin(row rowScanner) (*model.Bin, error) {
	var b model.Bin
	var ward sql.NullString
	var kind string
	var createdAt sql.NullTime

	err := row.Scan(&b.ID, &b.Name, &ward, &kind, &b.Lat, &b.Lon, &createdAt)
	if err != nil {
		return nil, err
	}
	if ward.Valid {
		b.Ward = ward.String
	}
	b.Kind = model.BinKind(kind)
	if createdAt.Valid {
		b.CreatedAt = createdAt.Time
	}
	return &b, nil
}

func collectBins(rows *sql.Rows) ([]*model.Bin, error) {
	var bins []*model.Bin
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, err
		}
		bins = append(bins, b)
	}
	return bins, rows.Err()
}
