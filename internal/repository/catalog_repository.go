package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wouldcart/Triplexa2-sub009/internal/model"
)

// CatalogRepo reads the sightseeing catalog.  The catalog is reference
// data maintained by a separate back-office surface; this repository
// only ever takes snapshots of it for validation, never writes.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a new CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// LoadCatalog returns the full catalog as of now.  There is no
// freshness contract beyond "current at call time"; callers that need
// consistency across several checks must reuse one snapshot.
func (r *CatalogRepo) LoadCatalog(ctx context.Context) ([]model.CatalogEntry, error) {
	const q = `SELECT id, name, status, country, city, is_free,
	                  transfer_options, adult_price, child_price
	           FROM sightseeing_catalog`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	entries := make([]model.CatalogEntry, 0)
	for rows.Next() {
		var e model.CatalogEntry
		var country, city, transfers sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Status, &country, &city, &e.IsFree,
			&transfers, &e.Price.Adult, &e.Price.Child,
		); err != nil {
			return nil, err
		}
		e.Country = country.String
		e.City = city.String
		if transfers.Valid && transfers.String != "" && transfers.String != "null" {
			if err := json.Unmarshal([]byte(transfers.String), &e.TransferOptions); err != nil {
				return nil, fmt.Errorf("sightseeing_catalog.transfer_options: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return entries, nil
}

// GetByID returns one catalog entry or sql.ErrNoRows.
func (r *CatalogRepo) GetByID(ctx context.Context, id string) (*model.CatalogEntry, error) {
	const q = `SELECT id, name, status, country, city, is_free,
	                  transfer_options, adult_price, child_price
	           FROM sightseeing_catalog WHERE id = ?`
	var e model.CatalogEntry
	var country, city, transfers sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.Name, &e.Status, &country, &city, &e.IsFree,
		&transfers, &e.Price.Adult, &e.Price.Child,
	)
	if err != nil {
		return nil, err
	}
	e.Country = country.String
	e.City = city.String
	if transfers.Valid && transfers.String != "" && transfers.String != "null" {
		if err := json.Unmarshal([]byte(transfers.String), &e.TransferOptions); err != nil {
			return nil, fmt.Errorf("sightseeing_catalog.transfer_options: %w", err)
		}
	}
	return &e, nil
}
