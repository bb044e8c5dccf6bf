package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wouldcart/Triplexa2-sub009/internal/model"
)

// RouteRepo provides CRUD operations for transport routes.  The three
// embedded lists (transport entries, intermediate stops, sightseeing
// options) are stored as JSON columns; the repository marshals them
// transparently so callers only ever see model.Route.  All timestamp
// columns are stored in UTC.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo returns a new RouteRepo bound to the given database.
func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

const routeColumns = `id, name, country, transfer_type, start_location, start_city_code,
       end_location, end_city_code, status, transport_entries, intermediate_stops,
       sightseeing_options, created_at, updated_at`

// SelectByID returns a single route.  It returns ErrRouteNotFound when
// no row with the given ID exists.
func (r *RouteRepo) SelectByID(ctx context.Context, id uint64) (*model.Route, error) {
	q := `SELECT ` + routeColumns + ` FROM routes WHERE id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	route, err := scanRoute(row)
	if err == sql.ErrNoRows {
		return nil, ErrRouteNotFound
	}
	return route, err
}

// Insert stores a new route and returns the full row as the database
// sees it, including the generated ID and timestamp defaults.
func (r *RouteRepo) Insert(ctx context.Context, route *model.Route) (*model.Route, error) {
	entries, stops, options, err := marshalLists(route)
	if err != nil {
		return nil, err
	}
	const q = `INSERT INTO routes
	           (name, country, transfer_type, start_location, start_city_code,
	            end_location, end_city_code, status, transport_entries,
	            intermediate_stops, sightseeing_options)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		route.Name, route.Country, route.TransferType,
		nullable(route.StartLocation), nullable(route.StartCityCode),
		nullable(route.EndLocation), nullable(route.EndCityCode),
		nullable(route.Status), entries, stops, options,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.SelectByID(ctx, uint64(id))
}

// InsertWithID re-inserts a previously deleted route preserving its
// original primary key.  Only the coordinator's delete-rollback path
// uses it; a normal insert must let the database assign the ID.
func (r *RouteRepo) InsertWithID(ctx context.Context, route *model.Route) error {
	entries, stops, options, err := marshalLists(route)
	if err != nil {
		return err
	}
	const q = `INSERT INTO routes
	           (id, name, country, transfer_type, start_location, start_city_code,
	            end_location, end_city_code, status, transport_entries,
	            intermediate_stops, sightseeing_options)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		route.ID, route.Name, route.Country, route.TransferType,
		nullable(route.StartLocation), nullable(route.StartCityCode),
		nullable(route.EndLocation), nullable(route.EndCityCode),
		nullable(route.Status), entries, stops, options,
	)
	return err
}

// Update replaces the route's mutable columns and returns the
// resulting row.  It returns ErrRouteNotFound when the ID is unknown.
func (r *RouteRepo) Update(ctx context.Context, id uint64, route *model.Route) (*model.Route, error) {
	entries, stops, options, err := marshalLists(route)
	if err != nil {
		return nil, err
	}
	const q = `UPDATE routes SET
	           name = ?, country = ?, transfer_type = ?, start_location = ?,
	           start_city_code = ?, end_location = ?, end_city_code = ?, status = ?,
	           transport_entries = ?, intermediate_stops = ?, sightseeing_options = ?,
	           updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q,
		route.Name, route.Country, route.TransferType,
		nullable(route.StartLocation), nullable(route.StartCityCode),
		nullable(route.EndLocation), nullable(route.EndCityCode),
		nullable(route.Status), entries, stops, options, id,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Either the row is gone or the update was a no-op; a select
		// distinguishes the two.
		if _, selErr := r.SelectByID(ctx, id); selErr != nil {
			return nil, selErr
		}
	}
	return r.SelectByID(ctx, id)
}

// DeleteByID removes the route.  Deleting an unknown ID returns
// ErrRouteNotFound so the coordinator can report it precisely.
func (r *RouteRepo) DeleteByID(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRouteNotFound
	}
	return nil
}

// ListByCountry returns all routes for a country ordered by name.  The
// back office uses it to populate proposal builders; it is not part of
// any transaction.
func (r *RouteRepo) ListByCountry(ctx context.Context, country string) ([]model.Route, error) {
	q := `SELECT ` + routeColumns + ` FROM routes WHERE country = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, country)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	routes := make([]model.Route, 0)
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, *route)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return routes, nil
}

// scanner abstracts sql.Row and sql.Rows for scanRoute.
type scanner interface {
	Scan(dest ...any) error
}

func scanRoute(s scanner) (*model.Route, error) {
	var route model.Route
	var startLoc, startCode, endLoc, endCode, status sql.NullString
	var entries, stops, options sql.NullString
	var createdAt, updatedAt time.Time
	err := s.Scan(
		&route.ID, &route.Name, &route.Country, &route.TransferType,
		&startLoc, &startCode, &endLoc, &endCode, &status,
		&entries, &stops, &options, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	route.StartLocation = startLoc.String
	route.StartCityCode = startCode.String
	route.EndLocation = endLoc.String
	route.EndCityCode = endCode.String
	route.Status = status.String
	route.CreatedAt = createdAt.UTC()
	route.UpdatedAt = updatedAt.UTC()
	if err := unmarshalList(entries, &route.TransportEntries); err != nil {
		return nil, fmt.Errorf("routes.transport_entries: %w", err)
	}
	if err := unmarshalList(stops, &route.IntermediateStops); err != nil {
		return nil, fmt.Errorf("routes.intermediate_stops: %w", err)
	}
	if err := unmarshalList(options, &route.SightseeingOptions); err != nil {
		return nil, fmt.Errorf("routes.sightseeing_options: %w", err)
	}
	return &route, nil
}

func marshalLists(route *model.Route) (entries, stops, options []byte, err error) {
	if entries, err = json.Marshal(orEmpty(route.TransportEntries)); err != nil {
		return nil, nil, nil, err
	}
	if stops, err = json.Marshal(orEmpty(route.IntermediateStops)); err != nil {
		return nil, nil, nil, err
	}
	if options, err = json.Marshal(orEmpty(route.SightseeingOptions)); err != nil {
		return nil, nil, nil, err
	}
	return entries, stops, options, nil
}

// orEmpty keeps JSON columns as [] rather than null for nil slices.
func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

func unmarshalList[T any](col sql.NullString, dest *[]T) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		*dest = nil
		return nil
	}
	var list []T
	if err := json.Unmarshal([]byte(col.String), &list); err != nil {
		return err
	}
	if len(list) == 0 {
		list = nil
	}
	*dest = list
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
