package txn

import (
	"context"

	"github.com/wouldcart/Triplexa2-sub009/internal/model"
)

// RouteStore is the row-level contract the coordinator builds its
// pseudo-transactions on.  Each call is independently atomic; nothing
// here spans calls, which is exactly the gap the coordinator fills.
type RouteStore interface {
	// SelectByID returns the route or repository.ErrRouteNotFound.
	SelectByID(ctx context.Context, id uint64) (*model.Route, error)
	// Insert stores a new row and returns it with its generated ID.
	Insert(ctx context.Context, route *model.Route) (*model.Route, error)
	// Update replaces the row's mutable columns and returns the
	// resulting row.
	Update(ctx context.Context, id uint64, route *model.Route) (*model.Route, error)
	// DeleteByID removes the row.
	DeleteByID(ctx context.Context, id uint64) error
	// InsertWithID re-inserts a previously deleted row preserving its
	// original ID.  Only the delete rollback path uses it.
	InsertWithID(ctx context.Context, route *model.Route) error
}

// CatalogLoader provides the sightseeing catalog snapshot used for
// pre-flight validation.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]model.CatalogEntry, error)
}
