package txn

import (
	"context"
	"fmt"
	"time"

	"github.com/wouldcart/Triplexa2-sub009/internal/model"
	"github.com/wouldcart/Triplexa2-sub009/internal/validation"
)

const routesTable = "routes"

// RouteUpdate pairs a route ID with its desired new state for bulk
// updates.
type RouteUpdate struct {
	ID    uint64       `json:"id"`
	Route *model.Route `json:"route"`
}

// CreateRoute validates the payload and inserts it as a single-step
// transaction.  The compensating action deletes the row by the ID the
// insert returned.
func (c *Coordinator) CreateRoute(ctx context.Context, route *model.Route) Result {
	start := time.Now()
	txctx := TxContext{Operation: "create_route", UserID: userOf(ctx)}

	if res := c.engine.ValidateRouteData(route); !res.IsValid {
		return c.validationFailure(res, txctx, 1, start)
	}

	step := func(ctx context.Context, state *State) (any, error) {
		inserted, err := c.store.Insert(ctx, route)
		if err != nil {
			return nil, err
		}
		id := inserted.ID
		state.PushRollback(RollbackOperation{
			Operation: "delete inserted route",
			Table:     routesTable,
			Data:      id,
			Execute: func(ctx context.Context) error {
				return c.store.DeleteByID(ctx, id)
			},
		})
		return inserted, nil
	}
	return c.ExecuteTransaction(ctx, "create_route", []Step{step}, txctx)
}

// UpdateRoute validates the new state, snapshots the current row and
// applies the update as a single-step transaction.  The compensating
// action restores the snapshot via another update.
func (c *Coordinator) UpdateRoute(ctx context.Context, id uint64, route *model.Route) Result {
	start := time.Now()
	txctx := TxContext{Operation: "update_route", RouteID: id, UserID: userOf(ctx)}

	if res := c.engine.ValidateRouteData(route); !res.IsValid {
		return c.validationFailure(res, txctx, 1, start)
	}

	return c.ExecuteTransaction(ctx, "update_route", []Step{c.updateStep(id, route)}, txctx)
}

// updateStep builds the snapshot-then-update step shared by UpdateRoute
// and BulkUpdateRoutes.
func (c *Coordinator) updateStep(id uint64, route *model.Route) Step {
	return func(ctx context.Context, state *State) (any, error) {
		snapshot, err := c.store.SelectByID(ctx, id)
		if err != nil {
			return nil, err
		}
		snapshot = snapshot.Clone()
		updated, err := c.store.Update(ctx, id, route)
		if err != nil {
			return nil, err
		}
		state.PushRollback(RollbackOperation{
			Operation: "restore route snapshot",
			Table:     routesTable,
			Data:      snapshot,
			Execute: func(ctx context.Context) error {
				_, err := c.store.Update(ctx, id, snapshot)
				return err
			},
		})
		return updated, nil
	}
}

// DeleteRoute snapshots the row and deletes it.  The compensating
// action re-inserts the snapshot preserving its original ID.
func (c *Coordinator) DeleteRoute(ctx context.Context, id uint64) Result {
	start := time.Now()
	txctx := TxContext{Operation: "delete_route", RouteID: id, UserID: userOf(ctx)}

	if id == 0 {
		return Result{
			Success:             false,
			Err:                 fmt.Errorf("delete route: id is required"),
			OperationsCompleted: 0,
			TotalOperations:     1,
			Duration:            time.Since(start),
		}
	}

	step := func(ctx context.Context, state *State) (any, error) {
		snapshot, err := c.store.SelectByID(ctx, id)
		if err != nil {
			return nil, err
		}
		snapshot = snapshot.Clone()
		if err := c.store.DeleteByID(ctx, id); err != nil {
			return nil, err
		}
		state.PushRollback(RollbackOperation{
			Operation: "re-insert deleted route",
			Table:     routesTable,
			Data:      snapshot,
			Execute: func(ctx context.Context) error {
				return c.store.InsertWithID(ctx, snapshot)
			},
		})
		return snapshot, nil
	}
	return c.ExecuteTransaction(ctx, "delete_route", []Step{step}, txctx)
}

// BulkUpdateRoutes validates every payload before any remote call,
// then applies one snapshot-then-update step per route.  When update k
// fails, updates 1..k-1 roll back in reverse order.
func (c *Coordinator) BulkUpdateRoutes(ctx context.Context, updates []RouteUpdate) Result {
	start := time.Now()
	txctx := TxContext{Operation: "bulk_update_routes", UserID: userOf(ctx)}

	for i, u := range updates {
		if res := c.engine.ValidateRouteData(u.Route); !res.IsValid {
			ids := c.log.LogValidationErrors(res, c.logContext(txctx, "bulk_update_routes"))
			return Result{
				Success:             false,
				Err:                 fmt.Errorf("bulk update: route %d (id %d) failed validation with %d error(s)", i+1, u.ID, len(res.Errors)),
				OperationsCompleted: 0,
				TotalOperations:     len(updates),
				Duration:            time.Since(start),
				Warnings:            []string{fmt.Sprintf("%d validation finding(s) logged", len(ids))},
			}
		}
	}

	steps := make([]Step, 0, len(updates))
	for _, u := range updates {
		steps = append(steps, c.updateStep(u.ID, u.Route))
	}
	return c.ExecuteTransaction(ctx, "bulk_update_routes", steps, txctx)
}

// SyncSightseeing validates the embedded option list against the
// current catalog snapshot, then replaces the route's embedded list
// and stamps the sync time in one step.  The compensating action
// restores the prior embedded list.
func (c *Coordinator) SyncSightseeing(ctx context.Context, routeID uint64, options []model.SightseeingOption) Result {
	start := time.Now()
	txctx := TxContext{Operation: "sync_sightseeing", RouteID: routeID, UserID: userOf(ctx)}

	catalog, err := c.catalog.LoadCatalog(ctx)
	if err != nil {
		c.log.LogSynchronizationError("sightseeing", err, c.logContext(txctx, "sync_sightseeing"), nil)
		return Result{
			Success:             false,
			Err:                 fmt.Errorf("sync sightseeing: catalog unavailable: %w", err),
			OperationsCompleted: 0,
			TotalOperations:     1,
			Duration:            time.Since(start),
		}
	}

	if res, _ := c.engine.ValidateSightseeingData(options, catalog); !res.IsValid {
		return c.validationFailure(res, txctx, 1, start)
	}

	now := time.Now().UTC()
	synced := make([]model.SightseeingOption, len(options))
	for i, opt := range options {
		opt.LastSyncedAt = &now
		synced[i] = opt
	}

	step := func(ctx context.Context, state *State) (any, error) {
		snapshot, err := c.store.SelectByID(ctx, routeID)
		if err != nil {
			return nil, err
		}
		snapshot = snapshot.Clone()
		next := snapshot.Clone()
		next.SightseeingOptions = synced
		next.UpdatedAt = now
		updated, err := c.store.Update(ctx, routeID, next)
		if err != nil {
			return nil, err
		}
		state.PushRollback(RollbackOperation{
			Operation: "restore sightseeing list",
			Table:     routesTable,
			Data:      snapshot.SightseeingOptions,
			Execute: func(ctx context.Context) error {
				_, err := c.store.Update(ctx, routeID, snapshot)
				return err
			},
		})
		return updated, nil
	}
	return c.ExecuteTransaction(ctx, "sync_sightseeing", []Step{step}, txctx)
}

// validationFailure short-circuits an operation before any remote
// call: the findings are logged and the result reports zero completed
// operations with no rollback needed.
func (c *Coordinator) validationFailure(res validation.Result, txctx TxContext, totalOps int, start time.Time) Result {
	c.log.LogValidationErrors(res, c.logContext(txctx, txctx.Operation))
	return Result{
		Success:             false,
		Err:                 fmt.Errorf("%s: validation failed with %d error(s)", txctx.Operation, len(res.Errors)),
		OperationsCompleted: 0,
		TotalOperations:     totalOps,
		Duration:            time.Since(start),
	}
}

type userKey struct{}

// WithUser attaches the acting user's ID to the context so coordinator
// operations can stamp it into their log entries.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

func userOf(ctx context.Context) string {
	if v, ok := ctx.Value(userKey{}).(string); ok {
		return v
	}
	return ""
}
