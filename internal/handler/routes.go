package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wouldcart/Triplexa2-sub009/internal/errorlog"
	"github.com/wouldcart/Triplexa2-sub009/internal/model"
	"github.com/wouldcart/Triplexa2-sub009/internal/repository"
	"github.com/wouldcart/Triplexa2-sub009/internal/txn"
)

// RoutesHandler exposes route listing and the coordinated route
// mutations.  Every write goes through the transaction coordinator so
// a mid-operation failure leaves the row store as it was.
type RoutesHandler struct {
	Coordinator *txn.Coordinator
	Repo        *repository.RouteRepo
	Log         *errorlog.Log
}

// NewRoutesHandler constructs a RoutesHandler and panics if any
// dependency is nil.
func NewRoutesHandler(coordinator *txn.Coordinator, repo *repository.RouteRepo, log *errorlog.Log) *RoutesHandler {
	if coordinator == nil || repo == nil || log == nil {
		panic("nil dependency passed to NewRoutesHandler")
	}
	return &RoutesHandler{Coordinator: coordinator, Repo: repo, Log: log}
}

// List handles GET /v1/routes?country=.  Reads bypass the coordinator:
// listing is a single query with nothing to roll back.
func (h *RoutesHandler) List(c echo.Context) error {
	country := c.QueryParam("country")
	if country == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "country query parameter is required"})
	}
	routes, err := h.Repo.ListByCountry(c.Request().Context(), country)
	if err != nil {
		h.Log.LogDatabaseError("list routes", err, errorlog.Context{
			Operation: "list_routes",
			UserID:    userID(c),
		}, "")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "route listing unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"routes": routes})
}

// Create handles POST /v1/routes.
func (h *RoutesHandler) Create(c echo.Context) error {
	var route model.Route
	if err := c.Bind(&route); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := txn.WithUser(c.Request().Context(), userID(c))
	res := h.Coordinator.CreateRoute(ctx, &route)
	h.Log.ShowDatabaseFeedback("create route", res.Success, route.Name, res.Err)
	return respondResult(c, res, http.StatusCreated)
}

// Update handles PUT /v1/routes/:id.  The body is the full replacement
// record; partial patches are not supported because the rollback
// snapshot has to be a complete row.
func (h *RoutesHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	var route model.Route
	if err := c.Bind(&route); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := txn.WithUser(c.Request().Context(), userID(c))
	res := h.Coordinator.UpdateRoute(ctx, id, &route)
	h.Log.ShowDatabaseFeedback("update route", res.Success, route.Name, res.Err)
	return respondResult(c, res, http.StatusOK)
}

// BulkUpdate handles PUT /v1/routes.  All payloads are validated up
// front and the whole batch is applied as one transaction: any failure
// restores every already-updated row.
func (h *RoutesHandler) BulkUpdate(c echo.Context) error {
	var updates []txn.RouteUpdate
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "empty update batch"})
	}
	ctx := txn.WithUser(c.Request().Context(), userID(c))
	res := h.Coordinator.BulkUpdateRoutes(ctx, updates)
	h.Log.ShowDatabaseFeedback("bulk update routes", res.Success, "", res.Err)
	return respondResult(c, res, http.StatusOK)
}

// Delete handles DELETE /v1/routes/:id.
func (h *RoutesHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	ctx := txn.WithUser(c.Request().Context(), userID(c))
	res := h.Coordinator.DeleteRoute(ctx, id)
	h.Log.ShowDatabaseFeedback("delete route", res.Success, "", res.Err)
	return respondResult(c, res, http.StatusOK)
}

// SyncSightseeing handles POST /v1/routes/:id/sightseeing/sync.  The
// body is the desired option list; the coordinator revalidates it
// against the live catalog and stamps the sync time.
func (h *RoutesHandler) SyncSightseeing(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	var options []model.SightseeingOption
	if err := c.Bind(&options); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := txn.WithUser(c.Request().Context(), userID(c))
	res := h.Coordinator.SyncSightseeing(ctx, id, options)

	synced, failed := len(options), 0
	var errs []string
	if !res.Success {
		synced, failed = 0, len(options)
		if res.Err != nil {
			errs = append(errs, res.Err.Error())
		}
	}
	h.Log.ShowSynchronizationFeedback("sightseeing", res.Success, synced, failed, errs)
	return respondResult(c, res, http.StatusOK)
}

// respondResult maps a coordinator result onto an HTTP response.  The
// Err field does not marshal, so its message is surfaced explicitly on
// the failure path.
func respondResult(c echo.Context, res txn.Result, okStatus int) error {
	if res.Success {
		return c.JSON(okStatus, res)
	}
	status := http.StatusConflict
	if res.OperationsCompleted == 0 && !res.RollbackPerformed {
		// Nothing touched the store: the payload itself was rejected.
		status = http.StatusUnprocessableEntity
	}
	body := echo.Map{
		"success":              false,
		"rollback_performed":   res.RollbackPerformed,
		"operations_completed": res.OperationsCompleted,
		"total_operations":     res.TotalOperations,
		"duration":             res.Duration,
	}
	if res.Err != nil {
		body["error"] = res.Err.Error()
	}
	if len(res.Warnings) > 0 {
		body["warnings"] = res.Warnings
	}
	if res.Data != nil {
		body["data"] = res.Data
	}
	return c.JSON(status, body)
}
