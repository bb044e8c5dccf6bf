package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wouldcart/Triplexa2-sub009/internal/errorlog"
	"github.com/wouldcart/Triplexa2-sub009/internal/model"
	"github.com/wouldcart/Triplexa2-sub009/internal/repository"
	"github.com/wouldcart/Triplexa2-sub009/internal/validation"
)

// IntegrityHandler exposes the validation engine over HTTP.  Agents
// run a route through it before saving; the response is the full
// integrity report with scores and recommendations.
type IntegrityHandler struct {
	Engine      *validation.Engine
	CatalogRepo *repository.CatalogRepo
	Log         *errorlog.Log
}

// NewIntegrityHandler constructs an IntegrityHandler and panics if any
// dependency is nil.
func NewIntegrityHandler(engine *validation.Engine, catalogRepo *repository.CatalogRepo, log *errorlog.Log) *IntegrityHandler {
	if engine == nil || catalogRepo == nil || log == nil {
		panic("nil dependency passed to NewIntegrityHandler")
	}
	return &IntegrityHandler{Engine: engine, CatalogRepo: catalogRepo, Log: log}
}

// ValidateRoute handles POST /v1/routes/validate.  The body is a route
// record; the response is its RouteIntegrity report.  Validation
// findings are also recorded in the error log so data-quality trends
// show up in the statistics endpoint.
func (h *IntegrityHandler) ValidateRoute(c echo.Context) error {
	var route model.Route
	if err := c.Bind(&route); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	catalog, err := h.CatalogRepo.LoadCatalog(c.Request().Context())
	if err != nil {
		h.Log.LogDatabaseError("load catalog", err, errorlog.Context{
			Operation: "validate_route",
			UserID:    userID(c),
		}, "")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "sightseeing catalog unavailable"})
	}

	report := h.Engine.ValidateCompleteRoute(&route, catalog)
	if !report.RouteValidation.IsValid {
		h.Log.LogValidationErrors(report.RouteValidation, errorlog.Context{
			Operation: "validate_route",
			UserID:    userID(c),
			RouteID:   route.ID,
		})
	}
	return c.JSON(http.StatusOK, report)
}

// CatalogEntry handles GET /v1/catalog/:id.  Agents use it to inspect
// the referenced entry while resolving invalid-reference findings.
func (h *IntegrityHandler) CatalogEntry(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "catalog entry id is required"})
	}
	entry, err := h.CatalogRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "catalog entry not found"})
		}
		h.Log.LogDatabaseError("get catalog entry", err, errorlog.Context{
			Operation: "get_catalog_entry",
			UserID:    userID(c),
		}, "")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "sightseeing catalog unavailable"})
	}
	return c.JSON(http.StatusOK, entry)
}
