package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/wouldcart/Triplexa2-sub009/internal/handler"
	"github.com/wouldcart/Triplexa2-sub009/internal/middleware"
)

// Handlers bundles the API's handler set so registration stays a single
// call from main.
type Handlers struct {
	Integrity    *handler.IntegrityHandler
	Routes       *handler.RoutesHandler
	Errors       *handler.ErrorsHandler
	Transactions *handler.TransactionsHandler
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the protected admin API under /v1.  Every
// endpoint requires a valid access token with the ADMIN or AGENT role;
// destructive maintenance endpoints are restricted to ADMIN.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string) {
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole("ADMIN", "AGENT"))

	// Validation: run a route through the engine without touching the store.
	v1.POST("/routes/validate", h.Integrity.ValidateRoute)
	v1.GET("/catalog/:id", h.Integrity.CatalogEntry)

	// Coordinated route mutations.  PUT /routes without an id is the
	// all-or-nothing bulk update.
	v1.GET("/routes", h.Routes.List)
	v1.POST("/routes", h.Routes.Create)
	v1.PUT("/routes", h.Routes.BulkUpdate)
	v1.PUT("/routes/:id", h.Routes.Update)
	v1.DELETE("/routes/:id", h.Routes.Delete)
	v1.POST("/routes/:id/sightseeing/sync", h.Routes.SyncSightseeing)

	// Error log introspection.
	v1.GET("/errors/stats", h.Errors.Stats)
	v1.GET("/errors/export", h.Errors.Export)
	v1.POST("/errors/:id/resolve", h.Errors.Resolve)

	// Coordinator introspection.
	v1.GET("/transactions/active", h.Transactions.Active)

	// Maintenance operations stay ADMIN-only.
	admin := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole("ADMIN"))
	admin.DELETE("/errors", h.Errors.Clear)
	admin.POST("/transactions/:id/rollback", h.Transactions.ForceRollback)
}
