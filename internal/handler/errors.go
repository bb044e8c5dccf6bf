package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wouldcart/Triplexa2-sub009/internal/errorlog"
)

// ErrorsHandler exposes the error log's introspection surface:
// statistics, export, resolution and pruning.
type ErrorsHandler struct {
	Log *errorlog.Log
}

// NewErrorsHandler constructs an ErrorsHandler and panics when the log
// is nil.
func NewErrorsHandler(log *errorlog.Log) *ErrorsHandler {
	if log == nil {
		panic("nil log passed to NewErrorsHandler")
	}
	return &ErrorsHandler{Log: log}
}

// Stats handles GET /v1/errors/stats.  Optional from/to query
// parameters (RFC3339) restrict the window; without them the rate is
// computed over the default 24 hour window.
func (h *ErrorsHandler) Stats(c echo.Context) error {
	var window *errorlog.TimeRange
	fromStr, toStr := c.QueryParam("from"), c.QueryParam("to")
	if fromStr != "" && toStr != "" {
		from, err1 := time.Parse(time.RFC3339, fromStr)
		to, err2 := time.Parse(time.RFC3339, toStr)
		if err1 != nil || err2 != nil || to.Before(from) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time range"})
		}
		window = &errorlog.TimeRange{Start: from, End: to}
	}
	return c.JSON(http.StatusOK, h.Log.Statistics(window))
}

// Export handles GET /v1/errors/export?format=json|csv and streams the
// full log dump in the requested format.
func (h *ErrorsHandler) Export(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}
	dump, err := h.Log.Export(format)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	contentType := echo.MIMEApplicationJSON
	if format == "csv" {
		contentType = "text/csv"
	}
	return c.Blob(http.StatusOK, contentType, []byte(dump))
}

// Resolve handles POST /v1/errors/:id/resolve.  The resolving user is
// taken from the JWT; a missing entry yields 404.
func (h *ErrorsHandler) Resolve(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "error id is required"})
	}
	if !h.Log.ResolveError(id, userID(c)) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "error entry not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"resolved": true})
}

// Clear handles DELETE /v1/errors?older_than_hours=N and prunes
// entries older than the cutoff.
func (h *ErrorsHandler) Clear(c echo.Context) error {
	hours, err := strconv.Atoi(c.QueryParam("older_than_hours"))
	if err != nil || hours <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "older_than_hours must be a positive integer"})
	}
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	removed := h.Log.ClearOldErrors(cutoff)
	return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}
