package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wouldcart/Triplexa2-sub009/internal/txn"
)

// TransactionsHandler exposes the coordinator's introspection surface.
// It is an operator tool: listing in-flight transactions and forcing a
// compensating rollback on a stuck one.
type TransactionsHandler struct {
	Coordinator *txn.Coordinator
}

// NewTransactionsHandler constructs a TransactionsHandler and panics
// when the coordinator is nil.
func NewTransactionsHandler(coordinator *txn.Coordinator) *TransactionsHandler {
	if coordinator == nil {
		panic("nil coordinator passed to NewTransactionsHandler")
	}
	return &TransactionsHandler{Coordinator: coordinator}
}

// Active handles GET /v1/transactions/active.
func (h *TransactionsHandler) Active(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"transactions": h.Coordinator.ActiveTransactions(),
	})
}

// ForceRollback handles POST /v1/transactions/:id/rollback.  It
// compensates the already-completed steps of an in-flight transaction;
// it cannot cancel a step that is currently executing.
func (h *TransactionsHandler) ForceRollback(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "transaction id is required"})
	}
	warnings, err := h.Coordinator.ForceRollback(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"rolled_back": true,
		"warnings":    warnings,
	})
}
