package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wouldcart/Triplexa2-sub009/internal/txn"
)

func recordResult(t *testing.T, res txn.Result, okStatus int) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/routes", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, respondResult(c, res, okStatus))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestRespondResultSuccessUsesOKStatus(t *testing.T) {
	res := txn.Result{Success: true, Data: "created", OperationsCompleted: 1, TotalOperations: 1}
	rec, body := recordResult(t, res, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "created", body["data"])
}

func TestRespondResultRejectedPayloadIsUnprocessable(t *testing.T) {
	// Validation short-circuit: no operation ran and nothing was rolled
	// back, so the payload itself is at fault.
	res := txn.Result{Success: false, Err: errors.New("route validation failed"), TotalOperations: 2}
	rec, body := recordResult(t, res, http.StatusOK)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, false, body["rollback_performed"])
	assert.EqualValues(t, 0, body["operations_completed"])
	assert.Equal(t, "route validation failed", body["error"])
}

func TestRespondResultRolledBackFailureIsConflict(t *testing.T) {
	res := txn.Result{
		Success:             false,
		Err:                 errors.New("update step failed"),
		RollbackPerformed:   true,
		OperationsCompleted: 1,
		TotalOperations:     3,
		Warnings:            []string{"rollback of update on routes failed: timeout; manual intervention may be required"},
	}
	rec, body := recordResult(t, res, http.StatusOK)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, true, body["rollback_performed"])
	assert.EqualValues(t, 1, body["operations_completed"])
	assert.EqualValues(t, 3, body["total_operations"])
	assert.Equal(t, "update step failed", body["error"])
	require.Len(t, body["warnings"], 1)
}
