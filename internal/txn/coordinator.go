package txn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wouldcart/Triplexa2-sub009/internal/errorlog"
	"github.com/wouldcart/Triplexa2-sub009/internal/validation"
)

// Step performs one remote operation.  On success it must push a
// RollbackOperation that undoes exactly what it did, then return the
// operation's result value.
type Step func(ctx context.Context, state *State) (any, error)

// Coordinator executes ordered step lists as pseudo-transactions.
// Distinct invocations may run concurrently; each owns its own State
// and there is no cross-transaction locking, so two transactions
// touching the same row race with whatever isolation the store itself
// provides per call.
type Coordinator struct {
	store   RouteStore
	catalog CatalogLoader
	engine  *validation.Engine
	log     *errorlog.Log

	mu     sync.Mutex
	active map[string]*State
}

// NewCoordinator wires the coordinator to its row store, catalog
// reader, validation engine and error log.
func NewCoordinator(store RouteStore, catalog CatalogLoader, engine *validation.Engine, log *errorlog.Log) *Coordinator {
	return &Coordinator{
		store:   store,
		catalog: catalog,
		engine:  engine,
		log:     log,
		active:  make(map[string]*State),
	}
}

// ExecuteTransaction runs the steps sequentially.  Ordering matters:
// later steps may depend on earlier ones' side effects, and rollback
// must reverse exactly that order.  On any step failure the
// accumulated rollback stack runs in reverse and the returned result
// reports failed-and-rolled-back; the error is surfaced in the result,
// never re-thrown.
func (c *Coordinator) ExecuteTransaction(ctx context.Context, opType string, steps []Step, txctx TxContext) Result {
	start := time.Now()
	state := &State{
		ID:        uuid.NewString(),
		Type:      opType,
		Context:   txctx,
		StartedAt: start,
	}
	c.register(state)
	defer c.unregister(state.ID)

	c.log.LogError(errorlog.SeverityInfo, errorlog.CategoryBusinessLogic,
		"TRANSACTION_STARTED", fmt.Sprintf("transaction %s started: %s", state.ID, opType),
		c.logContext(txctx, opType), fmt.Sprintf("%d step(s)", len(steps)), nil)

	results, failedIdx, err := c.runSteps(ctx, state, steps)
	if err != nil {
		if failedIdx < 0 {
			// The orchestration itself blew up, not a step.
			c.log.LogError(errorlog.SeverityCritical, errorlog.CategoryBusinessLogic,
				"TRANSACTION_PANIC", fmt.Sprintf("transaction %s aborted: %s", state.ID, opType),
				c.logContext(txctx, opType), "", err)
			failedIdx = state.StepsCompleted()
		} else {
			c.log.LogError(errorlog.SeverityError, errorlog.CategoryDatabase,
				"TRANSACTION_STEP_FAILED",
				fmt.Sprintf("transaction %s: step %d of %d failed", state.ID, failedIdx+1, len(steps)),
				c.logContext(txctx, opType), "", err)
		}
		warnings := c.rollback(ctx, state)
		return Result{
			Success:             false,
			Err:                 err,
			RollbackPerformed:   true,
			OperationsCompleted: failedIdx,
			TotalOperations:     len(steps),
			Duration:            time.Since(start),
			Warnings:            warnings,
		}
	}

	// An operator may have force-rolled this transaction back while it
	// was running.  Its earlier effects are already compensated, so the
	// call must never report a commit; any step that completed after the
	// forced drain is compensated here.
	if state.wasRolledBack() {
		warnings := c.rollback(ctx, state)
		c.log.LogError(errorlog.SeverityWarning, errorlog.CategoryBusinessLogic,
			"TRANSACTION_ABORTED", fmt.Sprintf("transaction %s aborted by forced rollback: %s", state.ID, opType),
			c.logContext(txctx, opType), "", nil)
		return Result{
			Success:             false,
			Err:                 fmt.Errorf("transaction %s was rolled back by operator request", state.ID),
			RollbackPerformed:   true,
			OperationsCompleted: len(results),
			TotalOperations:     len(steps),
			Duration:            time.Since(start),
			Warnings:            warnings,
		}
	}

	state.markCompleted()
	c.log.LogError(errorlog.SeverityInfo, errorlog.CategoryBusinessLogic,
		"TRANSACTION_COMPLETED", fmt.Sprintf("transaction %s completed: %s", state.ID, opType),
		c.logContext(txctx, opType), "", nil)

	var data any
	switch len(results) {
	case 0:
	case 1:
		data = results[0]
	default:
		data = results
	}
	return Result{
		Success:             true,
		Data:                data,
		OperationsCompleted: len(steps),
		TotalOperations:     len(steps),
		Duration:            time.Since(start),
	}
}

// runSteps executes the steps in order.  It returns the collected
// results, the index of the failed step (or -1 when the failure was a
// recovered panic in the orchestration) and the error.
func (c *Coordinator) runSteps(ctx context.Context, state *State, steps []Step) (results []any, failedIdx int, err error) {
	failedIdx = -1
	defer func() {
		if r := recover(); r != nil {
			failedIdx = -1
			err = fmt.Errorf("transaction orchestration panic: %v", r)
		}
	}()
	for i, step := range steps {
		// Stop dispatching once a forced rollback has swept the state;
		// the caller reports the transaction as rolled back.
		if state.wasRolledBack() {
			break
		}
		res, stepErr := step(ctx, state)
		if stepErr != nil {
			return results, i, stepErr
		}
		results = append(results, res)
	}
	return results, -1, nil
}

// rollback runs every recorded compensating action in reverse push
// order.  Individual rollback failures are logged and reported as
// warnings but never abort the sweep: the remaining compensations
// still run, and the outer transaction is still reported as rolled
// back.  A warning therefore means manual intervention may be needed.
func (c *Coordinator) rollback(ctx context.Context, state *State) []string {
	ops := state.drainRollback()
	var warnings []string
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if err := op.Execute(ctx); err != nil {
			c.log.LogError(errorlog.SeverityError, errorlog.CategoryDataIntegrity,
				"ROLLBACK_FAILED",
				fmt.Sprintf("transaction %s: rollback of %q on table %q failed", state.ID, op.Operation, op.Table),
				c.logContext(state.Context, state.Type), "", err)
			warnings = append(warnings,
				fmt.Sprintf("rollback of %s on %s failed: %v; manual intervention may be required", op.Operation, op.Table, err))
		}
	}
	state.markRolledBack()
	return warnings
}

// ActiveTransactions lists the transactions currently in flight.
func (c *Coordinator) ActiveTransactions() []ActiveTransaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ActiveTransaction, 0, len(c.active))
	for _, s := range c.active {
		out = append(out, ActiveTransaction{
			ID:             s.ID,
			Type:           s.Type,
			StartedAt:      s.StartedAt,
			StepsCompleted: s.StepsCompleted(),
		})
	}
	return out
}

// ForceRollback compensates the completed steps of an in-flight
// transaction by ID.  It cannot cancel a step that is currently
// executing; it only undoes what has already committed.  The owning
// call will find an empty stack if it later fails on its own.
func (c *Coordinator) ForceRollback(ctx context.Context, id string) ([]string, error) {
	c.mu.Lock()
	state, ok := c.active[id]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no active transaction with id %s", id)
	}
	c.log.LogError(errorlog.SeverityWarning, errorlog.CategoryBusinessLogic,
		"TRANSACTION_FORCED_ROLLBACK", fmt.Sprintf("transaction %s force-rolled back", id),
		c.logContext(state.Context, state.Type), "", nil)
	return c.rollback(ctx, state), nil
}

func (c *Coordinator) register(state *State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[state.ID] = state
}

func (c *Coordinator) unregister(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, id)
}

// activeCount is used by tests to assert the registry drains.
func (c *Coordinator) activeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

func (c *Coordinator) logContext(txctx TxContext, opType string) errorlog.Context {
	op := txctx.Operation
	if op == "" {
		op = opType
	}
	return errorlog.Context{
		Operation:      op,
		UserID:         txctx.UserID,
		RouteID:        txctx.RouteID,
		AdditionalData: txctx.Metadata,
	}
}
