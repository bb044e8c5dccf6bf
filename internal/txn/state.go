// Package txn coordinates multi-step route operations against a row
// store that has no native cross-call transaction.  Each step that
// succeeds pushes a compensating rollback operation; when a later step
// fails, the accumulated operations run in reverse order so the caller
// perceives all-or-nothing semantics.
package txn

import (
	"context"
	"sync"
	"time"
)

// TxContext carries caller-supplied metadata through a transaction and
// into the error log.
type TxContext struct {
	Operation string         `json:"operation"`
	UserID    string         `json:"user_id,omitempty"`
	RouteID   uint64         `json:"route_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RollbackOperation is a recorded compensating action: enough snapshot
// data to undo exactly one completed step, plus the function that
// applies it.  Keeping the stack as explicit data rather than bare
// closures makes the in-flight state inspectable.
type RollbackOperation struct {
	Operation string `json:"operation"`
	Table     string `json:"table"`
	Data      any    `json:"data,omitempty"`
	Execute   func(ctx context.Context) error
}

// State is the in-flight record of one transaction.  The coordinator
// owns it exclusively for the duration of a single call; it is
// registered under its ID when the call starts and removed when the
// call returns.
type State struct {
	ID        string
	Type      string
	Context   TxContext
	StartedAt time.Time

	mu          sync.Mutex
	rollbackOps []RollbackOperation
	completed   bool
	rolledBack  bool
}

// PushRollback records a compensating action for a step that just
// succeeded.  Steps must call this immediately after their remote
// operation commits so the stack always mirrors exactly what needs
// undoing.
func (s *State) PushRollback(op RollbackOperation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollbackOps = append(s.rollbackOps, op)
}

// StepsCompleted reports how many steps have pushed a rollback so far.
func (s *State) StepsCompleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rollbackOps)
}

// drainRollback removes and returns the whole stack in push order.
// ForceRollback and the failure path both drain, so a stack is never
// compensated twice.
func (s *State) drainRollback() []RollbackOperation {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := s.rollbackOps
	s.rollbackOps = nil
	return ops
}

func (s *State) markCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = true
}

func (s *State) markRolledBack() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolledBack = true
}

// wasRolledBack reports whether a rollback sweep already ran on this
// state.  The owning ExecuteTransaction call checks it so a forced
// rollback can never be followed by a committed result.
func (s *State) wasRolledBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rolledBack
}

// Result is the outcome of one coordinator invocation.  Callers check
// Success; Err is never re-thrown.
type Result struct {
	Success             bool          `json:"success"`
	Data                any           `json:"data,omitempty"`
	Err                 error         `json:"-"`
	RollbackPerformed   bool          `json:"rollback_performed,omitempty"`
	OperationsCompleted int           `json:"operations_completed"`
	TotalOperations     int           `json:"total_operations"`
	Duration            time.Duration `json:"duration"`
	Warnings            []string      `json:"warnings,omitempty"`
}

// ActiveTransaction is the introspection view of an in-flight
// transaction.
type ActiveTransaction struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	StartedAt      time.Time `json:"started_at"`
	StepsCompleted int       `json:"steps_completed"`
}
