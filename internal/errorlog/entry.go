// Package errorlog centralizes structured error recording and
// decoupled user-facing feedback for the route back office.  The log
// is an explicitly constructed service object: callers create one with
// New and inject it where needed, so tests run against isolated
// instances instead of shared globals.
//
// Nothing in this package panics or returns an error from a recording
// call.  Telemetry is best effort; a failing persister or a misbehaving
// subscriber is reported through the diagnostic logger and swallowed,
// never propagated to the caller.
package errorlog

import "time"

// Severity ranks a log entry.  Critical is reserved for failures of
// the orchestration itself, outside any single step.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
	SeverityDebug    Severity = "debug"
)

// Category groups log entries by subsystem.
type Category string

const (
	CategoryValidation      Category = "validation"
	CategoryDatabase        Category = "database"
	CategoryNetwork         Category = "network"
	CategoryAuthentication  Category = "authentication"
	CategoryAuthorization   Category = "authorization"
	CategoryBusinessLogic   Category = "business_logic"
	CategoryDataIntegrity   Category = "data_integrity"
	CategorySynchronization Category = "synchronization"
	CategoryUserInput       Category = "user_input"
)

// Context carries the circumstances of an error.  It is immutable once
// attached to an entry.
type Context struct {
	Operation      string         `json:"operation"`
	Timestamp      time.Time      `json:"timestamp"`
	UserID         string         `json:"user_id,omitempty"`
	RouteID        uint64         `json:"route_id,omitempty"`
	UserAgent      string         `json:"user_agent,omitempty"`
	SessionID      string         `json:"session_id,omitempty"`
	AdditionalData map[string]any `json:"additional_data,omitempty"`
}

// Entry is one recorded error event.  Entries live in the in-memory
// log for the lifetime of the process; the only mutation after
// creation is flipping the resolution fields.
type Entry struct {
	ID         string     `json:"id"`
	Severity   Severity   `json:"severity"`
	Category   Category   `json:"category"`
	Code       string     `json:"code"`
	Message    string     `json:"message"`
	Details    string     `json:"details,omitempty"`
	Context    Context    `json:"context"`
	StackTrace string     `json:"stack_trace,omitempty"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	Tags       []string   `json:"tags"`
}
