// Package queue defines message payloads exchanged over the message broker.
package queue

// FeedbackQueueName is the durable queue carrying user-facing feedback
// events from the back office to downstream consumers (audit trail,
// notification fan-out).
const FeedbackQueueName = "route.feedback"

// FeedbackEvent is published whenever the error log emits a user-facing
// feedback notification.  It mirrors the in-process event with enough
// context for downstream consumers to log or notify without querying
// the primary database.
type FeedbackEvent struct {
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Details    string   `json:"details,omitempty"`
	Actions    []string `json:"actions,omitempty"`
	Persistent bool     `json:"persistent,omitempty"`
	DurationMs int64    `json:"duration_ms,omitempty"`
	EmittedAt  string   `json:"emitted_at"`
}
