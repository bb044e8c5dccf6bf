package errorlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/wouldcart/Triplexa2-sub009/internal/validation"
)

// FeedbackType classifies a user-facing feedback event.
type FeedbackType string

const (
	FeedbackSuccess FeedbackType = "success"
	FeedbackError   FeedbackType = "error"
	FeedbackWarning FeedbackType = "warning"
	FeedbackInfo    FeedbackType = "info"
)

// Default auto-dismiss durations for derived feedback events.
const (
	successDismiss = 3 * time.Second
	warningDismiss = 8 * time.Second
)

// FeedbackAction is an affordance attached to a feedback event.
// Invoke may be nil when the presentation layer wires the behavior
// itself (retry a request, open a details panel).
type FeedbackAction struct {
	Label   string `json:"label"`
	Invoke  func() `json:"-"`
	Variant string `json:"variant,omitempty"`
}

// Feedback is a transient user-facing notification.  It is consumed by
// whatever presentation layer subscribed; an event delivered to zero
// subscribers is dropped.
type Feedback struct {
	Type       FeedbackType     `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Details    string           `json:"details,omitempty"`
	Actions    []FeedbackAction `json:"actions,omitempty"`
	Duration   time.Duration    `json:"duration,omitempty"`
	Persistent bool             `json:"persistent,omitempty"`
}

// ShowUserFeedback delivers the event to every feedback subscriber in
// registration order.  Subscriber panics are swallowed.
func (l *Log) ShowUserFeedback(f Feedback) {
	l.mu.Lock()
	subs := append([]feedbackSub(nil), l.feedbackSubs...)
	l.mu.Unlock()
	for _, sub := range subs {
		l.safeFeedback(sub.fn, f)
	}
}

// OnFeedback registers a feedback subscriber and returns its
// unsubscribe function.
func (l *Log) OnFeedback(fn func(Feedback)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextSubID
	l.nextSubID++
	l.feedbackSubs = append(l.feedbackSubs, feedbackSub{id: id, fn: fn})
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, s := range l.feedbackSubs {
			if s.id == id {
				l.feedbackSubs = append(l.feedbackSubs[:i], l.feedbackSubs[i+1:]...)
				return
			}
		}
	}
}

func (l *Log) safeFeedback(fn func(Feedback), f Feedback) {
	defer func() {
		if r := recover(); r != nil {
			l.diag.Warn().Interface("panic", r).Msg("feedback subscriber panicked")
		}
	}()
	fn(f)
}

// ShowValidationFeedback translates a validation result into a
// feedback event: a persistent error banner when errors exist, an
// auto-dismissing warning with continue/review actions when only
// warnings exist, a short success toast otherwise.
func (l *Log) ShowValidationFeedback(result validation.Result, label string) {
	if label == "" {
		label = "Route"
	}
	switch {
	case len(result.Errors) > 0:
		l.ShowUserFeedback(Feedback{
			Type:       FeedbackError,
			Title:      label + " validation failed",
			Message:    fmt.Sprintf("%d error(s) must be fixed before saving", len(result.Errors)),
			Details:    joinFindings(result.Errors),
			Persistent: true,
			Actions: []FeedbackAction{
				{Label: "View Details", Variant: "primary"},
			},
		})
	case len(result.Warnings) > 0:
		l.ShowUserFeedback(Feedback{
			Type:     FeedbackWarning,
			Title:    label + " has warnings",
			Message:  fmt.Sprintf("%d warning(s) found; the data can still be saved", len(result.Warnings)),
			Details:  joinFindings(result.Warnings),
			Duration: warningDismiss,
			Actions: []FeedbackAction{
				{Label: "Continue Anyway", Variant: "secondary"},
				{Label: "Review Warnings", Variant: "primary"},
			},
		})
	default:
		l.ShowUserFeedback(Feedback{
			Type:     FeedbackSuccess,
			Title:    label + " validated",
			Message:  "All checks passed",
			Duration: successDismiss,
		})
	}
}

// ShowDatabaseFeedback reports the outcome of a database operation.
// Failures are persistent and carry a retry affordance.
func (l *Log) ShowDatabaseFeedback(operation string, success bool, label string, cause error) {
	if label == "" {
		label = "Record"
	}
	if success {
		l.ShowUserFeedback(Feedback{
			Type:     FeedbackSuccess,
			Title:    label + " saved",
			Message:  fmt.Sprintf("%s completed successfully", operation),
			Duration: successDismiss,
		})
		return
	}
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	l.ShowUserFeedback(Feedback{
		Type:       FeedbackError,
		Title:      label + " operation failed",
		Message:    fmt.Sprintf("%s did not complete; no changes were kept", operation),
		Details:    details,
		Persistent: true,
		Actions: []FeedbackAction{
			{Label: "Retry", Variant: "primary"},
		},
	})
}

// ShowSynchronizationFeedback reports the outcome of a sightseeing or
// catalog synchronization run.
func (l *Log) ShowSynchronizationFeedback(syncType string, success bool, syncedCount, failedCount int, errs []string) {
	if success {
		l.ShowUserFeedback(Feedback{
			Type:     FeedbackSuccess,
			Title:    "Synchronization complete",
			Message:  fmt.Sprintf("%s: %d item(s) synchronized", syncType, syncedCount),
			Duration: successDismiss,
		})
		return
	}
	l.ShowUserFeedback(Feedback{
		Type:       FeedbackError,
		Title:      "Synchronization failed",
		Message:    fmt.Sprintf("%s: %d synchronized, %d failed", syncType, syncedCount, failedCount),
		Details:    strings.Join(errs, "; "),
		Persistent: true,
		Actions: []FeedbackAction{
			{Label: "Retry Sync", Variant: "primary"},
		},
	})
}

func joinFindings(findings []validation.Error) string {
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}
