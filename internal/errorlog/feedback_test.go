package errorlog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wouldcart/Triplexa2-sub009/internal/validation"
)

func TestShowUserFeedback_FanOutInRegistrationOrder(t *testing.T) {
	l := newTestLog(nil)
	var order []string
	l.OnFeedback(func(f Feedback) { order = append(order, "first") })
	unsub := l.OnFeedback(func(f Feedback) { order = append(order, "second") })
	l.OnFeedback(func(f Feedback) { order = append(order, "third") })

	l.ShowUserFeedback(Feedback{Type: FeedbackInfo, Title: "hi"})
	assert.Equal(t, []string{"first", "second", "third"}, order)

	unsub()
	order = nil
	l.ShowUserFeedback(Feedback{Type: FeedbackInfo, Title: "again"})
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestShowUserFeedback_NoSubscribersIsDropped(t *testing.T) {
	l := newTestLog(nil)
	assert.NotPanics(t, func() {
		l.ShowUserFeedback(Feedback{Type: FeedbackSuccess, Title: "nobody listening"})
	})
}

func TestShowUserFeedback_SubscriberPanicIsSwallowed(t *testing.T) {
	l := newTestLog(nil)
	var got int
	l.OnFeedback(func(f Feedback) { panic("boom") })
	l.OnFeedback(func(f Feedback) { got++ })

	assert.NotPanics(t, func() {
		l.ShowUserFeedback(Feedback{Type: FeedbackError, Title: "x"})
	})
	assert.Equal(t, 1, got)
}

func TestShowValidationFeedback(t *testing.T) {
	tests := []struct {
		name           string
		result         validation.Result
		wantType       FeedbackType
		wantPersistent bool
		wantActions    []string
	}{
		{
			name: "errors produce a persistent error banner",
			result: validation.Result{
				Errors: []validation.Error{{Field: "country", Code: "REQUIRED_FIELD", Message: "required"}},
			},
			wantType:       FeedbackError,
			wantPersistent: true,
			wantActions:    []string{"View Details"},
		},
		{
			name: "warnings produce an auto-dismissing warning",
			result: validation.Result{
				Warnings: []validation.Error{{Field: "duration", Code: "MISSING_DURATION", Message: "no duration"}},
			},
			wantType:    FeedbackWarning,
			wantActions: []string{"Continue Anyway", "Review Warnings"},
		},
		{
			name:     "clean result produces success",
			result:   validation.Result{IsValid: true},
			wantType: FeedbackSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLog(nil)
			var got *Feedback
			l.OnFeedback(func(f Feedback) { got = &f })

			l.ShowValidationFeedback(tt.result, "Route")

			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantPersistent, got.Persistent)
			var labels []string
			for _, a := range got.Actions {
				labels = append(labels, a.Label)
			}
			assert.Equal(t, tt.wantActions, labels)
			if tt.wantType == FeedbackWarning {
				assert.Equal(t, warningDismiss, got.Duration)
			}
			if tt.wantType == FeedbackSuccess {
				assert.Equal(t, successDismiss, got.Duration)
			}
		})
	}
}

func TestShowDatabaseFeedback(t *testing.T) {
	l := newTestLog(nil)
	var got []Feedback
	l.OnFeedback(func(f Feedback) { got = append(got, f) })

	l.ShowDatabaseFeedback("create route", true, "Route", nil)
	l.ShowDatabaseFeedback("create route", false, "Route", errors.New("duplicate entry"))

	require.Len(t, got, 2)
	assert.Equal(t, FeedbackSuccess, got[0].Type)
	assert.Equal(t, FeedbackError, got[1].Type)
	assert.True(t, got[1].Persistent)
	assert.Equal(t, "duplicate entry", got[1].Details)
	require.Len(t, got[1].Actions, 1)
	assert.Equal(t, "Retry", got[1].Actions[0].Label)
}

func TestShowSynchronizationFeedback(t *testing.T) {
	l := newTestLog(nil)
	var got []Feedback
	l.OnFeedback(func(f Feedback) { got = append(got, f) })

	l.ShowSynchronizationFeedback("sightseeing", true, 4, 0, nil)
	l.ShowSynchronizationFeedback("sightseeing", false, 2, 2, []string{"p-1 missing", "p-2 stale"})

	require.Len(t, got, 2)
	assert.Equal(t, FeedbackSuccess, got[0].Type)
	assert.Contains(t, got[0].Message, "4 item(s)")
	assert.Equal(t, FeedbackError, got[1].Type)
	assert.Contains(t, got[1].Message, "2 synchronized, 2 failed")
	assert.Equal(t, "p-1 missing; p-2 stale", got[1].Details)
}
