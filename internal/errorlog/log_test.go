package errorlog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wouldcart/Triplexa2-sub009/internal/validation"
)

// memPersister records snapshot writes for assertions.
type memPersister struct {
	mu     sync.Mutex
	calls  int
	lastV  string
	failWC bool
}

func (p *memPersister) Set(_ context.Context, _ string, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastV = value
	if p.failWC {
		return errors.New("persist unavailable")
	}
	return nil
}

func testClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newTestLog(p Persister) *Log {
	return New(Options{
		Persister: p,
		Now:       testClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)),
	})
}

func TestLogError_AppendsAndReturnsUniqueIDs(t *testing.T) {
	l := newTestLog(nil)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		before := l.Len()
		id := l.LogError(SeverityError, CategoryDatabase, "DB_TIMEOUT", "query timed out",
			Context{Operation: "select"}, "", nil)
		assert.Equal(t, before+1, l.Len())
		assert.False(t, seen[id], "id %s repeated", id)
		seen[id] = true
	}
}

func TestLogError_TagDerivation(t *testing.T) {
	l := newTestLog(nil)
	id := l.LogError(SeverityError, CategoryDatabase, "NETWORK_SYNC_FAILURE", "link down",
		Context{Operation: "sync"}, "", nil)

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, []string{"database", "error", "network", "sync"}, entries[0].Tags)
}

func TestLogError_CauseAppendedToDetails(t *testing.T) {
	l := newTestLog(nil)
	l.LogError(SeverityError, CategoryDatabase, "DB_UNKNOWN_ERROR", "insert failed",
		Context{Operation: "insert"}, "routes table", errors.New("disk full"))

	e := l.Entries()[0]
	assert.Equal(t, "routes table; cause: disk full", e.Details)
}

func TestLogError_SubscriberPanicIsSwallowed(t *testing.T) {
	l := newTestLog(nil)
	var got []string
	l.OnError(func(e *Entry) { panic("bad subscriber") })
	l.OnError(func(e *Entry) { got = append(got, e.Code) })

	assert.NotPanics(t, func() {
		l.LogError(SeverityWarning, CategoryValidation, "REQUIRED_FIELD", "country missing",
			Context{Operation: "validate"}, "", nil)
	})
	assert.Equal(t, []string{"REQUIRED_FIELD"}, got,
		"later subscribers still run after an earlier one panics")
}

func TestLogError_PersistsSnapshotBestEffort(t *testing.T) {
	p := &memPersister{}
	l := newTestLog(p)

	l.LogError(SeverityError, CategoryDatabase, "DB_TIMEOUT", "slow", Context{Operation: "op"}, "", nil)
	assert.Equal(t, 1, p.calls)
	assert.Contains(t, p.lastV, "DB_TIMEOUT")

	// A failing persister must not surface to the caller.
	p.failWC = true
	assert.NotPanics(t, func() {
		l.LogError(SeverityError, CategoryDatabase, "DB_TIMEOUT", "slow again", Context{Operation: "op"}, "", nil)
	})
	assert.Equal(t, 2, l.Len())
}

func TestLogValidationErrors_OrderErrorsThenWarnings(t *testing.T) {
	l := newTestLog(nil)
	result := validation.Result{
		Errors: []validation.Error{
			{Field: "country", Code: "REQUIRED_FIELD", Message: "country is required", Severity: validation.SeverityError},
		},
		Warnings: []validation.Error{
			{Field: "duration", Code: "MISSING_DURATION", Message: "no duration", Severity: validation.SeverityWarning},
		},
	}

	ids := l.LogValidationErrors(result, Context{Operation: "validate", RouteID: 7})

	require.Len(t, ids, 2)
	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, SeverityError, entries[0].Severity)
	assert.Equal(t, "REQUIRED_FIELD", entries[0].Code)
	assert.Equal(t, CategoryValidation, entries[0].Category)
	assert.Equal(t, SeverityWarning, entries[1].Severity)
	assert.Equal(t, ids[0], entries[0].ID)
	assert.Equal(t, ids[1], entries[1].ID)
}

func TestLogDatabaseError_Classification(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"Duplicate entry 'R-1' for key routes.PRIMARY", CodeDBDuplicate},
		{"context deadline exceeded: timeout", CodeDBTimeout},
		{"dial tcp: connection refused", CodeDBConnection},
		{"a foreign key constraint fails", CodeDBConstraint},
		{"sql: no rows in result set", CodeDBNotFound},
		{"access denied for user", CodeDBPermission},
		{"something odd happened", CodeDBUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			l := newTestLog(nil)
			l.LogDatabaseError("insert route", errors.New(tt.msg), Context{}, "")
			e := l.Entries()[0]
			assert.Equal(t, tt.want, e.Code)
			assert.Equal(t, SeverityError, e.Severity)
			assert.Equal(t, CategoryDatabase, e.Category)
			assert.Equal(t, "insert route", e.Context.Operation)
		})
	}
}

func TestLogSynchronizationError(t *testing.T) {
	l := newTestLog(nil)
	l.LogSynchronizationError("sightseeing", errors.New("catalog unreachable"),
		Context{RouteID: 3}, map[string]string{"option": "p-9"})

	e := l.Entries()[0]
	assert.Equal(t, "SYNC_FAILED", e.Code)
	assert.Equal(t, CategorySynchronization, e.Category)
	assert.Contains(t, e.Details, `"option":"p-9"`)
	assert.Equal(t, "sync:sightseeing", e.Context.Operation)
}

func TestResolveError(t *testing.T) {
	l := newTestLog(nil)
	id := l.LogError(SeverityError, CategoryDatabase, "DB_TIMEOUT", "slow", Context{}, "", nil)

	assert.True(t, l.ResolveError(id, "agent-42"))
	e := l.Entries()[0]
	assert.True(t, e.Resolved)
	assert.NotNil(t, e.ResolvedAt)
	assert.Equal(t, "agent-42", e.ResolvedBy)

	assert.False(t, l.ResolveError("no-such-id", "agent-42"))
	assert.Equal(t, 1, l.Len())
}

func TestClearOldErrors(t *testing.T) {
	l := newTestLog(nil)
	l.LogError(SeverityError, CategoryDatabase, "A", "first", Context{}, "", nil)
	l.LogError(SeverityError, CategoryDatabase, "B", "second", Context{}, "", nil)
	cutoff := l.Entries()[1].Context.Timestamp // strictly older than second entry
	l.LogError(SeverityError, CategoryDatabase, "C", "third", Context{}, "", nil)

	removed := l.ClearOldErrors(cutoff)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, l.Len())
	for _, e := range l.Entries() {
		assert.NotEqual(t, "A", e.Code)
	}
}

func TestStatistics(t *testing.T) {
	l := newTestLog(nil)
	l.LogError(SeverityError, CategoryDatabase, "DB_TIMEOUT", "slow", Context{}, "", nil)
	id := l.LogError(SeverityError, CategoryDatabase, "DB_TIMEOUT", "slow again", Context{}, "", nil)
	l.LogError(SeverityWarning, CategoryValidation, "MISSING_DURATION", "no duration", Context{}, "", nil)
	require.True(t, l.ResolveError(id, "agent"))

	stats := l.Statistics(nil)

	assert.Equal(t, 3, stats.TotalErrors)
	assert.Equal(t, 2, stats.ErrorsBySeverity[SeverityError])
	assert.Equal(t, 1, stats.ErrorsBySeverity[SeverityWarning])
	assert.Equal(t, 2, stats.ErrorsByCategory[CategoryDatabase])
	assert.InDelta(t, 33.3, stats.ResolutionRate, 0.1)
	assert.InDelta(t, 3.0/24.0, stats.ErrorRate, 0.001)

	require.NotEmpty(t, stats.TopErrorCodes)
	assert.Equal(t, "DB_TIMEOUT", stats.TopErrorCodes[0].Code)
	assert.Equal(t, 2, stats.TopErrorCodes[0].Count)

	require.Len(t, stats.RecentErrors, 3)
	assert.Equal(t, "MISSING_DURATION", stats.RecentErrors[0].Code, "recent errors are newest first")
}

func TestStatistics_EmptyLogAndWindow(t *testing.T) {
	l := newTestLog(nil)
	stats := l.Statistics(nil)
	assert.Equal(t, 0, stats.TotalErrors)
	assert.Equal(t, 100.0, stats.ResolutionRate)

	l.LogError(SeverityError, CategoryDatabase, "DB_TIMEOUT", "slow", Context{}, "", nil)
	ts := l.Entries()[0].Context.Timestamp
	window := &TimeRange{Start: ts.Add(time.Hour), End: ts.Add(2 * time.Hour)}
	stats = l.Statistics(window)
	assert.Equal(t, 0, stats.TotalErrors, "entry outside the window is excluded")
	assert.Equal(t, 0.0, stats.ErrorRate)
}

func TestExport(t *testing.T) {
	l := newTestLog(nil)
	l.LogError(SeverityError, CategoryDatabase, "DB_TIMEOUT", "slow, very slow", Context{Operation: "select"}, "", nil)

	csv, err := l.Export("csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,timestamp,severity,category,code,message,operation,resolved", lines[0])
	assert.Contains(t, lines[1], `"slow, very slow"`)

	js, err := l.Export("json")
	require.NoError(t, err)
	assert.Contains(t, js, `"DB_TIMEOUT"`)

	_, err = l.Export("xml")
	assert.Error(t, err)
}
