package errorlog

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wouldcart/Triplexa2-sub009/internal/validation"
)

// DefaultMaxPersisted is how many of the most recent entries the
// durable mirror keeps.
const DefaultMaxPersisted = 1000

// DefaultPersistKey is the key the durable mirror is written under.
const DefaultPersistKey = "triplexa:errorlog:recent"

// persistTimeout bounds the best-effort mirror write so a slow store
// cannot stall the caller for long.
const persistTimeout = 2 * time.Second

// Persister mirrors the most recent entries to a durable key-value
// store.  The mirror is advisory debugging state and is never read
// back into a running log.
type Persister interface {
	Set(ctx context.Context, key, value string) error
}

// Options configures a Log.  The zero value is usable: no persistence,
// wall clock, silent diagnostics.
type Options struct {
	Persister    Persister
	PersistKey   string
	MaxPersisted int
	Now          func() time.Time
	Diag         zerolog.Logger
}

type errorSub struct {
	id int
	fn func(*Entry)
}

type feedbackSub struct {
	id int
	fn func(Feedback)
}

// Log is the process-wide error and feedback service.  All public
// methods are safe for concurrent use; the entry list and both
// subscriber registries are guarded by one mutex.
type Log struct {
	mu           sync.Mutex
	entries      []*Entry
	errorSubs    []errorSub
	feedbackSubs []feedbackSub
	nextSubID    int

	persister    Persister
	persistKey   string
	maxPersisted int
	now          func() time.Time
	diag         zerolog.Logger
}

// New creates a Log from the given options.
func New(opts Options) *Log {
	l := &Log{
		persister:    opts.Persister,
		persistKey:   opts.PersistKey,
		maxPersisted: opts.MaxPersisted,
		now:          opts.Now,
		diag:         opts.Diag,
	}
	if l.persistKey == "" {
		l.persistKey = DefaultPersistKey
	}
	if l.maxPersisted <= 0 {
		l.maxPersisted = DefaultMaxPersisted
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// LogError records one entry and returns its generated ID.  The entry
// is appended to the in-memory log, every registered error subscriber
// is invoked synchronously, and the most recent entries are mirrored
// to the durable store.  Subscriber panics and persistence failures
// are swallowed.
func (l *Log) LogError(severity Severity, category Category, code, message string, ctx Context, details string, cause error) string {
	if ctx.Timestamp.IsZero() {
		ctx.Timestamp = l.now()
	}
	entry := &Entry{
		ID:       uuid.NewString(),
		Severity: severity,
		Category: category,
		Code:     code,
		Message:  message,
		Details:  details,
		Context:  ctx,
		Tags:     deriveTags(category, severity, code),
	}
	if cause != nil {
		if entry.Details != "" {
			entry.Details += "; "
		}
		entry.Details += "cause: " + cause.Error()
	}
	if severity == SeverityCritical {
		entry.StackTrace = string(debug.Stack())
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	subs := append([]errorSub(nil), l.errorSubs...)
	snapshot := l.recentLocked(l.maxPersisted)
	l.mu.Unlock()

	for _, sub := range subs {
		l.safeNotify(sub.fn, entry)
	}
	l.persist(snapshot)
	return entry.ID
}

// LogValidationErrors records every error in the result at severity
// error and every warning at severity warning, category validation.
// IDs are returned in call order: errors first, then warnings.
func (l *Log) LogValidationErrors(result validation.Result, ctx Context) []string {
	ids := make([]string, 0, len(result.Errors)+len(result.Warnings))
	for _, v := range result.Errors {
		ids = append(ids, l.LogError(SeverityError, CategoryValidation, v.Code, v.Message, ctx, v.Field, nil))
	}
	for _, v := range result.Warnings {
		ids = append(ids, l.LogError(SeverityWarning, CategoryValidation, v.Code, v.Message, ctx, v.Field, nil))
	}
	return ids
}

// LogDatabaseError classifies a database failure by its message and
// records it at severity error, category database.
func (l *Log) LogDatabaseError(operation string, cause error, ctx Context, details string) string {
	if ctx.Operation == "" {
		ctx.Operation = operation
	}
	code := ClassifyDatabaseError(cause)
	msg := "database operation failed: " + operation
	return l.LogError(SeverityError, CategoryDatabase, code, msg, ctx, details, cause)
}

// LogSynchronizationError records a failed catalog or route sync.
// failedData, when present, is serialized into the entry details so
// the payload that failed to sync can be inspected later.
func (l *Log) LogSynchronizationError(syncType string, cause error, ctx Context, failedData any) string {
	if ctx.Operation == "" {
		ctx.Operation = "sync:" + syncType
	}
	details := ""
	if failedData != nil {
		if b, err := json.Marshal(failedData); err == nil {
			details = "failed data: " + string(b)
		}
	}
	msg := "synchronization failed: " + syncType
	return l.LogError(SeverityError, CategorySynchronization, "SYNC_FAILED", msg, ctx, details, cause)
}

// OnError registers a subscriber invoked for every recorded entry, in
// registration order.  The returned function removes the subscription.
func (l *Log) OnError(fn func(*Entry)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextSubID
	l.nextSubID++
	l.errorSubs = append(l.errorSubs, errorSub{id: id, fn: fn})
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, s := range l.errorSubs {
			if s.id == id {
				l.errorSubs = append(l.errorSubs[:i], l.errorSubs[i+1:]...)
				return
			}
		}
	}
}

// ResolveError marks the entry with the given ID resolved.  It returns
// false, mutating nothing, when the ID is unknown.
func (l *Log) ResolveError(id, resolvedBy string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.ID == id {
			now := l.now()
			e.Resolved = true
			e.ResolvedAt = &now
			e.ResolvedBy = resolvedBy
			return true
		}
	}
	return false
}

// ClearOldErrors prunes entries strictly older than the cutoff and
// returns how many were removed.
func (l *Log) ClearOldErrors(olderThan time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.entries[:0]
	removed := 0
	for _, e := range l.entries {
		if e.Context.Timestamp.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	return removed
}

// Len reports the current number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	return out
}

// recentLocked returns copies of the newest n entries, oldest first.
// Callers must hold l.mu.
func (l *Log) recentLocked(n int) []Entry {
	start := 0
	if len(l.entries) > n {
		start = len(l.entries) - n
	}
	out := make([]Entry, 0, len(l.entries)-start)
	for _, e := range l.entries[start:] {
		out = append(out, *e)
	}
	return out
}

func (l *Log) safeNotify(fn func(*Entry), entry *Entry) {
	defer func() {
		if r := recover(); r != nil {
			l.diag.Warn().Interface("panic", r).Str("entry_id", entry.ID).
				Msg("error subscriber panicked")
		}
	}()
	fn(entry)
}

// persist mirrors the snapshot to the durable store.  Failures are
// reported through the diagnostic logger only.
func (l *Log) persist(snapshot []Entry) {
	if l.persister == nil {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		l.diag.Warn().Err(err).Msg("error log snapshot marshal failed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := l.persister.Set(ctx, l.persistKey, string(payload)); err != nil {
		l.diag.Warn().Err(err).Msg("error log snapshot persist failed")
	}
}

// deriveTags unions the category and severity with keyword tags
// derived from the code.
func deriveTags(category Category, severity Severity, code string) []string {
	tags := []string{string(category), string(severity)}
	keywords := []struct{ substr, tag string }{
		{"VALIDATION", "validation"},
		{"DATABASE", "database"},
		{"NETWORK", "network"},
		{"SYNC", "sync"},
	}
	upper := strings.ToUpper(code)
	for _, kw := range keywords {
		if strings.Contains(upper, kw.substr) {
			tags = append(tags, kw.tag)
		}
	}
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out[2:]) // keep category and severity first, keywords sorted
	return out
}
