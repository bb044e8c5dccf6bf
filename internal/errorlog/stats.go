package errorlog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Sizes of the derived views inside Statistics.
const (
	topCodesLimit     = 10
	recentErrorsLimit = 20
)

// TimeRange bounds a statistics query.  Both ends are inclusive.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// CodeCount is one row of the top-error-codes table.
type CodeCount struct {
	Code     string    `json:"code"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// Statistics is a point-in-time summary of the log.
type Statistics struct {
	TotalErrors      int              `json:"total_errors"`
	ErrorsByCategory map[Category]int `json:"errors_by_category"`
	ErrorsBySeverity map[Severity]int `json:"errors_by_severity"`
	TopErrorCodes    []CodeCount      `json:"top_error_codes"`
	RecentErrors     []Entry          `json:"recent_errors"`
	ErrorRate        float64          `json:"error_rate"`
	ResolutionRate   float64          `json:"resolution_rate"`
}

// Statistics summarizes the log, optionally restricted to a time
// window.  The error rate is entries per hour over the window, with a
// 24 hour window assumed when none is given.  The resolution rate is
// the resolved share as a percentage, 100 for an empty log.
func (l *Log) Statistics(window *TimeRange) Statistics {
	l.mu.Lock()
	entries := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if window != nil {
			ts := e.Context.Timestamp
			if ts.Before(window.Start) || ts.After(window.End) {
				continue
			}
		}
		entries = append(entries, *e)
	}
	l.mu.Unlock()

	stats := Statistics{
		TotalErrors:      len(entries),
		ErrorsByCategory: make(map[Category]int),
		ErrorsBySeverity: make(map[Severity]int),
	}

	codeCounts := make(map[string]*CodeCount)
	resolved := 0
	for _, e := range entries {
		stats.ErrorsByCategory[e.Category]++
		stats.ErrorsBySeverity[e.Severity]++
		cc, ok := codeCounts[e.Code]
		if !ok {
			cc = &CodeCount{Code: e.Code}
			codeCounts[e.Code] = cc
		}
		cc.Count++
		if e.Context.Timestamp.After(cc.LastSeen) {
			cc.LastSeen = e.Context.Timestamp
		}
		if e.Resolved {
			resolved++
		}
	}

	top := make([]CodeCount, 0, len(codeCounts))
	for _, cc := range codeCounts {
		top = append(top, *cc)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Code < top[j].Code
	})
	if len(top) > topCodesLimit {
		top = top[:topCodesLimit]
	}
	stats.TopErrorCodes = top

	recent := entries
	if len(recent) > recentErrorsLimit {
		recent = recent[len(recent)-recentErrorsLimit:]
	}
	// newest first for display
	stats.RecentErrors = make([]Entry, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		stats.RecentErrors = append(stats.RecentErrors, recent[i])
	}

	hours := 24.0
	if window != nil {
		if d := window.End.Sub(window.Start).Hours(); d > 0 {
			hours = d
		}
	}
	stats.ErrorRate = float64(len(entries)) / hours

	if len(entries) == 0 {
		stats.ResolutionRate = 100
	} else {
		stats.ResolutionRate = float64(resolved) / float64(len(entries)) * 100
	}
	return stats
}

// csvHeader is the fixed column set of the CSV export.
var csvHeader = []string{"id", "timestamp", "severity", "category", "code", "message", "operation", "resolved"}

// Export dumps the full log as JSON or CSV.
func (l *Log) Export(format string) (string, error) {
	entries := l.Entries()
	switch strings.ToLower(format) {
	case "json":
		b, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "csv":
		var sb strings.Builder
		sb.WriteString(strings.Join(csvHeader, ","))
		sb.WriteByte('\n')
		for _, e := range entries {
			fields := []string{
				e.ID,
				e.Context.Timestamp.UTC().Format(time.RFC3339),
				string(e.Severity),
				string(e.Category),
				e.Code,
				csvEscape(e.Message),
				csvEscape(e.Context.Operation),
				strconv.FormatBool(e.Resolved),
			}
			sb.WriteString(strings.Join(fields, ","))
			sb.WriteByte('\n')
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
