// Package validation implements the route data-integrity checks.  All
// functions are pure: they inspect a route record and a sightseeing
// catalog snapshot and return a structured, scored report.  Nothing in
// this package performs I/O, and no problem is ever surfaced as an
// error return – findings are data in the Result.
package validation

import (
	"math"
	"time"
)

// Severity ranks a validation finding.  Errors block saving, warnings
// flag quality issues, info entries are purely informational.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Error is a single validation finding.  It is created during a
// validation pass and never persisted.
type Error struct {
	Field    string   `json:"field"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Details  string   `json:"details,omitempty"`
}

// Result is the outcome of one validation pass.  IsValid holds if and
// only if Errors is empty.  Score is a 0..100 heuristic derived from
// the error and warning counts; it ranks data quality for the UI and
// is not a correctness gate.
type Result struct {
	IsValid  bool    `json:"is_valid"`
	Errors   []Error `json:"errors"`
	Warnings []Error `json:"warnings"`
	Info     []Error `json:"info"`
	Score    int     `json:"score"`
}

// SightseeingIntegrity aggregates counters over a route's embedded
// sightseeing references.  It is derived per validation call and never
// persisted.
type SightseeingIntegrity struct {
	TotalOptions      int `json:"total_options"`
	ValidOptions      int `json:"valid_options"`
	InvalidOptions    int `json:"invalid_options"`
	MissingReferences int `json:"missing_references"`
	OutdatedData      int `json:"outdated_data"`
	PricingIssues     int `json:"pricing_issues"`
	TransferIssues    int `json:"transfer_issues"`
}

// RouteIntegrity is the full report for one route: the merged
// route+sightseeing validation, the integrity counters and an ordered
// list of human readable recommendations.
type RouteIntegrity struct {
	RouteValidation      Result               `json:"route_validation"`
	SightseeingIntegrity SightseeingIntegrity `json:"sightseeing_integrity"`
	Recommendations      []string             `json:"recommendations"`
	LastValidated        time.Time            `json:"last_validated"`
}

// Engine runs validations.  Now is the clock used for sightseeing
// freshness checks and report timestamps; tests pin it to a fixed
// instant.  StaleAfter is how old an embedded option's last sync may
// be before it counts as outdated.
type Engine struct {
	Now        func() time.Time
	StaleAfter time.Duration
}

// DefaultStaleAfter is the freshness window for embedded sightseeing
// data: options synced longer ago than this are flagged as outdated.
const DefaultStaleAfter = 7 * 24 * time.Hour

// NewEngine returns an engine with the wall clock and the default
// freshness window.
func NewEngine() *Engine {
	return &Engine{Now: time.Now, StaleAfter: DefaultStaleAfter}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) staleAfter() time.Duration {
	if e.StaleAfter > 0 {
		return e.StaleAfter
	}
	return DefaultStaleAfter
}

// buildResult assembles a Result from collected findings and computes
// the weighted score.  Each error costs 3 normalized points and each
// warning 1, against a baseline of 10 checks:
//
//	score = max(0, min(100, 100 - round((errors*3 + warnings) / 10 * 100)))
func buildResult(findings []Error) Result {
	res := Result{
		Errors:   []Error{},
		Warnings: []Error{},
		Info:     []Error{},
	}
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			res.Errors = append(res.Errors, f)
		case SeverityWarning:
			res.Warnings = append(res.Warnings, f)
		default:
			res.Info = append(res.Info, f)
		}
	}
	res.IsValid = len(res.Errors) == 0
	res.Score = weightedScore(len(res.Errors), len(res.Warnings))
	return res
}

func weightedScore(errors, warnings int) int {
	penalty := float64(errors*3+warnings) / 10.0 * 100.0
	score := 100 - int(math.Round(penalty))
	return clampScore(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
