package validation

import (
	"fmt"

	"github.com/wouldcart/Triplexa2-sub009/internal/model"
)

// maxIntermediateStops is the number of stops beyond which a route is
// flagged as a candidate for splitting into two routes.
const maxIntermediateStops = 10

// ValidateRouteData checks a route record field by field and returns a
// scored result.  Checks run in a fixed order: required fields, start
// versus end, status membership, then the embedded transport entries
// and intermediate stops.
func (e *Engine) ValidateRouteData(route *model.Route) Result {
	var findings []Error
	if route == nil {
		findings = append(findings, Error{
			Field:    "route",
			Code:     "MISSING_ROUTE",
			Message:  "route data is required",
			Severity: SeverityError,
		})
		return buildResult(findings)
	}

	findings = append(findings, checkRequiredFields(route)...)

	// Identical start and end is suspicious but legal: circular
	// sightseeing routes exist.
	if start, end := route.Start(), route.End(); start != "" && start == end {
		findings = append(findings, Error{
			Field:    "end_location",
			Code:     "SAME_START_END",
			Message:  "route starts and ends at the same location",
			Severity: SeverityWarning,
		})
	}

	if route.Status != "" && !validRouteStatus(route.Status) {
		findings = append(findings, Error{
			Field:    "status",
			Code:     "INVALID_STATUS",
			Message:  fmt.Sprintf("status %q is not one of active, inactive, draft, archived", route.Status),
			Severity: SeverityError,
		})
	}

	findings = append(findings, checkTransportEntries(route.TransportEntries)...)
	findings = append(findings, checkIntermediateStops(route.IntermediateStops)...)

	return buildResult(findings)
}

func checkRequiredFields(route *model.Route) []Error {
	var findings []Error
	if route.Country == "" {
		findings = append(findings, Error{
			Field:    "country",
			Code:     "REQUIRED_FIELD",
			Message:  "country is required",
			Severity: SeverityError,
		})
	}
	if route.TransferType == "" {
		findings = append(findings, Error{
			Field:    "transfer_type",
			Code:     "REQUIRED_FIELD",
			Message:  "transfer type is required",
			Severity: SeverityError,
		})
	}
	if route.Name == "" {
		findings = append(findings, Error{
			Field:    "name",
			Code:     "REQUIRED_FIELD",
			Message:  "route name is required",
			Severity: SeverityError,
		})
	}
	if route.Start() == "" {
		findings = append(findings, Error{
			Field:    "start_location",
			Code:     "MISSING_START_LOCATION",
			Message:  "a start location or city code is required",
			Severity: SeverityError,
		})
	}
	if route.End() == "" {
		findings = append(findings, Error{
			Field:    "end_location",
			Code:     "MISSING_END_LOCATION",
			Message:  "an end location or city code is required",
			Severity: SeverityError,
		})
	}
	return findings
}

func validRouteStatus(status string) bool {
	switch status {
	case model.RouteStatusActive, model.RouteStatusInactive, model.RouteStatusDraft, model.RouteStatusArchived:
		return true
	}
	return false
}

func checkTransportEntries(entries []model.TransportEntry) []Error {
	var findings []Error
	for i, entry := range entries {
		field := fmt.Sprintf("transport_entries[%d]", i)
		if entry.Type == "" {
			findings = append(findings, Error{
				Field:    field + ".type",
				Code:     "MISSING_TRANSPORT_TYPE",
				Message:  fmt.Sprintf("transport entry %d has no type", i+1),
				Severity: SeverityError,
			})
		}
		switch {
		case entry.Price < 0:
			findings = append(findings, Error{
				Field:    field + ".price",
				Code:     "NEGATIVE_PRICE",
				Message:  fmt.Sprintf("transport entry %d has a negative price", i+1),
				Severity: SeverityError,
			})
		case entry.Price == 0:
			findings = append(findings, Error{
				Field:    field + ".price",
				Code:     "FREE_TRANSPORT",
				Message:  fmt.Sprintf("transport entry %d is free of charge", i+1),
				Severity: SeverityInfo,
			})
		}
		if entry.Duration == "" {
			findings = append(findings, Error{
				Field:    field + ".duration",
				Code:     "MISSING_DURATION",
				Message:  fmt.Sprintf("transport entry %d has no duration", i+1),
				Severity: SeverityWarning,
			})
		}
	}
	return findings
}

func checkIntermediateStops(stops []model.IntermediateStop) []Error {
	var findings []Error
	for i, stop := range stops {
		field := fmt.Sprintf("intermediate_stops[%d]", i)
		if stop.Location == "" && stop.CityCode == "" {
			findings = append(findings, Error{
				Field:    field + ".location",
				Code:     "MISSING_STOP_LOCATION",
				Message:  fmt.Sprintf("intermediate stop %d has no location or city code", i+1),
				Severity: SeverityError,
			})
		}
		if stop.Duration == "" {
			findings = append(findings, Error{
				Field:    field + ".duration",
				Code:     "MISSING_STOP_DURATION",
				Message:  fmt.Sprintf("intermediate stop %d has no duration", i+1),
				Severity: SeverityWarning,
			})
		}
	}
	if len(stops) > maxIntermediateStops {
		findings = append(findings, Error{
			Field:    "intermediate_stops",
			Code:     "TOO_MANY_STOPS",
			Message:  fmt.Sprintf("route has %d intermediate stops; consider splitting it into separate routes", len(stops)),
			Severity: SeverityWarning,
		})
	}
	return findings
}
