package validation

import (
	"fmt"
	"math"

	"github.com/wouldcart/Triplexa2-sub009/internal/model"
)

// productionReadyScore is the merged score below which the report
// recommends improving data quality before publishing.
const productionReadyScore = 80

// ValidateCompleteRoute runs the route checks and the sightseeing
// checks, merges their findings into one result and derives ordered
// recommendations.  The merged score is the rounded average of the two
// component scores.
func (e *Engine) ValidateCompleteRoute(route *model.Route, catalog []model.CatalogEntry) RouteIntegrity {
	routeRes := e.ValidateRouteData(route)

	var options []model.SightseeingOption
	if route != nil {
		options = route.SightseeingOptions
	}
	sightRes, integrity := e.ValidateSightseeingData(options, catalog)

	merged := Result{
		Errors:   append(append([]Error{}, routeRes.Errors...), sightRes.Errors...),
		Warnings: append(append([]Error{}, routeRes.Warnings...), sightRes.Warnings...),
		Info:     append(append([]Error{}, routeRes.Info...), sightRes.Info...),
	}
	merged.IsValid = len(merged.Errors) == 0
	merged.Score = clampScore(int(math.Round(float64(routeRes.Score+sightRes.Score) / 2)))

	return RouteIntegrity{
		RouteValidation:      merged,
		SightseeingIntegrity: integrity,
		Recommendations:      recommendations(merged, integrity),
		LastValidated:        e.now(),
	}
}

// recommendations derives the ordered action list shown next to the
// report.  The order is part of the contract with the proposal
// builder UI: blocking problems first, then quality improvements, then
// a single positive message when there is nothing to do.
func recommendations(merged Result, integrity SightseeingIntegrity) []string {
	var recs []string
	if n := len(merged.Errors); n > 0 {
		recs = append(recs, fmt.Sprintf("Fix %d validation error(s) before saving the route", n))
	}
	if n := len(merged.Warnings); n > 0 {
		recs = append(recs, fmt.Sprintf("Review %d warning(s) to improve route quality", n))
	}
	if integrity.OutdatedData > 0 {
		recs = append(recs, fmt.Sprintf("Synchronize %d outdated sightseeing option(s) with the catalog", integrity.OutdatedData))
	}
	if integrity.MissingReferences > 0 {
		recs = append(recs, fmt.Sprintf("Remove or fix %d invalid sightseeing reference(s)", integrity.MissingReferences))
	}
	if merged.Score < productionReadyScore {
		recs = append(recs, "Improve overall data quality before publishing this route")
	}
	if len(recs) == 0 {
		recs = append(recs, "Route data is complete and ready for production")
	}
	return recs
}
