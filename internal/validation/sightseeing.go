package validation

import (
	"fmt"

	"github.com/wouldcart/Triplexa2-sub009/internal/model"
)

// ValidateSightseeingData checks every embedded sightseeing option
// against the supplied catalog snapshot.  It returns the validation
// result together with the aggregate integrity counters.
//
// An option that reaches the end of its checks without a disqualifying
// error counts as valid.  A missing or unknown catalog reference, a
// missing price on a non-free entry and an unknown transfer choice
// all disqualify; staleness and country/city drift only warn.
func (e *Engine) ValidateSightseeingData(options []model.SightseeingOption, catalog []model.CatalogEntry) (Result, SightseeingIntegrity) {
	byID := make(map[string]*model.CatalogEntry, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	integrity := SightseeingIntegrity{TotalOptions: len(options)}
	var findings []Error
	now := e.now()

	for i, opt := range options {
		field := fmt.Sprintf("sightseeing_options[%d]", i)

		if opt.ID == "" {
			findings = append(findings, Error{
				Field:    field + ".id",
				Code:     "MISSING_OPTION_ID",
				Message:  fmt.Sprintf("sightseeing option %d has no catalog id", i+1),
				Severity: SeverityError,
			})
			integrity.InvalidOptions++
			continue
		}

		entry, ok := byID[opt.ID]
		if !ok {
			findings = append(findings, Error{
				Field:    field + ".id",
				Code:     "INVALID_REFERENCE",
				Message:  fmt.Sprintf("sightseeing option %q is not in the catalog", opt.ID),
				Severity: SeverityError,
			})
			integrity.MissingReferences++
			integrity.InvalidOptions++
			continue
		}

		disqualified := false

		if entry.Status != "active" {
			findings = append(findings, Error{
				Field:    field + ".id",
				Code:     "INACTIVE_CATALOG_ENTRY",
				Message:  fmt.Sprintf("catalog entry %q has status %q", opt.ID, entry.Status),
				Severity: SeverityWarning,
			})
		}

		switch {
		case opt.LastSyncedAt == nil:
			findings = append(findings, Error{
				Field:    field + ".last_synced_at",
				Code:     "NEVER_SYNCED",
				Message:  fmt.Sprintf("sightseeing option %q has never been synchronized with the catalog", opt.ID),
				Severity: SeverityInfo,
			})
		case now.Sub(*opt.LastSyncedAt) > e.staleAfter():
			findings = append(findings, Error{
				Field:    field + ".last_synced_at",
				Code:     "OUTDATED_DATA",
				Message:  fmt.Sprintf("sightseeing option %q was last synchronized more than %d days ago", opt.ID, int(e.staleAfter().Hours()/24)),
				Severity: SeverityWarning,
			})
			integrity.OutdatedData++
		}

		if !hasAnyPrice(opt, entry) && !entry.IsFree {
			findings = append(findings, Error{
				Field:    field + ".price",
				Code:     "NO_PRICING",
				Message:  fmt.Sprintf("sightseeing option %q has no adult or child price and the catalog entry is not free", opt.ID),
				Severity: SeverityError,
			})
			integrity.PricingIssues++
			disqualified = true
		}

		if opt.TransferID != "" && !hasTransfer(entry, opt.TransferID) {
			findings = append(findings, Error{
				Field:    field + ".transfer_id",
				Code:     "INVALID_TRANSFER",
				Message:  fmt.Sprintf("sightseeing option %q references unknown transfer %q", opt.ID, opt.TransferID),
				Severity: SeverityError,
			})
			integrity.TransferIssues++
			disqualified = true
		}

		if opt.Country != "" && entry.Country != "" && opt.Country != entry.Country {
			findings = append(findings, Error{
				Field:    field + ".country",
				Code:     "COUNTRY_MISMATCH",
				Message:  fmt.Sprintf("sightseeing option %q has country %q but the catalog says %q", opt.ID, opt.Country, entry.Country),
				Severity: SeverityWarning,
			})
		}
		if opt.City != "" && entry.City != "" && opt.City != entry.City {
			findings = append(findings, Error{
				Field:    field + ".city",
				Code:     "CITY_MISMATCH",
				Message:  fmt.Sprintf("sightseeing option %q has city %q but the catalog says %q", opt.ID, opt.City, entry.City),
				Severity: SeverityWarning,
			})
		}

		if disqualified {
			integrity.InvalidOptions++
		} else {
			integrity.ValidOptions++
		}
	}

	res := buildResult(findings)
	res.Score = sightseeingScore(integrity)
	return res, integrity
}

func hasAnyPrice(opt model.SightseeingOption, entry *model.CatalogEntry) bool {
	return opt.AdultPrice > 0 || opt.ChildPrice > 0 ||
		entry.Price.Adult > 0 || entry.Price.Child > 0
}

func hasTransfer(entry *model.CatalogEntry, transferID string) bool {
	for _, t := range entry.TransferOptions {
		if t.ID == transferID {
			return true
		}
	}
	return false
}

// sightseeingScore is the share of valid options, 100 when there are
// none to check.
func sightseeingScore(integrity SightseeingIntegrity) int {
	if integrity.TotalOptions == 0 {
		return 100
	}
	return clampScore(int(float64(integrity.ValidOptions)/float64(integrity.TotalOptions)*100 + 0.5))
}
