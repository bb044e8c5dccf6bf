package model

import "time"

// RouteStatus values accepted by the routes.status column.  Any other
// value is rejected by the validation engine before it reaches the
// database.
const (
	RouteStatusActive   = "active"
	RouteStatusInactive = "inactive"
	RouteStatusDraft    = "draft"
	RouteStatusArchived = "archived"
)

// TransportEntry describes one leg of a route's transport pricing.
// A zero price is allowed and marks the leg as free of charge.
//
// Fields:
//  Type     – kind of transport (bus, ferry, private car, ...).
//  Price    – price per person; must not be negative.
//  Duration – human readable duration such as "2h30m"; optional.
type TransportEntry struct {
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	Duration string  `json:"duration,omitempty"`
}

// IntermediateStop is a stop between the route's start and end points.
// A stop is addressed either by a free-form location name or by a
// city code; at least one of the two must be present.
type IntermediateStop struct {
	Location string `json:"location,omitempty"`
	CityCode string `json:"city_code,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// SightseeingOption is an embedded reference to a sightseeing catalog
// entry plus route-specific overrides.  The referenced catalog entry
// is the source of truth for name, status and base pricing; the
// option may override prices and pin one of the entry's transfer
// options.
//
// Fields:
//  ID           – catalog entry identifier; required.
//  Name         – cached display name, may lag behind the catalog.
//  Country      – cached country, compared against the catalog.
//  City         – cached city, compared against the catalog.
//  AdultPrice   – per-adult price override in the proposal currency.
//  ChildPrice   – per-child price override.
//  TransferID   – selected transfer option from the catalog entry.
//  LastSyncedAt – when this embedded copy was last refreshed from the
//                 catalog; nil when it has never been synchronized.
type SightseeingOption struct {
	ID           string     `json:"id"`
	Name         string     `json:"name,omitempty"`
	Country      string     `json:"country,omitempty"`
	City         string     `json:"city,omitempty"`
	AdultPrice   float64    `json:"adult_price,omitempty"`
	ChildPrice   float64    `json:"child_price,omitempty"`
	TransferID   string     `json:"transfer_id,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// Route represents a transport route between two locations together
// with its pricing entries, intermediate stops and embedded
// sightseeing references.  The three list fields are stored as JSON
// columns in the routes table; the row store treats them as opaque
// payloads.
type Route struct {
	ID                 uint64              `json:"id"`
	Name               string              `json:"name"`
	Country            string              `json:"country"`
	TransferType       string              `json:"transfer_type"`
	StartLocation      string              `json:"start_location,omitempty"`
	StartCityCode      string              `json:"start_city_code,omitempty"`
	EndLocation        string              `json:"end_location,omitempty"`
	EndCityCode        string              `json:"end_city_code,omitempty"`
	Status             string              `json:"status,omitempty"`
	TransportEntries   []TransportEntry    `json:"transport_entries,omitempty"`
	IntermediateStops  []IntermediateStop  `json:"intermediate_stops,omitempty"`
	SightseeingOptions []SightseeingOption `json:"sightseeing_options,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// Start returns the route's start point as a single string, preferring
// the free-form location over the city code.
func (r *Route) Start() string {
	if r.StartLocation != "" {
		return r.StartLocation
	}
	return r.StartCityCode
}

// End returns the route's end point, preferring the free-form location
// over the city code.
func (r *Route) End() string {
	if r.EndLocation != "" {
		return r.EndLocation
	}
	return r.EndCityCode
}

// Clone returns a deep copy of the route.  The coordinator snapshots
// rows before mutating them so that a rollback can restore the exact
// pre-update state; sharing slice backing arrays would defeat that.
func (r *Route) Clone() *Route {
	if r == nil {
		return nil
	}
	cp := *r
	if r.TransportEntries != nil {
		cp.TransportEntries = append([]TransportEntry(nil), r.TransportEntries...)
	}
	if r.IntermediateStops != nil {
		cp.IntermediateStops = append([]IntermediateStop(nil), r.IntermediateStops...)
	}
	if r.SightseeingOptions != nil {
		cp.SightseeingOptions = append([]SightseeingOption(nil), r.SightseeingOptions...)
	}
	return &cp
}
