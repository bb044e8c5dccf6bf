package model

// CatalogPrice holds the base per-person prices of a catalog entry.
type CatalogPrice struct {
	Adult float64 `json:"adult"`
	Child float64 `json:"child"`
}

// CatalogTransferOption is one of the transfer choices offered by a
// sightseeing catalog entry.  Routes reference a transfer by its ID.
type CatalogTransferOption struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Price float64 `json:"price,omitempty"`
}

// CatalogEntry is a row of the sightseeing catalog.  Embedded
// sightseeing options inside routes reference catalog entries by ID
// and are validated against this snapshot.
//
// Fields:
//  ID              – catalog identifier (string, externally assigned).
//  Name            – display name.
//  Status          – lifecycle state; only "active" entries should be
//                    referenced by live routes.
//  Country, City   – where the sightseeing takes place.
//  IsFree          – true when the entry is deliberately priced at zero.
//  TransferOptions – transfer choices a route may pin.
//  Price           – base adult/child prices.
type CatalogEntry struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Status          string                  `json:"status"`
	Country         string                  `json:"country,omitempty"`
	City            string                  `json:"city,omitempty"`
	IsFree          bool                    `json:"is_free"`
	TransferOptions []CatalogTransferOption `json:"transfer_options,omitempty"`
	Price           CatalogPrice            `json:"price"`
}
