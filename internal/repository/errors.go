// Package repository implements the row-level data access used by the
// transaction coordinator and the catalog reader.  Each repository
// method maps to one independently atomic database call; the
// coordinator layers its pseudo-transaction semantics on top.  These
// sentinel values let higher layers distinguish failure scenarios
// without parsing driver messages.
package repository

import "errors"

// ErrRouteNotFound is returned when a select, update or delete
// addresses a route ID that does not exist.  Handlers should translate
// this into an HTTP 404 response.
var ErrRouteNotFound = errors.New("route not found")

// ErrCatalogUnavailable is returned when the sightseeing catalog
// cannot be read.  Callers treat the catalog as a snapshot and should
// surface this as a synchronization failure rather than retrying
// inline.
var ErrCatalogUnavailable = errors.New("sightseeing catalog unavailable")
