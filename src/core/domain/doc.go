// Package domain contains the core domain model for the event platform.
//
// This package defines:
//   - Entities mirrored from the backend API (events, media, tickets, tenants)
//   - Entities owned by this service (comments, WhatsApp message log)
//   - Domain Errors: business rule violations and upstream failures
//
// Rules for this package:
//   - No external dependencies except the standard library
//   - No infrastructure concerns (database, HTTP, etc.)
//   - Entities validate their own invariants where the backend does not
//
// Backend entities use camelCase JSON tags because they travel to and from
// the backend unchanged. Entities owned by this service use snake_case like
// the rest of our public API.
package domain
