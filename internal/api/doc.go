// Package api implements the HTTP REST API for the booking core.
//
// This package provides:
//   - CRUD endpoints for clients, barbers, services and appointments, with
//     query-string filters, ordering and pagination passed to the data accessor
//   - Booking workflow endpoints (book, cancel, complete)
//   - JWT authentication and role-based permission checks
//   - Audit trail listing (GET /audit) and runtime metrics (GET /metrics)
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Security
//
// Every route except /health and /auth/login needs a bearer token from
// /auth/login. Catalogue changes (barbers, services) and client deletion
// need the manager role.
//
// # Errors
//
// Failures are returned as {"status", "code", "message"} JSON. Validation
// failures are 422, booking conflicts 409, and an exhausted connection pool
// 503.
package api
