// Package http is the REST adapter of the relocation service, built on echo.
//
// The API is described by an embedded OpenAPI document (openapi.json). Requests under
// /api/v1 are validated against it before they reach a handler, and the same document
// is served by the swagger UI at /swagger/index.html. Callers identify themselves with
// the X-Actor-ID and X-Actor-Role headers.
//
// Core errors map to status codes as follows:
//   - not found: 404
//   - malformed input: 400
//   - invalid state or offer: 409
//   - lock wait exceeded: 409 with Retry-After: 1
//   - pickup window or geofence violations: 422
package http
