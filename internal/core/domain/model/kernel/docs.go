// Package kernel provides the shared value objects of the relocation domain.
//
// The package includes:
//   - UUID: identifier of jobs, offers, drivers and clients
//   - GeoPoint: a WGS84 coordinate with great-circle (haversine) distance
//   - Place: an address with optional coordinates
//   - Schedule: the civil date and time a pickup is planned for
//   - Actor: the resolved identity performing an operation
//   - Clock: the source of "now" injected into handlers
//
// Value objects are immutable and are only valid when built through their
// constructors; Validate reports zero values.
package kernel
