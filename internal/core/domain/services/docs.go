// Package services provides the domain services of the relocation dispatch core:
// business rules that span several aggregates or that are pure functions over them.
//
// The package includes:
//   - StateGuard: lifecycle transitions of a job, each returning its notification intents
//   - OfferResolver: the accept/decline decision of a driver on an offer
//   - CompensationCalculator: the driver fee for a distance and employment type
//
// None of the services perform I/O or hold mutable state. Persistence, locking and
// dispatch of the returned intents belong to the application layer.
package services
