// Package errs provides standardized error types for the relocation service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes error types for the whole failure taxonomy of the dispatch core:
//   - ObjectNotFoundError: a job, offer or driver cannot be found
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed input
//   - InvalidStateError: the operation is illegal for the current job status
//   - InvalidOfferError: the offer is not pending, or already resolved
//   - InvalidWindowError: pickup verification outside the allowed time window
//   - TooFarFromDestinationError: finish request outside the destination geofence
//   - LockTimeoutError: the job row lock could not be acquired in time (retriable)
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is works across wrapping
package errs
