package errs

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrObjectNotFound        = errors.New("object not found")
	ErrValueIsInvalid        = errors.New("value is invalid")
	ErrValueIsOutOfRange     = errors.New("value is out of range")
	ErrValueIsRequired       = errors.New("value is required")
	ErrInvalidState          = errors.New("invalid state")
	ErrInvalidOffer          = errors.New("invalid offer")
	ErrInvalidWindow         = errors.New("invalid window")
	ErrTooFarFromDestination = errors.New("too far from destination")
	ErrLockTimeout           = errors.New("lock timeout")
)

// IsValidation reports whether err is one of the malformed-input errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValueIsInvalid) ||
		errors.Is(err, ErrValueIsRequired) ||
		errors.Is(err, ErrValueIsOutOfRange)
}

// ObjectNotFoundError is returned when an aggregate is missing from storage.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError is returned when a value fails a business or format rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError is returned when a value lies outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError is returned when a mandatory value is missing.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// InvalidStateError is returned when an operation is illegal for the current status.
type InvalidStateError struct {
	Operation string
	State     string
}

func NewInvalidStateError(operation, state string) *InvalidStateError {
	return &InvalidStateError{Operation: operation, State: state}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s is not allowed in %s status", ErrInvalidState, e.Operation, e.State)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// InvalidOfferError is returned when an offer can no longer be decided.
type InvalidOfferError struct {
	OfferID any
	Reason  string
}

func NewInvalidOfferError(offerID any, reason string) *InvalidOfferError {
	return &InvalidOfferError{OfferID: offerID, Reason: reason}
}

func (e *InvalidOfferError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrInvalidOffer, e.OfferID, e.Reason)
}

func (e *InvalidOfferError) Unwrap() error {
	return ErrInvalidOffer
}

// InvalidWindowError is returned when the scheduled pickup is too far from now.
type InvalidWindowError struct {
	Scheduled time.Time
	Now       time.Time
	Window    time.Duration
}

func NewInvalidWindowError(scheduled, now time.Time, window time.Duration) *InvalidWindowError {
	return &InvalidWindowError{Scheduled: scheduled, Now: now, Window: window}
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("%s: scheduled pickup %s is more than %s away from %s",
		ErrInvalidWindow, e.Scheduled.Format(time.RFC3339), e.Window, e.Now.Format(time.RFC3339))
}

func (e *InvalidWindowError) Unwrap() error {
	return ErrInvalidWindow
}

// TooFarFromDestinationError is returned when a finish request fails the geofence.
type TooFarFromDestinationError struct {
	DistanceKm float64
	LimitKm    float64
}

func NewTooFarFromDestinationError(distanceKm, limitKm float64) *TooFarFromDestinationError {
	return &TooFarFromDestinationError{DistanceKm: distanceKm, LimitKm: limitKm}
}

func (e *TooFarFromDestinationError) Error() string {
	return fmt.Sprintf("%s: %.2f km exceeds %.2f km", ErrTooFarFromDestination, e.DistanceKm, e.LimitKm)
}

func (e *TooFarFromDestinationError) Unwrap() error {
	return ErrTooFarFromDestination
}

// LockTimeoutError is returned when a row lock is not granted within the bounded wait.
// Callers may retry.
type LockTimeoutError struct {
	Resource string
	ID       any
	Cause    error
}

func NewLockTimeoutError(resource string, id any) *LockTimeoutError {
	return &LockTimeoutError{Resource: resource, ID: id}
}

func NewLockTimeoutErrorWithCause(resource string, id any, cause error) *LockTimeoutError {
	return &LockTimeoutError{Resource: resource, ID: id, Cause: cause}
}

func (e *LockTimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %s (cause: %v)", ErrLockTimeout, e.Resource, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s %s", ErrLockTimeout, e.Resource, e.ID)
}

func (e *LockTimeoutError) Unwrap() error {
	return ErrLockTimeout
}

func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprint(v), "\n", " ")
}
