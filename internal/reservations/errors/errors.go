package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrUnitNotFound = errors.New("unit not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrInvalidDateRange = errors.New("check-out date must be after check-in date")

	ErrUnitUnavailable = errors.New("unit is not available for booking")

	ErrDateRangeConflict = errors.New("dates overlap an existing reservation")

	ErrInvalidTransition = errors.New("transition not allowed from current status")

	ErrAlreadyProcessed = errors.New("transition already applied")

	ErrInvalidAmount = errors.New("amount must be positive")

	ErrConcurrentModification = errors.New("reservation was modified concurrently")

	ErrLockHeld = errors.New("unit is locked by another request")

	ErrDuplicateReference = errors.New("reference code already exists")
)
