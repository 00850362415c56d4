package domain

import "errors"

// Domain errors represent error conditions in the canship domain.
// They can be checked with errors.Is.
var (
	// ErrInvalidConfig is returned when configuration validation fails,
	// e.g. a non-positive chunk size.
	ErrInvalidConfig = errors.New("canship: invalid configuration")

	// ErrInvalidResumeIndex is returned when a start index lies outside the
	// chunk sequence.
	ErrInvalidResumeIndex = errors.New("canship: start index out of range")

	// ErrTransportFailure is matched by every DeliveryError.
	ErrTransportFailure = errors.New("canship: transport failure")

	// ErrPartialTransfer is matched by a DeliveryError when the remote side
	// already holds a prefix of the payload.
	ErrPartialTransfer = errors.New("canship: partial transfer")

	// ErrProgressMismatch is returned when a stored progress record does not
	// describe the payload being uploaded.
	ErrProgressMismatch = errors.New("canship: progress record does not match payload")
)

// ErrInvalidTransition is returned when a transfer is moved to a state that
// cannot follow its current one.
var ErrInvalidTransition = errors.New("canship: invalid transfer state transition")
