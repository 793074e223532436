package services

import "errors"

// Shared service errors. Handlers translate these into HTTP statuses; the
// services themselves never know about HTTP.
var (
	// ErrValidation covers missing or malformed required fields.
	ErrValidation = errors.New("validation failed")

	// ErrAuthorization means the caller's role class is wrong for the operation
	// (e.g. a rider trying to create an order).
	ErrAuthorization = errors.New("role is not permitted to perform this operation")

	// ErrForbidden means the caller's role is right but their identity does not
	// match the order's party (e.g. a rider acting on another rider's order).
	ErrForbidden = errors.New("caller is not a party to this order")

	ErrOrderNotFound  = errors.New("order not found")
	ErrPayoutNotFound = errors.New("payout not found")

	// ErrOrderConflict is returned when a guarded update loses a race, most
	// importantly when two riders try to accept the same order.
	ErrOrderConflict = errors.New("order is no longer available")

	// ErrInvalidTransition is returned when an action does not map to a legal
	// transition from the order's current status.
	ErrInvalidTransition = errors.New("action is not allowed from the current order status")

	ErrOTPNotIssued   = errors.New("no delivery code has been issued for this order")
	ErrOTPExpired     = errors.New("delivery code has expired")
	ErrInvalidOTPCode = errors.New("delivery code does not match")

	// ErrPayoutAlreadyPaid: settlement is one-way; marking a paid payout paid
	// again is rejected rather than silently resetting paid_at.
	ErrPayoutAlreadyPaid = errors.New("payout has already been marked as paid")

	// ErrChatNotAvailable: no chat thread exists before a rider is assigned.
	ErrChatNotAvailable = errors.New("chat is not available until a rider is assigned")

	ErrLocationUnavailable = errors.New("rider location is not available")
)

// Actor identifies the authenticated caller of a service operation, as
// extracted from JWT claims by the auth middleware.
type Actor struct {
	UserID int64
	Role   string
}
