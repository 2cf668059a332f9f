package escrow

import (
	"errors"

	"github.com/xraph/escrow/fx"
)

// Sentinel errors for common failure scenarios.
var (
	// Access control errors
	ErrUnauthorized = errors.New("escrow: unauthorized")

	// Registry errors
	ErrInvalidTerms   = errors.New("escrow: invalid lease terms")
	ErrDuplicateLease = errors.New("escrow: tenant already has an open lease")
	ErrLeaseNotFound  = errors.New("escrow: lease not found")

	// State-precondition errors
	ErrDepositAlreadyPaid = errors.New("escrow: lease deposit already paid")
	ErrDepositNotPaid     = errors.New("escrow: lease deposit not paid")
	ErrLeaseFullyPaid     = errors.New("escrow: lease already fully paid")
	ErrLeaseNotFullyPaid  = errors.New("escrow: lease not fully paid")
	ErrLeaseClosed        = errors.New("escrow: lease is closed")
	ErrRentNotOverdue     = errors.New("escrow: rent payment not overdue")

	// Payment validation errors
	ErrAmountOutOfTolerance = errors.New("escrow: payment amount outside tolerance band")
	ErrNothingToWithdraw    = errors.New("escrow: nothing to withdraw")
	ErrRateUnavailable      = errors.New("escrow: rate provider unavailable")

	// Conversion errors (re-exported from fx so callers can match either way)
	ErrInvalidRate    = fx.ErrInvalidRate
	ErrAmountOverflow = fx.ErrOverflow

	// Store errors
	ErrStoreNotReady     = errors.New("escrow: store not ready")
	ErrStoreClosed       = errors.New("escrow: store is closed")
	ErrTransactionFailed = errors.New("escrow: transaction failed")
	ErrMigrationFailed   = errors.New("escrow: migration failed")
)

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLeaseNotFound)
}

// IsStateError returns true if the error is a lease state-precondition
// violation. State errors are permanent for the lease's current state —
// retrying the same call cannot succeed until another operation changes
// the lease.
func IsStateError(err error) bool {
	return errors.Is(err, ErrDepositAlreadyPaid) ||
		errors.Is(err, ErrDepositNotPaid) ||
		errors.Is(err, ErrLeaseFullyPaid) ||
		errors.Is(err, ErrLeaseNotFullyPaid) ||
		errors.Is(err, ErrLeaseClosed) ||
		errors.Is(err, ErrRentNotOverdue)
}

// IsRetryable returns true if the error is temporary and the operation can be
// retried. Every rejected call is a no-op, so retrying is always safe; this
// predicate marks the errors where retrying can actually succeed without any
// other state change.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateUnavailable) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
