package audithook

// Action constants for audit events.
const (
	// Lease actions
	ActionLeaseCreated   = "lease.created"
	ActionLeaseFullyPaid = "lease.fully_paid"
	ActionLeaseOverdue   = "lease.overdue"

	// Payment actions
	ActionDepositPaid      = "deposit.paid"
	ActionRentPaid         = "rent.paid"
	ActionDepositCollected = "deposit.collected"
	ActionDepositReclaimed = "deposit.reclaimed"
	ActionFundsWithdrawn   = "funds.withdrawn"
)

// Resource constants for audit events.
const (
	ResourceLease   = "lease"
	ResourceDeposit = "deposit"
	ResourceRent    = "rent"
	ResourceFunds   = "funds"
)

// Category constants for audit events.
const (
	CategoryLease      = "lease"
	CategoryPayment    = "payment"
	CategorySettlement = "settlement"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
