package lease

import (
	"time"

	"github.com/xraph/escrow/id"
	"github.com/xraph/escrow/types"
)

// Status is the derived lifecycle state of a lease.
type Status string

const (
	StatusDepositPending Status = "deposit_pending"
	StatusActive         Status = "active"
	StatusFullyPaid      Status = "fully_paid"
	StatusClosed         Status = "closed"
)

// Lease is the per-tenant record of obligations and payment state. Terms are
// immutable after creation; only the payment-progress fields and the escrow
// balance change, and once Closed is set the record is frozen for audit.
type Lease struct {
	types.Entity
	ID     id.LeaseID `json:"id"`
	Tenant string     `json:"tenant"`

	// Immutable terms.
	Months        int           `json:"months"`
	MonthlyAmount types.Money   `json:"monthly_amount"`
	Deposit       types.Money   `json:"deposit"`
	RentWindow    time.Duration `json:"rent_window"`
	DepositWindow time.Duration `json:"deposit_window"`

	// Payment progress.
	MonthsPaid      int       `json:"months_paid"`
	RentDeadline    time.Time `json:"rent_deadline"`    // zero while no rent is due or once fully paid
	DepositDeadline time.Time `json:"deposit_deadline"` // zero once the deposit is paid

	// Escrowed deposit, in native units. Not withdrawable by the owner
	// until forfeited.
	DepositHeld types.Native `json:"deposit_held"`

	DepositPaid bool `json:"deposit_paid"`
	FullyPaid   bool `json:"fully_paid"`
	Closed      bool `json:"closed"`
}

// Status derives the lifecycle state from the progress flags.
func (l *Lease) Status() Status {
	switch {
	case l.Closed:
		return StatusClosed
	case l.FullyPaid:
		return StatusFullyPaid
	case l.DepositPaid:
		return StatusActive
	default:
		return StatusDepositPending
	}
}

// MonthsRemaining returns the number of unpaid rent periods.
func (l *Lease) MonthsRemaining() int {
	return l.Months - l.MonthsPaid
}

// RentOverdue reports whether a rent deadline exists and has passed at t.
func (l *Lease) RentOverdue(t time.Time) bool {
	return !l.RentDeadline.IsZero() && t.After(l.RentDeadline)
}

// DepositOverdue reports whether the deposit deadline exists and has passed at t.
func (l *Lease) DepositOverdue(t time.Time) bool {
	return !l.DepositDeadline.IsZero() && t.After(l.DepositDeadline)
}

// Clone returns a deep copy. Stores and event emission hand out clones so
// callers can never mutate registry state through a snapshot.
func (l *Lease) Clone() *Lease {
	c := *l
	return &c
}

// Terms are the creation parameters for a new lease.
type Terms struct {
	Tenant        string        `json:"tenant"`
	Months        int           `json:"months"`
	MonthlyAmount types.Money   `json:"monthly_amount"`
	Deposit       types.Money   `json:"deposit"`
	RentWindow    time.Duration `json:"rent_window"`
	DepositWindow time.Duration `json:"deposit_window"`
}

// Valid reports whether every numeric term is strictly positive and a tenant
// is named.
func (t Terms) Valid() bool {
	return t.Tenant != "" &&
		t.Months > 0 &&
		t.MonthlyAmount.IsPositive() &&
		t.Deposit.IsPositive() &&
		t.RentWindow > 0 &&
		t.DepositWindow > 0
}

// ListOpts filters lease listings.
type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
