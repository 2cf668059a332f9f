package payment

import (
	"github.com/xraph/escrow/id"
	"github.com/xraph/escrow/types"
)

// Kind classifies a funds movement.
type Kind string

const (
	// KindDeposit is a tenant payment into escrow.
	KindDeposit Kind = "deposit"
	// KindRent is a tenant payment credited to the owner balance.
	KindRent Kind = "rent"
	// KindCollection is a forfeited deposit moving from escrow to the owner balance.
	KindCollection Kind = "collection"
	// KindReclaim is an escrowed deposit released back to the tenant.
	KindReclaim Kind = "reclaim"
	// KindWithdrawal is the owner draining the withdrawable balance.
	KindWithdrawal Kind = "withdrawal"
)

// Payment is one entry in the append-only funds-movement journal. Every
// successful operation that moves value records exactly one entry, so the
// journal reconciles against escrow plus the owner balance at all times.
type Payment struct {
	types.Entity
	ID      id.PaymentID `json:"id"`
	LeaseID id.LeaseID   `json:"lease_id,omitempty"`
	Tenant  string       `json:"tenant,omitempty"`
	Kind    Kind         `json:"kind"`
	Amount  types.Native `json:"amount"`
	// Rate is the reference-currency price of one coin at the time of a
	// priced payment; zero for internal transfers and withdrawals.
	Rate types.Money `json:"rate,omitempty"`
	// MonthsCovered is the number of whole rent periods a rent payment
	// settled; zero for other kinds.
	MonthsCovered int `json:"months_covered,omitempty"`
}

// ListOpts filters journal listings.
type ListOpts struct {
	Kind   Kind
	Limit  int
	Offset int
}
