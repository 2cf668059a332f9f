package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/escrow/id"
	"github.com/xraph/escrow/lease"
	"github.com/xraph/escrow/payment"
	"github.com/xraph/escrow/types"
)

// ==================== Lease models ====================

type leaseModel struct {
	grove.BaseModel `grove:"table:escrow_leases"`

	ID                 string     `grove:"id,pk"                bson:"_id"`
	Tenant             string     `grove:"tenant"               bson:"tenant"`
	Months             int        `grove:"months"               bson:"months"`
	MonthsPaid         int        `grove:"months_paid"          bson:"months_paid"`
	MonthlyAmountCents int64      `grove:"monthly_amount_cents" bson:"monthly_amount_cents"`
	MonthlyCurrency    string     `grove:"monthly_currency"     bson:"monthly_currency"`
	DepositCents       int64      `grove:"deposit_cents"        bson:"deposit_cents"`
	DepositCurrency    string     `grove:"deposit_currency"     bson:"deposit_currency"`
	RentWindowNS       int64      `grove:"rent_window_ns"       bson:"rent_window_ns"`
	DepositWindowNS    int64      `grove:"deposit_window_ns"    bson:"deposit_window_ns"`
	RentDeadline       *time.Time `grove:"rent_deadline"        bson:"rent_deadline,omitempty"`
	DepositDeadline    *time.Time `grove:"deposit_deadline"     bson:"deposit_deadline,omitempty"`
	DepositHeld        int64      `grove:"deposit_held"         bson:"deposit_held"`
	DepositPaid        bool       `grove:"deposit_paid"         bson:"deposit_paid"`
	FullyPaid          bool       `grove:"fully_paid"           bson:"fully_paid"`
	Closed             bool       `grove:"closed"               bson:"closed"`
	CreatedAt          time.Time  `grove:"created_at"           bson:"created_at"`
	UpdatedAt          time.Time  `grove:"updated_at"           bson:"updated_at"`
}

func toLeaseModel(l *lease.Lease) *leaseModel {
	return &leaseModel{
		ID:                 l.ID.String(),
		Tenant:             l.Tenant,
		Months:             l.Months,
		MonthsPaid:         l.MonthsPaid,
		MonthlyAmountCents: l.MonthlyAmount.Amount,
		MonthlyCurrency:    l.MonthlyAmount.Currency,
		DepositCents:       l.Deposit.Amount,
		DepositCurrency:    l.Deposit.Currency,
		RentWindowNS:       int64(l.RentWindow),
		DepositWindowNS:    int64(l.DepositWindow),
		RentDeadline:       timePtr(l.RentDeadline),
		DepositDeadline:    timePtr(l.DepositDeadline),
		DepositHeld:        int64(l.DepositHeld),
		DepositPaid:        l.DepositPaid,
		FullyPaid:          l.FullyPaid,
		Closed:             l.Closed,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func fromLeaseModel(m *leaseModel) (*lease.Lease, error) {
	leaseID, err := id.ParseLeaseID(m.ID)
	if err != nil {
		return nil, err
	}

	return &lease.Lease{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:              leaseID,
		Tenant:          m.Tenant,
		Months:          m.Months,
		MonthsPaid:      m.MonthsPaid,
		MonthlyAmount:   types.Money{Amount: m.MonthlyAmountCents, Currency: m.MonthlyCurrency},
		Deposit:         types.Money{Amount: m.DepositCents, Currency: m.DepositCurrency},
		RentWindow:      time.Duration(m.RentWindowNS),
		DepositWindow:   time.Duration(m.DepositWindowNS),
		RentDeadline:    timeVal(m.RentDeadline),
		DepositDeadline: timeVal(m.DepositDeadline),
		DepositHeld:     types.Native(m.DepositHeld),
		DepositPaid:     m.DepositPaid,
		FullyPaid:       m.FullyPaid,
		Closed:          m.Closed,
	}, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:escrow_payments"`

	ID            string    `grove:"id,pk"          bson:"_id"`
	LeaseID       string    `grove:"lease_id"       bson:"lease_id,omitempty"`
	Tenant        string    `grove:"tenant"         bson:"tenant,omitempty"`
	Kind          string    `grove:"kind"           bson:"kind"`
	Amount        int64     `grove:"amount"         bson:"amount"`
	RateCents     int64     `grove:"rate_cents"     bson:"rate_cents"`
	RateCurrency  string    `grove:"rate_currency"  bson:"rate_currency,omitempty"`
	MonthsCovered int       `grove:"months_covered" bson:"months_covered"`
	CreatedAt     time.Time `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"     bson:"updated_at"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	return &paymentModel{
		ID:            p.ID.String(),
		LeaseID:       p.LeaseID.String(),
		Tenant:        p.Tenant,
		Kind:          string(p.Kind),
		Amount:        int64(p.Amount),
		RateCents:     p.Rate.Amount,
		RateCurrency:  p.Rate.Currency,
		MonthsCovered: p.MonthsCovered,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func fromPaymentModel(m *paymentModel) (*payment.Payment, error) {
	paymentID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}

	var leaseID id.LeaseID
	if m.LeaseID != "" {
		leaseID, err = id.ParseLeaseID(m.LeaseID)
		if err != nil {
			return nil, err
		}
	}

	return &payment.Payment{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            paymentID,
		LeaseID:       leaseID,
		Tenant:        m.Tenant,
		Kind:          payment.Kind(m.Kind),
		Amount:        types.Native(m.Amount),
		Rate:          types.Money{Amount: m.RateCents, Currency: m.RateCurrency},
		MonthsCovered: m.MonthsCovered,
	}, nil
}

// ==================== Owner ledger model ====================

// ledgerDocID is the _id of the single owner-balance document.
const ledgerDocID = "owner"

type ledgerModel struct {
	ID      string `bson:"_id"`
	Balance int64  `bson:"balance"`
}

// ==================== Helpers ====================

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeVal(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
