package lease_test

import (
	"testing"
	"time"

	"github.com/xraph/escrow/lease"
	"github.com/xraph/escrow/types"
)

func TestStatusDerivation(t *testing.T) {
	tests := []struct {
		name  string
		lease lease.Lease
		want  lease.Status
	}{
		{"New lease", lease.Lease{}, lease.StatusDepositPending},
		{"Deposit paid", lease.Lease{DepositPaid: true}, lease.StatusActive},
		{"Fully paid", lease.Lease{DepositPaid: true, FullyPaid: true}, lease.StatusFullyPaid},
		{"Closed", lease.Lease{DepositPaid: true, FullyPaid: true, Closed: true}, lease.StatusClosed},
		{"Closed overrides all", lease.Lease{Closed: true}, lease.StatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lease.Status(); got != tt.want {
				t.Errorf("Got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOverduePredicates(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	l := lease.Lease{RentDeadline: base}
	if l.RentOverdue(base) {
		t.Error("deadline itself is not overdue")
	}
	if !l.RentOverdue(base.Add(time.Second)) {
		t.Error("past deadline should be overdue")
	}

	var unarmed lease.Lease
	if unarmed.RentOverdue(base) || unarmed.DepositOverdue(base) {
		t.Error("zero deadline should never be overdue")
	}

	d := lease.Lease{DepositDeadline: base}
	if !d.DepositOverdue(base.Add(time.Hour)) {
		t.Error("past deposit deadline should be overdue")
	}
}

func TestMonthsRemaining(t *testing.T) {
	l := lease.Lease{Months: 12, MonthsPaid: 5}
	if got := l.MonthsRemaining(); got != 7 {
		t.Errorf("Got %d, want 7", got)
	}
}

func TestTermsValid(t *testing.T) {
	valid := lease.Terms{
		Tenant:        "alice",
		Months:        12,
		MonthlyAmount: types.USD(100_000),
		Deposit:       types.USD(200_000),
		RentWindow:    30 * 24 * time.Hour,
		DepositWindow: 7 * 24 * time.Hour,
	}
	if !valid.Valid() {
		t.Error("complete terms should be valid")
	}

	tests := []struct {
		name   string
		mutate func(*lease.Terms)
	}{
		{"No tenant", func(tm *lease.Terms) { tm.Tenant = "" }},
		{"Zero months", func(tm *lease.Terms) { tm.Months = 0 }},
		{"Negative months", func(tm *lease.Terms) { tm.Months = -1 }},
		{"Zero rent", func(tm *lease.Terms) { tm.MonthlyAmount = types.USD(0) }},
		{"Zero deposit", func(tm *lease.Terms) { tm.Deposit = types.USD(0) }},
		{"Zero rent window", func(tm *lease.Terms) { tm.RentWindow = 0 }},
		{"Zero deposit window", func(tm *lease.Terms) { tm.DepositWindow = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := valid
			tt.mutate(&terms)
			if terms.Valid() {
				t.Error("should be invalid")
			}
		})
	}
}

func TestClone(t *testing.T) {
	original := &lease.Lease{Tenant: "alice", MonthsPaid: 3}

	clone := original.Clone()
	clone.MonthsPaid = 7

	if original.MonthsPaid != 3 {
		t.Error("mutating the clone must not affect the original")
	}
}
