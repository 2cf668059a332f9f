package store

import (
	"context"
	"time"

	"github.com/xraph/escrow/id"
	"github.com/xraph/escrow/lease"
	"github.com/xraph/escrow/payment"
	"github.com/xraph/escrow/types"
)

// Store is the unified storage interface for all Escrow entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Lease methods
	CreateLease(ctx context.Context, l *lease.Lease) error
	GetLease(ctx context.Context, leaseID id.LeaseID) (*lease.Lease, error)
	// GetTenantLease returns the tenant's most recent lease, open or closed.
	// Closed leases are retained for audit, so a tenant's history stays
	// addressable after the terminal transition.
	GetTenantLease(ctx context.Context, tenant string) (*lease.Lease, error)
	ListLeases(ctx context.Context, opts lease.ListOpts) ([]*lease.Lease, error)
	ListOverdueLeases(ctx context.Context, asOf time.Time) ([]*lease.Lease, error)
	UpdateLease(ctx context.Context, l *lease.Lease) error

	// Payment journal methods
	RecordPayment(ctx context.Context, p *payment.Payment) error
	ListPayments(ctx context.Context, tenant string, opts payment.ListOpts) ([]*payment.Payment, error)

	// Owner ledger methods
	OwnerBalance(ctx context.Context) (types.Native, error)
	AddOwnerBalance(ctx context.Context, delta types.Native) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
