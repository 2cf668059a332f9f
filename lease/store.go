package lease

import (
	"context"
	"time"

	"github.com/xraph/escrow/id"
)

type Store interface {
	Create(ctx context.Context, l *Lease) error
	Get(ctx context.Context, leaseID id.LeaseID) (*Lease, error)
	GetByTenant(ctx context.Context, tenant string) (*Lease, error)
	List(ctx context.Context, opts ListOpts) ([]*Lease, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*Lease, error)
	Update(ctx context.Context, l *Lease) error
}
