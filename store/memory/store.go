// Package memory provides an in-memory store implementation, primarily for
// tests and examples. All data is lost when the process exits.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/escrow"
	"github.com/xraph/escrow/id"
	"github.com/xraph/escrow/lease"
	"github.com/xraph/escrow/payment"
	"github.com/xraph/escrow/types"
)

// Store stores everything in process memory. Reads and writes hand out
// clones, never shared pointers, so callers cannot mutate stored state
// through a snapshot.
type Store struct {
	mu sync.RWMutex

	leases       map[string]*lease.Lease
	payments     []*payment.Payment
	ownerBalance types.Native
	closed       bool
}

func New() *Store {
	return &Store{
		leases:   make(map[string]*lease.Lease),
		payments: make([]*payment.Payment, 0),
	}
}

// Lease Store implementation

func (s *Store) CreateLease(_ context.Context, l *lease.Lease) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return escrow.ErrStoreClosed
	}
	s.leases[l.ID.String()] = l.Clone()
	return nil
}

func (s *Store) GetLease(_ context.Context, leaseID id.LeaseID) (*lease.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.leases[leaseID.String()]; ok {
		return l.Clone(), nil
	}
	return nil, escrow.ErrLeaseNotFound
}

func (s *Store) GetTenantLease(_ context.Context, tenant string) (*lease.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *lease.Lease
	for _, l := range s.leases {
		if l.Tenant != tenant {
			continue
		}
		if latest == nil || l.CreatedAt.After(latest.CreatedAt) {
			latest = l
		}
	}
	if latest == nil {
		return nil, escrow.ErrLeaseNotFound
	}
	return latest.Clone(), nil
}

func (s *Store) ListLeases(_ context.Context, opts lease.ListOpts) ([]*lease.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*lease.Lease, 0)
	for _, l := range s.leases {
		if opts.Status == "" || l.Status() == opts.Status {
			result = append(result, l.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) ListOverdueLeases(_ context.Context, asOf time.Time) ([]*lease.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*lease.Lease, 0)
	for _, l := range s.leases {
		if l.Closed {
			continue
		}
		if l.RentOverdue(asOf) || l.DepositOverdue(asOf) {
			result = append(result, l.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) UpdateLease(_ context.Context, l *lease.Lease) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.leases[l.ID.String()]; !exists {
		return escrow.ErrLeaseNotFound
	}
	s.leases[l.ID.String()] = l.Clone()
	return nil
}

// Payment journal implementation

func (s *Store) RecordPayment(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return escrow.ErrStoreClosed
	}
	c := *p
	s.payments = append(s.payments, &c)
	return nil
}

func (s *Store) ListPayments(_ context.Context, tenant string, opts payment.ListOpts) ([]*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*payment.Payment, 0)
	for _, p := range s.payments {
		if tenant != "" && p.Tenant != tenant {
			continue
		}
		if opts.Kind != "" && p.Kind != opts.Kind {
			continue
		}
		c := *p
		result = append(result, &c)
	}

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// Owner ledger implementation

func (s *Store) OwnerBalance(_ context.Context) (types.Native, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ownerBalance, nil
}

func (s *Store) AddOwnerBalance(_ context.Context, delta types.Native) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return escrow.ErrStoreClosed
	}
	s.ownerBalance += delta
	return nil
}

// Store management

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return escrow.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
