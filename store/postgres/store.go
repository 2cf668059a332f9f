package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	escrow "github.com/xraph/escrow"
	"github.com/xraph/escrow/id"
	"github.com/xraph/escrow/lease"
	"github.com/xraph/escrow/payment"
	escrowstore "github.com/xraph/escrow/store"
	"github.com/xraph/escrow/types"
)

// compile-time interface check
var _ escrowstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("escrow/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("escrow/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Lease Store ====================

func (s *Store) CreateLease(ctx context.Context, l *lease.Lease) error {
	m := toLeaseModel(l)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetLease(ctx context.Context, leaseID id.LeaseID) (*lease.Lease, error) {
	m := new(leaseModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", leaseID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, escrow.ErrLeaseNotFound
		}
		return nil, err
	}
	return fromLeaseModel(m)
}

func (s *Store) GetTenantLease(ctx context.Context, tenant string) (*lease.Lease, error) {
	m := new(leaseModel)
	err := s.pg.NewSelect(m).
		Where("tenant = ?", tenant).
		OrderExpr("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, escrow.ErrLeaseNotFound
		}
		return nil, err
	}
	return fromLeaseModel(m)
}

func (s *Store) ListLeases(ctx context.Context, opts lease.ListOpts) ([]*lease.Lease, error) {
	var models []leaseModel
	q := s.pg.NewSelect(&models)

	// Status is derived from the progress flags, so each filter maps to a
	// flag combination rather than a column.
	switch opts.Status {
	case lease.StatusClosed:
		q = q.Where("closed = ?", true)
	case lease.StatusFullyPaid:
		q = q.Where("closed = ?", false).Where("fully_paid = ?", true)
	case lease.StatusActive:
		q = q.Where("closed = ?", false).
			Where("fully_paid = ?", false).
			Where("deposit_paid = ?", true)
	case lease.StatusDepositPending:
		q = q.Where("closed = ?", false).Where("deposit_paid = ?", false)
	}

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*lease.Lease, len(models))
	for i := range models {
		l, err := fromLeaseModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = l
	}
	return result, nil
}

func (s *Store) ListOverdueLeases(ctx context.Context, asOf time.Time) ([]*lease.Lease, error) {
	var models []leaseModel
	err := s.pg.NewSelect(&models).
		Where("closed = ?", false).
		Where("((rent_deadline IS NOT NULL AND rent_deadline < ?) OR (deposit_deadline IS NOT NULL AND deposit_deadline < ?))", asOf, asOf).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*lease.Lease, len(models))
	for i := range models {
		l, err := fromLeaseModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = l
	}
	return result, nil
}

func (s *Store) UpdateLease(ctx context.Context, l *lease.Lease) error {
	m := toLeaseModel(l)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return escrow.ErrLeaseNotFound
	}
	return nil
}

// ==================== Payment Journal ====================

func (s *Store) RecordPayment(ctx context.Context, p *payment.Payment) error {
	m := toPaymentModel(p)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListPayments(ctx context.Context, tenant string, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel
	q := s.pg.NewSelect(&models)

	if tenant != "" {
		q = q.Where("tenant = ?", tenant)
	}
	if opts.Kind != "" {
		q = q.Where("kind = ?", string(opts.Kind))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*payment.Payment, len(models))
	for i := range models {
		p, err := fromPaymentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

// ==================== Owner Ledger ====================

func (s *Store) OwnerBalance(ctx context.Context) (types.Native, error) {
	var balance int64
	err := s.pg.NewRaw(`SELECT balance FROM escrow_ledger WHERE id = 1`).Scan(ctx, &balance)
	if err != nil {
		return 0, err
	}
	return types.Native(balance), nil
}

func (s *Store) AddOwnerBalance(ctx context.Context, delta types.Native) error {
	res, err := s.pg.NewUpdate((*ledgerModel)(nil)).
		Set("balance = balance + ?", int64(delta)).
		Where("id = ?", 1).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return escrow.ErrStoreNotReady
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
