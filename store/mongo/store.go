package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	escrow "github.com/xraph/escrow"
	"github.com/xraph/escrow/id"
	"github.com/xraph/escrow/lease"
	"github.com/xraph/escrow/payment"
	escrowstore "github.com/xraph/escrow/store"
	"github.com/xraph/escrow/types"
)

// Collection name constants.
const (
	colLeases   = "escrow_leases"
	colPayments = "escrow_payments"
	colLedger   = "escrow_ledger"
)

// compile-time interface check
var _ escrowstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all escrow collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("escrow/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("escrow/mongo: create lease: %w", err)
	}
	return nil
}

func (s *Store) GetLease(ctx context.Context, leaseID id.LeaseID) (*lease.Lease, error) {
	var m leaseModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": leaseID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, escrow.ErrLeaseNotFound
		}
		return nil, fmt.Errorf("escrow/mongo: get lease: %w", err)
	}
	return fromLeaseModel(&m)
}

func (s *Store) GetTenantLease(ctx context.Context, tenant string) (*lease.Lease, error) {
	var m leaseModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"tenant": tenant}).
		Sort(bson.D{{Key: "created_at", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, escrow.ErrLeaseNotFound
		}
		return nil, fmt.Errorf("escrow/mongo: get tenant lease: %w", err)
	}
	return fromLeaseModel(&m)
}

func (s *Store) ListLeases(ctx context.Context, opts lease.ListOpts) ([]*lease.Lease, error) {
	var models []leaseModel

	// Status is derived from the progress flags, so each filter maps to a
	// flag combination rather than a stored field.
	filter := bson.M{}
	switch opts.Status {
	case lease.StatusClosed:
		filter["closed"] = true
	case lease.StatusFullyPaid:
		filter["closed"] = false
		filter["fully_paid"] = true
	case lease.StatusActive:
		filter["closed"] = false
		filter["fully_paid"] = false
		filter["deposit_paid"] = true
	case lease.StatusDepositPending:
		filter["closed"] = false
		filter["deposit_paid"] = false
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("escrow/mongo: list leases: %w", err)
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

	// $lt with a date value only matches date-typed fields, so documents
	// with an unset deadline never match.
	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"closed": false,
			"$or": bson.A{
				bson.M{"rent_deadline": bson.M{"$lt": asOf}},
				bson.M{"deposit_deadline": bson.M{"$lt": asOf}},
			},
		}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("escrow/mongo: list overdue leases: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("escrow/mongo: update lease: %w", err)
	}
	if res.MatchedCount() == 0 {
		return escrow.ErrLeaseNotFound
	}
	return nil
}

// ==================== Payment Journal ====================

func (s *Store) RecordPayment(ctx context.Context, p *payment.Payment) error {
	m := toPaymentModel(p)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("escrow/mongo: record payment: %w", err)
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, tenant string, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel

	filter := bson.M{}
	if tenant != "" {
		filter["tenant"] = tenant
	}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("escrow/mongo: list payments: %w", err)
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
	var m ledgerModel
	err := s.mdb.Collection(colLedger).
		FindOne(ctx, bson.M{"_id": ledgerDocID}).
		Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("escrow/mongo: owner balance: %w", err)
	}
	return types.Native(m.Balance), nil
}

func (s *Store) AddOwnerBalance(ctx context.Context, delta types.Native) error {
	_, err := s.mdb.Collection(colLedger).UpdateOne(ctx,
		bson.M{"_id": ledgerDocID},
		bson.M{"$inc": bson.M{"balance": int64(delta)}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("escrow/mongo: add owner balance: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all escrow collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colLeases: {
			{Keys: bson.D{{Key: "tenant", Value: 1}, {Key: "created_at", Value: -1}}},
			{
				Keys:    bson.D{{Key: "tenant", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"closed": false}),
			},
			{Keys: bson.D{{Key: "rent_deadline", Value: 1}}},
			{Keys: bson.D{{Key: "deposit_deadline", Value: 1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "tenant", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "lease_id", Value: 1}}},
			{Keys: bson.D{{Key: "kind", Value: 1}}},
		},
		colLedger: {},
	}
}
