package escrow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/escrow/fx"
	"github.com/xraph/escrow/id"
	"github.com/xraph/escrow/lease"
	"github.com/xraph/escrow/payment"
	"github.com/xraph/escrow/plugin"
	"github.com/xraph/escrow/store"
	"github.com/xraph/escrow/types"
)

// DefaultTolerance is the reference-currency band a received payment may
// deviate from the expected amount, converted through the call-time rate.
var DefaultTolerance = types.USD(500)

// Engine is the lease escrow engine. A single owner account creates leases
// and collects funds; tenants pay deposits and rent in native units against
// reference-currency obligations converted at the call-time exchange rate.
type Engine struct {
	store   store.Store
	owner   string
	plugins *plugin.Registry
	logger  *slog.Logger

	rates     fx.Provider
	tolerance types.Money
	now       func() time.Time

	// mu serializes all state-changing operations. Each call observes the
	// full effect of every prior call, so validation and the funds movement
	// it guards are atomic with respect to each other.
	mu sync.Mutex

	// Overdue watcher
	stopChan        chan struct{}
	wg              sync.WaitGroup
	overdueInterval time.Duration
	notified        map[string]time.Time // lease ID -> deadline already announced
}

// New creates a new Engine instance. The owner is the only account allowed
// to create leases, collect forfeited deposits, and withdraw funds.
func New(s store.Store, owner string, opts ...Option) *Engine {
	e := &Engine{
		store:           s,
		owner:           owner,
		plugins:         plugin.NewRegistry(),
		logger:          slog.Default(),
		tolerance:       DefaultTolerance,
		now:             time.Now,
		stopChan:        make(chan struct{}),
		overdueInterval: time.Minute,
		notified:        make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithRateProvider sets the exchange-rate source. When unset, Start resolves
// one from registered RateProviderPlugin implementations.
func WithRateProvider(p fx.Provider) Option {
	return func(e *Engine) {
		e.rates = p
	}
}

// WithTolerance overrides the payment tolerance band.
func WithTolerance(t types.Money) Option {
	return func(e *Engine) {
		e.tolerance = t
	}
}

// WithClock overrides the time source. Deadlines and overdue checks read
// through it, so tests can drive the clock instead of sleeping.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithOverdueCheckInterval sets how often the overdue watcher scans for
// leases whose deadline has passed.
func WithOverdueCheckInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.overdueInterval = d
	}
}

// Start migrates the store, initializes plugins, and begins the overdue
// watcher.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	if e.rates == nil {
		for _, rp := range e.plugins.GetRateProviders() {
			if p, ok := rp.Provider().(fx.Provider); ok {
				e.rates = p
				break
			}
		}
	}

	e.plugins.EmitInit(ctx, e)

	e.wg.Add(1)
	go e.overdueWatcher(ctx)

	e.logger.Info("escrow engine started",
		"owner", e.owner,
		"tolerance", e.tolerance,
		"overdue_interval", e.overdueInterval,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Lease Management
// ──────────────────────────────────────────────────

// CreateLease creates a new lease for a tenant. Owner-only. The deposit
// deadline starts immediately; rent deadlines arm only after the deposit
// is paid.
func (e *Engine) CreateLease(ctx context.Context, caller string, terms lease.Terms) (*lease.Lease, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return nil, ErrUnauthorized
	}
	if !terms.Valid() {
		return nil, ErrInvalidTerms
	}

	if existing, err := e.store.GetTenantLease(ctx, terms.Tenant); err == nil && !existing.Closed {
		return nil, ErrDuplicateLease
	} else if err != nil && !IsNotFound(err) {
		return nil, err
	}

	l := &lease.Lease{
		Entity:          types.NewEntity(),
		ID:              id.NewLeaseID(),
		Tenant:          terms.Tenant,
		Months:          terms.Months,
		MonthlyAmount:   terms.MonthlyAmount,
		Deposit:         terms.Deposit,
		RentWindow:      terms.RentWindow,
		DepositWindow:   terms.DepositWindow,
		DepositDeadline: e.now().Add(terms.DepositWindow),
	}

	if err := e.store.CreateLease(ctx, l); err != nil {
		return nil, err
	}

	e.logger.Info("lease created",
		"lease_id", l.ID,
		"tenant", l.Tenant,
		"months", l.Months,
		"monthly", l.MonthlyAmount,
		"deposit", l.Deposit,
	)

	e.plugins.EmitLeaseCreated(ctx, l.Clone())
	return l.Clone(), nil
}

// GetLease retrieves the tenant's most recent lease.
func (e *Engine) GetLease(ctx context.Context, tenant string) (*lease.Lease, error) {
	return e.store.GetTenantLease(ctx, tenant)
}

// GetLeaseByID retrieves a lease by ID.
func (e *Engine) GetLeaseByID(ctx context.Context, leaseID id.LeaseID) (*lease.Lease, error) {
	return e.store.GetLease(ctx, leaseID)
}

// ListLeases lists leases matching the given options.
func (e *Engine) ListLeases(ctx context.Context, opts lease.ListOpts) ([]*lease.Lease, error) {
	return e.store.ListLeases(ctx, opts)
}

// ──────────────────────────────────────────────────
// Tenant Payments
// ──────────────────────────────────────────────────

// PayDeposit pays the caller's lease deposit into escrow. The received
// native amount must lie within the tolerance band around the deposit
// obligation converted at the current rate. Paying the deposit arms the
// first rent deadline.
func (e *Engine) PayDeposit(ctx context.Context, caller string, amount types.Native) (*lease.Lease, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, err := e.store.GetTenantLease(ctx, caller)
	if err != nil {
		return nil, err
	}
	if l.Closed {
		return nil, ErrLeaseClosed
	}
	if l.DepositPaid {
		return nil, ErrDepositAlreadyPaid
	}

	rate, expected, tol, err := e.quote(ctx, l.Deposit)
	if err != nil {
		return nil, err
	}
	if !fx.WithinTolerance(amount, expected, tol) {
		return nil, fmt.Errorf("%w: received %s, expected %s at %s/coin",
			ErrAmountOutOfTolerance, amount, expected, rate)
	}

	now := e.now()
	l.DepositHeld += amount
	l.DepositPaid = true
	l.DepositDeadline = time.Time{}
	l.RentDeadline = now.Add(l.RentWindow)
	l.Touch()

	if err := e.store.UpdateLease(ctx, l); err != nil {
		return nil, err
	}

	e.journal(ctx, &payment.Payment{
		LeaseID: l.ID,
		Tenant:  l.Tenant,
		Kind:    payment.KindDeposit,
		Amount:  amount,
		Rate:    rate,
	})

	e.logger.Info("deposit paid",
		"lease_id", l.ID,
		"tenant", l.Tenant,
		"amount", amount,
		"rate", rate,
	)

	e.plugins.EmitDepositPaid(ctx, l.Clone(), amount)
	return l.Clone(), nil
}

// PayRent pays rent on the caller's lease. Whole months are settled at the
// current rate: a payment covering N months advances the schedule by N,
// capped at the months remaining. A payment within tolerance below one
// month still settles one month. Any excess over the settled months is
// absorbed into the owner balance rather than refunded.
func (e *Engine) PayRent(ctx context.Context, caller string, amount types.Native) (*lease.Lease, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, err := e.store.GetTenantLease(ctx, caller)
	if err != nil {
		return nil, err
	}
	if l.Closed {
		return nil, ErrLeaseClosed
	}
	if !l.DepositPaid {
		return nil, ErrDepositNotPaid
	}
	if l.FullyPaid {
		return nil, ErrLeaseFullyPaid
	}

	rate, oneMonth, tol, err := e.quote(ctx, l.MonthlyAmount)
	if err != nil {
		return nil, err
	}
	if amount < oneMonth-tol {
		return nil, fmt.Errorf("%w: received %s, one month is %s at %s/coin",
			ErrAmountOutOfTolerance, amount, oneMonth, rate)
	}

	months := int(int64(amount) / int64(oneMonth))
	if months < 1 {
		months = 1 // tolerance admitted a short payment
	}
	if remaining := l.MonthsRemaining(); months > remaining {
		months = remaining
	}

	now := e.now()
	l.MonthsPaid += months
	if l.MonthsPaid == l.Months {
		l.FullyPaid = true
		l.RentDeadline = time.Time{}
	} else {
		l.RentDeadline = now.Add(l.RentWindow)
	}
	l.Touch()

	if err := e.store.UpdateLease(ctx, l); err != nil {
		return nil, err
	}
	if err := e.store.AddOwnerBalance(ctx, amount); err != nil {
		return nil, err
	}

	e.journal(ctx, &payment.Payment{
		LeaseID:       l.ID,
		Tenant:        l.Tenant,
		Kind:          payment.KindRent,
		Amount:        amount,
		Rate:          rate,
		MonthsCovered: months,
	})

	e.logger.Info("rent paid",
		"lease_id", l.ID,
		"tenant", l.Tenant,
		"amount", amount,
		"months_covered", months,
		"months_paid", l.MonthsPaid,
		"rate", rate,
	)

	e.plugins.EmitRentPaid(ctx, l.Clone(), amount, months)
	if l.FullyPaid {
		e.plugins.EmitLeaseFullyPaid(ctx, l.Clone())
	}
	return l.Clone(), nil
}

// ──────────────────────────────────────────────────
// Deposit Settlement
// ──────────────────────────────────────────────────

// CollectDeposit forfeits an overdue tenant's escrowed deposit into the
// owner balance and closes the lease. Owner-only; the tenant must have
// missed a rent or deposit deadline.
func (e *Engine) CollectDeposit(ctx context.Context, caller, tenant string) (types.Native, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return 0, ErrUnauthorized
	}

	l, err := e.store.GetTenantLease(ctx, tenant)
	if err != nil {
		return 0, err
	}
	if l.Closed {
		return 0, ErrLeaseClosed
	}
	if l.FullyPaid {
		return 0, ErrLeaseFullyPaid
	}

	now := e.now()
	if !l.RentOverdue(now) && !l.DepositOverdue(now) {
		return 0, ErrRentNotOverdue
	}

	forfeited := l.DepositHeld
	l.DepositHeld = 0
	l.Closed = true
	l.RentDeadline = time.Time{}
	l.DepositDeadline = time.Time{}
	l.Touch()

	if err := e.store.UpdateLease(ctx, l); err != nil {
		return 0, err
	}
	if forfeited.IsPositive() {
		if err := e.store.AddOwnerBalance(ctx, forfeited); err != nil {
			return 0, err
		}
	}

	e.journal(ctx, &payment.Payment{
		LeaseID: l.ID,
		Tenant:  l.Tenant,
		Kind:    payment.KindCollection,
		Amount:  forfeited,
	})

	e.logger.Info("deposit collected",
		"lease_id", l.ID,
		"tenant", l.Tenant,
		"amount", forfeited,
	)

	e.plugins.EmitDepositCollected(ctx, l.Clone(), forfeited)
	return forfeited, nil
}

// ReclaimDeposit releases the caller's escrowed deposit back to them once
// the lease is fully paid, and closes the lease.
func (e *Engine) ReclaimDeposit(ctx context.Context, caller string) (types.Native, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, err := e.store.GetTenantLease(ctx, caller)
	if err != nil {
		return 0, err
	}
	if l.Closed {
		return 0, ErrLeaseClosed
	}
	if !l.FullyPaid {
		return 0, ErrLeaseNotFullyPaid
	}

	released := l.DepositHeld
	l.DepositHeld = 0
	l.Closed = true
	l.Touch()

	if err := e.store.UpdateLease(ctx, l); err != nil {
		return 0, err
	}

	e.journal(ctx, &payment.Payment{
		LeaseID: l.ID,
		Tenant:  l.Tenant,
		Kind:    payment.KindReclaim,
		Amount:  released,
	})

	e.logger.Info("deposit reclaimed",
		"lease_id", l.ID,
		"tenant", l.Tenant,
		"amount", released,
	)

	e.plugins.EmitDepositReclaimed(ctx, l.Clone(), released)
	return released, nil
}

// ──────────────────────────────────────────────────
// Owner Funds
// ──────────────────────────────────────────────────

// Withdraw drains the owner's withdrawable balance. Owner-only. Escrowed
// deposits are not withdrawable until forfeited.
func (e *Engine) Withdraw(ctx context.Context, caller string) (types.Native, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return 0, ErrUnauthorized
	}

	balance, err := e.store.OwnerBalance(ctx)
	if err != nil {
		return 0, err
	}
	if !balance.IsPositive() {
		return 0, ErrNothingToWithdraw
	}

	if err := e.store.AddOwnerBalance(ctx, -balance); err != nil {
		return 0, err
	}

	e.journal(ctx, &payment.Payment{
		Kind:   payment.KindWithdrawal,
		Amount: balance,
	})

	e.logger.Info("funds withdrawn", "amount", balance)

	e.plugins.EmitFundsWithdrawn(ctx, balance)
	return balance, nil
}

// OwnerBalance returns the owner's withdrawable balance.
func (e *Engine) OwnerBalance(ctx context.Context) (types.Native, error) {
	return e.store.OwnerBalance(ctx)
}

// EscrowBalance returns the total native amount held in escrow across all
// open leases.
func (e *Engine) EscrowBalance(ctx context.Context) (types.Native, error) {
	leases, err := e.store.ListLeases(ctx, lease.ListOpts{})
	if err != nil {
		return 0, err
	}

	var total types.Native
	for _, l := range leases {
		if !l.Closed {
			total += l.DepositHeld
		}
	}
	return total, nil
}

// Payments lists the funds-movement journal for a tenant. An empty tenant
// lists all entries.
func (e *Engine) Payments(ctx context.Context, tenant string, opts payment.ListOpts) ([]*payment.Payment, error) {
	return e.store.ListPayments(ctx, tenant, opts)
}

// ──────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────

// quote fetches the current rate and converts both the obligation and the
// tolerance band through it. One rate per call; both conversions see the
// same quote.
func (e *Engine) quote(ctx context.Context, obligation types.Money) (fx.Rate, types.Native, types.Native, error) {
	if e.rates == nil {
		return types.Money{}, 0, 0, ErrRateUnavailable
	}

	rate, err := e.rates.Rate(ctx)
	if err != nil {
		return types.Money{}, 0, 0, fmt.Errorf("%w: %w", ErrRateUnavailable, err)
	}

	expected, err := fx.ExpectedNative(obligation, rate)
	if err != nil {
		return types.Money{}, 0, 0, err
	}
	if !expected.IsPositive() {
		// The obligation truncates below one base unit at this rate.
		// No received amount can settle it.
		return types.Money{}, 0, 0, fmt.Errorf("%w: %s converts to zero native units at %s/coin",
			ErrAmountOutOfTolerance, obligation, rate)
	}
	tol, err := fx.ExpectedNative(e.tolerance, rate)
	if err != nil {
		return types.Money{}, 0, 0, err
	}

	return rate, expected, tol, nil
}

// journal appends a funds-movement entry. Journal failures are logged, not
// surfaced: the lease transition has already been persisted and must not be
// rolled back by a bookkeeping error.
func (e *Engine) journal(ctx context.Context, p *payment.Payment) {
	p.ID = id.NewPaymentID()
	p.Entity = types.NewEntity()

	if err := e.store.RecordPayment(ctx, p); err != nil {
		e.logger.Error("failed to record payment journal entry",
			"kind", p.Kind,
			"tenant", p.Tenant,
			"error", err,
		)
	}
}

// overdueWatcher periodically scans for open leases whose deadline has
// passed and announces each one once per armed deadline. It only observes;
// forfeiting a deposit stays an explicit owner call.
func (e *Engine) overdueWatcher(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.overdueInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.checkOverdue(ctx)
		}
	}
}

func (e *Engine) checkOverdue(ctx context.Context) {
	now := e.now()

	overdue, err := e.store.ListOverdueLeases(ctx, now)
	if err != nil {
		e.logger.Error("overdue scan failed", "error", err)
		return
	}

	for _, l := range overdue {
		deadline := l.RentDeadline
		if deadline.IsZero() {
			deadline = l.DepositDeadline
		}

		if announced, ok := e.notified[l.ID.String()]; ok && announced.Equal(deadline) {
			continue
		}
		e.notified[l.ID.String()] = deadline

		e.logger.Warn("lease overdue",
			"lease_id", l.ID,
			"tenant", l.Tenant,
			"deadline", deadline,
		)
		e.plugins.EmitLeaseOverdue(ctx, l.Clone())
	}
}

// Plugins exposes the plugin registry.
func (e *Engine) Plugins() *plugin.Registry {
	return e.plugins
}

// Owner returns the owner account identifier.
func (e *Engine) Owner() string {
	return e.owner
}
