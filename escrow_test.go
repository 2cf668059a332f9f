package escrow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/xraph/escrow"
	"github.com/xraph/escrow/fx"
	"github.com/xraph/escrow/lease"
	"github.com/xraph/escrow/payment"
	"github.com/xraph/escrow/store/memory"
	"github.com/xraph/escrow/types"
)

const (
	testOwner  = "landlord"
	testTenant = "alice"
)

// Fixture rate: $200.00 per coin. At that rate the standard terms below
// work out to round native amounts:
//
//	one month ($1000.00)  = 5 coins
//	deposit   ($2000.00)  = 10 coins
//	tolerance ($5.00)     = 0.025 coins
var (
	testRate     = types.USD(20_000)
	oneMonth     = types.Coins(5)
	depositAmt   = types.Coins(10)
	toleranceAmt = types.Native(25_000_000)
)

func testTerms() lease.Terms {
	return lease.Terms{
		Tenant:        testTenant,
		Months:        2,
		MonthlyAmount: types.USD(100_000),
		Deposit:       types.USD(200_000),
		RentWindow:    30 * 24 * time.Hour,
		DepositWindow: 7 * 24 * time.Hour,
	}
}

// testClock is a mutable time source shared with the engine. The overdue
// watcher reads it from its own goroutine, hence the lock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, opts ...escrow.Option) (*escrow.Engine, *testClock) {
	t.Helper()

	clock := newTestClock()
	base := []escrow.Option{
		escrow.WithRateProvider(fx.Fixed(testRate)),
		escrow.WithClock(clock.Now),
		escrow.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return escrow.New(memory.New(), testOwner, append(base, opts...)...), clock
}

// activeLease creates the standard lease and pays its deposit.
func activeLease(t *testing.T, e *escrow.Engine) *lease.Lease {
	t.Helper()
	ctx := context.Background()

	if _, err := e.CreateLease(ctx, testOwner, testTerms()); err != nil {
		t.Fatalf("CreateLease: %v", err)
	}
	l, err := e.PayDeposit(ctx, testTenant, depositAmt)
	if err != nil {
		t.Fatalf("PayDeposit: %v", err)
	}
	return l
}

func TestCreateLease(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreateLease(ctx, testTenant, testTerms()); !errors.Is(err, escrow.ErrUnauthorized) {
		t.Fatalf("non-owner create: got %v, want ErrUnauthorized", err)
	}

	bad := testTerms()
	bad.Months = 0
	if _, err := e.CreateLease(ctx, testOwner, bad); !errors.Is(err, escrow.ErrInvalidTerms) {
		t.Fatalf("invalid terms: got %v, want ErrInvalidTerms", err)
	}

	l, err := e.CreateLease(ctx, testOwner, testTerms())
	if err != nil {
		t.Fatalf("CreateLease: %v", err)
	}
	if l.Status() != lease.StatusDepositPending {
		t.Errorf("Status: got %q, want %q", l.Status(), lease.StatusDepositPending)
	}
	if want := clock.Now().Add(7 * 24 * time.Hour); !l.DepositDeadline.Equal(want) {
		t.Errorf("DepositDeadline: got %v, want %v", l.DepositDeadline, want)
	}
	if !l.RentDeadline.IsZero() {
		t.Error("rent deadline must not arm before the deposit is paid")
	}

	if _, err := e.CreateLease(ctx, testOwner, testTerms()); !errors.Is(err, escrow.ErrDuplicateLease) {
		t.Fatalf("second open lease: got %v, want ErrDuplicateLease", err)
	}
}

func TestCreateLeaseAfterClose(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	activeLease(t, e)
	if _, err := e.PayRent(ctx, testTenant, types.Coins(10)); err != nil {
		t.Fatalf("PayRent: %v", err)
	}
	if _, err := e.ReclaimDeposit(ctx, testTenant); err != nil {
		t.Fatalf("ReclaimDeposit: %v", err)
	}

	// A closed lease no longer blocks the tenant from a fresh one.
	if _, err := e.CreateLease(ctx, testOwner, testTerms()); err != nil {
		t.Fatalf("CreateLease after close: %v", err)
	}
}

func TestPayDeposit(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.PayDeposit(ctx, testTenant, depositAmt); !escrow.IsNotFound(err) {
		t.Fatalf("no lease: got %v, want not-found", err)
	}

	if _, err := e.CreateLease(ctx, testOwner, testTerms()); err != nil {
		t.Fatalf("CreateLease: %v", err)
	}

	if _, err := e.PayRent(ctx, testTenant, oneMonth); !errors.Is(err, escrow.ErrDepositNotPaid) {
		t.Fatalf("rent before deposit: got %v, want ErrDepositNotPaid", err)
	}

	for _, amount := range []types.Native{
		depositAmt - toleranceAmt - 1,
		depositAmt + toleranceAmt + 1,
		oneMonth,
	} {
		if _, err := e.PayDeposit(ctx, testTenant, amount); !errors.Is(err, escrow.ErrAmountOutOfTolerance) {
			t.Fatalf("deposit of %s: got %v, want ErrAmountOutOfTolerance", amount, err)
		}
	}

	l, err := e.PayDeposit(ctx, testTenant, depositAmt)
	if err != nil {
		t.Fatalf("PayDeposit: %v", err)
	}
	if l.Status() != lease.StatusActive {
		t.Errorf("Status: got %q, want %q", l.Status(), lease.StatusActive)
	}
	if l.DepositHeld != depositAmt {
		t.Errorf("DepositHeld: got %s, want %s", l.DepositHeld, depositAmt)
	}
	if !l.DepositDeadline.IsZero() {
		t.Error("deposit deadline must clear once paid")
	}
	if want := clock.Now().Add(30 * 24 * time.Hour); !l.RentDeadline.Equal(want) {
		t.Errorf("RentDeadline: got %v, want %v", l.RentDeadline, want)
	}

	held, err := e.EscrowBalance(ctx)
	if err != nil {
		t.Fatalf("EscrowBalance: %v", err)
	}
	if held != depositAmt {
		t.Errorf("EscrowBalance: got %s, want %s", held, depositAmt)
	}

	if _, err := e.PayDeposit(ctx, testTenant, depositAmt); !errors.Is(err, escrow.ErrDepositAlreadyPaid) {
		t.Fatalf("double deposit: got %v, want ErrDepositAlreadyPaid", err)
	}
}

func TestPayDepositWithinTolerance(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreateLease(ctx, testOwner, testTerms()); err != nil {
		t.Fatalf("CreateLease: %v", err)
	}

	short := depositAmt - toleranceAmt
	l, err := e.PayDeposit(ctx, testTenant, short)
	if err != nil {
		t.Fatalf("PayDeposit at band edge: %v", err)
	}
	if l.DepositHeld != short {
		t.Errorf("DepositHeld: got %s, want the received %s", l.DepositHeld, short)
	}
}

func TestPayRentLifecycle(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	activeLease(t, e)

	l, err := e.PayRent(ctx, testTenant, oneMonth)
	if err != nil {
		t.Fatalf("first PayRent: %v", err)
	}
	if l.MonthsPaid != 1 {
		t.Errorf("MonthsPaid: got %d, want 1", l.MonthsPaid)
	}
	if l.FullyPaid {
		t.Error("lease must not be fully paid after one of two months")
	}

	l, err = e.PayRent(ctx, testTenant, oneMonth)
	if err != nil {
		t.Fatalf("second PayRent: %v", err)
	}
	if l.Status() != lease.StatusFullyPaid {
		t.Errorf("Status: got %q, want %q", l.Status(), lease.StatusFullyPaid)
	}
	if !l.RentDeadline.IsZero() {
		t.Error("rent deadline must clear once fully paid")
	}

	if _, err := e.PayRent(ctx, testTenant, oneMonth); !errors.Is(err, escrow.ErrLeaseFullyPaid) {
		t.Fatalf("rent after fully paid: got %v, want ErrLeaseFullyPaid", err)
	}

	balance, err := e.OwnerBalance(ctx)
	if err != nil {
		t.Fatalf("OwnerBalance: %v", err)
	}
	if want := types.Coins(10); balance != want {
		t.Errorf("OwnerBalance: got %s, want %s", balance, want)
	}
}

func TestPayRentMultiMonth(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	activeLease(t, e)

	l, err := e.PayRent(ctx, testTenant, types.Coins(10))
	if err != nil {
		t.Fatalf("PayRent: %v", err)
	}
	if l.MonthsPaid != 2 || !l.FullyPaid {
		t.Errorf("10 coins should cover both months: MonthsPaid=%d FullyPaid=%v", l.MonthsPaid, l.FullyPaid)
	}

	entries, err := e.Payments(ctx, testTenant, payment.ListOpts{Kind: payment.KindRent})
	if err != nil {
		t.Fatalf("Payments: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Got %d rent entries, want 1", len(entries))
	}
	if entries[0].MonthsCovered != 2 {
		t.Errorf("MonthsCovered: got %d, want 2", entries[0].MonthsCovered)
	}
}

func TestPayRentCappedAtRemaining(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	activeLease(t, e)

	// 15 coins would cover three months on a two-month lease.
	l, err := e.PayRent(ctx, testTenant, types.Coins(15))
	if err != nil {
		t.Fatalf("PayRent: %v", err)
	}
	if l.MonthsPaid != 2 {
		t.Errorf("MonthsPaid: got %d, want the 2 months the lease has", l.MonthsPaid)
	}

	// The excess is absorbed, not refunded.
	balance, err := e.OwnerBalance(ctx)
	if err != nil {
		t.Fatalf("OwnerBalance: %v", err)
	}
	if want := types.Coins(15); balance != want {
		t.Errorf("OwnerBalance: got %s, want %s", balance, want)
	}
}

func TestPayRentTolerance(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	activeLease(t, e)

	if _, err := e.PayRent(ctx, testTenant, oneMonth-toleranceAmt-1); !errors.Is(err, escrow.ErrAmountOutOfTolerance) {
		t.Fatalf("below band: got %v, want ErrAmountOutOfTolerance", err)
	}

	// Within tolerance below one month still settles one month.
	l, err := e.PayRent(ctx, testTenant, oneMonth-toleranceAmt)
	if err != nil {
		t.Fatalf("PayRent at band edge: %v", err)
	}
	if l.MonthsPaid != 1 {
		t.Errorf("MonthsPaid: got %d, want 1", l.MonthsPaid)
	}
}

func TestReclaimDeposit(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	activeLease(t, e)

	if _, err := e.ReclaimDeposit(ctx, testTenant); !errors.Is(err, escrow.ErrLeaseNotFullyPaid) {
		t.Fatalf("reclaim before fully paid: got %v, want ErrLeaseNotFullyPaid", err)
	}

	if _, err := e.PayRent(ctx, testTenant, types.Coins(10)); err != nil {
		t.Fatalf("PayRent: %v", err)
	}

	released, err := e.ReclaimDeposit(ctx, testTenant)
	if err != nil {
		t.Fatalf("ReclaimDeposit: %v", err)
	}
	if released != depositAmt {
		t.Errorf("released: got %s, want %s", released, depositAmt)
	}

	l, err := e.GetLease(ctx, testTenant)
	if err != nil {
		t.Fatalf("GetLease: %v", err)
	}
	if l.Status() != lease.StatusClosed {
		t.Errorf("Status: got %q, want %q", l.Status(), lease.StatusClosed)
	}
	if !l.DepositHeld.IsZero() {
		t.Errorf("DepositHeld after reclaim: got %s, want 0", l.DepositHeld)
	}

	if _, err := e.ReclaimDeposit(ctx, testTenant); !errors.Is(err, escrow.ErrLeaseClosed) {
		t.Fatalf("second reclaim: got %v, want ErrLeaseClosed", err)
	}

	held, err := e.EscrowBalance(ctx)
	if err != nil {
		t.Fatalf("EscrowBalance: %v", err)
	}
	if !held.IsZero() {
		t.Errorf("EscrowBalance after reclaim: got %s, want 0", held)
	}

	// The released deposit never touches the owner balance.
	balance, err := e.OwnerBalance(ctx)
	if err != nil {
		t.Fatalf("OwnerBalance: %v", err)
	}
	if want := types.Coins(10); balance != want {
		t.Errorf("OwnerBalance: got %s, want %s", balance, want)
	}
}

func TestCollectDeposit(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	activeLease(t, e)

	if _, err := e.CollectDeposit(ctx, testTenant, testTenant); !errors.Is(err, escrow.ErrUnauthorized) {
		t.Fatalf("non-owner collect: got %v, want ErrUnauthorized", err)
	}
	if _, err := e.CollectDeposit(ctx, testOwner, testTenant); !errors.Is(err, escrow.ErrRentNotOverdue) {
		t.Fatalf("collect before deadline: got %v, want ErrRentNotOverdue", err)
	}

	clock.Advance(31 * 24 * time.Hour)

	forfeited, err := e.CollectDeposit(ctx, testOwner, testTenant)
	if err != nil {
		t.Fatalf("CollectDeposit: %v", err)
	}
	if forfeited != depositAmt {
		t.Errorf("forfeited: got %s, want %s", forfeited, depositAmt)
	}

	l, err := e.GetLease(ctx, testTenant)
	if err != nil {
		t.Fatalf("GetLease: %v", err)
	}
	if !l.Closed {
		t.Error("lease must close on collection")
	}

	balance, err := e.OwnerBalance(ctx)
	if err != nil {
		t.Fatalf("OwnerBalance: %v", err)
	}
	if balance != depositAmt {
		t.Errorf("OwnerBalance: got %s, want the forfeited %s", balance, depositAmt)
	}

	if _, err := e.CollectDeposit(ctx, testOwner, testTenant); !errors.Is(err, escrow.ErrLeaseClosed) {
		t.Fatalf("collect on closed lease: got %v, want ErrLeaseClosed", err)
	}
}

func TestCollectDepositFullyPaid(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	activeLease(t, e)
	if _, err := e.PayRent(ctx, testTenant, types.Coins(10)); err != nil {
		t.Fatalf("PayRent: %v", err)
	}

	clock.Advance(365 * 24 * time.Hour)

	// A fully-paid lease has no armed deadline and is never forfeitable.
	if _, err := e.CollectDeposit(ctx, testOwner, testTenant); !errors.Is(err, escrow.ErrLeaseFullyPaid) {
		t.Fatalf("collect on fully paid lease: got %v, want ErrLeaseFullyPaid", err)
	}
}

func TestCollectDepositNeverPaid(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreateLease(ctx, testOwner, testTerms()); err != nil {
		t.Fatalf("CreateLease: %v", err)
	}

	clock.Advance(8 * 24 * time.Hour)

	// Deposit deadline missed with nothing in escrow: the lease still
	// closes, there is just nothing to forfeit.
	forfeited, err := e.CollectDeposit(ctx, testOwner, testTenant)
	if err != nil {
		t.Fatalf("CollectDeposit: %v", err)
	}
	if !forfeited.IsZero() {
		t.Errorf("forfeited: got %s, want 0", forfeited)
	}

	l, err := e.GetLease(ctx, testTenant)
	if err != nil {
		t.Fatalf("GetLease: %v", err)
	}
	if !l.Closed {
		t.Error("lease must close on collection")
	}
}

func TestWithdraw(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Withdraw(ctx, testTenant); !errors.Is(err, escrow.ErrUnauthorized) {
		t.Fatalf("non-owner withdraw: got %v, want ErrUnauthorized", err)
	}
	if _, err := e.Withdraw(ctx, testOwner); !errors.Is(err, escrow.ErrNothingToWithdraw) {
		t.Fatalf("empty withdraw: got %v, want ErrNothingToWithdraw", err)
	}

	activeLease(t, e)
	if _, err := e.PayRent(ctx, testTenant, oneMonth); err != nil {
		t.Fatalf("PayRent: %v", err)
	}

	withdrawn, err := e.Withdraw(ctx, testOwner)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if withdrawn != oneMonth {
		t.Errorf("withdrawn: got %s, want %s", withdrawn, oneMonth)
	}

	balance, err := e.OwnerBalance(ctx)
	if err != nil {
		t.Fatalf("OwnerBalance: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("OwnerBalance after withdraw: got %s, want 0", balance)
	}

	// Escrowed deposits stay out of reach.
	if _, err := e.Withdraw(ctx, testOwner); !errors.Is(err, escrow.ErrNothingToWithdraw) {
		t.Fatalf("second withdraw: got %v, want ErrNothingToWithdraw", err)
	}
}

func TestRateUnavailable(t *testing.T) {
	failing := fx.ProviderFunc(func(ctx context.Context) (fx.Rate, error) {
		return types.Money{}, errors.New("feed down")
	})
	e, _ := newTestEngine(t, escrow.WithRateProvider(failing))
	ctx := context.Background()

	if _, err := e.CreateLease(ctx, testOwner, testTerms()); err != nil {
		t.Fatalf("CreateLease: %v", err)
	}

	_, err := e.PayDeposit(ctx, testTenant, depositAmt)
	if !errors.Is(err, escrow.ErrRateUnavailable) {
		t.Fatalf("Got %v, want ErrRateUnavailable", err)
	}
	if !escrow.IsRetryable(err) {
		t.Error("rate failures should be retryable")
	}
}

func TestPaymentJournal(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	activeLease(t, e)
	if _, err := e.PayRent(ctx, testTenant, oneMonth); err != nil {
		t.Fatalf("PayRent: %v", err)
	}
	if _, err := e.PayRent(ctx, testTenant, oneMonth); err != nil {
		t.Fatalf("PayRent: %v", err)
	}
	if _, err := e.ReclaimDeposit(ctx, testTenant); err != nil {
		t.Fatalf("ReclaimDeposit: %v", err)
	}
	if _, err := e.Withdraw(ctx, testOwner); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	entries, err := e.Payments(ctx, "", payment.ListOpts{})
	if err != nil {
		t.Fatalf("Payments: %v", err)
	}

	counts := map[payment.Kind]int{}
	for _, p := range entries {
		counts[p.Kind]++
		if p.ID.IsNil() {
			t.Error("journal entries must carry an ID")
		}
	}
	want := map[payment.Kind]int{
		payment.KindDeposit:    1,
		payment.KindRent:       2,
		payment.KindReclaim:    1,
		payment.KindWithdrawal: 1,
	}
	for kind, n := range want {
		if counts[kind] != n {
			t.Errorf("%s entries: got %d, want %d", kind, counts[kind], n)
		}
	}

	deposits, err := e.Payments(ctx, testTenant, payment.ListOpts{Kind: payment.KindDeposit})
	if err != nil {
		t.Fatalf("Payments: %v", err)
	}
	if len(deposits) != 1 {
		t.Fatalf("Got %d deposit entries, want 1", len(deposits))
	}
	if !deposits[0].Rate.Equal(testRate) {
		t.Errorf("deposit Rate: got %s, want %s", deposits[0].Rate, testRate)
	}
}

// overdueCapture records overdue announcements from the watcher.
type overdueCapture struct {
	events chan string
}

func (p *overdueCapture) Name() string { return "overdue-capture" }

func (p *overdueCapture) OnLeaseOverdue(ctx context.Context, v interface{}) error {
	if l, ok := v.(*lease.Lease); ok {
		select {
		case p.events <- l.Tenant:
		default:
		}
	}
	return nil
}

func TestOverdueWatcher(t *testing.T) {
	capture := &overdueCapture{events: make(chan string, 8)}
	e, clock := newTestEngine(t,
		escrow.WithOverdueCheckInterval(10*time.Millisecond),
		escrow.WithPlugin(capture),
	)
	ctx := context.Background()

	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop() //nolint:errcheck

	activeLease(t, e)
	clock.Advance(31 * 24 * time.Hour)

	select {
	case tenant := <-capture.events:
		if tenant != testTenant {
			t.Fatalf("Got overdue event for %q, want %q", tenant, testTenant)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never announced the overdue lease")
	}

	// One announcement per armed deadline: further scans stay quiet.
	time.Sleep(50 * time.Millisecond)
	select {
	case tenant := <-capture.events:
		t.Fatalf("duplicate overdue event for %q", tenant)
	default:
	}

	// The watcher observes, it never moves funds.
	l, err := e.GetLease(ctx, testTenant)
	if err != nil {
		t.Fatalf("GetLease: %v", err)
	}
	if l.DepositHeld != depositAmt {
		t.Errorf("DepositHeld: got %s, want the untouched %s", l.DepositHeld, depositAmt)
	}
	if l.Closed {
		t.Error("watcher must not close the lease")
	}
}

func TestConservationOfValue(t *testing.T) {
	e, clock := newTestEngine(t)
	ctx := context.Background()

	check := func(label string, wantEscrow, wantOwner types.Native) {
		t.Helper()
		held, err := e.EscrowBalance(ctx)
		if err != nil {
			t.Fatalf("%s: EscrowBalance: %v", label, err)
		}
		balance, err := e.OwnerBalance(ctx)
		if err != nil {
			t.Fatalf("%s: OwnerBalance: %v", label, err)
		}
		if held != wantEscrow || balance != wantOwner {
			t.Errorf("%s: escrow %s owner %s, want escrow %s owner %s",
				label, held, balance, wantEscrow, wantOwner)
		}
	}

	activeLease(t, e)
	check("after deposit", types.Coins(10), types.Coins(0))

	if _, err := e.PayRent(ctx, testTenant, oneMonth); err != nil {
		t.Fatalf("PayRent: %v", err)
	}
	check("after rent", types.Coins(10), types.Coins(5))

	clock.Advance(31 * 24 * time.Hour)
	if _, err := e.CollectDeposit(ctx, testOwner, testTenant); err != nil {
		t.Fatalf("CollectDeposit: %v", err)
	}
	check("after collection", types.Coins(0), types.Coins(15))

	if _, err := e.Withdraw(ctx, testOwner); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	check("after withdraw", types.Coins(0), types.Coins(0))
}

// mutableRate is a provider whose quote can change between calls.
type mutableRate struct {
	mu   sync.Mutex
	rate fx.Rate
}

func (p *mutableRate) Set(r fx.Rate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = r
}

func (p *mutableRate) Rate(ctx context.Context) (fx.Rate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate, nil
}

func TestRateQuotedPerCall(t *testing.T) {
	rates := &mutableRate{rate: testRate}
	e, _ := newTestEngine(t, escrow.WithRateProvider(rates))
	ctx := context.Background()

	activeLease(t, e)

	// The coin halves in value: one month is now 10 coins, not 5.
	rates.Set(types.USD(10_000))

	if _, err := e.PayRent(ctx, testTenant, oneMonth); !errors.Is(err, escrow.ErrAmountOutOfTolerance) {
		t.Fatalf("stale-rate amount: got %v, want ErrAmountOutOfTolerance", err)
	}

	l, err := e.PayRent(ctx, testTenant, types.Coins(10))
	if err != nil {
		t.Fatalf("PayRent at the new rate: %v", err)
	}
	if l.MonthsPaid != 1 {
		t.Errorf("MonthsPaid: got %d, want 1", l.MonthsPaid)
	}

	// The journal records the rate that governed the call.
	entries, err := e.Payments(ctx, testTenant, payment.ListOpts{Kind: payment.KindRent})
	if err != nil {
		t.Fatalf("Payments: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Got %d rent entries, want 1", len(entries))
	}
	if !entries[0].Rate.Equal(types.USD(10_000)) {
		t.Errorf("recorded Rate: got %s, want %s", entries[0].Rate, types.USD(10_000))
	}
}

func TestPayRentSubUnitObligation(t *testing.T) {
	rates := &mutableRate{rate: testRate}
	e, _ := newTestEngine(t, escrow.WithRateProvider(rates))
	ctx := context.Background()

	terms := testTerms()
	terms.MonthlyAmount = types.USD(1)
	if _, err := e.CreateLease(ctx, testOwner, terms); err != nil {
		t.Fatalf("CreateLease: %v", err)
	}
	if _, err := e.PayDeposit(ctx, testTenant, depositAmt); err != nil {
		t.Fatalf("PayDeposit: %v", err)
	}

	// At $2B per coin a $0.01 month truncates below one base unit, so no
	// received amount can settle it.
	rates.Set(types.USD(2_000_000_000))

	if _, err := e.PayRent(ctx, testTenant, types.Native(5)); !errors.Is(err, escrow.ErrAmountOutOfTolerance) {
		t.Fatalf("sub-unit obligation: got %v, want ErrAmountOutOfTolerance", err)
	}

	l, err := e.GetLease(ctx, testTenant)
	if err != nil {
		t.Fatalf("GetLease: %v", err)
	}
	if l.MonthsPaid != 0 {
		t.Errorf("MonthsPaid after rejected payment: got %d, want 0", l.MonthsPaid)
	}
}
