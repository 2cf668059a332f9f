package escrow_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/escrow"
	"github.com/xraph/escrow/fx"
	"github.com/xraph/escrow/lease"
	"github.com/xraph/escrow/store/memory"
	"github.com/xraph/escrow/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from the package docs
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Initialize the engine for a single owner account
		e := escrow.New(store, "landlord",
			escrow.WithLogger(slog.Default()),
			escrow.WithRateProvider(fx.Fixed(types.USD(20_000))), // $200.00/coin
			escrow.WithTolerance(types.USD(500)),                 // $5.00 band
			escrow.WithOverdueCheckInterval(time.Minute),
		)

		// Start the engine
		ctx := context.Background()
		if err := e.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer e.Stop()

		// Create a lease
		l, err := e.CreateLease(ctx, "landlord", lease.Terms{
			Tenant:        "alice",
			Months:        12,
			MonthlyAmount: types.USD(100_000), // $1000.00/month
			Deposit:       types.USD(200_000), // $2000.00 in escrow
			RentWindow:    30 * 24 * time.Hour,
			DepositWindow: 7 * 24 * time.Hour,
		})
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("Lease %s created, deposit due by %s\n", l.ID, l.DepositDeadline)

		// The tenant funds the escrow in native units
		l, err = e.PayDeposit(ctx, "alice", types.Coins(10))
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("Lease now %s, %s held in escrow\n", l.Status(), l.DepositHeld)

		// Rent settles whole months at the call-time rate
		l, err = e.PayRent(ctx, "alice", types.Coins(5))
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("%d of %d months paid\n", l.MonthsPaid, l.Months)

		// Rent is immediately withdrawable; the deposit is not
		withdrawn, err := e.Withdraw(ctx, "landlord")
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("Withdrew %s\n", withdrawn)
	})

	// Test Money type examples
	t.Run("MoneyExamples", func(t *testing.T) {
		// Constructors
		_ = types.USD(4900)   // $49.00
		_ = types.EUR(9900)   // €99.00
		_ = types.Zero("usd") // $0.00

		// Arithmetic
		m1 := types.USD(100)
		m2 := types.USD(200)
		_ = m1.Add(m2)      // $3.00
		_ = m1.Multiply(3)  // $3.00
		_ = m1.Subtract(m2) // -$1.00

		// Comparison
		if m1.LessThan(m2) {
			// m1 is less than m2
		}

		// Formatting
		_ = m1.String()      // "$1.00"
		_ = m1.FormatMajor() // "1.00"
	})

	// Test Native unit examples
	t.Run("NativeExamples", func(t *testing.T) {
		// One coin is 1e9 base units
		_ = types.Coins(3)            // 3.000000000
		_ = types.Native(500_000_000) // 0.500000000
		_ = types.Coins(2).String()   // "2.000000000"
	})
}
