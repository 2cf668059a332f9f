// Package escrow provides a single-owner lease escrow engine for Go applications.
//
// Escrow is designed as a library, not a service. Import it directly into your
// Go application and wire it to the store backend of your choice. It provides:
//
//   - A lease lifecycle state machine (deposit pending, active, fully paid, closed)
//   - Deposit escrow with deadline-driven forfeiture and reclaim
//   - Multi-month rent settlement against reference-currency obligations
//   - Call-time exchange-rate conversion with a configurable tolerance band
//   - An append-only funds-movement journal for reconciliation
//   - Pluggable lifecycle hooks and rate providers
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/escrow"
//	    "github.com/xraph/escrow/fx"
//	    "github.com/xraph/escrow/store/postgres"
//	)
//
//	// Initialize store from your application's grove handle
//	store := postgres.New(db) // db *grove.DB
//
//	// Create the engine; "owner" is the only account allowed to create
//	// leases, collect forfeited deposits, and withdraw funds.
//	e := escrow.New(store, "owner",
//	    escrow.WithRateProvider(fx.NewTicker("https://api.exchange.example/spot")),
//	)
//
//	// Start the engine (migrates the store, begins the overdue watcher)
//	if err := e.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Stop()
//
// # Core Concepts
//
// Leases bind a tenant to a payment schedule. Obligations are denominated in
// a stable reference currency; payments arrive in volatile native units and
// are validated at the exchange rate fetched at call time:
//
//	l, err := e.CreateLease(ctx, "owner", lease.Terms{
//	    Tenant:        "tenant-1",
//	    Months:        12,
//	    MonthlyAmount: escrow.USD(100_000), // $1,000.00
//	    Deposit:       escrow.USD(200_000), // $2,000.00
//	    RentWindow:    30 * 24 * time.Hour,
//	    DepositWindow: 7 * 24 * time.Hour,
//	})
//
// Tenants pay the deposit into escrow, then rent month by month:
//
//	_, err = e.PayDeposit(ctx, "tenant-1", amount)
//	_, err = e.PayRent(ctx, "tenant-1", amount)
//
// A payment covering several whole months advances the schedule by that many
// months. Once every month is settled the tenant reclaims the deposit; if a
// deadline is missed the owner may forfeit it instead:
//
//	refund, err := e.ReclaimDeposit(ctx, "tenant-1")
//	seized, err := e.CollectDeposit(ctx, "owner", "tenant-1")
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. Money holds reference-currency amounts in the smallest
// currency unit (cents for USD); Native holds settlement amounts as int64
// base units, 1e9 per whole coin.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	lease_01h2xcejqtf2nbrexx3vqjhp41  // Lease ID
//	pay_01h455vb4pex5vsknk084sn02q    // Journal entry ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package escrow
