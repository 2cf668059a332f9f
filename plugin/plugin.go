// Package plugin provides an extensible plugin system for Escrow.
// Plugins can hook into lease lifecycle events to extend functionality —
// every successful state transition is announced to the registered hooks
// with a snapshot of the post-transition lease.
package plugin

import (
	"context"

	"github.com/xraph/escrow/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Lease lifecycle hooks
// ──────────────────────────────────────────────────

// OnLeaseCreated is called when the owner creates a new lease.
type OnLeaseCreated interface {
	Plugin
	OnLeaseCreated(ctx context.Context, lease interface{}) error
}

// OnDepositPaid is called when a tenant pays the lease deposit into escrow.
type OnDepositPaid interface {
	Plugin
	OnDepositPaid(ctx context.Context, lease interface{}, amount types.Native) error
}

// OnRentPaid is called when a rent payment settles one or more months.
type OnRentPaid interface {
	Plugin
	OnRentPaid(ctx context.Context, lease interface{}, amount types.Native, monthsCovered int) error
}

// OnLeaseFullyPaid is called when the final rent period is settled.
type OnLeaseFullyPaid interface {
	Plugin
	OnLeaseFullyPaid(ctx context.Context, lease interface{}) error
}

// OnDepositCollected is called when the owner forfeits an overdue tenant's
// deposit into the withdrawable balance.
type OnDepositCollected interface {
	Plugin
	OnDepositCollected(ctx context.Context, lease interface{}, amount types.Native) error
}

// OnDepositReclaimed is called when a fully-paid tenant reclaims the deposit.
type OnDepositReclaimed interface {
	Plugin
	OnDepositReclaimed(ctx context.Context, lease interface{}, amount types.Native) error
}

// OnFundsWithdrawn is called when the owner drains the withdrawable balance.
type OnFundsWithdrawn interface {
	Plugin
	OnFundsWithdrawn(ctx context.Context, amount types.Native) error
}

// OnLeaseOverdue is called by the overdue watcher when a lease deadline has
// passed. Emitted at most once per lease per armed deadline; the watcher
// never moves funds — forfeiture stays an explicit owner decision.
type OnLeaseOverdue interface {
	Plugin
	OnLeaseOverdue(ctx context.Context, lease interface{}) error
}

// ──────────────────────────────────────────────────
// Rate providers
// ──────────────────────────────────────────────────

// RateProviderPlugin provides an exchange-rate source implementation.
type RateProviderPlugin interface {
	Plugin
	Provider() interface{} // Returns fx.Provider
}
