// Package observability provides a metrics extension for Escrow that records
// lifecycle event counts via an injected MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/escrow/plugin"
	"github.com/xraph/escrow/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnLeaseCreated     = (*MetricsExtension)(nil)
	_ plugin.OnDepositPaid      = (*MetricsExtension)(nil)
	_ plugin.OnRentPaid         = (*MetricsExtension)(nil)
	_ plugin.OnLeaseFullyPaid   = (*MetricsExtension)(nil)
	_ plugin.OnDepositCollected = (*MetricsExtension)(nil)
	_ plugin.OnDepositReclaimed = (*MetricsExtension)(nil)
	_ plugin.OnFundsWithdrawn   = (*MetricsExtension)(nil)
	_ plugin.OnLeaseOverdue     = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as an Escrow plugin to automatically track lease metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Lease metrics
	LeaseCreated   Counter
	LeaseFullyPaid Counter
	LeaseOverdue   Counter

	// Payment metrics
	DepositPaid       Counter
	RentPaid          Counter
	RentMonthsCovered Histogram
	PaymentAmount     Histogram

	// Settlement metrics
	DepositCollected Counter
	DepositReclaimed Counter
	FundsWithdrawn   Counter
	WithdrawnAmount  Histogram

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Lease metrics
		LeaseCreated:   factory.Counter("escrow.lease.created"),
		LeaseFullyPaid: factory.Counter("escrow.lease.fully_paid"),
		LeaseOverdue:   factory.Counter("escrow.lease.overdue"),

		// Payment metrics
		DepositPaid:       factory.Counter("escrow.deposit.paid"),
		RentPaid:          factory.Counter("escrow.rent.paid"),
		RentMonthsCovered: factory.Histogram("escrow.rent.months_covered"),
		PaymentAmount:     factory.Histogram("escrow.payment.amount_coins"),

		// Settlement metrics
		DepositCollected: factory.Counter("escrow.deposit.collected"),
		DepositReclaimed: factory.Counter("escrow.deposit.reclaimed"),
		FundsWithdrawn:   factory.Counter("escrow.funds.withdrawn"),
		WithdrawnAmount:  factory.Histogram("escrow.funds.withdrawn_coins"),

		// Error metrics
		StoreErrors:  factory.Counter("escrow.store.errors"),
		PluginErrors: factory.Counter("escrow.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Lease lifecycle hooks
// ──────────────────────────────────────────────────

// OnLeaseCreated implements plugin.OnLeaseCreated.
func (m *MetricsExtension) OnLeaseCreated(_ context.Context, _ interface{}) error {
	m.LeaseCreated.Inc()
	return nil
}

// OnLeaseFullyPaid implements plugin.OnLeaseFullyPaid.
func (m *MetricsExtension) OnLeaseFullyPaid(_ context.Context, _ interface{}) error {
	m.LeaseFullyPaid.Inc()
	return nil
}

// OnLeaseOverdue implements plugin.OnLeaseOverdue.
func (m *MetricsExtension) OnLeaseOverdue(_ context.Context, _ interface{}) error {
	m.LeaseOverdue.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnDepositPaid implements plugin.OnDepositPaid.
func (m *MetricsExtension) OnDepositPaid(_ context.Context, _ interface{}, amount types.Native) error {
	m.DepositPaid.Inc()
	m.PaymentAmount.Observe(coins(amount))
	return nil
}

// OnRentPaid implements plugin.OnRentPaid.
func (m *MetricsExtension) OnRentPaid(_ context.Context, _ interface{}, amount types.Native, monthsCovered int) error {
	m.RentPaid.Inc()
	m.RentMonthsCovered.Observe(float64(monthsCovered))
	m.PaymentAmount.Observe(coins(amount))
	return nil
}

// ──────────────────────────────────────────────────
// Settlement lifecycle hooks
// ──────────────────────────────────────────────────

// OnDepositCollected implements plugin.OnDepositCollected.
func (m *MetricsExtension) OnDepositCollected(_ context.Context, _ interface{}, _ types.Native) error {
	m.DepositCollected.Inc()
	return nil
}

// OnDepositReclaimed implements plugin.OnDepositReclaimed.
func (m *MetricsExtension) OnDepositReclaimed(_ context.Context, _ interface{}, _ types.Native) error {
	m.DepositReclaimed.Inc()
	return nil
}

// OnFundsWithdrawn implements plugin.OnFundsWithdrawn.
func (m *MetricsExtension) OnFundsWithdrawn(_ context.Context, amount types.Native) error {
	m.FundsWithdrawn.Inc()
	m.WithdrawnAmount.Observe(coins(amount))
	return nil
}

// coins converts a base-unit amount to whole coins for histogram buckets.
func coins(n types.Native) float64 {
	return float64(n) / float64(types.UnitsPerCoin)
}
