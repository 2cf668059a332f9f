// Package audithook bridges Escrow lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/escrow/lease"
	"github.com/xraph/escrow/plugin"
	"github.com/xraph/escrow/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnLeaseCreated     = (*Extension)(nil)
	_ plugin.OnDepositPaid      = (*Extension)(nil)
	_ plugin.OnRentPaid         = (*Extension)(nil)
	_ plugin.OnLeaseFullyPaid   = (*Extension)(nil)
	_ plugin.OnDepositCollected = (*Extension)(nil)
	_ plugin.OnDepositReclaimed = (*Extension)(nil)
	_ plugin.OnFundsWithdrawn   = (*Extension)(nil)
	_ plugin.OnLeaseOverdue     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Escrow lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Lease lifecycle hooks
// ──────────────────────────────────────────────────

// OnLeaseCreated implements plugin.OnLeaseCreated.
func (e *Extension) OnLeaseCreated(ctx context.Context, l interface{}) error {
	leaseID, tenant := leaseDetails(l)
	return e.record(ctx, ActionLeaseCreated, SeverityInfo, OutcomeSuccess,
		ResourceLease, leaseID, CategoryLease, nil,
		"tenant", tenant,
	)
}

// OnLeaseFullyPaid implements plugin.OnLeaseFullyPaid.
func (e *Extension) OnLeaseFullyPaid(ctx context.Context, l interface{}) error {
	leaseID, tenant := leaseDetails(l)
	return e.record(ctx, ActionLeaseFullyPaid, SeverityInfo, OutcomeSuccess,
		ResourceLease, leaseID, CategoryLease, nil,
		"tenant", tenant,
	)
}

// OnLeaseOverdue implements plugin.OnLeaseOverdue.
func (e *Extension) OnLeaseOverdue(ctx context.Context, l interface{}) error {
	leaseID, tenant := leaseDetails(l)
	return e.record(ctx, ActionLeaseOverdue, SeverityWarning, OutcomeFailure,
		ResourceLease, leaseID, CategoryLease, nil,
		"tenant", tenant,
	)
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnDepositPaid implements plugin.OnDepositPaid.
func (e *Extension) OnDepositPaid(ctx context.Context, l interface{}, amount types.Native) error {
	leaseID, tenant := leaseDetails(l)
	return e.record(ctx, ActionDepositPaid, SeverityInfo, OutcomeSuccess,
		ResourceDeposit, leaseID, CategoryPayment, nil,
		"tenant", tenant,
		"amount", amount.String(),
	)
}

// OnRentPaid implements plugin.OnRentPaid.
func (e *Extension) OnRentPaid(ctx context.Context, l interface{}, amount types.Native, monthsCovered int) error {
	leaseID, tenant := leaseDetails(l)
	return e.record(ctx, ActionRentPaid, SeverityInfo, OutcomeSuccess,
		ResourceRent, leaseID, CategoryPayment, nil,
		"tenant", tenant,
		"amount", amount.String(),
		"months_covered", monthsCovered,
	)
}

// OnDepositCollected implements plugin.OnDepositCollected.
func (e *Extension) OnDepositCollected(ctx context.Context, l interface{}, amount types.Native) error {
	leaseID, tenant := leaseDetails(l)
	return e.record(ctx, ActionDepositCollected, SeverityWarning, OutcomeSuccess,
		ResourceDeposit, leaseID, CategorySettlement, nil,
		"tenant", tenant,
		"amount", amount.String(),
	)
}

// OnDepositReclaimed implements plugin.OnDepositReclaimed.
func (e *Extension) OnDepositReclaimed(ctx context.Context, l interface{}, amount types.Native) error {
	leaseID, tenant := leaseDetails(l)
	return e.record(ctx, ActionDepositReclaimed, SeverityInfo, OutcomeSuccess,
		ResourceDeposit, leaseID, CategorySettlement, nil,
		"tenant", tenant,
		"amount", amount.String(),
	)
}

// OnFundsWithdrawn implements plugin.OnFundsWithdrawn.
func (e *Extension) OnFundsWithdrawn(ctx context.Context, amount types.Native) error {
	return e.record(ctx, ActionFundsWithdrawn, SeverityInfo, OutcomeSuccess,
		ResourceFunds, "", CategorySettlement, nil,
		"amount", amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// leaseDetails extracts the ID and tenant from a lease snapshot.
func leaseDetails(v interface{}) (leaseID, tenant string) {
	if l, ok := v.(*lease.Lease); ok {
		return l.ID.String(), l.Tenant
	}
	return "", ""
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
