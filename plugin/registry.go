package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/escrow/types"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onLeaseCreated     []OnLeaseCreated
	onDepositPaid      []OnDepositPaid
	onRentPaid         []OnRentPaid
	onLeaseFullyPaid   []OnLeaseFullyPaid
	onDepositCollected []OnDepositCollected
	onDepositReclaimed []OnDepositReclaimed
	onFundsWithdrawn   []OnFundsWithdrawn
	onLeaseOverdue     []OnLeaseOverdue
	rateProviders      []RateProviderPlugin
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnLeaseCreated); ok {
		r.onLeaseCreated = append(r.onLeaseCreated, v)
	}
	if v, ok := p.(OnDepositPaid); ok {
		r.onDepositPaid = append(r.onDepositPaid, v)
	}
	if v, ok := p.(OnRentPaid); ok {
		r.onRentPaid = append(r.onRentPaid, v)
	}
	if v, ok := p.(OnLeaseFullyPaid); ok {
		r.onLeaseFullyPaid = append(r.onLeaseFullyPaid, v)
	}
	if v, ok := p.(OnDepositCollected); ok {
		r.onDepositCollected = append(r.onDepositCollected, v)
	}
	if v, ok := p.(OnDepositReclaimed); ok {
		r.onDepositReclaimed = append(r.onDepositReclaimed, v)
	}
	if v, ok := p.(OnFundsWithdrawn); ok {
		r.onFundsWithdrawn = append(r.onFundsWithdrawn, v)
	}
	if v, ok := p.(OnLeaseOverdue); ok {
		r.onLeaseOverdue = append(r.onLeaseOverdue, v)
	}
	if v, ok := p.(RateProviderPlugin); ok {
		r.rateProviders = append(r.rateProviders, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnLeaseCreated)(nil)).Elem(), "OnLeaseCreated")
	checkInterface(reflect.TypeOf((*OnDepositPaid)(nil)).Elem(), "OnDepositPaid")
	checkInterface(reflect.TypeOf((*OnRentPaid)(nil)).Elem(), "OnRentPaid")
	checkInterface(reflect.TypeOf((*OnLeaseFullyPaid)(nil)).Elem(), "OnLeaseFullyPaid")
	checkInterface(reflect.TypeOf((*OnDepositCollected)(nil)).Elem(), "OnDepositCollected")
	checkInterface(reflect.TypeOf((*OnDepositReclaimed)(nil)).Elem(), "OnDepositReclaimed")
	checkInterface(reflect.TypeOf((*OnFundsWithdrawn)(nil)).Elem(), "OnFundsWithdrawn")
	checkInterface(reflect.TypeOf((*OnLeaseOverdue)(nil)).Elem(), "OnLeaseOverdue")
	checkInterface(reflect.TypeOf((*RateProviderPlugin)(nil)).Elem(), "RateProvider")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLeaseCreated emits a lease created event.
func (r *Registry) EmitLeaseCreated(ctx context.Context, lease interface{}) {
	r.mu.RLock()
	plugins := r.onLeaseCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLeaseCreated(ctx, lease)
		}); err != nil {
			r.logger.Warn("plugin OnLeaseCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDepositPaid emits a deposit paid event.
func (r *Registry) EmitDepositPaid(ctx context.Context, lease interface{}, amount types.Native) {
	r.mu.RLock()
	plugins := r.onDepositPaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDepositPaid(ctx, lease, amount)
		}); err != nil {
			r.logger.Warn("plugin OnDepositPaid failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRentPaid emits a rent paid event.
func (r *Registry) EmitRentPaid(ctx context.Context, lease interface{}, amount types.Native, monthsCovered int) {
	r.mu.RLock()
	plugins := r.onRentPaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRentPaid(ctx, lease, amount, monthsCovered)
		}); err != nil {
			r.logger.Warn("plugin OnRentPaid failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLeaseFullyPaid emits a lease fully paid event.
func (r *Registry) EmitLeaseFullyPaid(ctx context.Context, lease interface{}) {
	r.mu.RLock()
	plugins := r.onLeaseFullyPaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLeaseFullyPaid(ctx, lease)
		}); err != nil {
			r.logger.Warn("plugin OnLeaseFullyPaid failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDepositCollected emits a deposit collected event.
func (r *Registry) EmitDepositCollected(ctx context.Context, lease interface{}, amount types.Native) {
	r.mu.RLock()
	plugins := r.onDepositCollected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDepositCollected(ctx, lease, amount)
		}); err != nil {
			r.logger.Warn("plugin OnDepositCollected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDepositReclaimed emits a deposit reclaimed event.
func (r *Registry) EmitDepositReclaimed(ctx context.Context, lease interface{}, amount types.Native) {
	r.mu.RLock()
	plugins := r.onDepositReclaimed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDepositReclaimed(ctx, lease, amount)
		}); err != nil {
			r.logger.Warn("plugin OnDepositReclaimed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFundsWithdrawn emits a funds withdrawn event.
func (r *Registry) EmitFundsWithdrawn(ctx context.Context, amount types.Native) {
	r.mu.RLock()
	plugins := r.onFundsWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFundsWithdrawn(ctx, amount)
		}); err != nil {
			r.logger.Warn("plugin OnFundsWithdrawn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLeaseOverdue emits a lease overdue event.
func (r *Registry) EmitLeaseOverdue(ctx context.Context, lease interface{}) {
	r.mu.RLock()
	plugins := r.onLeaseOverdue
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLeaseOverdue(ctx, lease)
		}); err != nil {
			r.logger.Warn("plugin OnLeaseOverdue failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// GetRateProviders returns all registered rate provider plugins.
func (r *Registry) GetRateProviders() []RateProviderPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]RateProviderPlugin, len(r.rateProviders))
	copy(result, r.rateProviders)
	return result
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the escrow pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
