package extension

import (
	"time"

	escrow "github.com/xraph/escrow"
	"github.com/xraph/escrow/fx"
	"github.com/xraph/escrow/plugin"
	"github.com/xraph/escrow/store"
)

// Option configures the Escrow Forge extension.
type Option func(*Extension)

// WithStore sets the store for the escrow engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes an escrow.Option through to the underlying engine.
func WithEngineOption(opt escrow.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers an escrow plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, escrow.WithPlugin(p))
	}
}

// WithRateProvider sets the exchange-rate source for the engine.
// Takes precedence over the rate_ticker_url config field.
func WithRateProvider(p fx.Provider) Option {
	return func(e *Extension) {
		e.rates = p
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithOwner sets the owner account identifier.
func WithOwner(owner string) Option {
	return func(e *Extension) { e.config.Owner = owner }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithTolerance sets the payment tolerance band in reference-currency cents.
func WithTolerance(cents int64) Option {
	return func(e *Extension) { e.config.ToleranceCents = cents }
}

// WithOverdueCheckInterval sets how often the engine scans for overdue leases.
func WithOverdueCheckInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.OverdueCheckInterval = d }
}
