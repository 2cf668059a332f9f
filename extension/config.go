package extension

import "time"

// Config holds the Escrow extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.escrow" or "escrow" keys).
type Config struct {
	// Owner is the account identifier allowed to create leases, collect
	// forfeited deposits, and withdraw funds.
	Owner string `json:"owner" mapstructure:"owner" yaml:"owner"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// ToleranceCents is the reference-currency band, in cents, a received
	// payment may deviate from the expected amount (default: 500 = $5.00).
	ToleranceCents int64 `json:"tolerance_cents" mapstructure:"tolerance_cents" yaml:"tolerance_cents"`

	// OverdueCheckInterval is how often the engine scans for leases whose
	// deadline has passed (default: 1m).
	OverdueCheckInterval time.Duration `json:"overdue_check_interval" mapstructure:"overdue_check_interval" yaml:"overdue_check_interval"`

	// RateTickerURL, when set, configures an HTTP spot-price rate provider
	// fetching from this endpoint. Ignored if a provider was supplied
	// programmatically.
	RateTickerURL string `json:"rate_ticker_url" mapstructure:"rate_ticker_url" yaml:"rate_ticker_url"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Owner:                "owner",
		ToleranceCents:       500,
		OverdueCheckInterval: time.Minute,
	}
}
