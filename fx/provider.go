package fx

import (
	"context"

	"github.com/xraph/escrow/types"
)

// Provider supplies the current reference-currency price of one native coin.
// The engine queries it fresh before every tolerance check — implementations
// must not serve stale rates, since payment validation depends on the rate
// at call time.
type Provider interface {
	Rate(ctx context.Context) (Rate, error)
}

// ProviderFunc is an adapter to use a plain function as a Provider.
type ProviderFunc func(ctx context.Context) (Rate, error)

// Rate implements Provider.
func (f ProviderFunc) Rate(ctx context.Context) (Rate, error) {
	return f(ctx)
}

// Fixed returns a Provider that always reports the given rate.
// Useful for tests and for deployments pegged to a configured rate.
func Fixed(rate Rate) Provider {
	return ProviderFunc(func(context.Context) (Rate, error) {
		if !rate.IsPositive() {
			return types.Money{}, ErrInvalidRate
		}
		return rate, nil
	})
}
