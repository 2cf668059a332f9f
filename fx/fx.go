// Package fx converts reference-currency obligations into native-unit
// settlement amounts and validates received payments against a tolerance
// band around the expected amount.
package fx

import (
	"errors"

	"github.com/xraph/escrow/types"
)

// Rate is the reference-currency price of one whole native coin.
// A Rate of USD(330000) means one coin trades at $3,300.00.
type Rate = types.Money

var (
	// ErrInvalidRate is returned when a rate is zero or negative. The rate
	// provider must guarantee a strictly positive rate.
	ErrInvalidRate = errors.New("fx: rate must be strictly positive")

	// ErrOverflow is returned when a conversion would not fit in an int64
	// native-unit amount.
	ErrOverflow = errors.New("fx: native amount overflows int64")
)

// maxConvertibleCents bounds the reference-currency amount so that
// amount*UnitsPerCoin stays within int64.
const maxConvertibleCents int64 = 1<<63 - 1

// ExpectedNative computes the native-unit equivalent of a reference-currency
// amount at the given rate. Integer math only; the result truncates toward
// zero at base-unit resolution.
func ExpectedNative(amount types.Money, rate Rate) (types.Native, error) {
	if !rate.IsPositive() {
		return 0, ErrInvalidRate
	}
	if amount.IsNegative() {
		return 0, ErrOverflow
	}
	if amount.Amount > maxConvertibleCents/types.UnitsPerCoin {
		return 0, ErrOverflow
	}

	return types.Native(amount.Amount * types.UnitsPerCoin / rate.Amount), nil
}

// WithinTolerance reports whether a received native-unit amount lies within
// the tolerance band around the expected amount. The band is symmetric:
// |received − expected| <= tolerance.
func WithinTolerance(received, expected, tolerance types.Native) bool {
	delta := received - expected
	if delta < 0 {
		delta = -delta
	}
	return delta <= tolerance
}
