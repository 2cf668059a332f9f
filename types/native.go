package types

import "fmt"

// UnitsPerCoin is the number of Native base units in one whole native coin.
// All native-unit amounts are held as int64 counts of base units, so the
// largest representable balance is a little over nine billion coins.
const UnitsPerCoin int64 = 1_000_000_000

// Native represents a settlement-currency amount in base units. The native
// coin is the volatile unit payments are actually transferred in; obligations
// stay denominated in Money and convert through an fx rate at call time.
// All arithmetic is integer-only — no floating point.
type Native int64

// Coins creates a Native value from a whole-coin count.
func Coins(n int64) Native { return Native(n * UnitsPerCoin) }

// IsZero returns true if the amount is zero.
func (n Native) IsZero() bool { return n == 0 }

// IsPositive returns true if the amount is greater than zero.
func (n Native) IsPositive() bool { return n > 0 }

// Abs returns the absolute value.
func (n Native) Abs() Native {
	if n < 0 {
		return -n
	}
	return n
}

// String returns a whole-coin decimal representation such as "1.500000000".
func (n Native) String() string {
	isNegative := n < 0
	abs := n
	if isNegative {
		abs = -abs
	}

	whole := int64(abs) / UnitsPerCoin
	frac := int64(abs) % UnitsPerCoin

	result := fmt.Sprintf("%d.%09d", whole, frac)
	if isNegative {
		return "-" + result
	}
	return result
}
