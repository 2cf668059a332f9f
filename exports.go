package escrow

import "github.com/xraph/escrow/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Native is re-exported from types package.
type Native = types.Native

// Entity is re-exported from types package.
type Entity = types.Entity

// UnitsPerCoin is re-exported from types package.
const UnitsPerCoin = types.UnitsPerCoin

// Re-export Money and Native constructors
var (
	USD   = types.USD
	EUR   = types.EUR
	GBP   = types.GBP
	Zero  = types.Zero
	Sum   = types.Sum
	Coins = types.Coins
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
