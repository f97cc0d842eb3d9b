package swap

import (
	"math/big"

	"github.com/suitent/sui-deepbook-swap/internal/pools"
	"github.com/suitent/sui-deepbook-swap/internal/tokens"
)

// DeepBookPackage is the DeepBook v3 package the swap entry point lives in.
const DeepBookPackage = "0x22be4cade64bf2d02412c7e8d0e8beea2f78828b948118d46735315409371a3c"

// DefaultGasBudget mirrors the estimate surfaced to clients, in MIST.
const DefaultGasBudget uint64 = 5_000_000

// SuiCoinType is the native gas asset's fully-qualified coin type.
const SuiCoinType = "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI"

// defaultWhitelist names the fee-exempt pools; trades on any other pool must
// supply DEEP to pay the venue fee.
var defaultWhitelist = map[string]bool{
	"DEEP_SUI": true,
}

// WhitelistedPool reports whether the named pool trades without DEEP fees.
func WhitelistedPool(poolName string) bool {
	return defaultWhitelist[poolName]
}

// Plan is the single source of truth describing one swap: which pool, which
// role the input coin plays, exact raw amounts, and the fee arrangement.
// Both builders execute the same plan.
type Plan struct {
	Sender      string
	Pool        pools.Pool
	BaseToQuote bool // input coin is the pool's base asset

	TokenIn  tokens.Config
	TokenOut tokens.Config

	// Coin types for the pool's generic parameters and the fee token.
	BaseType  string
	QuoteType string
	DeepType  string

	AmountInRaw *big.Int
	MinOutRaw   *big.Int

	// Whitelisted pools pay no DEEP fee; others split DeepFeeRaw from the
	// sender's DEEP holdings. The fee amount is caller-supplied.
	Whitelisted bool
	DeepFeeRaw  *big.Int
}
