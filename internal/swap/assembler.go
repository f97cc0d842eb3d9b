package swap

import (
	"context"
	"encoding/base64"
	"math/big"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
	"github.com/suitent/sui-deepbook-swap/internal/ptb"
)

// maxGasPayment caps how many SUI coin objects are attached as gas payment.
const maxGasPayment = 16

// resolvedInputs is everything the assembler needs from the network, fetched
// up front so assembly itself is pure.
type resolvedInputs struct {
	inputCoins   []CoinRef // owned coins of tokenIn; empty when splitting from gas
	feeCoins     []CoinRef // owned DEEP coins when the fee is paid separately
	gasCoins     []CoinRef
	feeFromInput bool // tokenIn is DEEP and the fee splits off the same coin
	poolVersion  uint64
	gasPrice     uint64
}

// resolveInputs queries the ledger and enforces the balance gates. All
// sufficiency checks happen here, before any coin-splitting is assembled.
func resolveInputs(ctx context.Context, ledger Ledger, plan *Plan) (*resolvedInputs, error) {
	in := &resolvedInputs{}
	splitFromGas := plan.TokenIn.Symbol == "SUI"

	coins, err := ledger.Coins(ctx, plan.Sender, plan.TokenIn.CoinType)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to query wallet coins")
	}

	required := new(big.Int).Set(plan.AmountInRaw)
	feeRequired := !plan.Whitelisted && plan.DeepFeeRaw != nil && plan.DeepFeeRaw.Sign() > 0
	if feeRequired && plan.TokenIn.CoinType == plan.DeepType {
		in.feeFromInput = true
		required.Add(required, plan.DeepFeeRaw)
	}
	if sumBalances(coins).Cmp(required) < 0 {
		return nil, apperror.Newf(apperror.CodeInsufficientBalance,
			"insufficient %s balance for swap", plan.TokenIn.Symbol)
	}
	if !splitFromGas {
		in.inputCoins = coins
	}

	if feeRequired && !in.feeFromInput {
		feeCoins, err := ledger.Coins(ctx, plan.Sender, plan.DeepType)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to query wallet coins")
		}
		if sumBalances(feeCoins).Cmp(plan.DeepFeeRaw) < 0 {
			return nil, apperror.New(apperror.CodeInsufficientBalance,
				"need DEEP to pay pool fees on a non-whitelisted pool")
		}
		in.feeCoins = feeCoins
	}

	if splitFromGas {
		in.gasCoins = coins
	} else {
		gasCoins, err := ledger.Coins(ctx, plan.Sender, SuiCoinType)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to query wallet coins")
		}
		in.gasCoins = gasCoins
	}
	if len(in.gasCoins) == 0 {
		return nil, apperror.New(apperror.CodeInsufficientBalance, "wallet holds no SUI for gas")
	}

	in.poolVersion, err = ledger.SharedObjectVersion(ctx, plan.Pool.PoolID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to resolve pool object")
	}
	in.gasPrice, err = ledger.GasPrice(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to fetch reference gas price")
	}
	return in, nil
}

// assemble turns a resolved plan into serialized transaction bytes.
func assemble(plan *Plan, in *resolvedInputs, gasBudget uint64) (string, error) {
	b, sender, err := assembleCommands(plan, in)
	if err != nil {
		return "", err
	}

	raw, err := b.Finish(sender, ptb.GasData{
		Payment: gasPayment(in.gasCoins),
		Owner:   sender,
		Price:   in.gasPrice,
		Budget:  gasBudget,
	})
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeTransactionBuildFail, "failed to serialize transaction")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// assembleCommands lays out the programmable transaction for a resolved plan.
// The entry-point argument order is contract-defined: pool, base coin, quote
// coin, fee coin, min out, clock.
func assembleCommands(plan *Plan, in *resolvedInputs) (*ptb.Builder, ptb.Address, error) {
	var none ptb.Address

	sender, err := ptb.AddressFromHex(plan.Sender)
	if err != nil {
		return nil, none, apperror.Wrap(err, apperror.CodeInvalidWalletAddress, "invalid wallet address")
	}
	poolAddr, err := ptb.AddressFromHex(plan.Pool.PoolID)
	if err != nil {
		return nil, none, apperror.Wrap(err, apperror.CodeTransactionBuildFail, "invalid pool object id")
	}
	pkg, err := ptb.AddressFromHex(DeepBookPackage)
	if err != nil {
		return nil, none, apperror.Wrap(err, apperror.CodeTransactionBuildFail, "invalid package id")
	}

	baseTag, err := ptb.TypeTagFromString(plan.BaseType)
	if err != nil {
		return nil, none, apperror.Wrap(err, apperror.CodeTransactionBuildFail, "invalid base coin type")
	}
	quoteTag, err := ptb.TypeTagFromString(plan.QuoteType)
	if err != nil {
		return nil, none, apperror.Wrap(err, apperror.CodeTransactionBuildFail, "invalid quote coin type")
	}
	deepTag, err := ptb.TypeTagFromString(plan.DeepType)
	if err != nil {
		return nil, none, apperror.Wrap(err, apperror.CodeTransactionBuildFail, "invalid fee coin type")
	}

	amountIn, ok := rawToU64(plan.AmountInRaw)
	if !ok {
		return nil, none, apperror.New(apperror.CodeInvalidAmount, "amount exceeds u64 range")
	}
	minOut, ok := rawToU64(plan.MinOutRaw)
	if !ok {
		return nil, none, apperror.New(apperror.CodeInvalidAmount, "minAmountOut exceeds u64 range")
	}

	b := ptb.NewBuilder()
	poolArg := b.SharedObject(ptb.SharedObjectArg{
		ObjectID:             poolAddr,
		InitialSharedVersion: in.poolVersion,
		Mutable:              true,
	})

	// Split the real input coin: from gas for SUI, from an owned coin
	// object otherwise.
	amtArg := b.PureU64(amountIn)
	var inputCoin ptb.Argument
	var inputDest ptb.Argument
	if len(in.inputCoins) == 0 {
		inputCoin = b.SplitCoins(ptb.GasCoinArg(), amtArg)[0]
	} else {
		needed := new(big.Int).Set(plan.AmountInRaw)
		if in.feeFromInput {
			needed.Add(needed, plan.DeepFeeRaw)
		}
		inputDest = mergeUntil(b, in.inputCoins, needed)
		inputCoin = b.SplitCoins(inputDest, amtArg)[0]
	}

	// Fee coin: zero placeholder on whitelisted pools, a real DEEP split
	// otherwise.
	var feeCoin ptb.Argument
	switch {
	case plan.Whitelisted || plan.DeepFeeRaw == nil || plan.DeepFeeRaw.Sign() == 0:
		feeCoin = b.ZeroCoin(deepTag)
	case in.feeFromInput:
		feeAmt, ok := rawToU64(plan.DeepFeeRaw)
		if !ok {
			return nil, none, apperror.New(apperror.CodeInvalidAmount, "fee amount exceeds u64 range")
		}
		feeCoin = b.SplitCoins(inputDest, b.PureU64(feeAmt))[0]
	default:
		feeAmt, ok := rawToU64(plan.DeepFeeRaw)
		if !ok {
			return nil, none, apperror.New(apperror.CodeInvalidAmount, "fee amount exceeds u64 range")
		}
		feeDest := mergeUntil(b, in.feeCoins, plan.DeepFeeRaw)
		feeCoin = b.SplitCoins(feeDest, b.PureU64(feeAmt))[0]
	}

	// The contract expects both sides regardless of direction; the unused
	// side is a zero-value placeholder.
	var baseCoin, quoteCoin ptb.Argument
	if plan.BaseToQuote {
		baseCoin = inputCoin
		quoteCoin = b.ZeroCoin(quoteTag)
	} else {
		baseCoin = b.ZeroCoin(baseTag)
		quoteCoin = inputCoin
	}

	minArg := b.PureU64(minOut)
	clockArg := b.SharedObject(ptb.Clock)

	idx := b.MoveCall(pkg, "pool", "swap_exact_quantity",
		[]ptb.TypeTag{baseTag, quoteTag},
		[]ptb.Argument{poolArg, baseCoin, quoteCoin, feeCoin, minArg, clockArg})

	// The entry point returns three coins. All of them go back to the
	// sender, even when zero, or the ledger rejects the transaction for
	// the unconsumed values.
	outs := []ptb.Argument{
		ptb.NestedResultArg(idx, 0),
		ptb.NestedResultArg(idx, 1),
		ptb.NestedResultArg(idx, 2),
	}
	b.TransferObjects(outs, b.PureAddress(sender))

	return b, sender, nil
}

// mergeUntil adds the first coin as an owned input and merges further coins
// into it until the accumulated balance covers the needed amount. The
// balance gate already guaranteed the total suffices.
func mergeUntil(b *ptb.Builder, coins []CoinRef, needed *big.Int) ptb.Argument {
	dest := b.OwnedObject(coins[0].Ref)
	have := new(big.Int).Set(coins[0].Balance)
	for _, c := range coins[1:] {
		if have.Cmp(needed) >= 0 {
			break
		}
		b.MergeCoins(dest, b.OwnedObject(c.Ref))
		have.Add(have, c.Balance)
	}
	return dest
}

func gasPayment(coins []CoinRef) []ptb.ObjectRef {
	n := len(coins)
	if n > maxGasPayment {
		n = maxGasPayment
	}
	refs := make([]ptb.ObjectRef, 0, n)
	for _, c := range coins[:n] {
		refs = append(refs, c.Ref)
	}
	return refs
}

func rawToU64(v *big.Int) (uint64, bool) {
	if v == nil || !v.IsUint64() {
		return 0, false
	}
	return v.Uint64(), true
}
