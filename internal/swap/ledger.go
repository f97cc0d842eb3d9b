package swap

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/suitent/sui-deepbook-swap/internal/ptb"
	"github.com/suitent/sui-deepbook-swap/internal/sui"
)

// CoinRef is an owned coin object pinned to an exact version, with its
// balance for selection decisions.
type CoinRef struct {
	Ref     ptb.ObjectRef
	Balance *big.Int
}

// Ledger is the network capability both builders resolve transaction inputs
// through: owned coins, shared-object versions, and the gas price.
type Ledger interface {
	Coins(ctx context.Context, owner, coinType string) ([]CoinRef, error)
	SharedObjectVersion(ctx context.Context, objectID string) (uint64, error)
	GasPrice(ctx context.Context) (uint64, error)
}

// rpcLedger adapts the fullnode JSON-RPC client to the Ledger capability.
type rpcLedger struct {
	client *sui.Client
}

// NewRPCLedger wraps a fullnode client as a Ledger.
func NewRPCLedger(client *sui.Client) Ledger {
	return &rpcLedger{client: client}
}

func (l *rpcLedger) Coins(ctx context.Context, owner, coinType string) ([]CoinRef, error) {
	coins, err := l.client.GetCoins(ctx, owner, coinType)
	if err != nil {
		return nil, err
	}
	out := make([]CoinRef, 0, len(coins))
	for _, c := range coins {
		ref, err := toCoinRef(c.CoinObjectID, c.Version, c.Digest, c.Balance)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

func (l *rpcLedger) SharedObjectVersion(ctx context.Context, objectID string) (uint64, error) {
	obj, err := l.client.GetObject(ctx, objectID)
	if err != nil {
		return 0, err
	}
	if obj.Owner == nil || obj.Owner.Shared == nil {
		return 0, fmt.Errorf("object %s is not shared", objectID)
	}
	return obj.Owner.Shared.InitialSharedVersion, nil
}

func (l *rpcLedger) GasPrice(ctx context.Context) (uint64, error) {
	return l.client.GetReferenceGasPrice(ctx)
}

// toCoinRef validates and converts one RPC coin record.
func toCoinRef(objectID, version, digest, balance string) (CoinRef, error) {
	id, err := ptb.AddressFromHex(objectID)
	if err != nil {
		return CoinRef{}, err
	}
	v, err := strconv.ParseUint(version, 10, 64)
	if err != nil {
		return CoinRef{}, fmt.Errorf("bad coin version %q: %w", version, err)
	}
	d, err := ptb.DigestFromBase58(digest)
	if err != nil {
		return CoinRef{}, err
	}
	bal, ok := new(big.Int).SetString(balance, 10)
	if !ok {
		return CoinRef{}, fmt.Errorf("bad coin balance %q", balance)
	}
	return CoinRef{
		Ref:     ptb.ObjectRef{ObjectID: id, Version: v, Digest: d},
		Balance: bal,
	}, nil
}

func sumBalances(coins []CoinRef) *big.Int {
	total := new(big.Int)
	for _, c := range coins {
		total.Add(total, c.Balance)
	}
	return total
}
