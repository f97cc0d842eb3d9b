package swap

import (
	"bytes"
	"context"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
	"github.com/suitent/sui-deepbook-swap/internal/deepbook"
	"github.com/suitent/sui-deepbook-swap/internal/pools"
	"github.com/suitent/sui-deepbook-swap/internal/quote"
	"github.com/suitent/sui-deepbook-swap/internal/sui"
	"github.com/suitent/sui-deepbook-swap/internal/tokens"
)

type fakeVenue struct {
	records []deepbook.PoolRecord
}

func (f *fakeVenue) GetPools(_ context.Context) ([]deepbook.PoolRecord, error) {
	return f.records, nil
}

type fakeBooks struct {
	bid, ask string
}

func (f *fakeBooks) GetOrderBook(_ context.Context, _ string, _ int) (*deepbook.OrderBook, error) {
	return &deepbook.OrderBook{
		Bids: []deepbook.Level{{Price: decimal.RequireFromString(f.bid), Quantity: decimal.NewFromInt(100)}},
		Asks: []deepbook.Level{{Price: decimal.RequireFromString(f.ask), Quantity: decimal.NewFromInt(100)}},
	}, nil
}

type fakeNode struct {
	balances []sui.Balance
	block    *sui.TransactionBlock
}

func (f *fakeNode) GetAllBalances(_ context.Context, _ string) ([]sui.Balance, error) {
	return f.balances, nil
}

func (f *fakeNode) GetTransactionBlock(_ context.Context, _ string) (*sui.TransactionBlock, error) {
	return f.block, nil
}

func testService(t *testing.T, ledger Ledger) *Service {
	t.Helper()
	reg := tokens.Default()
	dir := pools.NewDirectory(pools.DirectoryConfig{
		Venue: &fakeVenue{records: []deepbook.PoolRecord{{
			PoolID:             testPoolID,
			PoolName:           "DEEP_SUI",
			BaseAssetSymbol:    "DEEP",
			BaseAssetDecimals:  6,
			QuoteAssetSymbol:   "SUI",
			QuoteAssetDecimals: 9,
		}}},
	})
	engine := quote.NewEngine(quote.EngineConfig{
		Registry: reg,
		Pairs:    dir,
		Books:    &fakeBooks{bid: "6.9", ask: "7.1"},
	})
	return NewService(ServiceConfig{
		Registry:  reg,
		Directory: dir,
		Quotes:    engine,
		Manual:    NewManualBuilder(ledger, 0, nil),
	})
}

func validRequest() BuildRequest {
	return BuildRequest{
		WalletAddress: testSender,
		TokenIn:       "SUI",
		TokenOut:      "DEEP",
		AmountIn:      "0.2",
		MinAmountOut:  "1.3",
	}
}

func TestValidateWalletAddress(t *testing.T) {
	assert.NoError(t, ValidateWalletAddress(testSender))
	assert.NoError(t, ValidateWalletAddress("0x"+"ABCDEF1111111111111111111111111111111111111111111111111111111111"))

	cases := map[string]string{
		"empty":           "",
		"no prefix":       "1111111111111111111111111111111111111111111111111111111111111111aa",
		"one char short":  testSender[:65],
		"one char long":   testSender + "1",
		"non-hex payload": "0x11111111111111111111111111111111111111111111111111111111111111zz",
	}
	for name, addr := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateWalletAddress(addr)
			require.Error(t, err)
			assert.Equal(t, apperror.CodeInvalidWalletAddress, apperror.CodeOf(err))
		})
	}
}

func TestService_BuildSwapTransaction_Validation(t *testing.T) {
	svc := testService(t, &fakeLedger{})
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		req := validRequest()
		req.AmountIn = ""
		_, err := svc.BuildSwapTransaction(ctx, req)
		require.Error(t, err)
		assert.Equal(t, apperror.CodeInvalidRequest, apperror.CodeOf(err))
	})

	t.Run("bad wallet", func(t *testing.T) {
		req := validRequest()
		req.WalletAddress = testSender[:65]
		_, err := svc.BuildSwapTransaction(ctx, req)
		require.Error(t, err)
		assert.Equal(t, apperror.CodeInvalidWalletAddress, apperror.CodeOf(err))
	})

	t.Run("unknown token", func(t *testing.T) {
		req := validRequest()
		req.TokenOut = "DOGE"
		_, err := svc.BuildSwapTransaction(ctx, req)
		require.Error(t, err)
		assert.Equal(t, apperror.CodeInvalidToken, apperror.CodeOf(err))
	})

	t.Run("garbage amount", func(t *testing.T) {
		req := validRequest()
		req.AmountIn = "1.2.3"
		_, err := svc.BuildSwapTransaction(ctx, req)
		require.Error(t, err)
		assert.Equal(t, apperror.CodeInvalidAmount, apperror.CodeOf(err))
	})

	t.Run("zero minAmountOut rejected", func(t *testing.T) {
		req := validRequest()
		req.MinAmountOut = "0"
		_, err := svc.BuildSwapTransaction(ctx, req)
		require.Error(t, err)
		assert.Equal(t, apperror.CodeInvalidRequest, apperror.CodeOf(err))
	})
}

func TestService_BuildSwapTransaction_ZeroMinOutOverride(t *testing.T) {
	svc := testService(t, &fakeLedger{
		coins: map[string][]CoinRef{
			SuiCoinType: {testCoin(1, 1_000_000_000)},
		},
		poolVersion: 7,
		gasPrice:    1000,
	})
	svc.AllowZeroMinOut = true

	req := validRequest()
	req.MinAmountOut = "0"
	resp, err := svc.BuildSwapTransaction(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "0", resp.Quote.MinAmountOut)
}

func TestService_BuildSwapTransaction(t *testing.T) {
	svc := testService(t, &fakeLedger{
		coins: map[string][]CoinRef{
			SuiCoinType: {testCoin(1, 1_000_000_000)},
		},
		poolVersion: 7,
		gasPrice:    1000,
	})

	resp, err := svc.BuildSwapTransaction(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Transaction.TxBytes)
	assert.Equal(t, "5000000", resp.Transaction.EstimatedGas)
	assert.Equal(t, testPoolID, resp.PoolID)
	assert.Equal(t, "0.2", resp.Quote.AmountIn)
	assert.Equal(t, "1.4", resp.Quote.EstimatedAmountOut)
	assert.Equal(t, "1.3", resp.Quote.MinAmountOut, "the enforced minimum is the caller's, not the haircut")
	assert.Equal(t, "0.05", resp.Quote.PriceImpact)
}

func TestService_BuildSwapTransaction_InsufficientBalance(t *testing.T) {
	svc := testService(t, &fakeLedger{
		coins: map[string][]CoinRef{
			SuiCoinType: {testCoin(1, 100)},
		},
		poolVersion: 7,
		gasPrice:    1000,
	})

	_, err := svc.BuildSwapTransaction(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInsufficientBalance, apperror.CodeOf(err))
}

func TestService_GetBalances(t *testing.T) {
	svc := NewService(ServiceConfig{
		Registry: tokens.Default(),
		Node: &fakeNode{balances: []sui.Balance{
			{CoinType: SuiCoinType, TotalBalance: "1500000000"},
			{CoinType: "0xdead::meme::COIN", TotalBalance: "42"},
		}},
	})

	balances, err := svc.GetBalances(context.Background(), testSender)
	require.NoError(t, err)
	require.Len(t, balances, 1, "unrecognized coin types are dropped")
	assert.Equal(t, "SUI", balances[0].Symbol)
	assert.Equal(t, "1.5", balances[0].Balance)
	assert.Equal(t, "1500000000", balances[0].BalanceRaw)
}

func TestService_GetBalances_BadWallet(t *testing.T) {
	svc := NewService(ServiceConfig{Registry: tokens.Default()})
	_, err := svc.GetBalances(context.Background(), "0xshort")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidWalletAddress, apperror.CodeOf(err))
}

func TestService_GetTransactionStatus_Validation(t *testing.T) {
	svc := NewService(ServiceConfig{Registry: tokens.Default()})
	ctx := context.Background()

	for name, digest := range map[string]string{
		"empty":      "",
		"not base58": "0OIl+/====",
		"wrong size": "3yZe7d",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.GetTransactionStatus(ctx, digest)
			require.Error(t, err)
			assert.Equal(t, apperror.CodeInvalidRequest, apperror.CodeOf(err))
		})
	}
}

func TestService_GetTransactionStatus(t *testing.T) {
	digest := base58.Encode(bytes.Repeat([]byte{9}, 32))
	block := &sui.TransactionBlock{
		Digest:      digest,
		TimestampMs: "1726000000000",
		Effects:     &sui.TransactionEffects{},
	}
	block.Effects.Status.Status = "success"

	svc := NewService(ServiceConfig{
		Registry: tokens.Default(),
		Node:     &fakeNode{block: block},
	})

	status, err := svc.GetTransactionStatus(context.Background(), block.Digest)
	require.NoError(t, err)
	assert.Equal(t, "success", status.Status)
	assert.Equal(t, block.Digest, status.Digest)
	assert.Equal(t, "1726000000000", status.TimestampMs)
}
