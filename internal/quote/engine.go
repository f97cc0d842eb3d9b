package quote

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/suitent/sui-deepbook-swap/internal/amount"
	"github.com/suitent/sui-deepbook-swap/internal/apperror"
	"github.com/suitent/sui-deepbook-swap/internal/deepbook"
	"github.com/suitent/sui-deepbook-swap/internal/pools"
	"github.com/suitent/sui-deepbook-swap/internal/tokens"
)

// Quote is a fully-populated price quote. Ephemeral; recomputed from a live
// order-book snapshot on every request, never persisted.
type Quote struct {
	TokenIn               string `json:"tokenIn"`
	TokenOut              string `json:"tokenOut"`
	AmountIn              string `json:"amountIn"`
	AmountInRaw           string `json:"amountInRaw"`
	EstimatedAmountOut    string `json:"estimatedAmountOut"`
	EstimatedAmountOutRaw string `json:"estimatedAmountOutRaw"`
	MinAmountOut          string `json:"minAmountOut"`
	PricePerToken         string `json:"pricePerToken"`
	PriceImpact           string `json:"priceImpact"`
	PoolID                string `json:"poolId"`
}

// BookSource is the order-book snapshot capability the engine depends on.
type BookSource interface {
	GetOrderBook(ctx context.Context, poolName string, depth int) (*deepbook.OrderBook, error)
}

// PairResolver resolves (tokenIn, tokenOut) to a pool and direction.
type PairResolver interface {
	ResolvePair(ctx context.Context, tokenIn, tokenOut string) (pools.Direction, error)
}

// Engine computes quotes from live order-book data.
type Engine struct {
	registry *tokens.Registry
	pairs    PairResolver
	books    BookSource
	depth    int
	logger   *logrus.Logger
}

// EngineConfig holds construction options for the quote engine.
type EngineConfig struct {
	Registry *tokens.Registry
	Pairs    PairResolver
	Books    BookSource
	Depth    int // order-book levels to request, default 5
	Logger   *logrus.Logger
}

// slippageHaircut is the advisory 1% discount applied to the estimated
// output. Callers may enforce a different tolerance when building.
var slippageHaircut = decimal.RequireFromString("0.99")

// NewEngine creates a quote engine.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Depth <= 0 {
		cfg.Depth = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Engine{
		registry: cfg.Registry,
		pairs:    cfg.Pairs,
		books:    cfg.Books,
		depth:    cfg.Depth,
		logger:   cfg.Logger,
	}
}

// GetQuote prices a swap of amountIn tokenIn into tokenOut against the
// resolved pool's live order book.
func (e *Engine) GetQuote(ctx context.Context, tokenIn, tokenOut, amountIn string) (*Quote, error) {
	tokenIn = strings.ToUpper(strings.TrimSpace(tokenIn))
	tokenOut = strings.ToUpper(strings.TrimSpace(tokenOut))

	inCfg, err := e.registry.Get(tokenIn)
	if err != nil {
		return nil, err
	}
	outCfg, err := e.registry.Get(tokenOut)
	if err != nil {
		return nil, err
	}
	if tokenIn == tokenOut {
		return nil, apperror.New(apperror.CodeInvalidRequest, "tokenIn and tokenOut must differ")
	}

	amountInRaw, err := amount.ToRaw(amountIn, inCfg.Decimals)
	if err != nil {
		return nil, err
	}
	if amountInRaw.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeInvalidAmount, "amount must be greater than zero")
	}
	inDec, err := decimal.NewFromString(strings.TrimSpace(amountIn))
	if err != nil {
		return nil, apperror.Newf(apperror.CodeInvalidAmount, "invalid amount: %q", amountIn)
	}

	dir, err := e.pairs.ResolvePair(ctx, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}

	book, err := e.books.GetOrderBook(ctx, dir.Pool.PoolName, e.depth)
	if err != nil {
		return nil, err
	}
	bestBid, okBid := book.BestBid()
	bestAsk, okAsk := book.BestAsk()
	if !okBid || !okAsk {
		return nil, apperror.Newf(apperror.CodeNoLiquidity, "no liquidity in pool %s", dir.Pool.PoolName)
	}

	mid := bestBid.Price.Add(bestAsk.Price).Div(decimal.NewFromInt(2))
	if mid.Sign() <= 0 {
		return nil, apperror.Newf(apperror.CodeNoLiquidity, "no liquidity in pool %s", dir.Pool.PoolName)
	}

	outDec := inDec.Mul(mid)
	minDec := outDec.Mul(slippageHaircut)

	// The impact ladder is denominated in the pool's base asset, so a
	// quote-side input is normalized through the mid-price first.
	tradeSize := inDec
	if !dir.BaseToQuote {
		tradeSize = inDec.Div(mid)
	}

	outRaw := outDec.Shift(int32(outCfg.Decimals)).Truncate(0).BigInt()
	minRaw := minDec.Shift(int32(outCfg.Decimals)).Truncate(0).BigInt()

	q := &Quote{
		TokenIn:               tokenIn,
		TokenOut:              tokenOut,
		AmountIn:              amount.FromRaw(amountInRaw, inCfg.Decimals),
		AmountInRaw:           amountInRaw.String(),
		EstimatedAmountOut:    amount.FromRaw(outRaw, outCfg.Decimals),
		EstimatedAmountOutRaw: outRaw.String(),
		MinAmountOut:          amount.FromRaw(minRaw, outCfg.Decimals),
		PricePerToken:         mid.StringFixed(6),
		PriceImpact:           amount.PriceImpactTier(tradeSize),
		PoolID:                dir.Pool.PoolID,
	}

	e.logger.WithFields(logrus.Fields{
		"pool":      dir.Pool.PoolName,
		"token_in":  tokenIn,
		"token_out": tokenOut,
		"mid":       mid.String(),
	}).Debug("quote computed")

	return q, nil
}
