package swap

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/suitent/sui-deepbook-swap/internal/amount"
	"github.com/suitent/sui-deepbook-swap/internal/apperror"
	"github.com/suitent/sui-deepbook-swap/internal/flags"
	"github.com/suitent/sui-deepbook-swap/internal/models"
	"github.com/suitent/sui-deepbook-swap/internal/pools"
	"github.com/suitent/sui-deepbook-swap/internal/quote"
	"github.com/suitent/sui-deepbook-swap/internal/storage"
	"github.com/suitent/sui-deepbook-swap/internal/sui"
	"github.com/suitent/sui-deepbook-swap/internal/tokens"
)

// addressLength is the full 0x-prefixed hex length of a Sui address.
const addressLength = 66

// NodeReader is the subset of ledger queries the orchestrator serves
// directly: balances and transaction status.
type NodeReader interface {
	GetAllBalances(ctx context.Context, owner string) ([]sui.Balance, error)
	GetTransactionBlock(ctx context.Context, digest string) (*sui.TransactionBlock, error)
}

// BuildRequest is the request-level payload for building a swap.
// MinAmountOut is caller-supplied; it is never defaulted.
type BuildRequest struct {
	WalletAddress string `json:"walletAddress"`
	TokenIn       string `json:"tokenIn"`
	TokenOut      string `json:"tokenOut"`
	AmountIn      string `json:"amountIn"`
	MinAmountOut  string `json:"minAmountOut"`
}

// BuildQuote is the redisplay-safe quote attached to a build response. It is
// informational; the enforced minimum is the caller-supplied one.
type BuildQuote struct {
	AmountIn           string `json:"amountIn"`
	EstimatedAmountOut string `json:"estimatedAmountOut"`
	MinAmountOut       string `json:"minAmountOut"`
	PriceImpact        string `json:"priceImpact"`
}

// BuildResponse carries the submittable transaction and its quote snapshot.
type BuildResponse struct {
	Transaction *BuiltTransaction `json:"transaction"`
	Quote       BuildQuote        `json:"quote"`
	PoolID      string            `json:"poolId"`
}

// TokenBalance is one normalized wallet holding.
type TokenBalance struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	CoinType   string `json:"coinType"`
	Decimals   int    `json:"decimals"`
	Balance    string `json:"balance"`
	BalanceRaw string `json:"balanceRaw"`
}

// TransactionStatus is a ledger status passthrough for one digest.
type TransactionStatus struct {
	Digest      string `json:"digest"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	TimestampMs string `json:"timestampMs,omitempty"`
	GasUsed     any    `json:"gasUsed,omitempty"`
}

// Service is the request-level swap façade: it validates input, resolves
// the pool, builds the plan, picks a builder, and shapes the response.
type Service struct {
	registry  *tokens.Registry
	directory *pools.Directory
	quotes    *quote.Engine
	manual    Builder
	sdk       Builder
	flags     *flags.Store
	node      NodeReader
	cache     storage.BuildCache
	store     storage.BuildStore
	deepFee   *big.Int
	logger    *logrus.Logger

	// AllowZeroMinOut force-enables the unsafe no-slippage mode without a
	// flag store. Only manual tooling sets this.
	AllowZeroMinOut bool
}

// ServiceConfig wires the orchestrator's collaborators. Flags, cache, store,
// and the SDK builder are optional.
type ServiceConfig struct {
	Registry  *tokens.Registry
	Directory *pools.Directory
	Quotes    *quote.Engine
	Manual    Builder
	SDK       Builder
	Flags     *flags.Store
	Node      NodeReader
	Cache     storage.BuildCache
	Store     storage.BuildStore
	DeepFee   *big.Int
	Logger    *logrus.Logger
}

// NewService creates the swap orchestrator.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.DeepFee == nil {
		// 1 DEEP in raw units, matching the venue's default fee estimate.
		cfg.DeepFee = big.NewInt(1_000_000)
	}
	return &Service{
		registry:  cfg.Registry,
		directory: cfg.Directory,
		quotes:    cfg.Quotes,
		manual:    cfg.Manual,
		sdk:       cfg.SDK,
		flags:     cfg.Flags,
		node:      cfg.Node,
		cache:     cfg.Cache,
		store:     cfg.Store,
		deepFee:   cfg.DeepFee,
		logger:    cfg.Logger,
	}
}

// ValidateWalletAddress checks the network address shape: 0x prefix and a
// fixed 66-character total length of hex digits.
func ValidateWalletAddress(addr string) error {
	if !strings.HasPrefix(addr, "0x") || len(addr) != addressLength {
		return apperror.New(apperror.CodeInvalidWalletAddress, "Invalid wallet address format")
	}
	for i := 2; i < len(addr); i++ {
		c := addr[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return apperror.New(apperror.CodeInvalidWalletAddress, "Invalid wallet address format")
		}
	}
	return nil
}

// BuildSwapTransaction validates the request, quotes the pair, and builds a
// submittable transaction payload.
func (s *Service) BuildSwapTransaction(ctx context.Context, req BuildRequest) (*BuildResponse, error) {
	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	req.TokenIn = strings.ToUpper(strings.TrimSpace(req.TokenIn))
	req.TokenOut = strings.ToUpper(strings.TrimSpace(req.TokenOut))
	req.AmountIn = strings.TrimSpace(req.AmountIn)
	req.MinAmountOut = strings.TrimSpace(req.MinAmountOut)

	if req.WalletAddress == "" || req.TokenIn == "" || req.TokenOut == "" ||
		req.AmountIn == "" || req.MinAmountOut == "" {
		return nil, apperror.New(apperror.CodeInvalidRequest,
			"Missing required fields: walletAddress, tokenIn, tokenOut, amountIn, minAmountOut")
	}
	if err := ValidateWalletAddress(req.WalletAddress); err != nil {
		return nil, err
	}

	inCfg, err := s.registry.Get(req.TokenIn)
	if err != nil {
		return nil, err
	}
	outCfg, err := s.registry.Get(req.TokenOut)
	if err != nil {
		return nil, err
	}

	amountInRaw, err := amount.ToRaw(req.AmountIn, inCfg.Decimals)
	if err != nil {
		return nil, err
	}
	if amountInRaw.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeInvalidAmount, "amount must be greater than zero")
	}
	minOutRaw, err := amount.ToRaw(req.MinAmountOut, outCfg.Decimals)
	if err != nil {
		return nil, err
	}
	if minOutRaw.Sign() == 0 && !s.zeroMinOutAllowed(ctx) {
		return nil, apperror.New(apperror.CodeInvalidRequest,
			"minAmountOut of zero is not allowed: no slippage protection")
	}

	dir, err := s.directory.ResolvePair(ctx, req.TokenIn, req.TokenOut)
	if err != nil {
		return nil, err
	}
	plan, err := s.buildPlan(req, dir, inCfg, outCfg, amountInRaw, minOutRaw)
	if err != nil {
		return nil, err
	}

	// Redisplay quote, computed from the live book before building.
	q, err := s.quotes.GetQuote(ctx, req.TokenIn, req.TokenOut, req.AmountIn)
	if err != nil {
		return nil, err
	}

	builder, builderName := s.pickBuilder(ctx)
	built, err := builder.Build(ctx, plan)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTransactionBuildFail, "failed to build swap transaction")
	}

	s.recordBuild(req, q, builderName)

	return &BuildResponse{
		Transaction: built,
		Quote: BuildQuote{
			AmountIn:           q.AmountIn,
			EstimatedAmountOut: q.EstimatedAmountOut,
			MinAmountOut:       req.MinAmountOut,
			PriceImpact:        q.PriceImpact,
		},
		PoolID: dir.Pool.PoolID,
	}, nil
}

// GetBalances maps the wallet's raw holdings through the token registry.
// Unrecognized coin types are dropped, not errored.
func (s *Service) GetBalances(ctx context.Context, walletAddress string) ([]TokenBalance, error) {
	if err := ValidateWalletAddress(walletAddress); err != nil {
		return nil, err
	}
	raw, err := s.node.GetAllBalances(ctx, walletAddress)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to query wallet balances")
	}

	out := make([]TokenBalance, 0, len(raw))
	for _, b := range raw {
		cfg, ok := s.registry.ByCoinType(b.CoinType)
		if !ok {
			continue
		}
		bal, ok := new(big.Int).SetString(b.TotalBalance, 10)
		if !ok {
			continue
		}
		out = append(out, TokenBalance{
			Symbol:     cfg.Symbol,
			Name:       cfg.Name,
			CoinType:   cfg.CoinType,
			Decimals:   cfg.Decimals,
			Balance:    amount.FromRaw(bal, cfg.Decimals),
			BalanceRaw: bal.String(),
		})
	}
	return out, nil
}

// GetTransactionStatus passes a ledger status query through for one digest.
func (s *Service) GetTransactionStatus(ctx context.Context, digest string) (*TransactionStatus, error) {
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return nil, apperror.New(apperror.CodeInvalidRequest, "transaction digest is required")
	}
	if raw, err := base58.Decode(digest); err != nil || len(raw) != 32 {
		return nil, apperror.New(apperror.CodeInvalidRequest, "invalid transaction digest")
	}

	block, err := s.node.GetTransactionBlock(ctx, digest)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to query transaction status")
	}

	status := &TransactionStatus{Digest: block.Digest, TimestampMs: block.TimestampMs}
	if block.Effects != nil {
		status.Status = block.Effects.Status.Status
		status.Error = block.Effects.Status.Error
		status.GasUsed = block.Effects.GasUsed
	}
	return status, nil
}

func (s *Service) buildPlan(req BuildRequest, dir pools.Direction, inCfg, outCfg tokens.Config, amountInRaw, minOutRaw *big.Int) (*Plan, error) {
	baseCfg, err := s.registry.Get(dir.Pool.BaseCoin)
	if err != nil {
		return nil, err
	}
	quoteCfg, err := s.registry.Get(dir.Pool.QuoteCoin)
	if err != nil {
		return nil, err
	}
	deepCfg, err := s.registry.Get("DEEP")
	if err != nil {
		return nil, err
	}

	whitelisted := WhitelistedPool(dir.Pool.PoolName)
	fee := new(big.Int)
	if !whitelisted {
		fee.Set(s.deepFee)
	}

	return &Plan{
		Sender:      req.WalletAddress,
		Pool:        dir.Pool,
		BaseToQuote: dir.BaseToQuote,
		TokenIn:     inCfg,
		TokenOut:    outCfg,
		BaseType:    baseCfg.CoinType,
		QuoteType:   quoteCfg.CoinType,
		DeepType:    deepCfg.CoinType,
		AmountInRaw: amountInRaw,
		MinOutRaw:   minOutRaw,
		Whitelisted: whitelisted,
		DeepFeeRaw:  fee,
	}, nil
}

func (s *Service) zeroMinOutAllowed(ctx context.Context) bool {
	if s.AllowZeroMinOut {
		return true
	}
	if s.flags == nil {
		return false
	}
	return s.flags.Enabled(ctx, flags.AllowZeroMinOut, false)
}

func (s *Service) pickBuilder(ctx context.Context) (Builder, string) {
	if s.sdk != nil && s.flags != nil && s.flags.Enabled(ctx, flags.UseSDKBuilder, false) {
		return s.sdk, "sdk"
	}
	return s.manual, "manual"
}

// recordBuild writes the audit trail and recent-builds feed. Best effort:
// failures are logged, never surfaced to the caller.
func (s *Service) recordBuild(req BuildRequest, q *quote.Quote, builderName string) {
	if s.cache == nil && s.store == nil {
		return
	}
	ev := &models.BuildEvent{
		Timestamp:     time.Now().UTC(),
		WalletAddress: req.WalletAddress,
		Pair:          req.TokenIn + "_" + req.TokenOut,
		PoolID:        q.PoolID,
		TokenIn:       req.TokenIn,
		TokenOut:      req.TokenOut,
		AmountIn:      req.AmountIn,
		MinAmountOut:  req.MinAmountOut,
		EstimatedOut:  q.EstimatedAmountOut,
		PriceImpact:   q.PriceImpact,
		Builder:       builderName,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if s.cache != nil {
		if err := s.cache.AddRecentBuild(ctx, ev); err != nil {
			s.logger.WithError(err).Warn("failed to cache build event")
		}
		if err := s.cache.PublishBuild(ctx, ev); err != nil {
			s.logger.WithError(err).Warn("failed to publish build event")
		}
	}
	if s.store != nil {
		if err := s.store.InsertBuild(ctx, ev); err != nil {
			s.logger.WithError(err).Warn("failed to persist build event")
		}
	}
}
