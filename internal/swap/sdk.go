package swap

import (
	"context"
	"fmt"
	"strconv"

	"github.com/block-vision/sui-go-sdk/models"
	bvsui "github.com/block-vision/sui-go-sdk/sui"
	"github.com/sirupsen/logrus"
)

// SDKBuilder executes the same swap plan as the manual builder but resolves
// inputs through the sui-go-sdk client and estimates gas with a dry run.
// The input coin is still split explicitly by the shared assembler; the
// SDK's amount-based coin auto-selection is never used because it can pick
// a zero-value coin.
type SDKBuilder struct {
	api       bvsui.ISuiAPI
	ledger    Ledger
	gasBudget uint64
	logger    *logrus.Logger
}

// NewSDKBuilder creates the SDK-mediated builder against the given fullnode.
func NewSDKBuilder(rpcURL string, gasBudget uint64, logger *logrus.Logger) *SDKBuilder {
	if gasBudget == 0 {
		gasBudget = DefaultGasBudget
	}
	if logger == nil {
		logger = logrus.New()
	}
	api := bvsui.NewSuiClient(rpcURL)
	return &SDKBuilder{
		api:       api,
		ledger:    &sdkLedger{api: api},
		gasBudget: gasBudget,
		logger:    logger,
	}
}

// Build resolves the plan through the SDK, assembles the transaction, and
// replaces the static gas estimate with dry-run effects when available.
func (s *SDKBuilder) Build(ctx context.Context, plan *Plan) (*BuiltTransaction, error) {
	in, err := resolveInputs(ctx, s.ledger, plan)
	if err != nil {
		return nil, err
	}

	txBytes, err := assemble(plan, in, s.gasBudget)
	if err != nil {
		return nil, err
	}

	estimated := strconv.FormatUint(s.gasBudget, 10)
	if gas, err := s.dryRunGas(ctx, txBytes); err != nil {
		s.logger.WithError(err).Warn("dry run failed, using static gas estimate")
	} else if gas != "" {
		estimated = gas
	}

	s.logger.WithFields(logrus.Fields{
		"pool":      plan.Pool.PoolName,
		"token_in":  plan.TokenIn.Symbol,
		"token_out": plan.TokenOut.Symbol,
		"sender":    plan.Sender,
	}).Info("swap transaction built via sdk")

	return &BuiltTransaction{TxBytes: txBytes, EstimatedGas: estimated}, nil
}

func (s *SDKBuilder) dryRunGas(ctx context.Context, txBytesBase64 string) (string, error) {
	resp, err := s.api.SuiDryRunTransactionBlock(ctx, models.SuiDryRunTransactionBlockRequest{
		TxBytes: txBytesBase64,
	})
	if err != nil {
		return "", err
	}
	gas := resp.Effects.GasUsed
	total, err := sumGas(gas.ComputationCost, gas.StorageCost)
	if err != nil {
		return "", err
	}
	return total, nil
}

func sumGas(parts ...string) (string, error) {
	var total uint64
	for _, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return "", fmt.Errorf("bad gas cost %q: %w", p, err)
		}
		total += v
	}
	if total == 0 {
		return "", nil
	}
	return strconv.FormatUint(total, 10), nil
}

// sdkLedger adapts the sui-go-sdk client to the Ledger capability.
type sdkLedger struct {
	api bvsui.ISuiAPI
}

func (l *sdkLedger) Coins(ctx context.Context, owner, coinType string) ([]CoinRef, error) {
	resp, err := l.api.SuiXGetCoins(ctx, models.SuiXGetCoinsRequest{
		Owner:    owner,
		CoinType: coinType,
		Limit:    100,
	})
	if err != nil {
		return nil, err
	}
	out := make([]CoinRef, 0, len(resp.Data))
	for _, c := range resp.Data {
		ref, err := toCoinRef(c.CoinObjectId, c.Version, c.Digest, c.Balance)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

func (l *sdkLedger) SharedObjectVersion(ctx context.Context, objectID string) (uint64, error) {
	resp, err := l.api.SuiGetObject(ctx, models.SuiGetObjectRequest{
		ObjectId: objectID,
		Options:  models.SuiObjectDataOptions{ShowOwner: true},
	})
	if err != nil {
		return 0, err
	}
	owner, ok := resp.Data.Owner.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("object %s has no owner data", objectID)
	}
	shared, ok := owner["Shared"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("object %s is not shared", objectID)
	}
	switch v := shared["initial_shared_version"].(type) {
	case float64:
		return uint64(v), nil
	case string:
		return strconv.ParseUint(v, 10, 64)
	default:
		return 0, fmt.Errorf("object %s has no initial shared version", objectID)
	}
}

func (l *sdkLedger) GasPrice(ctx context.Context) (uint64, error) {
	return l.api.SuiXGetReferenceGasPrice(ctx)
}
