package swap

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"
)

// BuiltTransaction is the submittable payload handed back for signing.
type BuiltTransaction struct {
	TxBytes      string `json:"txBytes"`
	EstimatedGas string `json:"estimatedGas"`
}

// Builder turns a Plan into serialized transaction bytes. The two
// implementations must be behaviorally equivalent; they differ only in how
// inputs are resolved and gas is estimated.
type Builder interface {
	Build(ctx context.Context, plan *Plan) (*BuiltTransaction, error)
}

// ManualBuilder resolves inputs over raw JSON-RPC and assembles the
// contract call directly.
type ManualBuilder struct {
	ledger    Ledger
	gasBudget uint64
	logger    *logrus.Logger
}

// NewManualBuilder creates the low-level builder.
func NewManualBuilder(ledger Ledger, gasBudget uint64, logger *logrus.Logger) *ManualBuilder {
	if gasBudget == 0 {
		gasBudget = DefaultGasBudget
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &ManualBuilder{ledger: ledger, gasBudget: gasBudget, logger: logger}
}

// Build executes the plan: balance gates, coin splits, the swap entry point,
// and output redistribution, serialized to base64 transaction bytes.
func (m *ManualBuilder) Build(ctx context.Context, plan *Plan) (*BuiltTransaction, error) {
	in, err := resolveInputs(ctx, m.ledger, plan)
	if err != nil {
		return nil, err
	}

	txBytes, err := assemble(plan, in, m.gasBudget)
	if err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"pool":      plan.Pool.PoolName,
		"token_in":  plan.TokenIn.Symbol,
		"token_out": plan.TokenOut.Symbol,
		"sender":    plan.Sender,
	}).Info("swap transaction built")

	return &BuiltTransaction{
		TxBytes:      txBytes,
		EstimatedGas: strconv.FormatUint(m.gasBudget, 10),
	}, nil
}
