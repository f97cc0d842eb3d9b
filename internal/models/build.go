package models

import "time"

// BuildEvent records one swap-build request for the audit trail and the
// recent-activity feed. It never contains transaction bytes.
type BuildEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	WalletAddress string    `json:"wallet_address"`
	Pair          string    `json:"pair"`
	PoolID        string    `json:"pool_id"`
	TokenIn       string    `json:"token_in"`
	TokenOut      string    `json:"token_out"`
	AmountIn      string    `json:"amount_in"`
	MinAmountOut  string    `json:"min_amount_out"`
	EstimatedOut  string    `json:"estimated_out"`
	PriceImpact   string    `json:"price_impact"`
	Builder       string    `json:"builder"` // "manual" or "sdk"
}
