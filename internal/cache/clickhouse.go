package cache

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/suitent/sui-deepbook-swap/internal/models"
)

// ClickHouseStore persists build events for offline analysis.
type ClickHouseStore struct {
	conn driver.Conn
}

// ClickHouseConfig holds connection settings for the audit store.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

// NewClickHouseStore connects and verifies the connection.
func NewClickHouseStore(cfg ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseStore{conn: conn}, nil
}

// InsertBuild writes one build event to the swap_builds table.
func (c *ClickHouseStore) InsertBuild(ctx context.Context, ev *models.BuildEvent) error {
	query := `
		INSERT INTO swap_builds (
			timestamp, wallet_address, pair, pool_id, token_in, token_out,
			amount_in, min_amount_out, estimated_out, price_impact, builder
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		ev.Timestamp,
		ev.WalletAddress,
		ev.Pair,
		ev.PoolID,
		ev.TokenIn,
		ev.TokenOut,
		ev.AmountIn,
		ev.MinAmountOut,
		ev.EstimatedOut,
		ev.PriceImpact,
		ev.Builder,
	)
	if err != nil {
		return fmt.Errorf("failed to insert build event: %w", err)
	}
	return nil
}

// Ping checks the ClickHouse connection.
func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the ClickHouse connection.
func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
