package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Sui network settings
	SuiRPCURL          string
	DeepBookIndexerURL string

	// HTTP server settings
	HTTPAddr string
	APIKey   string
	DevMode  bool

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// Swap settings
	GasBudget    uint64
	DeepFeeRaw   uint64 // DEEP fee on non-whitelisted pools, raw units
	PoolCacheTTL time.Duration

	// Quote stream settings
	QuotePushInterval time.Duration

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

func Load() *Config {
	return &Config{
		// Sui
		SuiRPCURL:          getEnv("SUI_RPC_URL", "https://fullnode.mainnet.sui.io:443"),
		DeepBookIndexerURL: getEnv("DEEPBOOK_INDEXER_URL", "https://deepbook-indexer.mainnet.mystenlabs.com"),

		// HTTP server
		HTTPAddr: getEnv("HTTP_ADDR", ":8090"),
		APIKey:   getEnv("API_KEY", ""),
		DevMode:  getBoolEnv("DEV_MODE", false),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "deepbook"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// Swap
		GasBudget:    getUint64Env("GAS_BUDGET", 5_000_000),
		DeepFeeRaw:   getUint64Env("DEEP_FEE_RAW", 1_000_000),
		PoolCacheTTL: getDurationEnv("POOL_CACHE_TTL", 5*time.Minute),

		// Quote stream
		QuotePushInterval: getDurationEnv("QUOTE_PUSH_INTERVAL", 2*time.Second),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 5),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),
	}
}

// Validate rejects configurations the services cannot start with.
func (c *Config) Validate() error {
	if c.SuiRPCURL == "" {
		return errors.New("SUI_RPC_URL is required")
	}
	if c.DeepBookIndexerURL == "" {
		return errors.New("DEEPBOOK_INDEXER_URL is required")
	}
	if c.GasBudget == 0 {
		return errors.New("GAS_BUDGET must be greater than zero")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getUint64Env(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
