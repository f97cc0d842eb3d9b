package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/suitent/sui-deepbook-swap/internal/cache"
	"github.com/suitent/sui-deepbook-swap/internal/config"
	"github.com/suitent/sui-deepbook-swap/internal/deepbook"
	"github.com/suitent/sui-deepbook-swap/internal/flags"
	"github.com/suitent/sui-deepbook-swap/internal/pools"
	"github.com/suitent/sui-deepbook-swap/internal/quote"
	"github.com/suitent/sui-deepbook-swap/internal/server"
	"github.com/suitent/sui-deepbook-swap/internal/storage"
	"github.com/suitent/sui-deepbook-swap/internal/stream"
	"github.com/suitent/sui-deepbook-swap/internal/sui"
	"github.com/suitent/sui-deepbook-swap/internal/swap"
	"github.com/suitent/sui-deepbook-swap/internal/tokens"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main initializes all dependencies and starts the HTTP server with graceful
// shutdown
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Redis backs the recent-builds feed and feature flags. Both are
	// best-effort; the swap path works without them.
	var buildCache storage.BuildCache
	var flagStore *flags.Store
	rclient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0,
	})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, recent builds and flags disabled")
	} else {
		buildCache = cache.NewRedisCacheFromClient(rclient)
		fs, err := flags.NewStore(rclient)
		if err != nil {
			logger.WithError(err).Fatal("failed to create flags store")
		}
		flagStore = fs
	}

	// ClickHouse audit store is optional.
	var buildStore storage.BuildStore
	if cfg.ClickHouseAddr != "" {
		st, err := cache.NewClickHouseStore(cache.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		})
		if err != nil {
			logger.WithError(err).Warn("clickhouse unavailable, build audit disabled")
		} else {
			buildStore = st
			defer st.Close()
		}
	}

	registry := tokens.Default()

	indexer := deepbook.NewClient(deepbook.ClientConfig{
		BaseURL:      cfg.DeepBookIndexerURL,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	directory := pools.NewDirectory(pools.DirectoryConfig{
		Venue:  indexer,
		TTL:    cfg.PoolCacheTTL,
		Logger: logger,
	})
	engine := quote.NewEngine(quote.EngineConfig{
		Registry: registry,
		Pairs:    directory,
		Books:    indexer,
		Logger:   logger,
	})

	node := sui.NewClient(sui.ClientConfig{
		BaseURL:      cfg.SuiRPCURL,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	ledger := swap.NewRPCLedger(node)

	manual := swap.NewManualBuilder(ledger, cfg.GasBudget, logger)
	sdk := swap.NewSDKBuilder(cfg.SuiRPCURL, cfg.GasBudget, logger)

	svc := swap.NewService(swap.ServiceConfig{
		Registry:  registry,
		Directory: directory,
		Quotes:    engine,
		Manual:    manual,
		SDK:       sdk,
		Flags:     flagStore,
		Node:      node,
		Cache:     buildCache,
		Store:     buildStore,
		DeepFee:   new(big.Int).SetUint64(cfg.DeepFeeRaw),
		Logger:    logger,
	})

	quoteStream := stream.NewQuoteStream(stream.QuoteStreamConfig{
		Quotes:   engine,
		Interval: cfg.QuotePushInterval,
		Logger:   logger,
	})

	h := &server.Handlers{
		Swaps:     svc,
		Quotes:    engine,
		Directory: directory,
		Flags:     flagStore,
		Cache:     buildCache,
		Stream:    quoteStream,
		DevMode:   cfg.DevMode,
		Logger:    logger,
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.HTTPAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithField("addr", cfg.HTTPAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
