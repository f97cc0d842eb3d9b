package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/suitent/sui-deepbook-swap/internal/cache"
	"github.com/suitent/sui-deepbook-swap/internal/config"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

// Tails the swap-build feed published by the API server. Useful for watching
// live traffic during manual testing.
func main() {
	loadEnv()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	c := cache.NewRedisCache(cfg.RedisAddr)
	defer c.Close()

	events, err := c.SubscribeBuilds(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to subscribe to build feed")
	}

	logger.Info("subscribed to build feed")
	for ev := range events {
		logger.WithFields(logrus.Fields{
			"pair":          ev.Pair,
			"wallet":        ev.WalletAddress,
			"amount_in":     ev.AmountIn,
			"estimated_out": ev.EstimatedOut,
			"impact":        ev.PriceImpact,
			"builder":       ev.Builder,
		}).Info("swap build")
	}
	logger.Info("build feed closed")
}
