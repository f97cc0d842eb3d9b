package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/suitent/sui-deepbook-swap/internal/config"
	"github.com/suitent/sui-deepbook-swap/internal/deepbook"
	"github.com/suitent/sui-deepbook-swap/internal/pools"
	"github.com/suitent/sui-deepbook-swap/internal/quote"
	"github.com/suitent/sui-deepbook-swap/internal/sui"
	"github.com/suitent/sui-deepbook-swap/internal/swap"
	"github.com/suitent/sui-deepbook-swap/internal/tokens"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

func main() {
	loadEnv()

	mode := flag.String("mode", "quote", "quote | build")
	inTok := flag.String("in", "SUI", "input token symbol (e.g. SUI)")
	outTok := flag.String("out", "DEEP", "output token symbol (e.g. DEEP)")
	amt := flag.String("amt", "", "amount in human units (e.g. 0.2)")
	minOut := flag.String("min-out", "", "minimum output in human units")
	wallet := flag.String("wallet", "", "sender wallet address (0x..., 66 chars)")
	useSDK := flag.Bool("sdk", false, "build through the SDK-mediated builder")
	unsafeZeroMinOut := flag.Bool("unsafe-zero-min-out", false,
		"allow min-out of 0 (no slippage protection, testing only)")
	flag.Parse()

	if *amt == "" {
		fmt.Println("missing -amt")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg := config.Load()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	registry := tokens.Default()
	indexer := deepbook.NewClient(deepbook.ClientConfig{
		BaseURL:      cfg.DeepBookIndexerURL,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	directory := pools.NewDirectory(pools.DirectoryConfig{Venue: indexer, TTL: cfg.PoolCacheTTL, Logger: logger})
	engine := quote.NewEngine(quote.EngineConfig{Registry: registry, Pairs: directory, Books: indexer, Logger: logger})

	switch *mode {
	case "quote":
		q, err := engine.GetQuote(ctx, *inTok, *outTok, *amt)
		if err != nil {
			fmt.Println("quote failed:", err)
			os.Exit(1)
		}
		fmt.Printf("pool=%s in=%s %s out=%s %s min_out=%s price=%s impact=%s\n",
			q.PoolID, q.AmountIn, q.TokenIn, q.EstimatedAmountOut, q.TokenOut,
			q.MinAmountOut, q.PricePerToken, q.PriceImpact)

	case "build":
		if *wallet == "" {
			fmt.Println("missing -wallet")
			os.Exit(2)
		}
		if *minOut == "" && !*unsafeZeroMinOut {
			fmt.Println("missing -min-out (or pass -unsafe-zero-min-out)")
			os.Exit(2)
		}
		if *minOut == "" {
			*minOut = "0"
		}

		node := sui.NewClient(sui.ClientConfig{
			BaseURL:      cfg.SuiRPCURL,
			Timeout:      cfg.HTTPTimeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
			Logger:       logger,
		})

		var builder swap.Builder = swap.NewManualBuilder(swap.NewRPCLedger(node), cfg.GasBudget, logger)
		if *useSDK {
			builder = swap.NewSDKBuilder(cfg.SuiRPCURL, cfg.GasBudget, logger)
		}

		svc := swap.NewService(swap.ServiceConfig{
			Registry:  registry,
			Directory: directory,
			Quotes:    engine,
			Manual:    builder,
			Node:      node,
			DeepFee:   new(big.Int).SetUint64(cfg.DeepFeeRaw),
			Logger:    logger,
		})
		svc.AllowZeroMinOut = *unsafeZeroMinOut

		resp, err := svc.BuildSwapTransaction(ctx, swap.BuildRequest{
			WalletAddress: *wallet,
			TokenIn:       *inTok,
			TokenOut:      *outTok,
			AmountIn:      *amt,
			MinAmountOut:  *minOut,
		})
		if err != nil {
			fmt.Println("build failed:", err)
			os.Exit(1)
		}
		fmt.Printf("pool=%s estimated_out=%s impact=%s gas=%s\n",
			resp.PoolID, resp.Quote.EstimatedAmountOut, resp.Quote.PriceImpact,
			resp.Transaction.EstimatedGas)
		fmt.Println(resp.Transaction.TxBytes)

	default:
		fmt.Println("invalid -mode (use quote|build)")
		os.Exit(2)
	}
}
