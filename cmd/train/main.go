package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"CoinPulse/internal/artifacts"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/binance"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/training"
	"CoinPulse/pkg/cache"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "path to configuration file")
		coinsFlag  = flag.String("coins", "", "comma-separated coins to train (default: all configured)")
		days       = flag.Int("days", 1000, "days of daily history to fetch")
		epochs     = flag.Int("epochs", 0, "training epochs (0 = default)")
		batch      = flag.Int("batch", 0, "batch size (0 = default)")
		hidden     = flag.Int("hidden", 0, "hidden units (0 = default)")
	)
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(&logger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	mem := cache.NewMemoryCache()
	defer mem.Close()
	client := binance.New(cfg,
		xhttp.NewClient(xhttp.WithTimeout(cfg.Binance.RequestTimeout)),
		mem, ratelimit.New(), metrics.New(), lg)

	coins := client.Coins()
	if *coinsFlag != "" {
		coins = strings.Split(*coinsFlag, ",")
	}

	trainCfg := training.DefaultConfig()
	if *epochs > 0 {
		trainCfg.Epochs = *epochs
	}
	if *batch > 0 {
		trainCfg.BatchSize = *batch
	}
	if *hidden > 0 {
		trainCfg.Hidden = *hidden
	}

	trainer := training.New(trainCfg, lg)
	store := artifacts.NewFSStore(cfg.Artifacts.Dir)

	for _, coin := range coins {
		coin = strings.ToLower(strings.TrimSpace(coin))
		if coin == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		candles, err := client.History(ctx, coin, *days, repository.Interval1d)
		cancel()
		if err != nil {
			lg.Error("fetch history failed", logger.String("coin", coin), logger.Error(err))
			continue
		}

		res, err := trainer.Train(coin, candles)
		if err != nil {
			lg.Error("training failed", logger.String("coin", coin), logger.Error(err))
			continue
		}

		if err := store.Save(coin, res.Model, res.Scaler); err != nil {
			lg.Error("save artifacts failed", logger.String("coin", coin), logger.Error(err))
			continue
		}
		lg.Info("artifacts saved",
			logger.String("coin", coin),
			logger.Int("samples", res.Samples),
			logger.Float64("val_loss", res.ValLoss),
		)
	}
}
