package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"idx-swing-scanner/internal/interfaces"
	"idx-swing-scanner/internal/logger"
	"idx-swing-scanner/internal/marketdata"
	"idx-swing-scanner/internal/news"
	"idx-swing-scanner/internal/scan"
	"idx-swing-scanner/internal/scanlog"
	"idx-swing-scanner/internal/sentiment"
	"idx-swing-scanner/internal/sentiment/oracleobs"
	"idx-swing-scanner/internal/store"
	"idx-swing-scanner/internal/strategy"
	"idx-swing-scanner/internal/ta"
	"idx-swing-scanner/internal/trace"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// compressOldLogs compresses old scan log files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("SCANNER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := scanlog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeMarketData builds the candle and fundamentals client
func initializeMarketData(cfg *store.Config) *marketdata.YahooClient {
	windows := ta.Windows{
		MAFast:      cfg.Indicators.MAFast,
		MASlow:      cfg.Indicators.MASlow,
		RSIPeriod:   cfg.Indicators.RSIPeriod,
		VolMAPeriod: cfg.Indicators.VolMAPeriod,
		ATRPeriod:   cfg.Indicators.ATRPeriod,
		SRLookback:  cfg.Indicators.SRLookback,
	}
	// Yahoo's chart range is a fixed enum; pick the smallest that covers
	// the configured history.
	rng := "1mo"
	switch {
	case cfg.HistoryDays > 365:
		rng = "2y"
	case cfg.HistoryDays > 180:
		rng = "1y"
	case cfg.HistoryDays > 90:
		rng = "6mo"
	case cfg.HistoryDays > 30:
		rng = "3mo"
	}
	return marketdata.NewYahooClient(rng, cfg.Timeframe, windows)
}

// initializeOracle wires the sentiment oracle with observability. Without
// a Gemini key the scanner degrades to the neutral noop oracle.
func initializeOracle(ctx context.Context, cfg *store.Config) interfaces.SentimentOracle {
	var oracle interfaces.SentimentOracle

	headlines := news.NewFetcher(time.Duration(cfg.News.ScraperTimeout) * time.Second)

	switch cfg.LLM.Provider {
	case "GEMINI":
		gem, err := sentiment.NewGeminiOracle(cfg, headlines)
		if err != nil {
			logger.Warn(ctx, "Gemini oracle unavailable - using noop oracle", "error", err)
			oracle = sentiment.NewNoopOracle()
		} else {
			oracle = gem
		}
	default:
		oracle = sentiment.NewNoopOracle()
		logger.Warn(ctx, "No LLM provider configured - using noop oracle (always neutral)")
	}

	return oracleobs.Wrap(oracle)
}

// initializeScanner assembles the scoring engine and universe scanner
func initializeScanner(ctx context.Context, cfg *store.Config, notifier interfaces.Notifier) *scan.Scanner {
	md := initializeMarketData(cfg)
	oracle := initializeOracle(ctx, cfg)

	screener := strategy.NewFundamentalScreener(md)
	scorer := strategy.NewConfluenceScorer(strategy.ScorerConfigFrom(cfg), screener, oracle)

	scanner := scan.NewScanner(md, scorer, notifier, cfg.Universe.MaxParallel)
	scanner.OnNewDay(screener.Reset)
	return scanner
}
