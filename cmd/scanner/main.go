package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idx-swing-scanner/internal/delivery/telegram"
	"idx-swing-scanner/internal/logger"
	"idx-swing-scanner/internal/report"
	"idx-swing-scanner/internal/scan"
	"idx-swing-scanner/internal/store"
	"idx-swing-scanner/internal/types"
	"idx-swing-scanner/internal/universe"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	runNow := flag.Bool("run-now", false, "scan the universe once and exit")
	live := flag.Bool("live", false, "poll during market hours and send alerts")
	duration := flag.Int("duration", 0, "stop live mode after N minutes (0 = run until signalled)")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize system: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = logger.Shutdown(shutdownCtx)
	}()

	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		os.Exit(1)
	}

	if *runNow {
		cfg.Mode = "RUN_NOW"
	}
	if *live {
		cfg.Mode = "LIVE"
	}

	compressOldLogs(ctx)

	notifier := telegram.NewNotifier()
	if !notifier.Enabled() {
		logger.Warn(ctx, "Telegram credentials missing - alerts will be logged only")
	}

	scanner := initializeScanner(ctx, cfg, notifier)
	provider := universe.NewProvider(cfg)
	reporter := report.NewWriter(cfg.Report.Dir)

	calendar, err := scan.NewCalendar(cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Invalid market calendar config", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info(ctx, "Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info(ctx, "IDX swing scanner starting",
		"mode", cfg.Mode,
		"timeframe", cfg.Timeframe,
		"parallel", cfg.Universe.MaxParallel)

	switch cfg.Mode {
	case "LIVE":
		runLive(ctx, cfg, scanner, provider, calendar, *duration)
	default:
		symbols := provider.Symbols(ctx)
		results := scanner.Run(ctx, symbols, false)
		logSummary(ctx, results)
	}

	if path, err := reporter.WriteDaily(calendar.Now()); err != nil {
		logger.Warn(ctx, "Failed to write daily report", "error", err)
	} else if path != "" {
		logger.Info(ctx, "Daily report written", "path", path)
	}

	logger.Info(ctx, "Scanner stopped")
}

// runLive polls the universe during market hours until the context is
// cancelled or the optional duration elapses.
func runLive(ctx context.Context, cfg *store.Config, scanner *scan.Scanner, provider *universe.Provider, calendar *scan.Calendar, durationMin int) {
	var deadline time.Time
	if durationMin > 0 {
		deadline = time.Now().Add(time.Duration(durationMin) * time.Minute)
		logger.Info(ctx, "Live mode with deadline", "minutes", durationMin)
	}

	ticker := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer ticker.Stop()

	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			logger.Info(ctx, "Duration elapsed - stopping live mode")
			return
		}

		now := calendar.Now()
		if open, status := calendar.IsOpen(now); !open {
			logger.Info(ctx, "Market closed", "status", status, "wib", now.Format("15:04"))
		} else {
			symbols := provider.Symbols(ctx)
			results := scanner.Run(ctx, symbols, true)
			logSummary(ctx, results)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func logSummary(ctx context.Context, results []types.ScanResult) {
	var actionable, noData int
	for _, r := range results {
		if r.Decision == types.DecisionNoData {
			noData++
		}
		if r.Decision.Actionable() {
			actionable++
		}
	}
	logger.Info(ctx, "Scan pass complete",
		"scanned", len(results),
		"actionable", actionable,
		"no_data", noData)
}
