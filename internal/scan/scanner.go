package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"idx-swing-scanner/internal/interfaces"
	"idx-swing-scanner/internal/logger"
	"idx-swing-scanner/internal/scanlog"
	"idx-swing-scanner/internal/strategy"
	"idx-swing-scanner/internal/types"
)

// historyCandles is how many daily bars each evaluation requests: a year
// of sessions comfortably covers the 50-bar warm-up.
const historyCandles = 250

// Scanner evaluates the whole universe once per invocation. Symbols are
// independent, so they run on a bounded worker pool; one symbol's failure
// never touches the others. The per-day alerted set suppresses duplicate
// notifications across polls within one trading day.
type Scanner struct {
	series   interfaces.SeriesSource
	scorer   *strategy.ConfluenceScorer
	notifier interfaces.Notifier
	parallel int

	mu        sync.Mutex
	alerted   map[string]bool
	alertDate string
	onNewDay  func()
}

func NewScanner(series interfaces.SeriesSource, scorer *strategy.ConfluenceScorer, notifier interfaces.Notifier, parallel int) *Scanner {
	if parallel < 1 {
		parallel = 1
	}
	return &Scanner{
		series:   series,
		scorer:   scorer,
		notifier: notifier,
		parallel: parallel,
		alerted:  map[string]bool{},
	}
}

// OnNewDay registers a callback invoked once when the first scan of a new
// calendar day starts, e.g. to drop a previous day's fundamentals cache.
func (s *Scanner) OnNewDay(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onNewDay = fn
}

// Run scans every symbol and returns one result per symbol, in input
// order. live controls alert deduplication: a live loop alerts each
// symbol at most once per calendar day.
func (s *Scanner) Run(ctx context.Context, symbols []string, live bool) []types.ScanResult {
	timer := logger.StartOperation(ctx, "universe-scan", "symbols", len(symbols), "live", live)
	ctx = timer.GetContext()

	s.resetAlertsOnNewDay(ctx)

	results := make([]types.ScanResult, len(symbols))
	sem := make(chan struct{}, s.parallel)
	var wg sync.WaitGroup

	for i, sym := range symbols {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, sym string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.evaluate(ctx, sym, live)
		}(i, sym)
	}
	wg.Wait()

	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}
	timer.End("valid_signals", valid)
	return results
}

// evaluate scores one symbol, converting any failure into that symbol's
// own result so the scan as a whole cannot be torn down.
func (s *Scanner) evaluate(ctx context.Context, symbol string, live bool) (res types.ScanResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "Evaluation panicked", "symbol", symbol, "panic", fmt.Sprint(r))
			res = types.ScanResult{Symbol: symbol, Decision: types.DecisionNoData}
		}
	}()

	candles, err := s.series.RecentCandles(ctx, symbol, historyCandles)
	if err != nil {
		logger.Warn(ctx, "Series fetch failed", "symbol", symbol, "error", err)
		return types.ScanResult{Symbol: symbol, Decision: types.DecisionNoData}
	}

	res = s.scorer.Score(ctx, symbol, candles)
	logger.Scan(ctx, symbol, string(res.Decision), res.Score, res.Reasons)

	if err := scanlog.Append(res); err != nil {
		logger.Warn(ctx, "Scan log append failed", "symbol", symbol, "error", err)
	}

	if res.Valid && s.shouldAlert(symbol, live) {
		if err := s.notifier.Notify(ctx, res); err != nil {
			logger.ErrorWithErr(ctx, "Alert delivery failed", err, "symbol", symbol)
			s.unmarkAlerted(symbol)
		}
	}
	return res
}

// shouldAlert claims the (symbol, day) alert slot. Claiming before the
// send keeps concurrent completions from double-delivering; a failed
// send releases the claim.
func (s *Scanner) shouldAlert(symbol string, live bool) bool {
	if !live {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.alertKey(symbol)
	if s.alerted[key] {
		return false
	}
	s.alerted[key] = true
	return true
}

func (s *Scanner) unmarkAlerted(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alerted, s.alertKey(symbol))
}

func (s *Scanner) alertKey(symbol string) string {
	return symbol + "_" + time.Now().Format("2006-01-02")
}

// resetAlertsOnNewDay clears the dedupe set at the first scan of a day.
func (s *Scanner) resetAlertsOnNewDay(ctx context.Context) {
	today := time.Now().Format("2006-01-02")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alertDate != today {
		if s.alertDate != "" {
			logger.Info(ctx, "New day detected, resetting alert cache", "date", today)
		}
		s.alerted = map[string]bool{}
		s.alertDate = today
		if s.onNewDay != nil {
			s.onNewDay()
		}
	}
}
