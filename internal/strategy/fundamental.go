package strategy

import (
	"context"
	"sync"

	"idx-swing-scanner/internal/interfaces"
	"idx-swing-scanner/internal/logger"
)

// FundamentalScreener maps a symbol to a coarse quality score from market
// cap, ROE and valuation tiers. Results are memoized per symbol for the
// lifetime of the screener (one scan session); the cache is safe for
// concurrent use across scan workers.
type FundamentalScreener struct {
	source interfaces.FundamentalsSource

	mu    sync.RWMutex
	cache map[string]fundamentalResult
}

type fundamentalResult struct {
	score   int
	reasons []string
}

func NewFundamentalScreener(source interfaces.FundamentalsSource) *FundamentalScreener {
	return &FundamentalScreener{
		source: source,
		cache:  map[string]fundamentalResult{},
	}
}

// Analyze returns the fundamental score and qualitative tags for a symbol.
// A failing fundamentals source yields the neutral (0, ["N/A"]) result:
// missing fundamentals must never abort scoring.
func (s *FundamentalScreener) Analyze(ctx context.Context, symbol string) (int, []string) {
	s.mu.RLock()
	if r, ok := s.cache[symbol]; ok {
		s.mu.RUnlock()
		return r.score, r.reasons
	}
	s.mu.RUnlock()

	fund, err := s.source.Fundamentals(ctx, symbol)
	if err != nil {
		logger.Warn(ctx, "Fundamental check failed, using neutral score", "symbol", symbol, "error", err)
		return 0, []string{"N/A"}
	}

	score := 0
	var reasons []string

	// Market cap tier, IDR. First matching band wins.
	switch {
	case fund.MarketCap > 10_000_000_000_000:
		score += 7
		reasons = append(reasons, "Blue Chip")
	case fund.MarketCap > 1_000_000_000_000:
		score += 4
		reasons = append(reasons, "Mid Cap")
	default:
		reasons = append(reasons, "Micro Cap (High Risk)")
	}

	// Profitability.
	switch {
	case fund.ROE > 0.15:
		score += 4
		reasons = append(reasons, "High ROE")
	case fund.ROE > 0.05:
		score += 2
		reasons = append(reasons, "Profitable")
	}

	// Valuation. An extreme multiple is the one band that subtracts.
	switch {
	case fund.TrailingPE > 0 && fund.TrailingPE < 15:
		score += 4
		reasons = append(reasons, "Undervalued (PE<15)")
	case fund.TrailingPE > 0 && fund.TrailingPE < 30:
		score += 2
		reasons = append(reasons, "Fair Value")
	case fund.TrailingPE > 50:
		score -= 5
		reasons = append(reasons, "Overvalued")
	}

	s.mu.Lock()
	s.cache[symbol] = fundamentalResult{score: score, reasons: reasons}
	s.mu.Unlock()

	return score, reasons
}

// Reset clears the session cache, e.g. at the start of a new trading day.
func (s *FundamentalScreener) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = map[string]fundamentalResult{}
}
