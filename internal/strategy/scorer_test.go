package strategy

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"idx-swing-scanner/internal/types"
)

// countingOracle returns a fixed sentiment and counts invocations.
type countingOracle struct {
	mu    sync.Mutex
	calls int
	score int
	err   error
}

func (o *countingOracle) Sentiment(ctx context.Context, symbol string) (types.SentimentAssessment, error) {
	o.mu.Lock()
	o.calls++
	o.mu.Unlock()
	if o.err != nil {
		return types.SentimentAssessment{}, o.err
	}
	return types.SentimentAssessment{Score: o.score, Explanation: "test headlines"}, nil
}

func (o *countingOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

func testScorerConfig() ScorerConfig {
	return ScorerConfig{
		Flow:               FlowThresholds{Accum: 500_000_000, Circulation: 100_000_000},
		WhaleAccum:         50_000_000_000,
		MajorBuyAccum:      5_000_000_000,
		SmartMoneyVolRatio: 1.5,
		WeakTechCutoff:     15,
		SentimentGate:      45,
		SentimentBonus:     20,
		SentimentTrigger:   20,
		WatchlistScore:     65,
		StrongBuyScore:     85,
		BigAccumFlowScore:  30,
		StopMode:           "ATR",
		StopPct:            5,
		StopATRMult:        2,
		TargetPct:          5,
		TargetATRMult:      3,
	}
}

// flatSeries builds n identical enriched candles; tests then overwrite the
// final two to shape the scenario.
func flatSeries(n int) []types.Candle {
	candles := make([]types.Candle, n)
	for i := range candles {
		candles[i] = types.Candle{
			Open: 100, High: 100, Low: 100, Close: 100, Vol: 1000,
			MA20: 100, MA50: 100, RSI: 50, VolMA20: 1000, ATR: 2,
			HasIndicators: true,
		}
	}
	return candles
}

func newTestScorer(cfg ScorerConfig, fund *countingFundamentals, oracle *countingOracle) *ConfluenceScorer {
	return NewConfluenceScorer(cfg, NewFundamentalScreener(fund), oracle)
}

func TestScoreShortSeriesIsNoData(t *testing.T) {
	scorer := newTestScorer(testScorerConfig(), &countingFundamentals{}, &countingOracle{})

	res := scorer.Score(context.Background(), "BBCA.JK", flatSeries(10))
	if res.Decision != types.DecisionNoData {
		t.Errorf("Expected NO DATA for 10 candles, got %s", res.Decision)
	}
	if res.Valid {
		t.Error("Expected NO DATA result to be invalid")
	}
}

func TestScoreUnenrichedSeriesIsNoData(t *testing.T) {
	scorer := newTestScorer(testScorerConfig(), &countingFundamentals{}, &countingOracle{})

	candles := flatSeries(60)
	candles[len(candles)-1].HasIndicators = false

	res := scorer.Score(context.Background(), "BBCA.JK", candles)
	if res.Decision != types.DecisionNoData {
		t.Errorf("Expected NO DATA without indicators, got %s", res.Decision)
	}
}

func TestScoreBearishSkip(t *testing.T) {
	fund := &countingFundamentals{}
	oracle := &countingOracle{}
	scorer := newTestScorer(testScorerConfig(), fund, oracle)

	candles := flatSeries(60)
	curr := &candles[len(candles)-1]
	curr.MA20 = 90
	curr.MA50 = 110
	curr.Close = 100
	curr.RSI = 50

	res := scorer.Score(context.Background(), "BBRI.JK", candles)
	if res.Decision != types.DecisionBearishSkip {
		t.Fatalf("Expected BEARISH_SKIP, got %s", res.Decision)
	}
	if res.Reasons != "Trend Bearish (< MA50)" {
		t.Errorf("Unexpected reasons: %q", res.Reasons)
	}
	if fund.callCount() != 0 {
		t.Error("Expected no fundamental call after bearish skip")
	}
	if oracle.callCount() != 0 {
		t.Error("Expected no sentiment call after bearish skip")
	}
}

func TestScoreOversoldSurvivesBearishTrend(t *testing.T) {
	scorer := newTestScorer(testScorerConfig(), &countingFundamentals{}, &countingOracle{})

	candles := flatSeries(60)
	curr := &candles[len(candles)-1]
	curr.MA20 = 90
	curr.MA50 = 110
	curr.Close = 100
	curr.RSI = 25

	res := scorer.Score(context.Background(), "ANTM.JK", candles)
	if res.Decision == types.DecisionBearishSkip {
		t.Error("Expected deeply oversold chart to survive the bearish skip")
	}
}

func TestScoreWeakTechGate(t *testing.T) {
	fund := &countingFundamentals{}
	oracle := &countingOracle{}
	scorer := newTestScorer(testScorerConfig(), fund, oracle)

	// Price above MA50 (+5) and RSI in the pullback band (+5): tech 10,
	// below the cutoff, and no flow to rescue it.
	candles := flatSeries(60)
	curr := &candles[len(candles)-1]
	curr.MA20 = 95
	curr.MA50 = 98
	curr.Close = 100
	curr.RSI = 45
	curr.Vol = 500
	curr.VolMA20 = 1000

	res := scorer.Score(context.Background(), "UNVR.JK", candles)
	if res.Decision != types.DecisionWeakTech {
		t.Fatalf("Expected WEAK_TECH, got %s (score %d)", res.Decision, res.Score)
	}
	if fund.callCount() != 0 {
		t.Error("Expected fundamental source untouched below the tech gate")
	}
	if oracle.callCount() != 0 {
		t.Error("Expected sentiment oracle untouched below the tech gate")
	}
}

func TestScoreSentimentGateBlocksOracle(t *testing.T) {
	fund := &countingFundamentals{}
	oracle := &countingOracle{score: 80}
	scorer := newTestScorer(testScorerConfig(), fund, oracle)

	// Full technicals (30) but no flow and no fundamentals: 30 < 45.
	candles := flatSeries(60)
	curr := &candles[len(candles)-1]
	curr.MA20 = 105
	curr.MA50 = 100
	curr.Close = 100
	curr.RSI = 55
	curr.Vol = 1100
	curr.VolMA20 = 1000

	res := scorer.Score(context.Background(), "ICBP.JK", candles)
	if oracle.callCount() != 0 {
		t.Errorf("Expected no oracle call below the sentiment gate, got %d", oracle.callCount())
	}
	if res.Score != 30 {
		t.Errorf("Expected score 30, got %d", res.Score)
	}
	if res.Decision != types.DecisionNoTrade {
		t.Errorf("Expected NO TRADE, got %s", res.Decision)
	}
}

// strongCandles is a full-confluence scenario: volume spike on an up day,
// close at the high for a 1B accumulation, bullish trend, strong momentum.
func strongCandles() []types.Candle {
	candles := flatSeries(60)
	prev := &candles[len(candles)-2]
	prev.Close = 1000

	curr := &candles[len(candles)-1]
	curr.High = 1050
	curr.Low = 1000
	curr.Close = 1050
	curr.Vol = 1_000_000
	curr.VolMA20 = 500_000
	curr.MA20 = 1020
	curr.MA50 = 1000
	curr.RSI = 60
	curr.ATR = 20
	return candles
}

func TestScoreStrongBuy(t *testing.T) {
	fund := &countingFundamentals{data: types.Fundamentals{
		MarketCap:  15_000_000_000_000,
		ROE:        0.20,
		TrailingPE: 10,
	}}
	oracle := &countingOracle{score: 50}
	scorer := newTestScorer(testScorerConfig(), fund, oracle)

	res := scorer.Score(context.Background(), "BBCA.JK", strongCandles())

	// Flow 25 (vol spike 10 + filter 15), tech 30, fundamentals 15,
	// sentiment bonus 20.
	if res.Score != 90 {
		t.Errorf("Expected score 90, got %d", res.Score)
	}
	if res.Decision != types.DecisionStrongBuy {
		t.Errorf("Expected STRONG BUY, got %s", res.Decision)
	}
	if !res.Valid {
		t.Error("Expected STRONG BUY to be valid")
	}
	if oracle.callCount() != 1 {
		t.Errorf("Expected exactly one oracle call, got %d", oracle.callCount())
	}
	if res.Trend != "Bullish" {
		t.Errorf("Expected Bullish trend, got %s", res.Trend)
	}
}

func TestScoreStrongBuyRequiresStrongFlow(t *testing.T) {
	// Lower the strong-buy bar so a no-flow chart can cross it on points
	// alone; the flow requirement must still demote it to WATCHLIST.
	cfg := testScorerConfig()
	cfg.StrongBuyScore = 60

	fund := &countingFundamentals{data: types.Fundamentals{
		MarketCap:  15_000_000_000_000,
		ROE:        0.20,
		TrailingPE: 10,
	}}
	oracle := &countingOracle{score: 50}
	scorer := newTestScorer(cfg, fund, oracle)

	// Tech 30 + fundamentals 15 + sentiment 20 = 65, no flow points.
	candles := flatSeries(60)
	curr := &candles[len(candles)-1]
	curr.MA20 = 105
	curr.MA50 = 100
	curr.Close = 100
	curr.RSI = 55
	curr.Vol = 1100
	curr.VolMA20 = 1000

	res := scorer.Score(context.Background(), "TLKM.JK", candles)
	if res.Score != 65 {
		t.Fatalf("Expected score 65, got %d", res.Score)
	}
	if res.Decision != types.DecisionWatchlist {
		t.Errorf("Expected WATCHLIST without strong flow, got %s", res.Decision)
	}
}

func TestScoreBigAccumFocus(t *testing.T) {
	fund := &countingFundamentals{}
	oracle := &countingOracle{}
	scorer := newTestScorer(testScorerConfig(), fund, oracle)

	// Major foreign buy sized accumulation (6B) on a weak chart: flow 35
	// (spike 10 + filter 15 + major 10), tech 15 (price>MA50, vol), total
	// 50 with neutral sentiment. Below watchlist, flow keeps it alive.
	candles := flatSeries(60)
	prev := &candles[len(candles)-2]
	prev.Close = 900

	curr := &candles[len(candles)-1]
	curr.High = 1000
	curr.Low = 900
	curr.Close = 1000
	curr.Vol = 6_000_000
	curr.VolMA20 = 3_000_000
	curr.MA20 = 980
	curr.MA50 = 990
	curr.RSI = 30
	curr.ATR = 15

	res := scorer.Score(context.Background(), "MDKA.JK", candles)
	if res.Decision != types.DecisionBigAccum {
		t.Fatalf("Expected BIG ACCUM FOCUS, got %s (score %d)", res.Decision, res.Score)
	}
	if !res.Valid {
		t.Error("Expected BIG ACCUM FOCUS to be valid")
	}
	if !strings.Contains(res.Reasons, "Major Foreign Buy (>5B)") {
		t.Errorf("Expected major buy tag in %q", res.Reasons)
	}
}

func TestScoreOracleFailureIsNeutral(t *testing.T) {
	fund := &countingFundamentals{data: types.Fundamentals{
		MarketCap:  15_000_000_000_000,
		ROE:        0.20,
		TrailingPE: 10,
	}}
	oracle := &countingOracle{err: errors.New("genai unreachable")}
	scorer := newTestScorer(testScorerConfig(), fund, oracle)

	res := scorer.Score(context.Background(), "BBCA.JK", strongCandles())

	// 25 + 30 + 15 with no sentiment adjustment.
	if res.Score != 70 {
		t.Errorf("Expected unchanged score 70 on oracle failure, got %d", res.Score)
	}
	if res.Decision != types.DecisionWatchlist {
		t.Errorf("Expected WATCHLIST, got %s", res.Decision)
	}
	if res.NewsSummary != "Neutral News" {
		t.Errorf("Expected neutral news summary, got %q", res.NewsSummary)
	}
}

func TestScoreNegativeSentimentPenalty(t *testing.T) {
	fund := &countingFundamentals{data: types.Fundamentals{
		MarketCap:  15_000_000_000_000,
		ROE:        0.20,
		TrailingPE: 10,
	}}
	oracle := &countingOracle{score: -60}
	scorer := newTestScorer(testScorerConfig(), fund, oracle)

	res := scorer.Score(context.Background(), "BBCA.JK", strongCandles())
	if res.Score != 50 {
		t.Errorf("Expected score 50 after penalty, got %d", res.Score)
	}
	if !strings.Contains(res.NewsSummary, "Negative News based on AI") {
		t.Errorf("Expected negative news label, got %q", res.NewsSummary)
	}
}

func TestScoreStatusLineCapsAtFourTags(t *testing.T) {
	fund := &countingFundamentals{data: types.Fundamentals{
		MarketCap:  15_000_000_000_000,
		ROE:        0.20,
		TrailingPE: 10,
	}}
	oracle := &countingOracle{score: 50}
	scorer := newTestScorer(testScorerConfig(), fund, oracle)

	res := scorer.Score(context.Background(), "BBCA.JK", strongCandles())

	tags := strings.Split(res.Reasons, ", ")
	if len(tags) != 4 {
		t.Fatalf("Expected 4 status tags, got %d: %q", len(tags), res.Reasons)
	}
	// Flow tags lead the line.
	if tags[0] != "Smart Money Proxy (Vol Spike)" {
		t.Errorf("Expected flow tag first, got %q", tags[0])
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	fund := &countingFundamentals{data: types.Fundamentals{
		MarketCap:  15_000_000_000_000,
		ROE:        0.20,
		TrailingPE: 10,
	}}
	oracle := &countingOracle{score: 50}
	scorer := newTestScorer(testScorerConfig(), fund, oracle)

	candles := strongCandles()
	first := scorer.Score(context.Background(), "BBCA.JK", candles)
	second := scorer.Score(context.Background(), "BBCA.JK", candles)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results across calls:\n%+v\n%+v", first, second)
	}
}

func TestTradePlanATRMode(t *testing.T) {
	scorer := newTestScorer(testScorerConfig(), &countingFundamentals{}, &countingOracle{})

	plan := scorer.tradePlan(types.Candle{Close: 1050, ATR: 20})
	if plan.StopLoss != 1010 {
		t.Errorf("Expected ATR stop 1010, got %f", plan.StopLoss)
	}
	if plan.Target != 1110 {
		t.Errorf("Expected ATR target 1110, got %f", plan.Target)
	}
	if got := plan.BuyArea(); got != "1050 - 1071" {
		t.Errorf("Expected buy area 1050 - 1071, got %q", got)
	}
}

func TestTradePlanFallsBackToPct(t *testing.T) {
	scorer := newTestScorer(testScorerConfig(), &countingFundamentals{}, &countingOracle{})

	// ATR missing: the percentage offsets take over.
	plan := scorer.tradePlan(types.Candle{Close: 1000})
	if plan.StopLoss != 950 {
		t.Errorf("Expected 5%% stop 950, got %f", plan.StopLoss)
	}
	if plan.Target != 1050 {
		t.Errorf("Expected 5%% target 1050, got %f", plan.Target)
	}
	if plan.RiskPct != 5 || plan.RewardPct != 5 {
		t.Errorf("Expected symmetric 5%% risk/reward, got %f/%f", plan.RiskPct, plan.RewardPct)
	}
}
