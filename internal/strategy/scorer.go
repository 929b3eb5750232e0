package strategy

import (
	"context"
	"fmt"
	"math"
	"strings"

	"idx-swing-scanner/internal/interfaces"
	"idx-swing-scanner/internal/logger"
	"idx-swing-scanner/internal/store"
	"idx-swing-scanner/internal/types"
)

// minCandles is the floor below which a series cannot be scored: the slow
// MA needs 50 sessions of history.
const minCandles = 50

// ScorerConfig carries every threshold the engine consults. Values come
// from store.Config so tuning stays out of the algorithm.
type ScorerConfig struct {
	Flow               FlowThresholds
	WhaleAccum         float64
	MajorBuyAccum      float64
	SmartMoneyVolRatio float64
	WeakTechCutoff     int
	SentimentGate      int
	SentimentBonus     int
	SentimentTrigger   int
	WatchlistScore     int
	StrongBuyScore     int
	BigAccumFlowScore  int

	StopMode      string // ATR or PCT
	StopPct       float64
	StopATRMult   float64
	TargetPct     float64
	TargetATRMult float64
}

// ScorerConfigFrom maps the yaml config onto the engine thresholds.
func ScorerConfigFrom(c *store.Config) ScorerConfig {
	return ScorerConfig{
		Flow: FlowThresholds{
			Accum:       c.Scoring.FlowAccumThreshold,
			Circulation: c.Scoring.FlowCirculationThreshold,
		},
		WhaleAccum:         c.Scoring.WhaleAccumThreshold,
		MajorBuyAccum:      c.Scoring.MajorBuyAccumThreshold,
		SmartMoneyVolRatio: c.Scoring.SmartMoneyVolRatio,
		WeakTechCutoff:     c.Scoring.WeakTechCutoff,
		SentimentGate:      c.Scoring.SentimentGateScore,
		SentimentBonus:     c.Scoring.SentimentBonus,
		SentimentTrigger:   c.Scoring.SentimentTrigger,
		WatchlistScore:     c.Scoring.WatchlistScore,
		StrongBuyScore:     c.Scoring.StrongBuyScore,
		BigAccumFlowScore:  c.Scoring.BigAccumFlowScore,
		StopMode:           c.Stop.Mode,
		StopPct:            c.Stop.Pct,
		StopATRMult:        c.Stop.ATRMult,
		TargetPct:          c.Stop.TargetPct,
		TargetATRMult:      c.Stop.TargetATRMult,
	}
}

// ConfluenceScorer combines flow, technical, fundamental and sentiment
// signals for one symbol into a single score and decision. One call per
// (symbol, session); no state is shared across symbols beyond the
// screener's fundamentals cache.
type ConfluenceScorer struct {
	cfg          ScorerConfig
	flow         *FlowEvaluator
	fundamentals *FundamentalScreener
	oracle       interfaces.SentimentOracle
}

func NewConfluenceScorer(cfg ScorerConfig, fundamentals *FundamentalScreener, oracle interfaces.SentimentOracle) *ConfluenceScorer {
	return &ConfluenceScorer{
		cfg:          cfg,
		flow:         NewFlowEvaluator(cfg.Flow),
		fundamentals: fundamentals,
		oracle:       oracle,
	}
}

// analystNotes collects reason tags per stage so the status line can be
// assembled in stage order.
type analystNotes struct {
	flow        []string
	technical   []string
	fundamental []string
	sentiment   []string
}

func (n *analystNotes) statusLine() string {
	flat := make([]string, 0, 8)
	flat = append(flat, n.flow...)
	flat = append(flat, n.technical...)
	flat = append(flat, n.fundamental...)
	flat = append(flat, n.sentiment...)
	if len(flat) > 4 {
		flat = flat[:4]
	}
	return strings.Join(flat, ", ")
}

// Score runs the confluence pipeline on an indicator-enriched series.
// Stage order is fixed: flow, technicals (with two hard exits), then the
// rate-limited fundamental and sentiment collaborators. The sentiment
// oracle is called at most once, and only when the running score has
// already cleared the gate.
func (s *ConfluenceScorer) Score(ctx context.Context, symbol string, candles []types.Candle) types.ScanResult {
	if len(candles) < minCandles {
		return types.ScanResult{Symbol: symbol, Decision: types.DecisionNoData}
	}

	curr := candles[len(candles)-1]
	prev := candles[len(candles)-2]
	if !curr.HasIndicators {
		// Enough rows but no derived fields on the latest candle means the
		// indicator collaborator never ran; refuse to guess.
		return types.ScanResult{Symbol: symbol, Decision: types.DecisionNoData}
	}

	score := 0
	notes := analystNotes{}

	// Flow stage, up to 45 points. Runs before technicals so strong
	// accumulation can rescue a mediocre chart.
	flowScore := 0
	hasStrongFlow := false
	passedFlow := false

	if curr.Close > prev.Close && curr.Vol > curr.VolMA20*s.cfg.SmartMoneyVolRatio {
		flowScore += 10
		hasStrongFlow = true
		notes.flow = append(notes.flow, "Smart Money Proxy (Vol Spike)")
	}

	if fa := s.flow.Evaluate(candles); fa != nil && fa.PassedFilters {
		passedFlow = true
		hasStrongFlow = true
		flowScore += 15

		switch {
		case fa.AccumulationValue >= s.cfg.WhaleAccum:
			flowScore += 20
			notes.flow = append(notes.flow, "Whale Accumulation (>50B)")
		case fa.AccumulationValue >= s.cfg.MajorBuyAccum:
			flowScore += 10
			notes.flow = append(notes.flow, "Major Foreign Buy (>5B)")
		default:
			notes.flow = append(notes.flow, "Big Accum (>500M)")
		}
		notes.flow = append(notes.flow, fmt.Sprintf("Circulation %.0fM", fa.CirculationValue/1_000_000))
	}
	score += flowScore

	// Technical stage, up to 30 points.
	techScore := 0
	switch {
	case curr.MA20 > curr.MA50:
		techScore += 10
		notes.technical = append(notes.technical, "Bullish Trend")
	case curr.Close > curr.MA50:
		techScore += 5
		notes.technical = append(notes.technical, "Price > MA50")
	default:
		// Below the slow MA the setup is dead, unless deeply oversold.
		if !(curr.RSI < 30) {
			logger.Debug(ctx, "Trend bearish, skipping", "symbol", symbol, "close", curr.Close, "ma50", curr.MA50)
			return types.ScanResult{
				Symbol:   symbol,
				Date:     curr.Date,
				Decision: types.DecisionBearishSkip,
				Reasons:  "Trend Bearish (< MA50)",
			}
		}
	}

	switch {
	case curr.RSI >= 50 && curr.RSI <= 75:
		techScore += 10
		notes.technical = append(notes.technical, "Strong Momentum")
	case curr.RSI >= 40 && curr.RSI < 50:
		techScore += 5
		notes.technical = append(notes.technical, "Pullback Zone")
	case curr.RSI > 75:
		techScore += 5
		notes.technical = append(notes.technical, "Overbought (>75)")
	}

	if curr.Vol > curr.VolMA20 {
		techScore += 10
		notes.technical = append(notes.technical, "Vol > Avg")
	}
	score += techScore

	// Low-conviction candidates stop here so the rate-limited fundamental
	// and sentiment calls are never spent on them. Strong flow overrides.
	if techScore < s.cfg.WeakTechCutoff && !passedFlow {
		return types.ScanResult{
			Symbol:   symbol,
			Date:     curr.Date,
			Score:    score,
			Decision: types.DecisionWeakTech,
			Reasons:  notes.statusLine(),
		}
	}

	// Fundamental stage. The screener degrades to neutral on failure.
	fundScore, fundReasons := s.fundamentals.Analyze(ctx, symbol)
	notes.fundamental = fundReasons
	score += fundScore

	// Sentiment stage, gated by the running score. At most one oracle
	// call per symbol per scan.
	if score >= s.cfg.SentimentGate {
		score = s.applySentiment(ctx, symbol, score, &notes)
	}

	decision := types.DecisionNoTrade
	switch {
	case score >= s.cfg.StrongBuyScore && hasStrongFlow:
		decision = types.DecisionStrongBuy
	case score >= s.cfg.WatchlistScore:
		decision = types.DecisionWatchlist
	case flowScore >= s.cfg.BigAccumFlowScore:
		decision = types.DecisionBigAccum
	}

	trend := "Bearish"
	if curr.MA20 > curr.MA50 {
		trend = "Bullish"
	}

	return types.ScanResult{
		Symbol:      symbol,
		Date:        curr.Date,
		Score:       score,
		Decision:    decision,
		Valid:       decision.Actionable(),
		Reasons:     notes.statusLine(),
		Close:       curr.Close,
		RSI:         curr.RSI,
		Vol:         curr.Vol,
		VolMA:       curr.VolMA20,
		Trend:       trend,
		Plan:        s.tradePlan(curr),
		NewsSummary: strings.Join(notes.sentiment, "\n"),
	}
}

// applySentiment consults the oracle once and folds its judgment into the
// score. An unreachable oracle counts as neutral, never as a failure.
func (s *ConfluenceScorer) applySentiment(ctx context.Context, symbol string, score int, notes *analystNotes) int {
	assessment, err := s.oracle.Sentiment(ctx, symbol)
	if err != nil {
		logger.Warn(ctx, "Sentiment oracle unavailable, treating as neutral", "symbol", symbol, "error", err)
		notes.sentiment = append(notes.sentiment, "Neutral News")
		return score
	}

	label := "Neutral News"
	switch {
	case assessment.Score > s.cfg.SentimentTrigger:
		score += s.cfg.SentimentBonus
		label = "Positive News based on AI"
	case assessment.Score < -s.cfg.SentimentTrigger:
		score -= s.cfg.SentimentBonus
		label = "Negative News based on AI"
	}

	notes.sentiment = append(notes.sentiment, label)
	if assessment.Explanation != "" {
		notes.sentiment = append(notes.sentiment, assessment.Explanation)
	}
	return score
}

// tradePlan derives entry, stop and target from the latest close. ATR
// distances are canonical; a missing ATR falls back to the percentage
// offsets so the plan is always complete.
func (s *ConfluenceScorer) tradePlan(curr types.Candle) types.TradePlan {
	close := curr.Close

	stop := close * (1 - s.cfg.StopPct/100)
	target := close * (1 + s.cfg.TargetPct/100)
	if s.cfg.StopMode == "ATR" && curr.ATR > 0 && !math.IsNaN(curr.ATR) {
		stop = close - s.cfg.StopATRMult*curr.ATR
		target = close + s.cfg.TargetATRMult*curr.ATR
	}

	plan := types.TradePlan{
		BuyAreaLow:  close,
		BuyAreaHigh: close * 1.02,
		StopLoss:    stop,
		Target:      target,
	}
	if close > 0 {
		plan.RiskPct = round2((close - stop) / close * 100)
		plan.RewardPct = round2((target - close) / close * 100)
	}
	return plan
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
