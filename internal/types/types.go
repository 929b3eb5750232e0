package types

import (
	"fmt"
	"time"
)

// Candle is one daily bar, optionally enriched with indicator values.
// Indicator fields are only meaningful when HasIndicators is true; the
// warm-up rows of a series stay un-enriched.
type Candle struct {
	Date                        time.Time
	Open, High, Low, Close, Vol float64

	MA20, MA50    float64
	RSI           float64
	VolMA20       float64
	ATR           float64
	Support20     float64
	Resistance20  float64
	HasIndicators bool
}

// FlowAssessment is the money-flow proxy derived from the latest candle.
type FlowAssessment struct {
	AccumulationValue float64  `json:"accumulation_value"`
	MoneyFlowStatus   string   `json:"money_flow_status"`
	CirculationValue  float64  `json:"circulation_value"`
	PassedFilters     bool     `json:"passed_filters"`
	Reasons           []string `json:"reasons"`
}

// Fundamentals is the raw company data the screener consumes. Missing
// fields arrive as zero, which matches no scoring band.
type Fundamentals struct {
	MarketCap  float64 `json:"market_cap"`
	TrailingPE float64 `json:"trailing_pe"`
	ROE        float64 `json:"roe"`
}

// SentimentAssessment is an opaque external judgment, score clamped to [-100,100].
type SentimentAssessment struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// Decision is the closed set of scan outcomes.
type Decision string

const (
	DecisionNoData      Decision = "NO DATA"
	DecisionBearishSkip Decision = "BEARISH_SKIP"
	DecisionWeakTech    Decision = "WEAK_TECH"
	DecisionNoTrade     Decision = "NO TRADE"
	DecisionBigAccum    Decision = "BIG ACCUM FOCUS"
	DecisionWatchlist   Decision = "WATCHLIST"
	DecisionStrongBuy   Decision = "STRONG BUY"
)

// Actionable reports whether the decision carries a tradable signal.
func (d Decision) Actionable() bool {
	switch d {
	case DecisionBigAccum, DecisionWatchlist, DecisionStrongBuy:
		return true
	}
	return false
}

// TradePlan holds the entry/exit levels derived from the latest close.
type TradePlan struct {
	BuyAreaLow  float64 `json:"buy_area_low"`
	BuyAreaHigh float64 `json:"buy_area_high"`
	StopLoss    float64 `json:"stop_loss"`
	Target      float64 `json:"target"`
	RiskPct     float64 `json:"risk_pct"`
	RewardPct   float64 `json:"reward_pct"`
}

// BuyArea renders the entry zone as a display string, e.g. "1050 - 1071".
func (p TradePlan) BuyArea() string {
	return fmt.Sprintf("%.0f - %.0f", p.BuyAreaLow, p.BuyAreaHigh)
}

// ScanResult is the engine's output for one symbol. Immutable once returned.
type ScanResult struct {
	Symbol   string    `json:"symbol"`
	Date     time.Time `json:"date"`
	Score    int       `json:"score"`
	Decision Decision  `json:"decision"`
	Valid    bool      `json:"valid"`
	Reasons  string    `json:"reasons"`

	Close float64   `json:"close"`
	RSI   float64   `json:"rsi"`
	Vol   float64   `json:"vol"`
	VolMA float64   `json:"vol_ma"`
	Trend string    `json:"trend_status"`
	Plan  TradePlan `json:"plan"`

	NewsSummary string `json:"news_summary,omitempty"`
}
