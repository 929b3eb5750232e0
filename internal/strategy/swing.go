package strategy

import (
	"strings"

	"idx-swing-scanner/internal/types"
)

// SwingSetup is the strict AND pre-filter that predates the confluence
// engine: every rule must hold for a valid pullback entry.
//
// Rules: close above MA50 with MA20 above MA50, RSI resting in [45,55],
// and volume above its 20-day average.
type SwingSetup struct {
	RSILow, RSIHigh float64
	StopATRMult     float64
	TargetATRMult   float64
}

func DefaultSwingSetup() SwingSetup {
	return SwingSetup{RSILow: 45, RSIHigh: 55, StopATRMult: 2, TargetATRMult: 3}
}

// Check evaluates the latest candle against the swing rules and returns a
// fully formed result either way; callers read Valid to decide delivery.
func (s SwingSetup) Check(symbol string, candles []types.Candle) types.ScanResult {
	if len(candles) < minCandles {
		return types.ScanResult{Symbol: symbol, Decision: types.DecisionNoData, Reasons: "Insufficient Data"}
	}
	curr := candles[len(candles)-1]
	if !curr.HasIndicators {
		return types.ScanResult{Symbol: symbol, Decision: types.DecisionNoData, Reasons: "Insufficient Data"}
	}

	trendBullish := curr.Close > curr.MA50 && curr.MA20 > curr.MA50
	pullback := curr.RSI >= s.RSILow && curr.RSI <= s.RSIHigh
	volumeSpike := curr.Vol > curr.VolMA20

	valid := trendBullish && pullback && volumeSpike

	var reasons []string
	if !trendBullish {
		reasons = append(reasons, "Not Bullish Trend")
	}
	if !pullback {
		reasons = append(reasons, "RSI Not in Zone (45-55)")
	}
	if !volumeSpike {
		reasons = append(reasons, "Low Volume")
	}
	reason := "Perfect Setup"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ", ")
	}

	stop := curr.Close - s.StopATRMult*curr.ATR
	target := curr.Close + s.TargetATRMult*curr.ATR
	plan := types.TradePlan{
		BuyAreaLow:  curr.Close,
		BuyAreaHigh: curr.Close * 1.02,
		StopLoss:    stop,
		Target:      target,
	}
	if curr.Close > 0 {
		plan.RiskPct = round2((curr.Close - stop) / curr.Close * 100)
		plan.RewardPct = round2((target - curr.Close) / curr.Close * 100)
	}

	decision := types.DecisionNoTrade
	if valid {
		decision = types.DecisionWatchlist
	}
	trend := "Bearish/Choppy"
	if trendBullish {
		trend = "Bullish"
	}

	return types.ScanResult{
		Symbol:   symbol,
		Date:     curr.Date,
		Decision: decision,
		Valid:    valid,
		Reasons:  reason,
		Close:    curr.Close,
		RSI:      curr.RSI,
		Vol:      curr.Vol,
		VolMA:    curr.VolMA20,
		Trend:    trend,
		Plan:     plan,
	}
}
