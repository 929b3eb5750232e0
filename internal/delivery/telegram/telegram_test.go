package telegram

import (
	"context"
	"strings"
	"testing"

	"idx-swing-scanner/internal/types"
)

func sampleResult() types.ScanResult {
	return types.ScanResult{
		Symbol:   "BBCA.JK",
		Score:    90,
		Decision: types.DecisionStrongBuy,
		Valid:    true,
		Reasons:  "Smart Money Proxy (Vol Spike), Big Accum (>500M), Bullish Trend, Strong Momentum",
		Close:    1050,
		RSI:      60.4,
		Vol:      1_000_000,
		VolMA:    500_000,
		Trend:    "Bullish",
		Plan: types.TradePlan{
			BuyAreaLow:  1050,
			BuyAreaHigh: 1071,
			StopLoss:    1010,
			Target:      1110,
			RiskPct:     3.81,
			RewardPct:   5.71,
		},
		NewsSummary: "Positive News based on AI\nBased on 8 headlines.",
	}
}

func TestFormatAlert(t *testing.T) {
	msg := FormatAlert(sampleResult())

	for _, want := range []string{
		"POTENTIAL TICKER DETECTED",
		"Stock   : $BBCA",
		"Score   : 90/100",
		"Decision: STRONG BUY",
		"Bullish Trend",
		"RSI    : 60.4",
		"Buy    : 1050 - 1071",
		"Stop   : 1010",
		"Target : 1110",
		"Risk   : 3.81%",
		"Positive News based on AI",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected alert to contain %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "BBCA.JK") {
		t.Error("Expected exchange suffix stripped from ticker")
	}
}

func TestFormatAlertWithoutNews(t *testing.T) {
	res := sampleResult()
	res.NewsSummary = ""
	msg := FormatAlert(res)
	if !strings.Contains(msg, "No News Found") {
		t.Error("Expected placeholder when news summary is empty")
	}
}

func TestNotifySkipsInvalidResult(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	n := NewNotifier()

	res := sampleResult()
	res.Valid = false
	if err := n.Notify(context.Background(), res); err != nil {
		t.Errorf("Expected invalid result to be ignored, got %v", err)
	}
}

func TestNotifyWithoutCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	n := NewNotifier()

	if n.Enabled() {
		t.Error("Expected notifier disabled without credentials")
	}
	// Missing credentials must not fail the scan.
	if err := n.Notify(context.Background(), sampleResult()); err != nil {
		t.Errorf("Expected nil error without credentials, got %v", err)
	}
}
