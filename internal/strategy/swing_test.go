package strategy

import (
	"strings"
	"testing"

	"idx-swing-scanner/internal/types"
)

func TestSwingPerfectSetup(t *testing.T) {
	setup := DefaultSwingSetup()

	candles := flatSeries(60)
	curr := &candles[len(candles)-1]
	curr.Close = 1000
	curr.MA20 = 980
	curr.MA50 = 950
	curr.RSI = 50
	curr.Vol = 2000
	curr.VolMA20 = 1000
	curr.ATR = 15

	res := setup.Check("BBCA.JK", candles)
	if !res.Valid {
		t.Fatalf("Expected valid setup, reasons: %s", res.Reasons)
	}
	if res.Decision != types.DecisionWatchlist {
		t.Errorf("Expected WATCHLIST, got %s", res.Decision)
	}
	if res.Reasons != "Perfect Setup" {
		t.Errorf("Expected Perfect Setup, got %q", res.Reasons)
	}
	if res.Plan.StopLoss != 970 {
		t.Errorf("Expected stop 970, got %f", res.Plan.StopLoss)
	}
	if res.Plan.Target != 1045 {
		t.Errorf("Expected target 1045, got %f", res.Plan.Target)
	}
}

func TestSwingRejectsRSIOutOfZone(t *testing.T) {
	setup := DefaultSwingSetup()

	candles := flatSeries(60)
	curr := &candles[len(candles)-1]
	curr.Close = 1000
	curr.MA20 = 980
	curr.MA50 = 950
	curr.RSI = 70
	curr.Vol = 2000
	curr.VolMA20 = 1000

	res := setup.Check("BBRI.JK", candles)
	if res.Valid {
		t.Error("Expected RSI 70 to invalidate the setup")
	}
	if !strings.Contains(res.Reasons, "RSI Not in Zone (45-55)") {
		t.Errorf("Expected RSI reason, got %q", res.Reasons)
	}
}

func TestSwingAccumulatesAllFailureReasons(t *testing.T) {
	setup := DefaultSwingSetup()

	candles := flatSeries(60)
	curr := &candles[len(candles)-1]
	curr.Close = 900
	curr.MA20 = 940
	curr.MA50 = 950
	curr.RSI = 70
	curr.Vol = 500
	curr.VolMA20 = 1000

	res := setup.Check("GOTO.JK", candles)
	want := "Not Bullish Trend, RSI Not in Zone (45-55), Low Volume"
	if res.Reasons != want {
		t.Errorf("Expected %q, got %q", want, res.Reasons)
	}
	if res.Trend != "Bearish/Choppy" {
		t.Errorf("Expected Bearish/Choppy trend, got %s", res.Trend)
	}
}

func TestSwingShortSeries(t *testing.T) {
	setup := DefaultSwingSetup()

	res := setup.Check("BBCA.JK", flatSeries(20))
	if res.Decision != types.DecisionNoData {
		t.Errorf("Expected NO DATA for short series, got %s", res.Decision)
	}
}
