package ta

import (
	"math"
	"testing"

	"idx-swing-scanner/internal/types"
)

func TestSMA(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}

	if got := SMA(vals, 5); got != 3 {
		t.Errorf("Expected SMA 3, got %f", got)
	}
	if got := SMA(vals, 2); got != 4.5 {
		t.Errorf("Expected SMA 4.5 over last 2, got %f", got)
	}
	if got := SMA(vals, 6); !math.IsNaN(got) {
		t.Errorf("Expected NaN for insufficient data, got %f", got)
	}
	if got := SMA(vals, 0); !math.IsNaN(got) {
		t.Errorf("Expected NaN for zero period, got %f", got)
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	if got := RSI(closes, 14); got != 100 {
		t.Errorf("Expected RSI 100 for monotonic gains, got %f", got)
	}
}

func TestRSIBalanced(t *testing.T) {
	// Alternating +1/-1 moves: equal average gain and loss, RSI 50.
	closes := []float64{100}
	for i := 0; i < 14; i++ {
		d := 1.0
		if i%2 == 1 {
			d = -1.0
		}
		closes = append(closes, closes[len(closes)-1]+d)
	}
	got := RSI(closes, 14)
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("Expected RSI 50 for balanced moves, got %f", got)
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if got := RSI([]float64{1, 2, 3}, 14); !math.IsNaN(got) {
		t.Errorf("Expected NaN, got %f", got)
	}
}

func TestATR(t *testing.T) {
	// Constant 10-point ranges with no gaps: ATR is exactly 10.
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 110
		lows[i] = 100
		closes[i] = 105
	}
	if got := ATR(highs, lows, closes, 14); got != 10 {
		t.Errorf("Expected ATR 10, got %f", got)
	}

	if got := ATR(highs[:5], lows[:5], closes[:5], 14); !math.IsNaN(got) {
		t.Errorf("Expected NaN for short series, got %f", got)
	}
	if got := ATR(highs, lows[:10], closes, 14); !math.IsNaN(got) {
		t.Errorf("Expected NaN for mismatched lengths, got %f", got)
	}
}

func TestRollingMinMax(t *testing.T) {
	vals := []float64{5, 1, 9, 3, 7}

	if got := RollingMin(vals, 3); got != 3 {
		t.Errorf("Expected rolling min 3, got %f", got)
	}
	if got := RollingMax(vals, 3); got != 9 {
		t.Errorf("Expected rolling max 9, got %f", got)
	}
	if got := RollingMin(vals, 5); got != 1 {
		t.Errorf("Expected full-window min 1, got %f", got)
	}
}

func TestEnrichWarmup(t *testing.T) {
	w := DefaultWindows()

	candles := make([]types.Candle, 60)
	for i := range candles {
		candles[i] = types.Candle{
			Open: 100, High: 110, Low: 100, Close: 105, Vol: 1000,
		}
	}

	out := Enrich(candles, w)
	if len(out) != len(candles) {
		t.Fatalf("Expected %d candles, got %d", len(candles), len(out))
	}

	// The slow MA needs 50 rows, so rows 0..48 stay un-enriched.
	for i := 0; i < 49; i++ {
		if out[i].HasIndicators {
			t.Fatalf("Expected row %d inside warmup to stay un-enriched", i)
		}
	}
	for i := 49; i < len(out); i++ {
		if !out[i].HasIndicators {
			t.Fatalf("Expected row %d to be enriched", i)
		}
	}

	last := out[len(out)-1]
	if last.MA20 != 105 || last.MA50 != 105 {
		t.Errorf("Expected flat MAs 105, got %f/%f", last.MA20, last.MA50)
	}
	if last.VolMA20 != 1000 {
		t.Errorf("Expected VolMA 1000, got %f", last.VolMA20)
	}
	if last.ATR != 10 {
		t.Errorf("Expected ATR 10, got %f", last.ATR)
	}
	if last.Support20 != 100 || last.Resistance20 != 110 {
		t.Errorf("Expected S/R 100/110, got %f/%f", last.Support20, last.Resistance20)
	}
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	candles := make([]types.Candle, 60)
	for i := range candles {
		candles[i] = types.Candle{Close: 100, High: 100, Low: 100, Vol: 1}
	}

	Enrich(candles, DefaultWindows())
	for i, c := range candles {
		if c.HasIndicators {
			t.Fatalf("Expected input row %d untouched", i)
		}
	}
}
