package ta

import (
	"math"

	"idx-swing-scanner/internal/types"
)

func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

func ATR(highs, lows, closes []float64, period int) float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return math.NaN()
	}
	n := period
	if len(closes) < n+1 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		tr1 := highs[i] - lows[i]
		tr2 := math.Abs(highs[i] - closes[i-1])
		tr3 := math.Abs(lows[i] - closes[i-1])
		sum += math.Max(tr1, math.Max(tr2, tr3))
	}
	return sum / float64(n)
}

func RollingMin(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := vals[len(vals)-n]
	for i := len(vals) - n + 1; i < len(vals); i++ {
		if vals[i] < m {
			m = vals[i]
		}
	}
	return m
}

func RollingMax(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := vals[len(vals)-n]
	for i := len(vals) - n + 1; i < len(vals); i++ {
		if vals[i] > m {
			m = vals[i]
		}
	}
	return m
}

// Windows bundles the indicator periods used when enriching a series.
type Windows struct {
	MAFast, MASlow, RSIPeriod, VolMAPeriod, ATRPeriod, SRLookback int
}

// DefaultWindows matches the daily swing setup: MA20/MA50, RSI14, VolMA20, ATR14, 20-day S/R.
func DefaultWindows() Windows {
	return Windows{MAFast: 20, MASlow: 50, RSIPeriod: 14, VolMAPeriod: 20, ATRPeriod: 14, SRLookback: 20}
}

// Enrich attaches indicator values to every candle with enough history.
// Rows inside the slowest warm-up window keep HasIndicators == false.
func Enrich(candles []types.Candle, w Windows) []types.Candle {
	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	vols := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		vols[i] = c.Vol
	}

	warmup := w.MASlow
	if w.ATRPeriod+1 > warmup {
		warmup = w.ATRPeriod + 1
	}
	if w.RSIPeriod+1 > warmup {
		warmup = w.RSIPeriod + 1
	}

	out := make([]types.Candle, len(candles))
	copy(out, candles)
	for i := range out {
		if i+1 < warmup {
			continue
		}
		out[i].MA20 = SMA(closes[:i+1], w.MAFast)
		out[i].MA50 = SMA(closes[:i+1], w.MASlow)
		out[i].RSI = RSI(closes[:i+1], w.RSIPeriod)
		out[i].VolMA20 = SMA(vols[:i+1], w.VolMAPeriod)
		out[i].ATR = ATR(highs[:i+1], lows[:i+1], closes[:i+1], w.ATRPeriod)
		out[i].Support20 = RollingMin(lows[:i+1], w.SRLookback)
		out[i].Resistance20 = RollingMax(highs[:i+1], w.SRLookback)
		out[i].HasIndicators = true
	}
	return out
}
