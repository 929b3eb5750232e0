package strategy

import (
	"fmt"

	"idx-swing-scanner/internal/types"
)

// FlowThresholds are the hard-filter levels for the flow proxy, expressed
// in the instrument's quote currency (IDR). Never rescale them.
type FlowThresholds struct {
	Accum       float64
	Circulation float64
}

// FlowEvaluator estimates accumulation and circulation from the latest
// candle alone: a cheap stand-in for broker-level net foreign flow data.
type FlowEvaluator struct {
	th FlowThresholds
}

func NewFlowEvaluator(th FlowThresholds) *FlowEvaluator {
	return &FlowEvaluator{th: th}
}

// Evaluate derives the flow proxies from the latest candle. It needs at
// least the current candle and its predecessor; with no predecessor the
// assessment is nil and the caller treats flow as absent.
//
// Accumulation is the money-flow multiplier times traded value, where the
// multiplier is ((close-low)-(high-close))/(high-low), bounded in [-1,1].
// A flat candle (high == low) has multiplier exactly 0, never an error.
func (f *FlowEvaluator) Evaluate(candles []types.Candle) *types.FlowAssessment {
	if len(candles) < 2 {
		return nil
	}
	curr := candles[len(candles)-1]

	circulation := curr.Vol * curr.Close

	var mfm float64
	if curr.High != curr.Low {
		mfm = ((curr.Close - curr.Low) - (curr.High - curr.Close)) / (curr.High - curr.Low)
	}

	accumulation := mfm * circulation

	passed := false
	var reasons []string
	if accumulation > f.th.Accum {
		if circulation > f.th.Circulation {
			passed = true
		} else {
			reasons = append(reasons, fmt.Sprintf("Circulation < %.0fM", f.th.Circulation/1_000_000))
		}
	} else if accumulation <= 0 {
		reasons = append(reasons, "Outflow/Distribution")
	} else {
		reasons = append(reasons, fmt.Sprintf("Accum %.0f < %.0fM", accumulation, f.th.Accum/1_000_000))
	}

	status := "Negative"
	if accumulation > 0 {
		status = "Positive"
	}

	return &types.FlowAssessment{
		AccumulationValue: accumulation,
		MoneyFlowStatus:   status,
		CirculationValue:  circulation,
		PassedFilters:     passed,
		Reasons:           reasons,
	}
}
