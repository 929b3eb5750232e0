package oracleobs

import (
	"context"

	"idx-swing-scanner/internal/interfaces"
	"idx-swing-scanner/internal/logger"
	"idx-swing-scanner/internal/trace"
	"idx-swing-scanner/internal/types"
)

// observableOracle wraps a SentimentOracle with logging and tracing so
// every rate-limited oracle call leaves an audit trail.
type observableOracle struct {
	oracle interfaces.SentimentOracle
}

// Compile-time interface check
var _ interfaces.SentimentOracle = (*observableOracle)(nil)

// Wrap wraps a sentiment oracle with observability middleware
func Wrap(oracle interfaces.SentimentOracle) interfaces.SentimentOracle {
	return &observableOracle{
		oracle: oracle,
	}
}

// Sentiment judges a symbol's news with observability
func (oo *observableOracle) Sentiment(ctx context.Context, symbol string) (types.SentimentAssessment, error) {
	ctx, span := trace.StartSpan(ctx, "oracle.Sentiment")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting news sentiment", "symbol", symbol)

	assessment, err := oo.oracle.Sentiment(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get news sentiment", err, "symbol", symbol)
		return types.SentimentAssessment{}, err
	}

	logger.InfoSkip(ctx, 1, "News sentiment received",
		"symbol", symbol,
		"score", assessment.Score,
		"explanation", assessment.Explanation,
	)

	return assessment, nil
}
