package sentiment

import (
	"context"

	"idx-swing-scanner/internal/logger"
	"idx-swing-scanner/internal/types"
)

// NoopOracle is the fallback oracle used when no LLM provider is
// configured. It always judges neutral.
type NoopOracle struct{}

func NewNoopOracle() *NoopOracle {
	return &NoopOracle{}
}

// Sentiment implements the SentimentOracle interface with a neutral judgment.
func (o *NoopOracle) Sentiment(ctx context.Context, symbol string) (types.SentimentAssessment, error) {
	logger.Debug(ctx, "Noop oracle called - always returns neutral", "symbol", symbol)
	return types.SentimentAssessment{Score: 0, Explanation: "No API Key"}, nil
}
