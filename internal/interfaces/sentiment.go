package interfaces

import (
	"context"

	"idx-swing-scanner/internal/types"
)

// SentimentOracle judges recent news for a symbol. Implementations may be
// slow and rate limited; callers decide when a call is worth spending.
type SentimentOracle interface {
	Sentiment(ctx context.Context, symbol string) (types.SentimentAssessment, error)
}
