package interfaces

import (
	"context"

	"idx-swing-scanner/internal/types"
)

// SeriesSource supplies indicator-ready daily candles for a symbol.
// Implementations return the most recent n candles in ascending date order;
// a nil or short slice means the symbol cannot be scored.
type SeriesSource interface {
	RecentCandles(ctx context.Context, symbol string, n int) ([]types.Candle, error)
}
