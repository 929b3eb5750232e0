package interfaces

import (
	"context"

	"idx-swing-scanner/internal/types"
)

// FundamentalsSource supplies company fundamentals for the screener.
type FundamentalsSource interface {
	Fundamentals(ctx context.Context, symbol string) (types.Fundamentals, error)
}
