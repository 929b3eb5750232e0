package interfaces

import (
	"context"

	"idx-swing-scanner/internal/types"
)

// Notifier delivers an actionable scan result to an external channel.
type Notifier interface {
	Notify(ctx context.Context, res types.ScanResult) error
}
