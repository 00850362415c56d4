package ports

import (
	"context"

	"github.com/bft-labs/canship/internal/domain"
)

// ProgressRepository persists transfer progress between runs.
type ProgressRepository interface {
	// Load retrieves the last saved progress.
	// Returns an empty record and nil error if none exists.
	Load(ctx context.Context) (domain.Progress, error)

	// Save persists the progress atomically.
	Save(ctx context.Context, progress domain.Progress) error

	// Clear removes the stored progress. Clearing a missing record is not an error.
	Clear(ctx context.Context) error
}
