package driven

import (
	"context"

	"credstamp/internal/domain/model"
)

// RunStore defines the driven port for generation-run history persistence.
type RunStore interface {
	Add(ctx context.Context, run model.Run) (model.Run, error)
	ListRecent(ctx context.Context, limit int) ([]model.Run, error)
}
