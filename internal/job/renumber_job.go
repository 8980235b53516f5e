package job

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskColumnLister lists the columns that hold tasks.
type TaskColumnLister interface {
	ColumnIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TaskNormalizer renumbers a column's tasks.
type TaskNormalizer interface {
	NeedsNormalize(ctx context.Context, columnID uuid.UUID, minGap int) (bool, error)
	NormalizeTasks(ctx context.Context, columnID uuid.UUID) (int, error)
}

// RenumberJob restores full spacing in columns whose tasks have been
// bisected down to a gap below MinGap, so later inserts rarely renumber
// on the request path.
type RenumberJob struct {
	columns    TaskColumnLister
	normalizer TaskNormalizer
	minGap     int
	logger     *zap.Logger
}

// NewRenumberJob creates a new RenumberJob instance
func NewRenumberJob(columns TaskColumnLister, normalizer TaskNormalizer, minGap int, logger *zap.Logger) *RenumberJob {
	return &RenumberJob{
		columns:    columns,
		normalizer: normalizer,
		minGap:     minGap,
		logger:     logger,
	}
}

// Run executes the renumber job
func (j *RenumberJob) Run() {
	ctx := context.Background()

	ids, err := j.columns.ColumnIDs(ctx)
	if err != nil {
		j.logger.Error("Failed to list task columns", zap.Error(err))
		return
	}

	renumbered, rows, failed := 0, 0, 0
	for _, id := range ids {
		needs, err := j.normalizer.NeedsNormalize(ctx, id, j.minGap)
		if err != nil {
			j.logger.Error("Failed to inspect column spacing",
				zap.String("column_id", id.String()),
				zap.Error(err),
			)
			failed++
			continue
		}
		if !needs {
			continue
		}

		n, err := j.normalizer.NormalizeTasks(ctx, id)
		if err != nil {
			j.logger.Error("Failed to renumber column",
				zap.String("column_id", id.String()),
				zap.Error(err),
			)
			failed++
			continue
		}
		renumbered++
		rows += n
	}

	j.logger.Info("Renumber job completed",
		zap.Int("columns", len(ids)),
		zap.Int("renumbered", renumbered),
		zap.Int("rows", rows),
		zap.Int("failed", failed),
	)
}
