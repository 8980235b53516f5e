package job

import (
	"context"
	"time"

	"ideaboard/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StaleColumnStore interface {
	ListStalePending(ctx context.Context, before time.Time) ([]model.Column, error)
	ClearPending(ctx context.Context, id, actionID uuid.UUID) error
}

type StaleTaskStore interface {
	ListStalePending(ctx context.Context, before time.Time) ([]model.Task, error)
	ClearPending(ctx context.Context, id, actionID uuid.UUID) error
}

// LiveActions tells whether an action is still waiting in this process.
type LiveActions interface {
	IsLive(id uuid.UUID) bool
}

type RestoreCounter interface {
	AddPendingRestored(n int)
}

// PendingSweepJob restores rows that stayed hidden after their action was
// lost, typically because the process died inside the undo window. The
// change was never committed, so the row comes back.
type PendingSweepJob struct {
	columns    StaleColumnStore
	tasks      StaleTaskStore
	live       LiveActions
	staleAfter time.Duration
	counter    RestoreCounter
	now        func() time.Time
	logger     *zap.Logger
}

func NewPendingSweepJob(
	columns StaleColumnStore,
	tasks StaleTaskStore,
	live LiveActions,
	staleAfter time.Duration,
	counter RestoreCounter,
	logger *zap.Logger,
) *PendingSweepJob {
	return &PendingSweepJob{
		columns:    columns,
		tasks:      tasks,
		live:       live,
		staleAfter: staleAfter,
		counter:    counter,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// Run executes the sweep
func (j *PendingSweepJob) Run() {
	ctx := context.Background()
	before := j.now().Add(-j.staleAfter)
	restored := 0

	columns, err := j.columns.ListStalePending(ctx, before)
	if err != nil {
		j.logger.Error("Failed to list stale pending columns", zap.Error(err))
	}
	for _, c := range columns {
		if j.restore(ctx, j.columns, "column", c.ID, c.PendingActionID) {
			restored++
		}
	}

	tasks, err := j.tasks.ListStalePending(ctx, before)
	if err != nil {
		j.logger.Error("Failed to list stale pending tasks", zap.Error(err))
	}
	for _, t := range tasks {
		if j.restore(ctx, j.tasks, "task", t.ID, t.PendingActionID) {
			restored++
		}
	}

	if restored > 0 && j.counter != nil {
		j.counter.AddPendingRestored(restored)
	}
	j.logger.Info("Pending sweep completed", zap.Int("restored", restored))
}

type pendingClearer interface {
	ClearPending(ctx context.Context, id, actionID uuid.UUID) error
}

func (j *PendingSweepJob) restore(ctx context.Context, store pendingClearer, kind string, id uuid.UUID, actionID *uuid.UUID) bool {
	if actionID == nil || j.live.IsLive(*actionID) {
		return false
	}
	if err := store.ClearPending(ctx, id, *actionID); err != nil {
		j.logger.Warn("Failed to restore hidden row",
			zap.String("kind", kind),
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return false
	}
	j.logger.Info("Restored hidden row",
		zap.String("kind", kind),
		zap.String("id", id.String()),
		zap.String("action_id", actionID.String()),
	)
	return true
}
