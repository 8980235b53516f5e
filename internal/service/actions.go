package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ideaboard/internal/repository"
	"ideaboard/internal/undo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActionService runs destructive board actions through the undo window.
// The row is hidden right away; the real delete or archive happens only
// when the window closes without an undo.
type ActionService struct {
	columns   ColumnStore
	tasks     TaskStore
	scheduler *undo.Scheduler
	window    time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewActionService(columns ColumnStore, tasks TaskStore, scheduler *undo.Scheduler, window time.Duration, logger *zap.Logger) *ActionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActionService{
		columns:   columns,
		tasks:     tasks,
		scheduler: scheduler,
		window:    window,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// PendingAction is the client view of a live action.
type PendingAction struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DeleteTask hides a task and deletes it when the undo window closes.
func (s *ActionService) DeleteTask(ctx context.Context, taskID, userID uuid.UUID) (*undo.Action, error) {
	return s.hideThen(ctx, s.tasks, taskID, userID, "Task deleted", "Could not delete the task",
		func(ctx context.Context) error { return s.tasks.Delete(ctx, taskID) },
	)
}

// ArchiveTask hides a task and archives it when the undo window closes.
func (s *ActionService) ArchiveTask(ctx context.Context, taskID, userID uuid.UUID) (*undo.Action, error) {
	return s.hideThen(ctx, s.tasks, taskID, userID, "Task archived", "Could not archive the task",
		func(ctx context.Context) error { return s.tasks.Archive(ctx, taskID, s.now()) },
	)
}

// DeleteColumn hides a column and deletes it with its tasks when the undo
// window closes.
func (s *ActionService) DeleteColumn(ctx context.Context, columnID, userID uuid.UUID) (*undo.Action, error) {
	return s.hideThen(ctx, s.columns, columnID, userID, "Column deleted", "Could not delete the column",
		func(ctx context.Context) error { return s.columns.Delete(ctx, columnID) },
	)
}

// Undo cancels a pending action owned by userID.
func (s *ActionService) Undo(actionID, userID uuid.UUID) error {
	a, ok := s.scheduler.Lookup(actionID)
	if !ok || a.Recipient != userID {
		return ErrActionNotFound
	}
	err := a.Cancel()
	if errors.Is(err, undo.ErrSettled) {
		return ErrActionNotFound
	}
	return err
}

// Pending lists the live actions of userID.
func (s *ActionService) Pending(userID uuid.UUID) []PendingAction {
	actions := s.scheduler.Pending(userID)
	out := make([]PendingAction, 0, len(actions))
	for _, a := range actions {
		out = append(out, PendingAction{ID: a.ID, Message: a.Message, ExpiresAt: a.Deadline})
	}
	return out
}

type pendingMarker interface {
	MarkPending(ctx context.Context, id, actionID uuid.UUID, since time.Time) error
	ClearPending(ctx context.Context, id, actionID uuid.UUID) error
}

func (s *ActionService) hideThen(
	ctx context.Context,
	rows pendingMarker,
	rowID, userID uuid.UUID,
	message, errorMessage string,
	execute func(ctx context.Context) error,
) (*undo.Action, error) {
	actionID := uuid.New()
	err := rows.MarkPending(ctx, rowID, actionID, s.now())
	if errors.Is(err, repository.ErrTaskNotFound) || errors.Is(err, repository.ErrColumnNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("hide row: %w", err)
	}

	a, err := s.scheduler.Schedule(undo.Request{
		ID:           actionID,
		Recipient:    userID,
		Message:      message,
		Execute:      execute,
		Undo:         func(ctx context.Context) error { return rows.ClearPending(ctx, rowID, actionID) },
		Duration:     s.window,
		ErrorMessage: errorMessage,
	})
	if err != nil {
		if clearErr := rows.ClearPending(ctx, rowID, actionID); clearErr != nil {
			s.logger.Error("Failed to unhide row after schedule error",
				zap.String("row_id", rowID.String()),
				zap.Error(clearErr),
			)
		}
		return nil, fmt.Errorf("schedule action: %w", err)
	}
	return a, nil
}
