package service

import (
	"context"
	"errors"
	"fmt"

	"ideaboard/internal/model"
	"ideaboard/internal/ordering"
	"ideaboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxMoveAttempts bounds how often MoveTask chases a task that other
// writers keep moving between columns.
const maxMoveAttempts = 3

// RenumberRecorder is told about every sibling list that had to be
// renumbered.
type RenumberRecorder interface {
	RecordRenumber(kind, trigger string, rows int)
}

// OrderingService places and moves columns and tasks.
//
// Callers pass indexes into the list the user sees. Hidden rows (pending
// delete, archived) keep their positions, so every index is translated onto
// the full sibling list before a position is computed.
type OrderingService struct {
	columns  ColumnStore
	tasks    TaskStore
	spacing  ordering.Spacing
	locks    *keyedMutex
	recorder RenumberRecorder
	logger   *zap.Logger
}

func NewOrderingService(columns ColumnStore, tasks TaskStore, spacing ordering.Spacing, recorder RenumberRecorder, logger *zap.Logger) *OrderingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderingService{
		columns:  columns,
		tasks:    tasks,
		spacing:  spacing,
		locks:    newKeyedMutex(),
		recorder: recorder,
		logger:   logger,
	}
}

// AppendColumn creates a column at the end of its board.
func (s *OrderingService) AppendColumn(ctx context.Context, column *model.Column) error {
	defer s.locks.Lock(column.BoardID)()

	siblings, err := s.columns.Siblings(ctx, column.BoardID)
	if err != nil {
		return fmt.Errorf("load columns: %w", err)
	}
	column.Position = s.spacing.NextPosition(ordering.Positions(columnItems(siblings)))
	return s.columns.Create(ctx, column)
}

// MoveColumn moves a column to visible slot index of its board.
func (s *OrderingService) MoveColumn(ctx context.Context, column *model.Column, index int) error {
	defer s.locks.Lock(column.BoardID)()

	siblings, err := s.columns.Siblings(ctx, column.BoardID)
	if err != nil {
		return fmt.Errorf("load columns: %w", err)
	}
	var rest []ordering.Item
	var visible []bool
	for _, c := range siblings {
		if c.ID == column.ID {
			continue
		}
		rest = append(rest, ordering.Item{ID: c.ID, ParentID: c.BoardID, Position: c.Position})
		visible = append(visible, c.Visible())
	}

	full, err := fullIndex(visible, index)
	if err != nil {
		return err
	}
	item := ordering.Item{ID: column.ID, ParentID: column.BoardID, Position: column.Position}
	moved, placement, err := s.spacing.Move(item, column.BoardID, rest, full)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	if err := s.persist(ctx, s.columns, "column", moved, placement); err != nil {
		return err
	}
	column.Position = moved.Position
	return nil
}

// AppendTask creates a task at the bottom of its column.
func (s *OrderingService) AppendTask(ctx context.Context, task *model.Task) error {
	defer s.locks.Lock(task.ColumnID)()

	siblings, err := s.tasks.Siblings(ctx, task.ColumnID)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	task.Position = s.spacing.NextPosition(ordering.Positions(taskItems(siblings)))
	return s.tasks.Create(ctx, task)
}

// InsertTask creates a task at visible slot index of its column.
func (s *OrderingService) InsertTask(ctx context.Context, task *model.Task, index int) error {
	defer s.locks.Lock(task.ColumnID)()

	siblings, err := s.tasks.Siblings(ctx, task.ColumnID)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	items, visible := splitTasks(siblings, uuid.Nil)
	full, err := fullIndex(visible, index)
	if err != nil {
		return err
	}
	placement, err := s.spacing.Place(items, full)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	if len(placement.Renumbered) > 0 {
		if err := s.tasks.UpdatePositions(ctx, placement.Renumbered); err != nil {
			return fmt.Errorf("renumber tasks: %w", err)
		}
		s.recordRenumber("task", len(placement.Renumbered))
	}
	task.Position = placement.Position
	return s.tasks.Create(ctx, task)
}

// MoveTask moves a task to visible slot index of targetColumnID, which may
// be its current column or another one on the same board. Both columns are
// locked, and the task is re-read under the locks so a concurrent move is
// never overwritten.
func (s *OrderingService) MoveTask(ctx context.Context, task *model.Task, targetColumnID uuid.UUID, index int) error {
	source := task.ColumnID
	for attempt := 0; ; attempt++ {
		unlock := s.locks.LockPair(source, targetColumnID)
		current, err := s.tasks.GetByID(ctx, task.ID)
		if err != nil {
			unlock()
			if errors.Is(err, repository.ErrTaskNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load task: %w", err)
		}
		if current.ColumnID != source {
			unlock()
			if attempt == maxMoveAttempts {
				return fmt.Errorf("task %s keeps changing column", task.ID)
			}
			source = current.ColumnID
			continue
		}

		err = s.moveTask(ctx, current, targetColumnID, index)
		unlock()
		if err != nil {
			return err
		}
		task.ColumnID = current.ColumnID
		task.Position = current.Position
		return nil
	}
}

// moveTask runs with the task's column and targetColumnID locked.
func (s *OrderingService) moveTask(ctx context.Context, task *model.Task, targetColumnID uuid.UUID, index int) error {
	siblings, err := s.tasks.Siblings(ctx, targetColumnID)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	rest, visible := splitTasks(siblings, task.ID)
	full, err := fullIndex(visible, index)
	if err != nil {
		return err
	}

	item := ordering.Item{ID: task.ID, ParentID: task.ColumnID, Position: task.Position}
	moved, placement, err := s.spacing.Move(item, targetColumnID, rest, full)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	if err := s.tasks.MoveTo(ctx, moved, task.ColumnID, placement.Renumbered); err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	if len(placement.Renumbered) > 0 {
		s.recordRenumber("task", len(placement.Renumbered))
	}
	task.ColumnID = moved.ParentID
	task.Position = moved.Position
	return nil
}

// NormalizeTasks renumbers a column's tasks to full spacing and returns how
// many rows moved.
func (s *OrderingService) NormalizeTasks(ctx context.Context, columnID uuid.UUID) (int, error) {
	defer s.locks.Lock(columnID)()

	siblings, err := s.tasks.Siblings(ctx, columnID)
	if err != nil {
		return 0, fmt.Errorf("load tasks: %w", err)
	}
	return s.normalize(ctx, s.tasks, "task", taskItems(siblings))
}

// NormalizeColumns renumbers a board's columns to full spacing.
func (s *OrderingService) NormalizeColumns(ctx context.Context, boardID uuid.UUID) (int, error) {
	defer s.locks.Lock(boardID)()

	siblings, err := s.columns.Siblings(ctx, boardID)
	if err != nil {
		return 0, fmt.Errorf("load columns: %w", err)
	}
	return s.normalize(ctx, s.columns, "column", columnItems(siblings))
}

// NeedsNormalize reports whether the tightest gap among a column's tasks is
// below minGap.
func (s *OrderingService) NeedsNormalize(ctx context.Context, columnID uuid.UUID, minGap int) (bool, error) {
	siblings, err := s.tasks.Siblings(ctx, columnID)
	if err != nil {
		return false, fmt.Errorf("load tasks: %w", err)
	}
	gap, ok := ordering.TightestGap(taskItems(siblings))
	return ok && gap < minGap, nil
}

func (s *OrderingService) normalize(ctx context.Context, store ordering.PositionStore, kind string, items []ordering.Item) (int, error) {
	changed := s.spacing.Renumber(items)
	if len(changed) == 0 {
		return 0, nil
	}
	if err := store.UpdatePositions(ctx, changed); err != nil {
		return 0, fmt.Errorf("renumber %ss: %w", kind, err)
	}
	if s.recorder != nil {
		s.recorder.RecordRenumber(kind, "job", len(changed))
	}
	return len(changed), nil
}

func (s *OrderingService) persist(ctx context.Context, store ordering.PositionStore, kind string, moved ordering.Item, placement ordering.Placement) error {
	batch := make([]ordering.Item, 0, len(placement.Renumbered)+1)
	batch = append(append(batch, placement.Renumbered...), moved)
	if err := store.UpdatePositions(ctx, batch); err != nil {
		return fmt.Errorf("update %s positions: %w", kind, err)
	}
	if len(placement.Renumbered) > 0 {
		s.recordRenumber(kind, len(placement.Renumbered))
	}
	return nil
}

func (s *OrderingService) recordRenumber(kind string, rows int) {
	s.logger.Info("Siblings renumbered", zap.String("kind", kind), zap.Int("rows", rows))
	if s.recorder != nil {
		s.recorder.RecordRenumber(kind, "insert", rows)
	}
}

// splitTasks turns siblings into ordering items, skipping exclude, and
// reports which of them the user can see.
func splitTasks(siblings []model.Task, exclude uuid.UUID) ([]ordering.Item, []bool) {
	items := make([]ordering.Item, 0, len(siblings))
	visible := make([]bool, 0, len(siblings))
	for _, t := range siblings {
		if t.ID == exclude {
			continue
		}
		items = append(items, ordering.Item{ID: t.ID, ParentID: t.ColumnID, Position: t.Position})
		visible = append(visible, t.Visible())
	}
	return items, visible
}

// fullIndex maps a slot among visible rows onto a slot in the full list.
// visible is in display order. Slot k lands just before the k-th visible
// row; the slot past the last visible row lands at the very end.
func fullIndex(visible []bool, index int) (int, error) {
	if index < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidMove, ordering.ErrIndexOutOfRange)
	}
	seen := 0
	for i, v := range visible {
		if !v {
			continue
		}
		if seen == index {
			return i, nil
		}
		seen++
	}
	if index == seen {
		return len(visible), nil
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidMove, ordering.ErrIndexOutOfRange)
}
