package service

import (
	"context"
	"errors"
	"fmt"

	"ideaboard/internal/model"
	"ideaboard/internal/repository"

	"github.com/google/uuid"
)

// AccessService answers "may this user touch this board" for boards and the
// columns and tasks under them.
type AccessService struct {
	boards  BoardStore
	shares  ShareStore
	columns ColumnStore
	tasks   TaskStore
}

func NewAccessService(boards BoardStore, shares ShareStore, columns ColumnStore, tasks TaskStore) *AccessService {
	return &AccessService{boards: boards, shares: shares, columns: columns, tasks: tasks}
}

// Check returns nil when userID owns boardID or holds a share allowing role.
func (s *AccessService) Check(ctx context.Context, boardID, userID uuid.UUID, role model.Role) error {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}
	if board == nil {
		return ErrNotFound
	}
	if board.OwnerID == userID {
		return nil
	}

	ok, err := s.shares.CheckAccess(ctx, boardID, userID, role)
	if err != nil {
		return fmt.Errorf("check access: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// Column loads a column the user may access. Hidden columns count as missing.
func (s *AccessService) Column(ctx context.Context, columnID, userID uuid.UUID, role model.Role) (*model.Column, error) {
	column, err := s.columns.GetByID(ctx, columnID)
	if err != nil {
		return nil, fmt.Errorf("load column: %w", err)
	}
	if column == nil || !column.Visible() {
		return nil, ErrNotFound
	}
	if err := s.Check(ctx, column.BoardID, userID, role); err != nil {
		return nil, err
	}
	return column, nil
}

// Task loads a visible task and its column the user may access.
func (s *AccessService) Task(ctx context.Context, taskID, userID uuid.UUID, role model.Role) (*model.Task, *model.Column, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load task: %w", err)
	}
	if !task.Visible() {
		return nil, nil, ErrNotFound
	}
	column, err := s.Column(ctx, task.ColumnID, userID, role)
	if err != nil {
		return nil, nil, err
	}
	return task, column, nil
}
