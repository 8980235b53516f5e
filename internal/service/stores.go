// Package service holds the board logic that sits between the HTTP handlers
// and the repositories: access checks, sibling ordering and undoable
// destructive actions.
package service

import (
	"context"
	"time"

	"ideaboard/internal/model"
	"ideaboard/internal/ordering"

	"github.com/google/uuid"
)

type BoardStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
}

type ShareStore interface {
	CheckAccess(ctx context.Context, boardID, userID uuid.UUID, required model.Role) (bool, error)
}

type ColumnStore interface {
	ordering.PositionStore
	Create(ctx context.Context, column *model.Column) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error)
	Siblings(ctx context.Context, boardID uuid.UUID) ([]model.Column, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkPending(ctx context.Context, id, actionID uuid.UUID, since time.Time) error
	ClearPending(ctx context.Context, id, actionID uuid.UUID) error
}

type TaskStore interface {
	ordering.PositionStore
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Siblings(ctx context.Context, columnID uuid.UUID) ([]model.Task, error)
	MoveTo(ctx context.Context, moved ordering.Item, from uuid.UUID, renumbered []ordering.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	Archive(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkPending(ctx context.Context, id, actionID uuid.UUID, since time.Time) error
	ClearPending(ctx context.Context, id, actionID uuid.UUID) error
}

func columnItems(columns []model.Column) []ordering.Item {
	items := make([]ordering.Item, len(columns))
	for i, c := range columns {
		items[i] = ordering.Item{ID: c.ID, ParentID: c.BoardID, Position: c.Position}
	}
	return items
}

func taskItems(tasks []model.Task) []ordering.Item {
	items := make([]ordering.Item, len(tasks))
	for i, t := range tasks {
		items[i] = ordering.Item{ID: t.ID, ParentID: t.ColumnID, Position: t.Position}
	}
	return items
}
