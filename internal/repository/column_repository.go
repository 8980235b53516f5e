package repository

import (
	"context"
	"errors"
	"time"

	"ideaboard/internal/model"
	"ideaboard/internal/ordering"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ColumnRepository struct {
	db *gorm.DB
}

var _ ordering.PositionStore = (*ColumnRepository)(nil)

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *ColumnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error) {
	var column model.Column
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &column, nil
}

// GetByBoardID lists the visible columns of a board in display order.
func (r *ColumnRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND pending_action_id IS NULL", boardID).
		Order("position").Order("id").
		Find(&columns).Error
	return columns, err
}

// Siblings lists every column of a board, hidden ones included.
func (r *ColumnRepository) Siblings(ctx context.Context, boardID uuid.UUID) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("position").Order("id").
		Find(&columns).Error
	return columns, err
}

func (r *ColumnRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	result := r.db.WithContext(ctx).Model(&model.Column{}).Where("id = ?", id).Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

// Delete removes a column together with its tasks.
func (r *ColumnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM task_labels WHERE task_id IN (SELECT id FROM tasks WHERE column_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("column_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Column{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrColumnNotFound
		}
		return nil
	})
}

// UpdatePositions writes the positions of items in one transaction. A write
// only lands while the column is still on item.ParentID.
func (r *ColumnRepository) UpdatePositions(ctx context.Context, items []ordering.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			result := tx.Model(&model.Column{}).Where("id = ? AND board_id = ?", item.ID, item.ParentID).
				Update("position", item.Position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrColumnNotFound
			}
		}
		return nil
	})
}

// MarkPending hides a column while actionID waits out its undo window.
func (r *ColumnRepository) MarkPending(ctx context.Context, id, actionID uuid.UUID, since time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Column{}).
		Where("id = ? AND pending_action_id IS NULL", id).
		Updates(map[string]interface{}{"pending_action_id": actionID, "pending_since": since})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

// ClearPending makes the column visible again if actionID still owns it.
func (r *ColumnRepository) ClearPending(ctx context.Context, id, actionID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&model.Column{}).
		Where("id = ? AND pending_action_id = ?", id, actionID).
		Updates(map[string]interface{}{"pending_action_id": nil, "pending_since": nil})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// ListStalePending returns columns hidden since before.
func (r *ColumnRepository) ListStalePending(ctx context.Context, before time.Time) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).
		Where("pending_action_id IS NOT NULL AND pending_since < ?", before).
		Find(&columns).Error
	return columns, err
}
