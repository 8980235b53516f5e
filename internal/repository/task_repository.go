package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ideaboard/internal/model"
	"ideaboard/internal/ordering"
)

type TaskRepository struct {
	db *gorm.DB
}

var _ ordering.PositionStore = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID, hidden or not
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).Preload("Labels").First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// GetByColumnID lists the visible tasks of a column in display order
func (r *TaskRepository) GetByColumnID(ctx context.Context, columnID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Preload("Labels").
		Where("column_id = ? AND pending_action_id IS NULL AND archived_at IS NULL", columnID).
		Order("position").Order("id").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Siblings lists every task row of a column, hidden and archived included.
// Positions are unique across this whole set.
func (r *TaskRepository) Siblings(ctx context.Context, columnID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("column_id = ?", columnID).
		Order("position").Order("id").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// ColumnIDs returns every column that holds at least one task.
func (r *TaskRepository) ColumnIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Task{}).Distinct("column_id").Pluck("column_id", &ids).Error
	return ids, err
}

// UpdateDetails writes the editable text fields of a task
func (r *TaskRepository) UpdateDetails(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Model(task).Select("title", "description").Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task and its label links
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_labels WHERE task_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// Archive sets archived_at and drops any pending marker. The task keeps
// its position.
func (r *TaskRepository) Archive(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"archived_at": at, "pending_action_id": nil, "pending_since": nil})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// UpdatePositions writes the position of every item in one transaction.
// Each write only lands while the task is still in item.ParentID, so a
// renumber computed before a move cannot pull the task back.
func (r *TaskRepository) UpdatePositions(ctx context.Context, items []ordering.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateTaskPositions(tx, items)
	})
}

// MoveTo renumbers the target siblings and puts moved into its new column
// and position in one transaction. The move only lands while the task is
// still in from.
func (r *TaskRepository) MoveTo(ctx context.Context, moved ordering.Item, from uuid.UUID, renumbered []ordering.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateTaskPositions(tx, renumbered); err != nil {
			return err
		}
		result := tx.Model(&model.Task{}).Where("id = ? AND column_id = ?", moved.ID, from).
			Updates(map[string]interface{}{"column_id": moved.ParentID, "position": moved.Position})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

func updateTaskPositions(tx *gorm.DB, items []ordering.Item) error {
	for _, item := range items {
		result := tx.Model(&model.Task{}).Where("id = ? AND column_id = ?", item.ID, item.ParentID).
			Update("position", item.Position)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
	}
	return nil
}

// MarkPending hides a task while actionID waits out its undo window.
func (r *TaskRepository) MarkPending(ctx context.Context, id, actionID uuid.UUID, since time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND pending_action_id IS NULL AND archived_at IS NULL", id).
		Updates(map[string]interface{}{"pending_action_id": actionID, "pending_since": since})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ClearPending makes the task visible again if actionID still owns it.
func (r *TaskRepository) ClearPending(ctx context.Context, id, actionID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
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

// ListStalePending returns tasks hidden since before.
func (r *TaskRepository) ListStalePending(ctx context.Context, before time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("pending_action_id IS NOT NULL AND pending_since < ?", before).
		Find(&tasks).Error
	return tasks, err
}

// AddLabel adds a label to a task
func (r *TaskRepository) AddLabel(ctx context.Context, taskID, labelID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO task_labels (task_id, label_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		taskID, labelID,
	).Error
}

// RemoveLabel removes a label from a task
func (r *TaskRepository) RemoveLabel(ctx context.Context, taskID, labelID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM task_labels WHERE task_id = ? AND label_id = ?",
		taskID, labelID,
	).Error
}

// AssignUser assigns a user to a task
func (r *TaskRepository) AssignUser(ctx context.Context, taskID, userID uuid.UUID) error {
	return r.setField(ctx, taskID, "assigned_to", userID)
}

// UnassignUser removes user assignment from a task
func (r *TaskRepository) UnassignUser(ctx context.Context, taskID uuid.UUID) error {
	return r.setField(ctx, taskID, "assigned_to", nil)
}

// SetDueDate sets or clears (nil) the due date of a task
func (r *TaskRepository) SetDueDate(ctx context.Context, taskID uuid.UUID, due *time.Time) error {
	return r.setField(ctx, taskID, "due_date", due)
}

func (r *TaskRepository) setField(ctx context.Context, taskID uuid.UUID, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
