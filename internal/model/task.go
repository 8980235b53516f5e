package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ColumnID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string
	AssignedTo  *uuid.UUID `gorm:"type:uuid"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	DueDate     *time.Time
	Position    int `gorm:"not null"`
	ArchivedAt  *time.Time

	PendingActionID *uuid.UUID `gorm:"type:uuid"`
	PendingSince    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Labels []Label `gorm:"many2many:task_labels"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Visible reports whether the task shows up on the board.
func (t *Task) Visible() bool {
	return t.PendingActionID == nil && t.ArchivedAt == nil
}
