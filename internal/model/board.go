package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Board is the Kanban board attached to an idea.
type Board struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	IdeaID      *uuid.UUID `gorm:"type:uuid;index"`
	Title       string     `gorm:"not null"`
	Description string
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b *Board) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
