package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Column struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	BoardID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Title    string    `gorm:"not null"`
	Position int       `gorm:"not null"`

	// Set while a delete is waiting out its undo window. Pending columns
	// are hidden from listings but keep their position.
	PendingActionID *uuid.UUID `gorm:"type:uuid"`
	PendingSince    *time.Time
}

func (c *Column) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Column) Visible() bool {
	return c.PendingActionID == nil
}
