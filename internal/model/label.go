package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Label struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	BoardID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_labels_board_name"`
	Name    string    `gorm:"not null;uniqueIndex:idx_labels_board_name"`
	Color   string    `gorm:"not null"`
}

func (l *Label) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
