package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the access level a user holds on a shared board.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
)

// Allows reports whether r satisfies the required role. Editors can do
// everything viewers can.
func (r Role) Allows(required Role) bool {
	if required == RoleViewer {
		return r == RoleViewer || r == RoleEditor
	}
	return r == required
}

// RolesAllowing lists the stored role values that satisfy required.
func RolesAllowing(required Role) []string {
	var roles []string
	for _, r := range []Role{RoleViewer, RoleEditor} {
		if r.Allows(required) {
			roles = append(roles, string(r))
		}
	}
	return roles
}

func (r Role) Valid() bool {
	return r == RoleViewer || r == RoleEditor
}

// BoardShare links a user to a board they do not own.
type BoardShare struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_board_shares_member"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_board_shares_member;index"`
	Role      Role      `gorm:"type:varchar(16);not null;check:chk_board_shares_role,role IN ('viewer', 'editor')"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserID"`
}

func (s *BoardShare) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
