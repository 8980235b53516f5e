package repository

import (
	"context"

	"ideaboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BoardShareRepository struct {
	db *gorm.DB
}

func NewBoardShareRepository(db *gorm.DB) *BoardShareRepository {
	return &BoardShareRepository{db: db}
}

// ShareBoard grants userID the role on boardID. An existing share keeps its
// id and creation time and only changes role.
func (r *BoardShareRepository) ShareBoard(ctx context.Context, boardID, userID uuid.UUID, role model.Role) error {
	share := model.BoardShare{BoardID: boardID, UserID: userID, Role: role}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "board_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(&share).Error
}

// RemoveShare revokes the share, or returns ErrShareNotFound when the user
// holds none.
func (r *BoardShareRepository) RemoveShare(ctx context.Context, boardID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&model.BoardShare{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrShareNotFound
	}
	return nil
}

// GetBoardShares lists the members of boardID in the order they were added.
func (r *BoardShareRepository) GetBoardShares(ctx context.Context, boardID uuid.UUID) ([]model.BoardShare, error) {
	var shares []model.BoardShare
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Order("created_at, id").
		Find(&shares).Error
	return shares, err
}

// GetSharedBoards returns the boards shared with userID that userID does not
// own, by title.
func (r *BoardShareRepository) GetSharedBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Joins("JOIN board_shares ON board_shares.board_id = boards.id").
		Where("board_shares.user_id = ? AND boards.owner_id <> ?", userID, userID).
		Order("boards.title, boards.id").
		Find(&boards).Error
	return boards, err
}

// CheckAccess reports whether userID owns boardID or holds a share whose
// role satisfies required. A missing board reports false.
func (r *BoardShareRepository) CheckAccess(ctx context.Context, boardID, userID uuid.UUID, required model.Role) (bool, error) {
	granting := model.RolesAllowing(required)
	memberOf := r.db.Model(&model.BoardShare{}).
		Select("1").
		Where("board_shares.board_id = boards.id AND board_shares.user_id = ? AND board_shares.role IN ?", userID, granting)

	var n int64
	err := r.db.WithContext(ctx).Model(&model.Board{}).
		Where("boards.id = ?", boardID).
		Where(r.db.Where("boards.owner_id = ?", userID).Or("EXISTS (?)", memberOf)).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
