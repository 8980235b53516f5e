package repository_test

import (
	"context"
	"testing"
	"time"

	"ideaboard/internal/ordering"
	"ideaboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestColumnRepository_UpdatePositions(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewColumnRepository(gormDB)
	boardID := uuid.New()
	items := []ordering.Item{
		{ID: uuid.New(), ParentID: boardID, Position: 0},
		{ID: uuid.New(), ParentID: boardID, Position: 1000},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "columns" SET "position".*id = .* AND board_id = `).
		WithArgs(int64(0), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "columns" SET "position".*id = .* AND board_id = `).
		WithArgs(int64(1000), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := repo.UpdatePositions(context.Background(), items)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnRepository_UpdatePositions_MissingRowRollsBack(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewColumnRepository(gormDB)
	items := []ordering.Item{{ID: uuid.New(), Position: 0}, {ID: uuid.New(), Position: 1000}}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "columns" SET "position"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "columns" SET "position"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// Act
	err := repo.UpdatePositions(context.Background(), items)

	// Assert
	assert.ErrorIs(t, err, repository.ErrColumnNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnRepository_UpdatePositions_Empty(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewColumnRepository(gormDB)

	assert.NoError(t, repo.UpdatePositions(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnRepository_MarkPending_AlreadyHidden(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewColumnRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "columns" SET .*pending_action_id.* IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := repo.MarkPending(context.Background(), uuid.New(), uuid.New(), time.Now())

	// Assert
	assert.ErrorIs(t, err, repository.ErrColumnNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnRepository_Siblings(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewColumnRepository(gormDB)
	boardID := uuid.New()
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "columns" WHERE board_id = .* ORDER BY position`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "title", "position", "pending_action_id", "pending_since"}).
			AddRow(a.String(), boardID.String(), "Todo", 0, nil, nil).
			AddRow(b.String(), boardID.String(), "Done", 1000, uuid.NewString(), time.Now()))

	// Act
	columns, err := repo.Siblings(context.Background(), boardID)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, columns, 2)
	assert.True(t, columns[0].Visible())
	assert.False(t, columns[1].Visible())
	assert.NoError(t, mock.ExpectationsWereMet())
}
