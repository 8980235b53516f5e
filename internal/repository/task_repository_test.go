package repository_test

import (
	"context"
	"testing"
	"time"

	"ideaboard/internal/database/dbtest"
	"ideaboard/internal/model"
	"ideaboard/internal/ordering"
	"ideaboard/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type taskFixture struct {
	db      *gorm.DB
	repo    *repository.TaskRepository
	user    model.User
	board   model.Board
	columns []model.Column
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &taskFixture{db: db, repo: repository.NewTaskRepository(db)}

	f.user = model.User{Email: "owner@example.com", HashedPassword: "x", Name: "Owner"}
	require.NoError(t, db.Create(&f.user).Error)
	f.board = model.Board{Title: "Launch", OwnerID: f.user.ID}
	require.NoError(t, db.Create(&f.board).Error)
	for i, title := range []string{"Todo", "Doing"} {
		col := model.Column{BoardID: f.board.ID, Title: title, Position: i * 1000}
		require.NoError(t, db.Create(&col).Error)
		f.columns = append(f.columns, col)
	}
	return f
}

func (f *taskFixture) addTask(t *testing.T, column int, title string, position int) model.Task {
	t.Helper()
	task := model.Task{ColumnID: f.columns[column].ID, Title: title, CreatedBy: f.user.ID, Position: position}
	require.NoError(t, f.repo.Create(context.Background(), &task))
	return task
}

func TestTaskRepository_PendingHidesFromListing(t *testing.T) {
	// Arrange
	f := newTaskFixture(t)
	ctx := context.Background()
	a := f.addTask(t, 0, "A", 0)
	b := f.addTask(t, 0, "B", 1000)
	actionID := uuid.New()

	// Act
	require.NoError(t, f.repo.MarkPending(ctx, a.ID, actionID, time.Now().UTC()))
	visible, err := f.repo.GetByColumnID(ctx, f.columns[0].ID)
	require.NoError(t, err)
	all, err := f.repo.Siblings(ctx, f.columns[0].ID)
	require.NoError(t, err)

	// Assert
	require.Len(t, visible, 1)
	assert.Equal(t, b.ID, visible[0].ID)
	assert.Len(t, all, 2)

	// a second action cannot claim the same row
	assert.ErrorIs(t, f.repo.MarkPending(ctx, a.ID, uuid.New(), time.Now().UTC()), repository.ErrTaskNotFound)

	// only the owning action clears it
	assert.ErrorIs(t, f.repo.ClearPending(ctx, a.ID, uuid.New()), repository.ErrNotPending)
	require.NoError(t, f.repo.ClearPending(ctx, a.ID, actionID))

	visible, err = f.repo.GetByColumnID(ctx, f.columns[0].ID)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestTaskRepository_MoveToReparents(t *testing.T) {
	// Arrange
	f := newTaskFixture(t)
	ctx := context.Background()
	a := f.addTask(t, 0, "A", 0)
	x := f.addTask(t, 1, "X", 1)

	// Act
	err := f.repo.MoveTo(ctx,
		ordering.Item{ID: a.ID, ParentID: f.columns[1].ID, Position: 500},
		f.columns[0].ID,
		[]ordering.Item{{ID: x.ID, ParentID: f.columns[1].ID, Position: 0}},
	)

	// Assert
	require.NoError(t, err)
	got, err := f.repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, f.columns[1].ID, got.ColumnID)
	assert.Equal(t, 500, got.Position)
	gotX, err := f.repo.GetByID(ctx, x.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotX.Position)
}

func TestTaskRepository_MoveToStaleSource(t *testing.T) {
	// Arrange
	f := newTaskFixture(t)
	ctx := context.Background()
	a := f.addTask(t, 1, "A", 0)

	// Act
	err := f.repo.MoveTo(ctx, ordering.Item{ID: a.ID, ParentID: f.columns[1].ID, Position: 500}, f.columns[0].ID, nil)

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	got, err := f.repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Position)
}

func TestTaskRepository_UpdatePositionsKeepsMovedTask(t *testing.T) {
	// Arrange
	f := newTaskFixture(t)
	ctx := context.Background()
	a := f.addTask(t, 0, "A", 0)
	b := f.addTask(t, 0, "B", 1)
	require.NoError(t, f.repo.MoveTo(ctx, ordering.Item{ID: b.ID, ParentID: f.columns[1].ID, Position: 0}, f.columns[0].ID, nil))

	// Act: a renumber computed while B was still in the first column.
	err := f.repo.UpdatePositions(ctx, []ordering.Item{
		{ID: a.ID, ParentID: f.columns[0].ID, Position: 0},
		{ID: b.ID, ParentID: f.columns[0].ID, Position: 1000},
	})

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	got, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, f.columns[1].ID, got.ColumnID)
	assert.Equal(t, 0, got.Position)
}

func TestTaskRepository_UpdatePositionsUnknownTask(t *testing.T) {
	f := newTaskFixture(t)

	err := f.repo.UpdatePositions(context.Background(), []ordering.Item{{ID: uuid.New(), ParentID: f.columns[0].ID}})
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
}

func TestTaskRepository_ArchiveKeepsPosition(t *testing.T) {
	// Arrange
	f := newTaskFixture(t)
	ctx := context.Background()
	a := f.addTask(t, 0, "A", 3000)

	// Act
	require.NoError(t, f.repo.Archive(ctx, a.ID, time.Now().UTC()))

	// Assert
	visible, err := f.repo.GetByColumnID(ctx, f.columns[0].ID)
	require.NoError(t, err)
	assert.Empty(t, visible)

	got, err := f.repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ArchivedAt)
	assert.Equal(t, 3000, got.Position)
}

func TestTaskRepository_DeleteRemovesLabels(t *testing.T) {
	// Arrange
	f := newTaskFixture(t)
	ctx := context.Background()
	a := f.addTask(t, 0, "A", 0)
	label := model.Label{BoardID: f.board.ID, Name: "bug", Color: "#f00"}
	require.NoError(t, f.db.Create(&label).Error)
	require.NoError(t, f.repo.AddLabel(ctx, a.ID, label.ID))
	require.NoError(t, f.repo.AddLabel(ctx, a.ID, label.ID)) // idempotent

	// Act
	require.NoError(t, f.repo.Delete(ctx, a.ID))

	// Assert
	_, err := f.repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	var links int64
	require.NoError(t, f.db.Table("task_labels").Where("task_id = ?", a.ID).Count(&links).Error)
	assert.Zero(t, links)
	assert.ErrorIs(t, f.repo.Delete(ctx, a.ID), repository.ErrTaskNotFound)
}

func TestTaskRepository_ListStalePending(t *testing.T) {
	// Arrange
	f := newTaskFixture(t)
	ctx := context.Background()
	old := f.addTask(t, 0, "old", 0)
	fresh := f.addTask(t, 0, "fresh", 1000)
	now := time.Now().UTC()
	require.NoError(t, f.repo.MarkPending(ctx, old.ID, uuid.New(), now.Add(-time.Hour)))
	require.NoError(t, f.repo.MarkPending(ctx, fresh.ID, uuid.New(), now))

	// Act
	stale, err := f.repo.ListStalePending(ctx, now.Add(-10*time.Minute))

	// Assert
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, old.ID, stale[0].ID)
}

func TestTaskRepository_ColumnIDs(t *testing.T) {
	f := newTaskFixture(t)
	f.addTask(t, 1, "A", 0)
	f.addTask(t, 1, "B", 1000)

	ids, err := f.repo.ColumnIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.columns[1].ID}, ids)
}
