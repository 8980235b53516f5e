package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"ideaboard/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockTaskColumnLister struct {
	mock.Mock
}

func (m *MockTaskColumnLister) ColumnIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockTaskNormalizer struct {
	mock.Mock
}

func (m *MockTaskNormalizer) NeedsNormalize(ctx context.Context, columnID uuid.UUID, minGap int) (bool, error) {
	args := m.Called(ctx, columnID, minGap)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskNormalizer) NormalizeTasks(ctx context.Context, columnID uuid.UUID) (int, error) {
	args := m.Called(ctx, columnID)
	return args.Int(0), args.Error(1)
}

func TestRenumberJob_Run(t *testing.T) {
	// Arrange
	lister := new(MockTaskColumnLister)
	normalizer := new(MockTaskNormalizer)
	crowded, roomy, broken := uuid.New(), uuid.New(), uuid.New()

	lister.On("ColumnIDs", mock.Anything).Return([]uuid.UUID{crowded, roomy, broken}, nil)
	normalizer.On("NeedsNormalize", mock.Anything, crowded, 8).Return(true, nil)
	normalizer.On("NeedsNormalize", mock.Anything, roomy, 8).Return(false, nil)
	normalizer.On("NeedsNormalize", mock.Anything, broken, 8).Return(false, errors.New("db error"))
	normalizer.On("NormalizeTasks", mock.Anything, crowded).Return(4, nil)

	job := NewRenumberJob(lister, normalizer, 8, zap.NewNop())

	// Act
	job.Run()

	// Assert
	lister.AssertExpectations(t)
	normalizer.AssertExpectations(t)
	normalizer.AssertNotCalled(t, "NormalizeTasks", mock.Anything, roomy)
}

func TestRenumberJob_ListError(t *testing.T) {
	lister := new(MockTaskColumnLister)
	normalizer := new(MockTaskNormalizer)
	lister.On("ColumnIDs", mock.Anything).Return(nil, errors.New("db error"))

	NewRenumberJob(lister, normalizer, 8, zap.NewNop()).Run()

	normalizer.AssertNotCalled(t, "NeedsNormalize", mock.Anything, mock.Anything, mock.Anything)
}

type fakeColumns struct {
	stale   []model.Column
	cleared []uuid.UUID
}

func (f *fakeColumns) ListStalePending(ctx context.Context, before time.Time) ([]model.Column, error) {
	return f.stale, nil
}

func (f *fakeColumns) ClearPending(ctx context.Context, id, actionID uuid.UUID) error {
	f.cleared = append(f.cleared, id)
	return nil
}

type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) ListStalePending(ctx context.Context, before time.Time) ([]model.Task, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskStore) ClearPending(ctx context.Context, id, actionID uuid.UUID) error {
	args := m.Called(ctx, id, actionID)
	return args.Error(0)
}

type liveSet map[uuid.UUID]bool

func (l liveSet) IsLive(id uuid.UUID) bool { return l[id] }

type restoreCount struct{ n int }

func (r *restoreCount) AddPendingRestored(n int) { r.n += n }

func TestPendingSweepJob_Run(t *testing.T) {
	// Arrange
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	orphanAction, liveAction := uuid.New(), uuid.New()
	orphanTask := model.Task{ID: uuid.New(), PendingActionID: &orphanAction}
	liveTask := model.Task{ID: uuid.New(), PendingActionID: &liveAction}
	columnAction := uuid.New()
	orphanColumn := model.Column{ID: uuid.New(), PendingActionID: &columnAction}

	columns := &fakeColumns{stale: []model.Column{orphanColumn}}
	tasks := new(MockTaskStore)
	tasks.On("ListStalePending", mock.Anything, now.Add(-10*time.Minute)).Return([]model.Task{orphanTask, liveTask}, nil)
	tasks.On("ClearPending", mock.Anything, orphanTask.ID, orphanAction).Return(nil)
	counter := &restoreCount{}

	job := NewPendingSweepJob(columns, tasks, liveSet{liveAction: true}, 10*time.Minute, counter, zap.NewNop())
	job.now = func() time.Time { return now }

	// Act
	job.Run()

	// Assert
	tasks.AssertExpectations(t)
	tasks.AssertNotCalled(t, "ClearPending", mock.Anything, liveTask.ID, mock.Anything)
	assert.Equal(t, []uuid.UUID{orphanColumn.ID}, columns.cleared)
	assert.Equal(t, 2, counter.n)
}

func TestNewCron_RejectsBadSpec(t *testing.T) {
	_, err := NewCron(zap.NewNop(), Entry{Name: "renumber", Spec: "every tuesday", Job: NewRenumberJob(nil, nil, 8, zap.NewNop())})
	assert.Error(t, err)
}

func TestNewCron_RegistersEntries(t *testing.T) {
	lister := new(MockTaskColumnLister)
	c, err := NewCron(zap.NewNop(),
		Entry{Name: "renumber", Spec: "@every 10m", Job: NewRenumberJob(lister, new(MockTaskNormalizer), 8, zap.NewNop())},
		Entry{Name: "sweep", Spec: "*/5 * * * *", Job: NewPendingSweepJob(&fakeColumns{}, new(MockTaskStore), liveSet{}, time.Minute, nil, zap.NewNop())},
	)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
}
