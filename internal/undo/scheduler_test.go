package undo_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ideaboard/internal/undo"
	"ideaboard/internal/undo/undotest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	execute atomic.Int32
	undo    atomic.Int32
}

func (c *counter) request(executeErr error) undo.Request {
	return undo.Request{
		Recipient: uuid.New(),
		Message:   "Task deleted",
		Execute: func(ctx context.Context) error {
			c.execute.Add(1)
			return executeErr
		},
		Undo: func(ctx context.Context) error {
			c.undo.Add(1)
			return nil
		},
	}
}

type outcomes struct {
	got []undo.Outcome
}

func (o *outcomes) RecordOutcome(out undo.Outcome) { o.got = append(o.got, out) }

func setup() (*undo.Scheduler, *undotest.Clock, *undotest.Notifier, *outcomes) {
	clock := undotest.NewClock()
	notifier := &undotest.Notifier{}
	rec := &outcomes{}
	s := undo.NewScheduler(
		undo.WithClock(clock),
		undo.WithNotifier(notifier),
		undo.WithRecorder(rec),
	)
	return s, clock, notifier, rec
}

func TestSchedule_RejectsIncompleteRequest(t *testing.T) {
	s, _, _, _ := setup()

	_, err := s.Schedule(undo.Request{Message: "x"})
	assert.ErrorIs(t, err, undo.ErrInvalidRequest)
}

func TestSchedule_ShowsToastImmediately(t *testing.T) {
	s, clock, notifier, _ := setup()
	c := &counter{}

	a, err := s.Schedule(c.request(nil))
	require.NoError(t, err)

	toasts := notifier.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, a.ID, toasts[0].ActionID)
	assert.Equal(t, "Task deleted", toasts[0].Message)
	assert.Equal(t, undo.ActionLabel, toasts[0].ActionLabel)
	assert.Equal(t, undo.DefaultDuration, toasts[0].Duration)
	assert.Equal(t, clock.Now().Add(undo.DefaultDuration), a.Deadline)
	assert.Equal(t, undo.StatePending, a.State())
	assert.Zero(t, c.execute.Load())
}

func TestCancel_BeforeDeadline(t *testing.T) {
	s, clock, _, rec := setup()
	c := &counter{}

	a, err := s.Schedule(c.request(nil))
	require.NoError(t, err)

	require.NoError(t, a.Cancel())
	clock.Add(time.Minute)

	assert.EqualValues(t, 0, c.execute.Load())
	assert.EqualValues(t, 1, c.undo.Load())
	assert.Equal(t, undo.StateCancelled, a.State())
	assert.Equal(t, []undo.Outcome{undo.OutcomeScheduled, undo.OutcomeCancelled}, rec.got)

	_, live := s.Lookup(a.ID)
	assert.False(t, live)
}

func TestCancel_Twice(t *testing.T) {
	s, _, _, _ := setup()
	c := &counter{}

	a, _ := s.Schedule(c.request(nil))
	require.NoError(t, a.Cancel())

	assert.ErrorIs(t, a.Cancel(), undo.ErrSettled)
	assert.EqualValues(t, 1, c.undo.Load())
}

func TestCommit_AfterDuration(t *testing.T) {
	s, clock, notifier, rec := setup()
	c := &counter{}
	req := c.request(nil)
	req.Duration = time.Second

	a, err := s.Schedule(req)
	require.NoError(t, err)

	clock.Add(999 * time.Millisecond)
	assert.EqualValues(t, 0, c.execute.Load())

	clock.Add(time.Millisecond)
	undotest.WaitSettled(t, a)
	assert.EqualValues(t, 1, c.execute.Load())
	assert.EqualValues(t, 0, c.undo.Load())
	assert.Empty(t, notifier.Errors())
	assert.Equal(t, undo.StateCommitted, a.State())
	assert.Equal(t, []undo.Outcome{undo.OutcomeScheduled, undo.OutcomeCommitted}, rec.got)

	select {
	case <-a.Done():
	default:
		t.Fatal("committed action should be done")
	}
	assert.ErrorIs(t, a.Cancel(), undo.ErrSettled)
	assert.EqualValues(t, 0, c.undo.Load())
}

func TestCommit_FailureRollsBack(t *testing.T) {
	s, clock, notifier, rec := setup()
	c := &counter{}
	req := c.request(errors.New("backend unavailable"))
	req.Duration = time.Second

	a, err := s.Schedule(req)
	require.NoError(t, err)
	clock.Add(time.Second)
	undotest.WaitSettled(t, a)

	assert.EqualValues(t, 1, c.execute.Load())
	assert.EqualValues(t, 1, c.undo.Load())
	assert.Equal(t, []string{undo.DefaultErrorMessage}, notifier.Errors())
	assert.Equal(t, undo.StateRolledBack, a.State())
	assert.Equal(t, []undo.Outcome{undo.OutcomeScheduled, undo.OutcomeFailed}, rec.got)
}

func TestCommit_FailureUsesCallerMessage(t *testing.T) {
	s, clock, notifier, _ := setup()
	c := &counter{}
	req := c.request(errors.New("boom"))
	req.ErrorMessage = "Could not delete task"

	a, err := s.Schedule(req)
	require.NoError(t, err)
	clock.Add(undo.DefaultDuration)
	undotest.WaitSettled(t, a)

	assert.Equal(t, []string{"Could not delete task"}, notifier.Errors())
}

func TestUndoClickedMidWindow_DeleteNeverIssued(t *testing.T) {
	s, clock, _, _ := setup()
	c := &counter{}

	a, err := s.Schedule(c.request(nil))
	require.NoError(t, err)

	clock.Add(time.Second)
	require.NoError(t, a.Cancel())
	clock.Add(10 * time.Second)

	assert.EqualValues(t, 0, c.execute.Load())
	assert.EqualValues(t, 1, c.undo.Load())
}

func TestCancel_DuringCommitIsRefused(t *testing.T) {
	s, clock, _, _ := setup()
	var undone atomic.Int32
	var a *undo.Action
	var cancelErr error

	a, err := s.Schedule(undo.Request{
		Message: "Column deleted",
		Execute: func(ctx context.Context) error {
			// the user clicks Undo while the commit is on the wire
			cancelErr = a.Cancel()
			return nil
		},
		Undo: func(ctx context.Context) error {
			undone.Add(1)
			return nil
		},
	})
	require.NoError(t, err)

	clock.Add(undo.DefaultDuration)
	undotest.WaitSettled(t, a)

	assert.ErrorIs(t, cancelErr, undo.ErrCommitInFlight)
	assert.EqualValues(t, 0, undone.Load())
	assert.Equal(t, undo.StateCommitted, a.State())
}

func TestActionsAreIndependent(t *testing.T) {
	s, clock, _, _ := setup()
	first, second := &counter{}, &counter{}

	reqA := first.request(nil)
	reqA.Duration = time.Second
	reqB := second.request(nil)
	reqB.Duration = 3 * time.Second

	a, _ := s.Schedule(reqA)
	b, _ := s.Schedule(reqB)
	assert.Len(t, s.Pending(uuid.Nil), 2)
	assert.Len(t, s.Pending(a.Recipient), 1)

	clock.Add(2 * time.Second)
	undotest.WaitSettled(t, a)
	assert.EqualValues(t, 1, first.execute.Load())
	assert.EqualValues(t, 0, second.execute.Load())
	assert.Len(t, s.Pending(uuid.Nil), 1)

	clock.Add(time.Second)
	undotest.WaitSettled(t, b)
	assert.EqualValues(t, 1, second.execute.Load())
	assert.Empty(t, s.Pending(uuid.Nil))
}

func TestFlush_CommitsPending(t *testing.T) {
	s, clock, _, _ := setup()
	c := &counter{}

	a, _ := s.Schedule(c.request(nil))
	require.NoError(t, s.Flush(context.Background()))

	assert.EqualValues(t, 1, c.execute.Load())
	assert.Equal(t, undo.StateCommitted, a.State())

	// the stopped timer must not commit a second time
	clock.Add(time.Minute)
	assert.EqualValues(t, 1, c.execute.Load())
}

func TestRollbackErrorIsReturnedFromCancel(t *testing.T) {
	s, _, _, _ := setup()

	a, err := s.Schedule(undo.Request{
		Message: "Task archived",
		Execute: func(ctx context.Context) error { return nil },
		Undo:    func(ctx context.Context) error { return errors.New("db down") },
	})
	require.NoError(t, err)

	err = a.Cancel()
	assert.Error(t, err)
	assert.Equal(t, undo.StateCancelled, a.State())
}

func TestWallClock_Commits(t *testing.T) {
	s := undo.NewScheduler()
	c := &counter{}
	req := c.request(nil)
	req.Duration = 10 * time.Millisecond

	a, err := s.Schedule(req)
	require.NoError(t, err)

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("action did not commit")
	}
	assert.EqualValues(t, 1, c.execute.Load())
}

func TestSchedule_CallerChosenID(t *testing.T) {
	s, _, _, _ := setup()
	c := &counter{}
	req := c.request(nil)
	req.ID = uuid.New()

	a, err := s.Schedule(req)
	require.NoError(t, err)
	assert.Equal(t, req.ID, a.ID)

	_, err = s.Schedule(req)
	assert.ErrorIs(t, err, undo.ErrInvalidRequest)
}
