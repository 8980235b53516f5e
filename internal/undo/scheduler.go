// Package undo schedules optimistic actions that commit after a grace
// period unless the user cancels them first.
//
// The caller applies the optimistic change before scheduling. Exactly one
// of Execute or Undo runs per action: Execute when the timer elapses, Undo
// when the user cancels or when Execute fails.
package undo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultDuration      = 5 * time.Second
	DefaultCommitTimeout = 30 * time.Second
	DefaultErrorMessage  = "Something went wrong. Your change was reverted."
	ActionLabel          = "Undo"
)

var (
	ErrInvalidRequest = errors.New("undo: request needs a message, execute and undo")
	// ErrCommitInFlight is returned by Cancel once the grace period is over
	// and Execute has started. The commit is not rolled back.
	ErrCommitInFlight = errors.New("undo: commit already in progress")
	ErrSettled        = errors.New("undo: action already settled")
)

// State is the lifecycle position of an Action.
type State int

const (
	StatePending State = iota
	StateCommitting
	StateCommitted
	StateCancelled
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCommitting:
		return "committing"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	case StateRolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Request describes one deferred action. ID is optional; callers that tag
// rows with the action before scheduling pick it themselves.
type Request struct {
	ID           uuid.UUID
	Recipient    uuid.UUID
	Message      string
	Execute      func(ctx context.Context) error
	Undo         func(ctx context.Context) error
	Duration     time.Duration
	ErrorMessage string
}

// Action is a scheduled request.
type Action struct {
	ID        uuid.UUID
	Recipient uuid.UUID
	Message   string
	Deadline  time.Time

	s     *Scheduler
	req   Request
	mu    sync.Mutex
	state State
	timer *clock.Timer
	done  chan struct{}
}

// State returns the current lifecycle state.
func (a *Action) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Done is closed once the action is committed, cancelled or rolled back.
func (a *Action) Done() <-chan struct{} {
	return a.done
}

// Cancel undoes a pending action. Execute will never run for it.
func (a *Action) Cancel() error {
	a.mu.Lock()
	switch a.state {
	case StatePending:
	case StateCommitting:
		a.mu.Unlock()
		return ErrCommitInFlight
	default:
		a.mu.Unlock()
		return ErrSettled
	}
	a.state = StateCancelled
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()

	err := a.s.rollback(a)
	a.s.record(OutcomeCancelled)
	a.s.finish(a)
	return err
}

func (a *Action) fire() {
	a.mu.Lock()
	if a.state != StatePending {
		a.mu.Unlock()
		return
	}
	a.state = StateCommitting
	a.mu.Unlock()

	a.s.commit(a)
}

// Scheduler owns the timers of all pending actions. Actions are
// independent; no ordering is imposed across them.
type Scheduler struct {
	clock           clock.Clock
	notifier        Notifier
	recorder        Recorder
	logger          *zap.Logger
	baseCtx         context.Context
	commitTimeout   time.Duration
	defaultDuration time.Duration

	mu      sync.Mutex
	actions map[uuid.UUID]*Action
}

type Option func(*Scheduler)

// WithClock replaces the wall clock, typically with a clock.Mock in tests.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) { s.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithBaseContext sets the parent of every commit context.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Scheduler) { s.baseCtx = ctx }
}

func WithCommitTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.commitTimeout = d
		}
	}
}

func WithDefaultDuration(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.defaultDuration = d
		}
	}
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:           clock.New(),
		notifier:        nopNotifier{},
		logger:          zap.NewNop(),
		baseCtx:         context.Background(),
		commitTimeout:   DefaultCommitTimeout,
		defaultDuration: DefaultDuration,
		actions:         make(map[uuid.UUID]*Action),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule shows the toast for req and arms its commit timer.
func (s *Scheduler) Schedule(req Request) (*Action, error) {
	if req.Message == "" || req.Execute == nil || req.Undo == nil {
		return nil, ErrInvalidRequest
	}
	d := req.Duration
	if d <= 0 {
		d = s.defaultDuration
	}
	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	a := &Action{
		ID:        id,
		Recipient: req.Recipient,
		Message:   req.Message,
		Deadline:  s.clock.Now().Add(d),
		s:         s,
		req:       req,
		state:     StatePending,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	if _, dup := s.actions[a.ID]; dup {
		s.mu.Unlock()
		return nil, ErrInvalidRequest
	}
	s.actions[a.ID] = a
	s.mu.Unlock()

	s.notifier.Show(Toast{
		ActionID:    a.ID,
		Recipient:   a.Recipient,
		Message:     a.Message,
		ActionLabel: ActionLabel,
		Duration:    d,
		ExpiresAt:   a.Deadline,
	})
	s.record(OutcomeScheduled)

	a.mu.Lock()
	a.timer = s.clock.AfterFunc(d, a.fire)
	a.mu.Unlock()

	s.logger.Debug("Action scheduled",
		zap.String("action_id", a.ID.String()),
		zap.String("recipient", a.Recipient.String()),
		zap.Duration("duration", d),
	)
	return a, nil
}

// Lookup returns a live (not yet settled) action.
func (s *Scheduler) Lookup(id uuid.UUID) (*Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actions[id]
	return a, ok
}

// IsLive reports whether id is still pending or committing here.
func (s *Scheduler) IsLive(id uuid.UUID) bool {
	_, ok := s.Lookup(id)
	return ok
}

// Pending lists live actions for recipient, or all of them for uuid.Nil.
func (s *Scheduler) Pending(recipient uuid.UUID) []*Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Action, 0, len(s.actions))
	for _, a := range s.actions {
		if recipient == uuid.Nil || a.Recipient == recipient {
			out = append(out, a)
		}
	}
	return out
}

// Flush commits every pending action now and waits for in-flight commits.
// Used on shutdown: the user already saw these changes applied.
func (s *Scheduler) Flush(ctx context.Context) error {
	for _, a := range s.Pending(uuid.Nil) {
		a.mu.Lock()
		if a.state == StatePending {
			a.state = StateCommitting
			if a.timer != nil {
				a.timer.Stop()
			}
			a.mu.Unlock()
			s.commit(a)
			continue
		}
		a.mu.Unlock()

		select {
		case <-a.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Scheduler) commit(a *Action) {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.commitTimeout)
	err := a.req.Execute(ctx)
	cancel()

	if err == nil {
		a.mu.Lock()
		a.state = StateCommitted
		a.mu.Unlock()
		s.record(OutcomeCommitted)
		s.finish(a)
		return
	}

	s.logger.Warn("Action commit failed, rolling back",
		zap.String("action_id", a.ID.String()),
		zap.Error(err),
	)
	_ = s.rollback(a)

	a.mu.Lock()
	a.state = StateRolledBack
	a.mu.Unlock()

	msg := a.req.ErrorMessage
	if msg == "" {
		msg = DefaultErrorMessage
	}
	s.notifier.Error(a.Recipient, msg)
	s.record(OutcomeFailed)
	s.finish(a)
}

func (s *Scheduler) rollback(a *Action) error {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.commitTimeout)
	defer cancel()
	if err := a.req.Undo(ctx); err != nil {
		s.logger.Error("Action rollback failed",
			zap.String("action_id", a.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("undo: rollback %s: %w", a.ID, err)
	}
	return nil
}

func (s *Scheduler) finish(a *Action) {
	s.mu.Lock()
	delete(s.actions, a.ID)
	s.mu.Unlock()
	close(a.done)
}

func (s *Scheduler) record(o Outcome) {
	if s.recorder != nil {
		s.recorder.RecordOutcome(o)
	}
}
