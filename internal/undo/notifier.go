package undo

import (
	"time"

	"github.com/google/uuid"
)

// Toast is what the user sees while an action can still be undone.
type Toast struct {
	ActionID    uuid.UUID     `json:"action_id"`
	Recipient   uuid.UUID     `json:"-"`
	Message     string        `json:"message"`
	ActionLabel string        `json:"action_label"`
	Duration    time.Duration `json:"-"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

// Notifier is the toast surface.
type Notifier interface {
	Show(t Toast)
	Error(recipient uuid.UUID, message string)
}

type nopNotifier struct{}

func (nopNotifier) Show(Toast) {}

func (nopNotifier) Error(uuid.UUID, string) {}

// Outcome labels what happened to a scheduled action.
type Outcome string

const (
	OutcomeScheduled Outcome = "scheduled"
	OutcomeCommitted Outcome = "committed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Recorder receives action outcomes, typically for metrics.
type Recorder interface {
	RecordOutcome(o Outcome)
}
