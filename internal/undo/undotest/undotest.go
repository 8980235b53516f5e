// Package undotest provides a mock clock and a recording notifier for tests
// of code built on package undo.
package undotest

import (
	"sync"
	"testing"
	"time"

	"ideaboard/internal/undo"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Clock is the mock clock tests move with Add.
type Clock = clock.Mock

// NewClock returns a mock clock stopped at a fixed instant.
func NewClock() *Clock {
	c := clock.NewMock()
	c.Set(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return c
}

// WaitSettled blocks until every action is committed, cancelled or rolled
// back. Mock timers run their callbacks on their own goroutine.
func WaitSettled(t testing.TB, actions ...*undo.Action) {
	t.Helper()
	for _, a := range actions {
		select {
		case <-a.Done():
		case <-time.After(2 * time.Second):
			t.Fatalf("action %s did not settle, state %s", a.ID, a.State())
		}
	}
}

// Notifier records what would have been shown to users.
type Notifier struct {
	mu     sync.Mutex
	toasts []undo.Toast
	errors []string
}

func (n *Notifier) Show(t undo.Toast) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, t)
}

func (n *Notifier) Error(_ uuid.UUID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *Notifier) Toasts() []undo.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]undo.Toast(nil), n.toasts...)
}

func (n *Notifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}
