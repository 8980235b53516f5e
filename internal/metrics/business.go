package metrics

import "ideaboard/internal/undo"

// RecordOutcome counts a deferred action outcome. It makes *Metrics an
// undo.Recorder.
func (m *Metrics) RecordOutcome(o undo.Outcome) {
	m.safeExecute("RecordOutcome", func() {
		m.UndoActionsTotal.WithLabelValues(string(o)).Inc()
	})
}

// RecordRenumber counts one renumbered sibling list. kind is "column" or
// "task"; trigger is "insert" or "job".
func (m *Metrics) RecordRenumber(kind, trigger string, rows int) {
	m.safeExecute("RecordRenumber", func() {
		m.RenumbersTotal.WithLabelValues(kind, trigger).Inc()
		m.RenumberedRows.Add(float64(rows))
	})
}

// AddPendingRestored counts rows restored by the pending sweep.
func (m *Metrics) AddPendingRestored(n int) {
	m.safeExecute("AddPendingRestored", func() {
		m.PendingRestored.Add(float64(n))
	})
}

func (m *Metrics) WebsocketOpened() {
	m.safeExecute("WebsocketOpened", func() { m.WebsocketConnections.Inc() })
}

func (m *Metrics) WebsocketClosed() {
	m.safeExecute("WebsocketClosed", func() { m.WebsocketConnections.Dec() })
}
