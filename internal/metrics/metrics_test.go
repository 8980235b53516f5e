package metrics

import (
	"net/http"
	"testing"
	"time"

	"ideaboard/internal/undo"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, nil), reg
}

func TestRecordOutcome(t *testing.T) {
	m, _ := newTestMetrics(t)

	var rec undo.Recorder = m
	rec.RecordOutcome(undo.OutcomeScheduled)
	rec.RecordOutcome(undo.OutcomeScheduled)
	rec.RecordOutcome(undo.OutcomeCancelled)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UndoActionsTotal.WithLabelValues("scheduled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UndoActionsTotal.WithLabelValues("cancelled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.UndoActionsTotal.WithLabelValues("failed")))
}

func TestRecordRenumber(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordRenumber("task", "insert", 7)
	m.RecordRenumber("task", "job", 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenumbersTotal.WithLabelValues("task", "insert")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.RenumberedRows))
}

func TestRecordHTTPRequest(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordHTTPRequest(http.MethodPost, "/tasks/:id/move", 200, 30*time.Millisecond)
	m.RecordHTTPRequest(http.MethodPost, "/tasks/:id/move", 404, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/tasks/:id/move", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/tasks/:id/move", "4xx")))
}

func TestWebsocketGauge(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.WebsocketOpened()
	m.WebsocketOpened()
	m.WebsocketClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebsocketConnections))
}

func TestCategorizeStatus(t *testing.T) {
	cases := map[int]string{200: "2xx", 204: "2xx", 301: "3xx", 422: "4xx", 503: "5xx", 100: "unknown"}
	for code, want := range cases {
		assert.Equal(t, want, categorizeStatus(code), "code %d", code)
	}
}

func TestMetricNamesAreNamespaced(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.RecordOutcome(undo.OutcomeCommitted)
	m.RecordRenumber("column", "job", 1)
	m.RecordHTTPRequest("GET", "/boards", 200, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	for _, f := range families {
		assert.Regexp(t, `^ideaboard_[a-z_]+$`, f.GetName())
	}
}

func TestSafeExecuteRecoversPanic(t *testing.T) {
	m, _ := newTestMetrics(t)

	assert.NotPanics(t, func() {
		m.safeExecute("boom", func() { panic("collector exploded") })
	})
}
