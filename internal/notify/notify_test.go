package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ideaboard/internal/undo"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	recipient uuid.UUID
	payload   string
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []recorded
}

func (p *recordingPublisher) Publish(recipient uuid.UUID, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, recorded{recipient, string(payload)})
}

func (p *recordingPublisher) all() []recorded {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recorded(nil), p.msgs...)
}

type connCount struct {
	mu   sync.Mutex
	open int
}

func (c *connCount) WebsocketOpened() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open++
}

func (c *connCount) WebsocketClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open--
}

func (c *connCount) current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func TestToastNotifier_Show(t *testing.T) {
	out := &recordingPublisher{}
	n := NewToastNotifier(out, nil)
	recipient := uuid.New()
	actionID := uuid.New()

	n.Show(undo.Toast{ActionID: actionID, Recipient: recipient, Message: "Task deleted", ActionLabel: "Undo"})
	n.Error(recipient, "Could not delete the task")
	n.Show(undo.Toast{Message: "nobody"})

	msgs := out.all()
	require.Len(t, msgs, 2)
	assert.Equal(t, recipient, msgs[0].recipient)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(msgs[0].payload), &ev))
	assert.Equal(t, EventToast, ev.Type)
	require.NotNil(t, ev.Toast)
	assert.Equal(t, actionID, ev.Toast.ActionID)
	assert.Equal(t, "Undo", ev.Toast.ActionLabel)

	require.NoError(t, json.Unmarshal([]byte(msgs[1].payload), &ev))
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "Could not delete the task", ev.Message)
}

func TestHub_DeliversToUserSockets(t *testing.T) {
	tracker := &connCount{}
	hub := NewHub(tracker, nil)
	userID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, userID)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, tracker.current())

	hub.Publish(uuid.New(), []byte(`{"type":"toast","message":"not yours"}`))
	hub.Publish(userID, []byte(`{"type":"toast","message":"yours"}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"toast","message":"yours"}`, string(data))

	hub.Close()
	assert.Equal(t, 0, hub.Connections(userID))
	assert.Equal(t, 0, tracker.current())
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub(nil, nil)
	userID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, userID)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRedisRelay(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	defer m.Close()
	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer rc.Close()

	local := &recordingPublisher{}
	relay := NewRedisRelay(rc, "toasts", local, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return m.PubSubNumSub("toasts")["toasts"] > 0 }, time.Second, 10*time.Millisecond)

	recipient := uuid.New()
	relay.Publish(recipient, []byte(`{"type":"error","message":"boom"}`))

	require.Eventually(t, func() bool { return len(local.all()) == 1 }, time.Second, 10*time.Millisecond)
	got := local.all()[0]
	assert.Equal(t, recipient, got.recipient)
	assert.JSONEq(t, `{"type":"error","message":"boom"}`, got.payload)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not exit")
	}
}

func TestRedisRelay_FallsBackToLocal(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	defer rc.Close()
	m.Close()

	local := &recordingPublisher{}
	relay := NewRedisRelay(rc, "toasts", local, nil)
	relay.Publish(uuid.New(), []byte(`{"type":"toast"}`))

	assert.Len(t, local.all(), 1)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient("not a url")
	assert.Error(t, err)
}

func TestWait_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.False(t, wait(ctx, time.Hour))
	assert.Less(t, time.Since(start), time.Second)

	assert.True(t, wait(context.Background(), time.Millisecond))
}
