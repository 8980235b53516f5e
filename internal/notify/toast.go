package notify

import (
	"encoding/json"

	"ideaboard/internal/undo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher routes a payload to the sockets of recipient.
type Publisher interface {
	Publish(recipient uuid.UUID, payload []byte)
}

const (
	EventToast = "toast"
	EventError = "error"
)

// Event is the JSON frame written to the toast socket.
type Event struct {
	Type    string      `json:"type"`
	Toast   *undo.Toast `json:"toast,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ToastNotifier is the undo.Notifier that pushes toasts over websockets.
type ToastNotifier struct {
	out    Publisher
	logger *zap.Logger
}

var _ undo.Notifier = (*ToastNotifier)(nil)

func NewToastNotifier(out Publisher, logger *zap.Logger) *ToastNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToastNotifier{out: out, logger: logger}
}

func (n *ToastNotifier) Show(t undo.Toast) {
	n.send(t.Recipient, Event{Type: EventToast, Toast: &t})
}

func (n *ToastNotifier) Error(recipient uuid.UUID, message string) {
	n.send(recipient, Event{Type: EventError, Message: message})
}

func (n *ToastNotifier) send(recipient uuid.UUID, ev Event) {
	if recipient == uuid.Nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		n.logger.Error("Failed to encode toast", zap.Error(err))
		return
	}
	n.out.Publish(recipient, data)
}
