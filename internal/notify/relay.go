package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	publishTimeout = 2 * time.Second
	reconnectDelay = time.Second
)

type relayMessage struct {
	Recipient uuid.UUID       `json:"recipient"`
	Payload   json.RawMessage `json:"payload"`
}

// RedisRelay fans toasts out through a Redis channel so that every
// instance delivers to the sockets it holds.
type RedisRelay struct {
	rc      *redis.Client
	channel string
	local   Publisher
	logger  *zap.Logger
}

func NewRedisRelay(rc *redis.Client, channel string, local Publisher, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{rc: rc, channel: channel, local: local, logger: logger}
}

// NewRedisClient connects to a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// Publish sends payload through Redis. When Redis is unreachable the
// payload is delivered to local sockets only.
func (r *RedisRelay) Publish(recipient uuid.UUID, payload []byte) {
	data, err := json.Marshal(relayMessage{Recipient: recipient, Payload: payload})
	if err != nil {
		r.logger.Error("Failed to encode relay message", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.rc.Publish(ctx, r.channel, data).Err(); err != nil {
		r.logger.Warn("Redis publish failed, delivering locally", zap.Error(err))
		r.local.Publish(recipient, payload)
	}
}

// Run delivers relayed messages to local sockets until ctx is done,
// resubscribing if the channel closes.
func (r *RedisRelay) Run(ctx context.Context) {
	for {
		sub := r.rc.Subscribe(ctx, r.channel)
		ch := sub.Channel()
	loop:
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop
				}
				var m relayMessage
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					r.logger.Error("Unable to parse relay message", zap.Error(err))
					continue
				}
				r.local.Publish(m.Recipient, m.Payload)
			}
		}
		sub.Close()
		if ctx.Err() != nil {
			return
		}
		r.logger.Error("Pubsub channel closed, reconnecting")
		if !wait(ctx, reconnectDelay) {
			return
		}
	}
}

// wait pauses for d and reports false if ctx ends first.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
