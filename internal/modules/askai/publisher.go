// README: Redis pub/sub bridge between the ask service and the SSE handler.
package askai

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const sessionChannelPrefix = "askai:session:%s:events"

// EventChannel returns the redis channel name for one client session.
func EventChannel(sessionID string) string {
	return fmt.Sprintf(sessionChannelPrefix, sessionID)
}

// Publisher fans extracted entities out to subscribed stream sessions.
type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redis *redis.Client) *Publisher {
	return &Publisher{redis: redis}
}

// Publish sends one canonical frame payload to the session's channel. The
// payload is the bare entity JSON; the SSE handler adds the "data: " prefix
// and the blank-line delimiter on the wire.
func (p *Publisher) Publish(ctx context.Context, sessionID string, payload []byte) error {
	return p.redis.Publish(ctx, EventChannel(sessionID), payload).Err()
}

// Subscribe opens a pub/sub subscription for one session. The caller owns the
// returned subscription and must close it.
func (p *Publisher) Subscribe(ctx context.Context, sessionID string) *redis.PubSub {
	return p.redis.Subscribe(ctx, EventChannel(sessionID))
}
