package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"restaurant-app/internal/infra/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBroker shares events between API instances through Redis pub/sub.
type RedisBroker struct {
	client *redis.Client
	prefix string
}

var _ Broker = (*RedisBroker)(nil)

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client, prefix: "orders:"}
}

func (b *RedisBroker) channel(orgID int64) string {
	return fmt.Sprintf("%s%d", b.prefix, orgID)
}

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.client.Publish(ctx, b.channel(ev.OrgID), payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, orgID int64) (<-chan Event, func()) {
	sub := b.client.Subscribe(ctx, b.channel(orgID))
	out := make(chan Event, subscriberBuffer)
	done := make(chan struct{})

	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.WarnContext(ctx, "Invalid realtime payload", "channel", msg.Channel, logger.ErrAttr(err))
					continue
				}
				select {
				case out <- ev:
				default:
					slog.WarnContext(ctx, "Dropping realtime event for slow subscriber", "org_id", orgID)
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := sub.Close(); err != nil {
				slog.WarnContext(ctx, "Failed to close redis subscription", logger.ErrAttr(err))
			}
		})
	}
	return out, cancel
}
