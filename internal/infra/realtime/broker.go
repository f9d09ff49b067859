package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderPaid    = "order.paid"
)

// Event is what kitchen and floor screens receive.
type Event struct {
	Type    string          `json:"type"`
	OrgID   int64           `json:"org_id,string"`
	OrderID int64           `json:"order_id,string"`
	Status  string          `json:"status,omitempty"`
	Order   json.RawMessage `json:"order,omitempty"`
	SentAt  time.Time       `json:"sent_at"`
}

type Broker interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe returns a channel of events for the org and a cancel func that
	// must be called to release the subscription.
	Subscribe(ctx context.Context, orgID int64) (<-chan Event, func())
}

const subscriberBuffer = 32

// MemoryBroker fans events out to subscribers of the same process.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[int64]map[chan Event]struct{}
}

var _ Broker = (*MemoryBroker)(nil)

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[int64]map[chan Event]struct{})}
}

func (b *MemoryBroker) Publish(ctx context.Context, ev Event) error {
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[ev.OrgID] {
		select {
		case ch <- ev:
		default:
			// slow consumer; the screen refetches on reconnect
			slog.WarnContext(ctx, "Dropping realtime event for slow subscriber", "org_id", ev.OrgID, "type", ev.Type)
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, orgID int64) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.subs[orgID] == nil {
		b.subs[orgID] = make(map[chan Event]struct{})
	}
	b.subs[orgID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[orgID], ch)
			if len(b.subs[orgID]) == 0 {
				delete(b.subs, orgID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers reports the number of live subscriptions for an org.
func (b *MemoryBroker) Subscribers(orgID int64) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[orgID])
}

var Default Broker = NewMemoryBroker()

func SetDefault(b Broker) {
	Default = b
}
