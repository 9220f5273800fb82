package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Mirror forwards events to an external broker so other processes can
// consume them. Best effort only.
type Mirror interface {
	Publish(ctx context.Context, ev Event) error
}

// Bus fans events out to in-process subscribers keyed by topic and mirrors
// them to the broker when one is configured. Publish never blocks and never
// fails the mutation that triggered it: a slow subscriber's event is dropped.
type Bus struct {
	logger *zap.Logger
	mirror Mirror

	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewBus(mirror Mirror, logger *zap.Logger) *Bus {
	return &Bus{
		logger: logger,
		mirror: mirror,
		subs:   make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a listener for one topic. The returned cancel func
// must be called when the listener goes away; the channel is closed then.
func (b *Bus) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan Event]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[topic], ch)
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
			b.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Publish delivers the event to current subscribers of its topic and mirrors
// it to the broker. Fire and forget.
func (b *Bus) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	for ch := range b.subs[ev.Topic] {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				zap.String("topic", ev.Topic), zap.String("type", ev.Type))
		}
	}
	b.mu.RUnlock()

	if b.mirror != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := b.mirror.Publish(ctx, ev); err != nil {
				b.logger.Warn("mirroring event to broker failed",
					zap.String("topic", ev.Topic), zap.Error(err))
			}
		}()
	}
}
