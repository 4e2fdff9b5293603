// Package eventbus delivers session, transport and library events in process.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
)

var errClosed = errors.New("event bus already closed")

// SyncEventBus delivers each event on the publisher's goroutine to every
// matching subscription, in the order the subscriptions were made.
//
// Thread-safety: subscriptions may change while events are published. A
// handler that unsubscribes during delivery still sees the event in flight.
//
// Handlers must return quickly. The publisher waits for every one of them.
type SyncEventBus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	closed bool
}

// subscription is one registered handler. An empty eventType matches every event.
type subscription struct {
	id        domain.SubscriptionID
	eventType domain.EventType
	filter    ports.EventFilter
	handler   domain.EventHandler
}

func (s subscription) wants(eventType domain.EventType) bool {
	return s.eventType == "" || s.eventType == eventType
}

// NewSyncEventBus creates an empty bus.
func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{}
}

// SetLogger sets the logger used to report handler panics.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.logger = logger
}

// Publish delivers event to its subscribers. Nil events and a closed bus are ignored.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	eventType := event.Type()
	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	targets := lo.Filter(bus.subs, func(s subscription, _ int) bool { return s.wants(eventType) })
	logger := bus.logger
	bus.mu.RUnlock()

	for _, sub := range targets {
		if sub.filter != nil && !sub.filter(event) {
			continue
		}
		deliver(logger, sub, event)
	}
}

// deliver runs one handler, recovering a panic so the remaining handlers still run.
func deliver(logger *slog.Logger, sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()
	sub.handler(event)
}

func (bus *SyncEventBus) add(eventType domain.EventType, filter ports.EventFilter, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	id := domain.SubscriptionID(fmt.Sprintf("sub-%d", bus.nextID))
	bus.subs = append(bus.subs, subscription{
		id:        id,
		eventType: eventType,
		filter:    filter,
		handler:   handler,
	})
	return id
}

// Subscribe registers handler for events of eventType.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(eventType, nil, handler)
}

// SubscribeFiltered registers handler for the events of eventType accepted by filter.
func (bus *SyncEventBus) SubscribeFiltered(eventType domain.EventType, filter ports.EventFilter, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(eventType, filter, handler)
}

// SubscribeAll registers handler for every event.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add("", nil, handler)
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.subs = lo.Reject(bus.subs, func(s subscription, _ int) bool { return s.id == id })
}

// HasSubscribers reports whether a published event of eventType would reach
// any handler, ignoring filters.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return lo.ContainsBy(bus.subs, func(s subscription) bool { return s.wants(eventType) })
}

// Close drops every subscription. Publishing afterwards is a no-op and a
// second Close returns an error.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return errClosed
	}
	bus.closed = true
	bus.subs = nil
	return nil
}

// Tracer returns a SubscribeAll handler that logs every event at debug level.
// Progress events are skipped since they arrive several times a second.
func Tracer(logger *slog.Logger) domain.EventHandler {
	return func(event domain.Event) {
		if event.Type() == domain.EventTrackProgress {
			return
		}
		logger.Debug("event",
			slog.String("type", string(event.Type())),
			slog.Time("at", event.Timestamp()))
	}
}

var _ ports.FilteringEventBus = (*SyncEventBus)(nil)
