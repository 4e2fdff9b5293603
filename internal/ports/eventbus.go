// Package ports declares the interfaces the services depend on.
package ports

import (
	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

// EventBus carries domain events between the session, the transport, the
// library importer and the command line. Implementations must be safe for
// concurrent use.
//
//	id := bus.Subscribe(domain.EventTrackStarted, func(e domain.Event) {
//	    started := e.(domain.TrackStartedEvent)
//	    fmt.Println("playing", started.Track.DisplayTitle())
//	})
//	defer bus.Unsubscribe(id)
type EventBus interface {
	// Publish delivers event to every matching subscription. It returns once
	// the handlers of a synchronous bus have run.
	Publish(event domain.Event)

	// Subscribe registers handler for events of eventType. Each call gets its own ID.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a subscription. Unknown IDs are ignored.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers handler for every event, as the debug trace does.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers reports whether an event of eventType would reach a handler.
	// Publishers use it to skip building events nobody reads.
	HasSubscribers(eventType domain.EventType) bool

	// Close drops all subscriptions.
	Close() error
}

// EventFilter decides whether an event reaches a filtered subscription.
type EventFilter func(event domain.Event) bool

// FilteringEventBus adds filtered subscriptions to EventBus.
type FilteringEventBus interface {
	EventBus

	// SubscribeFiltered registers handler for the events of eventType accepted
	// by filter. The session uses it to drop notifications for superseded tickets:
	//
	//	bus.SubscribeFiltered(domain.EventTrackEnded, s.isLatestTicket, s.onTrackEnded)
	SubscribeFiltered(eventType domain.EventType, filter EventFilter, handler domain.EventHandler) domain.SubscriptionID
}
