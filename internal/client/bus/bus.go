// Package bus provides the typed notification channel that replaces the
// browser storage event: components publish credential-change signals and
// subscribers re-derive their state instead of trusting in-memory caches.
// The mechanism (in-process channels, storage polling) is decoupled from
// the contract, which is just "re-derive on notification".
package bus

import "time"

// Kind identifies a notification payload.
type Kind string

// KindCredentialChanged signals that the bearer credential in durable
// storage was written or cleared, possibly by another process.
const KindCredentialChanged Kind = "credential-changed"

// Event is a single notification.
type Event struct {
	Kind Kind
	At   time.Time
}

// Bus distributes events to subscribers.
type Bus interface {
	// Publish sends an event to all subscribers. It never blocks; slow
	// subscribers drop events.
	Publish(event Event)

	// Subscribe registers a subscriber. The returned Subscription must be
	// closed when done.
	Subscribe() Subscription

	// Close shuts down the bus and all subscriptions.
	Close() error
}

// Subscription receives events.
type Subscription interface {
	// Events returns the channel events are delivered on. It is closed
	// when the subscription or the bus closes.
	Events() <-chan Event

	// Close unsubscribes and releases resources.
	Close() error
}
