package watchbus

import "sync"

const defaultQueueSize = 1024

// Bus fans events out to subscribers through bounded, per-subscriber
// channels. Overflow drops the oldest queued event and marks the next
// delivered event ResyncNeeded, rather than blocking the publisher or
// growing without bound.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int]*subscriber
	nextID      int
	queueSize   int
}

type subscriber struct {
	ch     chan Event
	behind bool
}

// New returns a Bus with the default 1024-deep per-subscriber queue.
func New() *Bus {
	return NewWithQueueSize(defaultQueueSize)
}

// NewWithQueueSize returns a Bus with a custom per-subscriber queue depth,
// mainly so tests can exercise overflow without creating 1024 events.
func NewWithQueueSize(size int) *Bus {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Bus{subscribers: map[int]*subscriber{}, queueSize: size}
}

// Subscription is a handle returned by Subscribe; Events yields delivered
// events and Close stops delivery and releases the subscriber's queue.
type Subscription struct {
	bus *Bus
	id  int
	ch  <-chan Event
}

// Events returns the channel events are delivered on.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Close unsubscribes and closes the underlying channel.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s.id)
}

// Subscribe registers a new subscriber and returns its handle.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	sub := &subscriber{ch: make(chan Event, b.queueSize)}
	b.subscribers[id] = sub
	return &Subscription{bus: b, id: id, ch: sub.ch}
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}

// Publish delivers event to every subscriber. A subscriber whose queue is
// full has its oldest queued event dropped to make room, and is marked
// behind so the next event it actually receives carries ResyncNeeded.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subscribers {
		e := event
		if sub.behind {
			e.ResyncNeeded = true
			sub.behind = false
		}
		select {
		case sub.ch <- e:
		default:
			// Drop the oldest queued event to make room, then retry once.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- e:
			default:
			}
			sub.behind = true
		}
	}
}

// SubscriberCount reports how many subscribers are currently registered.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
