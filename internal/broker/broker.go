// Package broker fans snapshots out from the sampler to every interested
// consumer. Two kinds of consumers exist: ordered sinks, invoked synchronously
// on the publishing goroutine and guaranteed to see every snapshot in tick
// order (the tracking session), and channel subscribers with a bounded buffer
// that lose snapshots instead of stalling the tick (live viewers).
package broker

import (
	"sync"
	"sync/atomic"

	"github.com/syswatch/syswatch/internal/logger"
	"github.com/syswatch/syswatch/internal/model"
)

// Broker delivers each published snapshot to all registered consumers.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	sinks  map[int]func(model.ResourceSnapshot)
	subs   map[int]*Subscription
	log    logger.Logger
}

func New(log logger.Logger) *Broker {
	if log == nil {
		log = logger.Noop()
	}
	return &Broker{
		sinks: make(map[int]func(model.ResourceSnapshot)),
		subs:  make(map[int]*Subscription),
		log:   log,
	}
}

// Publish hands the snapshot to every consumer. Sinks run inline; channel
// subscribers get a non-blocking send. Publish itself never blocks on a
// consumer.
func (b *Broker) Publish(snap model.ResourceSnapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, fn := range b.sinks {
		fn(snap)
	}
	for id, sub := range b.subs {
		select {
		case sub.ch <- snap:
		default:
			n := sub.dropped.Add(1)
			b.log.Debug("subscriber %d full, dropped snapshot (%d total)", id, n)
		}
	}
}

// SubscribeFunc registers an ordered synchronous sink. The function runs on
// the publishing goroutine and must be fast. Returns an unsubscribe func.
func (b *Broker) SubscribeFunc(fn func(model.ResourceSnapshot)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.sinks[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.sinks, id)
		b.mu.Unlock()
	}
}

// Subscribe registers a buffered channel consumer. When the buffer is full
// the oldest pending snapshots stay and new ones are dropped for that
// subscriber only.
func (b *Broker) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan model.ResourceSnapshot, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	sub := &Subscription{C: ch, ch: ch, id: id, b: b}
	b.subs[id] = sub
	b.mu.Unlock()

	return sub
}

// Subscription is a live feed of snapshots with drop-on-full semantics.
type Subscription struct {
	// C receives snapshots until Close.
	C <-chan model.ResourceSnapshot

	ch      chan model.ResourceSnapshot
	id      int
	b       *Broker
	dropped atomic.Uint64
	once    sync.Once
}

// Close unregisters the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.b.mu.Lock()
		delete(s.b.subs, s.id)
		s.b.mu.Unlock()
		close(s.ch)
	})
}

// Dropped returns how many snapshots this subscriber missed.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}
