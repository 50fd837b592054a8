package events

import (
	"slices"
	"sync"
	"time"
)

// Kind names a refresh signal.
type Kind string

const (
	TaskCreated  Kind = "task-created"
	TaskUpdated  Kind = "task-updated"
	StatsUpdated Kind = "stats-updated"
)

// Event is one refresh signal.
type Event struct {
	Kind     Kind
	TaskID   string   // empty for collection-wide changes
	Unlocked []string // achievement ids unlocked by a completion, set on StatsUpdated
	Source   string   // "tracker" for in-process changes, "watcher" for writes by other processes
	At       time.Time
}

const defaultBuffer = 16

type subscription struct {
	ch    chan Event
	kinds []Kind
	once  sync.Once
}

func (s *subscription) wants(k Kind) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, k)
}

// Bus fans events out to subscribers without blocking the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	next   int
	buffer int
	closed bool
}

// NewBus creates a [Bus] whose subscriber channels hold buffer events. Zero uses a default of 16.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bus{subs: make(map[int]*subscription), buffer: buffer}
}

// Subscribe registers for the given kinds (all kinds when none are given).
//
// The returned cancel func unregisters and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(kinds ...Kind) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{ch: make(chan Event, b.buffer), kinds: kinds}
	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = sub

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			sub.once.Do(func() { close(sub.ch) })
		}
	}
	return sub.ch, cancel
}

// Publish delivers ev to every interested subscriber whose buffer has room.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.wants(ev.Kind) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Subscriber buffer full, skip this event
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close unregisters every subscriber and closes their channels. Later subscriptions receive a closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		delete(b.subs, id)
		sub.once.Do(func() { close(sub.ch) })
	}
	b.closed = true
}
