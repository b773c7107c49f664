// Package events is the in-process subscription bus that replaces ad-hoc
// refresh broadcasts between the state holder, widgets and collectors.
//
// Delivery is per-subscriber FIFO and Publish never blocks. When a
// subscriber's buffer is full the oldest pending event is dropped to make
// room, so receivers must treat events as "something changed, re-read".
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

type Topic string

const (
	Water       Topic = "water"
	Steps       Topic = "steps"
	Workouts    Topic = "workouts"
	Preferences Topic = "preferences"
	MediaUpdate Topic = "media-update"
	MediaClear  Topic = "media-clear"
	// External means another process committed to the database.
	External Topic = "external"
)

// DataTopics are the topics that signal a change in persisted data.
var DataTopics = []Topic{Water, Steps, Workouts, Preferences, External}

type Event struct {
	Topic Topic
	At    time.Time

	// Set for media events only.
	App    string
	Track  string
	Artist string
}

type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func New() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscription receives events for the topics it was created with.
type Subscription struct {
	bus     *Bus
	topics  map[Topic]bool
	ch      chan Event
	dropped atomic.Uint64
	once    sync.Once
}

// Subscribe registers a receiver with the given buffer size. No topics means
// every topic. A closed bus returns an already-closed subscription.
func (b *Bus) Subscribe(buffer int, topics ...Topic) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	s := &Subscription{bus: b, ch: make(chan Event, buffer)}
	if len(topics) > 0 {
		s.topics = make(map[Topic]bool, len(topics))
		for _, t := range topics {
			s.topics[t] = true
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Publish delivers e to every matching subscriber without blocking.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		if s.topics != nil && !s.topics[e.Topic] {
			continue
		}
		s.deliver(e)
	}
}

// Notify publishes a bare event for topic.
func (b *Bus) Notify(topic Topic) {
	b.Publish(Event{Topic: topic})
}

// Close closes every subscription. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		s.once.Do(func() { close(s.ch) })
	}
	b.subs = nil
}

// deliver must be called with the bus lock held.
func (s *Subscription) deliver(e Event) {
	select {
	case s.ch <- e:
		return
	default:
	}
	// Full: drop the oldest pending event.
	select {
	case <-s.ch:
		s.dropped.Add(1)
	default:
	}
	select {
	case s.ch <- e:
	default:
		s.dropped.Add(1)
	}
}

// C returns the receive channel. It is closed by Close or Bus.Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Dropped reports how many events were discarded because the buffer was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Subscription) Close() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs != nil {
		delete(b.subs, s)
	}
	s.once.Do(func() { close(s.ch) })
}
