package model

import "sync"

// Broadcaster fans a single stream of values out to many subscribers. Each
// subscriber gets its own buffered channel; a subscriber that falls behind
// loses messages rather than stalling the publisher. Every event published
// here is an idempotent state snapshot, so a dropped message is corrected
// by the next poll.
type Broadcaster[T any] struct {
	mu   sync.Mutex
	subs map[int]chan T
	next int
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a new consumer with the given buffer depth and
// returns the channel plus an unsubscribe function.
func (b *Broadcaster[T]) Subscribe(buffer int) (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan T, buffer)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

// Publish sends v to every current subscriber, dropping it for any
// subscriber whose buffer is full.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
		}
	}
}
