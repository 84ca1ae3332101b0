package simulation

import (
	"sync"

	"ArbiOps/internal/model"
)

// Broker fans snapshots out to subscribers. Publish never blocks: a subscriber
// that falls behind loses its oldest pending snapshot.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan *model.Snapshot
	next   int
	latest *model.Snapshot
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan *model.Snapshot)}
}

// Subscribe returns a channel of snapshots and a function that unsubscribes and
// closes it. The latest snapshot, if any, is delivered first.
func (b *Broker) Subscribe(buffer int) (<-chan *model.Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan *model.Snapshot, buffer)
	if b.latest != nil {
		ch <- b.latest
	}
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Publish delivers snap to every subscriber.
func (b *Broker) Publish(snap *model.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest = snap
	for _, ch := range b.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// full: drop the oldest pending snapshot and retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Latest returns the most recently published snapshot, or nil.
func (b *Broker) Latest() *model.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest
}

// Subscribers reports the current subscriber count.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
