// Package channel is the in-process message fabric between the transport
// bridge and the sync orchestrator.
//
// Delivery is synchronous: [Bus.Send] returns after the handler of every
// subscriber on the channel has run, in subscription order. Nothing is queued
// or retried.
package channel

import (
	"context"
	"fmt"
	"sync"
)

// Handler receives one message. A returned error is reported to the sender.
type Handler func(ctx context.Context, msg Message) error

type subscription struct {
	id      uint64
	handler Handler
}

// Bus routes messages by channel name.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers h on channel and returns a func removing it.
func (b *Bus) Subscribe(channel string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[channel] = append(b.subs[channel], subscription{id: id, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			subs := b.subs[channel]
			for i, s := range subs {
				if s.id == id {
					b.subs[channel] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(b.subs[channel]) == 0 {
				delete(b.subs, channel)
			}
		})
	}
}

// Send delivers msg to every subscriber of msg.Channel. The first handler
// error stops delivery and is returned.
func (b *Bus) Send(ctx context.Context, msg Message) error {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[msg.Channel]...)
	b.mu.RUnlock()

	if len(subs) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSubscriber, msg.Channel)
	}

	for _, s := range subs {
		if err := s.handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Subscribers returns the number of handlers on channel.
func (b *Bus) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}
