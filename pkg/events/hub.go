// Package events carries session notifications (state changes, edits, fit
// results) from the session to whoever renders them.
package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// subscriberBuffer is how many events a subscriber may fall behind before
// new ones are dropped for it.
const subscriberBuffer = 32

// EventHub fans published events out to subscribers. Publishing never blocks.
type EventHub struct {
	mu   sync.RWMutex
	subs map[chan Event]map[string]struct{}

	dropped atomic.Uint64
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan Event]map[string]struct{})}
}

// Subscribe returns a channel receiving the named events, or every event
// when no names are given.
func (h *EventHub) Subscribe(names ...string) chan Event {
	var filter map[string]struct{}
	if len(names) > 0 {
		filter = make(map[string]struct{}, len(names))
		for _, n := range names {
			filter[n] = struct{}{}
		}
	}

	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = filter
	h.mu.Unlock()
	return ch
}

// Unsubscribe closes ch. Unknown or already closed channels are ignored.
func (h *EventHub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Publish encodes payload and hands it to every interested subscriber. A nil
// hub is a no-op so callers may publish unconditionally.
func (h *EventHub) Publish(name string, payload any) {
	if h == nil {
		return
	}

	b, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).WithField("event", name).Error("failed to encode event")
		return
	}
	msg := Event{Name: name, Data: b}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch, filter := range h.subs {
		if filter != nil {
			if _, ok := filter[name]; !ok {
				continue
			}
		}
		select {
		case ch <- msg:
		default:
			h.dropped.Add(1)
			logrus.WithField("event", name).Debug("subscriber is full, event dropped")
		}
	}
}

// Dropped is the number of deliveries lost to full subscribers.
func (h *EventHub) Dropped() uint64 { return h.dropped.Load() }

// Drain returns every event already queued on ch without blocking.
func Drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}
