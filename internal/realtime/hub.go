package realtime

import (
	"sync"

	"printhub/pkg/logger"
	"printhub/pkg/model"
)

const DefaultSubscriberBuffer = 64

type subscriber struct {
	ch   chan model.ChangeEvent
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub fans change events out to the subscribers of each shop.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
	log    *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[*subscriber]struct{}),
		log:  log,
	}
}

// Subscribe registers a listener for shopOwnerID. The returned channel is
// closed when cancel is called, when the hub stops, or when the subscriber
// falls behind by more than buf events.
func (h *Hub) Subscribe(shopOwnerID string, buf int) (<-chan model.ChangeEvent, func()) {
	if buf <= 0 {
		buf = DefaultSubscriberBuffer
	}
	sub := &subscriber{ch: make(chan model.ChangeEvent, buf)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	if h.subs[shopOwnerID] == nil {
		h.subs[shopOwnerID] = make(map[*subscriber]struct{})
	}
	h.subs[shopOwnerID][sub] = struct{}{}
	h.mu.Unlock()

	return sub.ch, func() { h.remove(shopOwnerID, sub) }
}

func (h *Hub) remove(shopOwnerID string, sub *subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[shopOwnerID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, shopOwnerID)
		}
	}
	h.mu.Unlock()
	sub.close()
}

// Broadcast delivers ev without blocking and returns the number of
// subscribers reached. A subscriber whose buffer is full is disconnected so
// it resynchronises instead of silently missing an event.
func (h *Hub) Broadcast(ev model.ChangeEvent) int {
	h.mu.RLock()
	var delivered int
	var slow []*subscriber
	for sub := range h.subs[ev.ShopOwnerID] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.log.Warn("disconnecting slow realtime subscriber", "shop_owner_id", ev.ShopOwnerID)
		h.remove(ev.ShopOwnerID, sub)
	}
	return delivered
}

func (h *Hub) Subscribers(shopOwnerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[shopOwnerID])
}

// Stop closes every subscription and rejects new ones.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for sub := range set {
			sub.close()
		}
		delete(h.subs, id)
	}
}
