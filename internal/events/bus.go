// Package events carries refresh notifications from the web-facing
// handlers to desktop listeners. The original pushed Tk callbacks onto the
// GUI event loop from the server thread; here the handoff is an explicit
// in-process queue.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type classifies which view a listener should refresh.
type Type string

const (
	TypeSales         Type = "vendas"
	TypeCatalog       Type = "espetinhos"
	TypeStock         Type = "estoque"
	TypeExpenses      Type = "despesas"
	TypeOrders        Type = "pedidos"
	TypeConsolidation Type = "consolidacao"
)

// Event is one refresh notification.
type Event struct {
	ID      string    `json:"id"`
	Type    Type      `json:"tipo"`
	Message string    `json:"mensagem"`
	At      time.Time `json:"em"`
}

const subscriberBuffer = 16

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full loses the event, which is fine for refresh hints.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
	now  func() time.Time
}

// NewBus builds an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: map[int]chan Event{}, now: time.Now}
}

// Publish sends an event to every subscriber.
func (b *Bus) Publish(t Type, message string) {
	evt := Event{ID: uuid.NewString(), Type: t, Message: message, At: b.now()}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a listener. The returned cancel func must be called to
// release the subscription.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
