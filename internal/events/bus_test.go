package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesEverySubscriber(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe()
	b, cancelB := bus.Subscribe()
	defer cancelA()
	defer cancelB()

	bus.Publish(TypeSales, "Venda Mobile: 2x GADO - R$ 12.00")

	for _, ch := range []<-chan Event{a, b} {
		select {
		case evt := <-ch:
			require.Equal(t, TypeSales, evt.Type)
			require.Equal(t, "Venda Mobile: 2x GADO - R$ 12.00", evt.Message)
			require.NotEmpty(t, evt.ID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish(TypeStock, "estoque atualizado")
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	require.Len(t, ch, subscriberBuffer)
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	// publishing after cancel must not panic on the closed channel
	bus.Publish(TypeOrders, "pedido atualizado")

	_, open := <-ch
	require.False(t, open)

	// cancel is idempotent
	cancel()
}
