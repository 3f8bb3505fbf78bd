package broadcast

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	hub := NewHub(4, nil)
	a := hub.Subscribe("provider", 1)
	b := hub.Subscribe("consumer", 2)

	event := Event{Type: EventNewOrder, OrderLineID: 10, BundleID: "b-1", ProviderID: 1, ConsumerID: 2}
	hub.Publish(event)

	for _, sub := range []*Subscriber{a, b} {
		select {
		case got := <-sub.Events():
			if got != event {
				t.Fatalf("got %+v, want %+v", got, event)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber did not receive event")
		}
	}
}

func TestSlowSubscriberIsDroppedNotBlocking(t *testing.T) {
	hub := NewHub(1, nil)
	slow := hub.Subscribe("provider", 1)
	healthy := hub.Subscribe("consumer", 2)

	// Fill slow's queue while the healthy subscriber keeps reading, then
	// publish again; the second publish must evict slow without stalling and
	// still reach the healthy subscriber.
	hub.Publish(Event{Type: EventNewOrder, OrderLineID: 1})
	if got := <-healthy.Events(); got.OrderLineID != 1 {
		t.Fatalf("healthy got %+v, want line 1", got)
	}
	hub.Publish(Event{Type: EventNewOrder, OrderLineID: 2})

	if hub.Len() != 1 {
		t.Fatalf("expected slow subscriber to be evicted, have %d subscribers", hub.Len())
	}
	if hub.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", hub.Dropped())
	}
	if got := <-healthy.Events(); got.OrderLineID != 2 {
		t.Fatalf("healthy got %+v, want line 2", got)
	}

	// Eviction closes the channel after its buffered event.
	if _, ok := <-slow.Events(); !ok {
		t.Fatalf("expected the buffered event before close")
	}
	if _, ok := <-slow.Events(); ok {
		t.Fatalf("expected slow subscriber channel to be closed")
	}
}

// Subscribers disconnecting mid-broadcast must never panic the publisher:
// channel close and channel send are serialized under the registry lock.
func TestUnsubscribeDuringPublish(t *testing.T) {
	prev := runtime.GOMAXPROCS(8)
	defer runtime.GOMAXPROCS(prev)

	const listeners = 2000
	hub := NewHub(1, nil)
	subs := make([]*Subscriber, 0, listeners)
	for i := 0; i < listeners; i++ {
		subs = append(subs, hub.Subscribe("consumer", int64(i)))
	}

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				hub.Publish(Event{Type: EventStatusUpdate, OrderLineID: int64(worker*500 + i)})
			}
		}(p)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, sub := range subs {
			hub.Unsubscribe(sub)
		}
	}()
	wg.Wait()

	// Every subscriber was either unsubscribed or evicted for a full queue.
	if hub.Len() != 0 {
		t.Fatalf("expected empty hub, have %d subscribers", hub.Len())
	}
}

func TestUnsubscribeTwiceIsSafe(t *testing.T) {
	hub := NewHub(1, nil)
	sub := hub.Subscribe("provider", 7)
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	hub.Publish(Event{Type: EventNewOrder})
	if hub.Len() != 0 {
		t.Fatalf("expected empty hub")
	}
}

func TestCloseDrainsRegistry(t *testing.T) {
	hub := NewHub(1, nil)
	sub := hub.Subscribe("consumer", 3)
	hub.Close()

	if _, ok := <-sub.Events(); ok {
		t.Fatalf("expected channel closed on hub shutdown")
	}
	if hub.Len() != 0 {
		t.Fatalf("expected drained registry")
	}

	// Post-close interactions are no-ops.
	hub.Publish(Event{Type: EventNewOrder})
	late := hub.Subscribe("consumer", 4)
	if _, ok := <-late.Events(); ok {
		t.Fatalf("expected late subscriber to receive a closed channel")
	}
}
