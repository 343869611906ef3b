package events

import (
	"testing"

	"github.com/dgnsrekt/trail_agent/internal/types"
)

func TestBrokerPublishFansOut(t *testing.T) {
	b := NewBroker()
	id1, ch1 := b.Subscribe()
	id2, ch2 := b.Subscribe()
	defer b.Unsubscribe(id1)
	defer b.Unsubscribe(id2)

	b.Publish(types.VisitPayload{URL: "https://example.com"})

	for i, ch := range []<-chan types.VisitPayload{ch1, ch2} {
		select {
		case got := <-ch:
			if got.URL != "https://example.com" {
				t.Errorf("subscriber %d got %q", i, got.URL)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	b.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}
	if b.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d", b.SubscriberCount())
	}

	// Double unsubscribe must not panic.
	b.Unsubscribe(id)
}

func TestBrokerSlowSubscriberDropsNotBlocks(t *testing.T) {
	b := NewBroker()
	id, _ := b.Subscribe()
	defer b.Unsubscribe(id)

	// Overflow the buffer; Publish must never block.
	for i := 0; i < subscriberBufSize+10; i++ {
		b.Publish(types.VisitPayload{URL: "https://example.com"})
	}
}
