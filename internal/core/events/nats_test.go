package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"hotel-backoffice/internal/core/config"
)

func TestOpenDisabledIsNop(t *testing.T) {
	p, closeFn, err := Open(config.NATS{}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()
	if _, ok := p.(Nop); !ok {
		t.Fatalf("want Nop, got %T", p)
	}
}

func TestEmbeddedPublishDelivers(t *testing.T) {
	p, closeFn, err := Open(config.NATS{Embedded: true, SubjectPrefix: "hotel"}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()
	np := p.(*NATS)

	sub, err := nats.Connect(np.srv.ClientURL())
	if err != nil {
		t.Fatalf("subscriber connect: %v", err)
	}
	defer sub.Close()
	msgs := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe("hotel.>", msgs)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer s.Unsubscribe()
	if err := sub.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if err := p.Publish(context.Background(), New(HotelCreated, 3, map[string]any{"hotel_id": 9})); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case m := <-msgs:
		if m.Subject != "hotel.hotel.created" {
			t.Fatalf("subject: %s", m.Subject)
		}
		var e Event
		if err := json.Unmarshal(m.Data, &e); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if e.Type != HotelCreated || e.ActorID != 3 || e.Data["hotel_id"].(float64) != 9 {
			t.Fatalf("event: %+v", e)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no message delivered")
	}
}

func TestRecorderKeepsOrder(t *testing.T) {
	var r Recorder
	_ = r.Publish(context.Background(), New(UserCreated, 1, nil))
	_ = r.Publish(context.Background(), New(HotelCreated, 1, nil))
	got := r.Types()
	if len(got) != 2 || got[0] != UserCreated || got[1] != HotelCreated {
		t.Fatalf("types: %v", got)
	}
}
