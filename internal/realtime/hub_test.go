package realtime

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"printhub/pkg/kafka"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

func TestHub_BroadcastScopedToShop(t *testing.T) {
	hub := NewHub(testLogger())

	mine, cancelMine := hub.Subscribe("shop-1", 4)
	defer cancelMine()
	other, cancelOther := hub.Subscribe("shop-2", 4)
	defer cancelOther()

	n := hub.Broadcast(event(model.ChangeInsert, job("a", 1, 1, model.JobStatusPending)))
	if n != 1 {
		t.Fatalf("Broadcast() reached %d subscribers, want 1", n)
	}

	select {
	case ev := <-mine:
		if ev.RecordID != "a" {
			t.Errorf("got record %s, want a", ev.RecordID)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	select {
	case ev := <-other:
		t.Errorf("other shop received %+v", ev)
	default:
	}
}

func TestHub_SlowSubscriberIsDisconnected(t *testing.T) {
	hub := NewHub(testLogger())
	ch, cancel := hub.Subscribe("shop-1", 1)
	defer cancel()

	hub.Broadcast(event(model.ChangeInsert, job("a", 1, 1, model.JobStatusPending)))
	hub.Broadcast(event(model.ChangeInsert, job("b", 2, 2, model.JobStatusPending)))

	if hub.Subscribers("shop-1") != 0 {
		t.Fatal("slow subscriber should be removed")
	}
	<-ch
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after the buffered event")
	}
}

func TestHub_CancelAndStop(t *testing.T) {
	hub := NewHub(testLogger())

	ch, cancel := hub.Subscribe("shop-1", 1)
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("cancelled subscription should be closed")
	}

	ch2, _ := hub.Subscribe("shop-1", 1)
	hub.Stop()
	if _, ok := <-ch2; ok {
		t.Error("Stop should close subscriptions")
	}

	ch3, _ := hub.Subscribe("shop-1", 1)
	if _, ok := <-ch3; ok {
		t.Error("subscribing after Stop should yield a closed channel")
	}
}

func TestHubPublisher(t *testing.T) {
	hub := NewHub(testLogger())
	ch, cancel := hub.Subscribe("shop-1", 1)
	defer cancel()

	var p Publisher = NewHubPublisher(hub)
	if err := p.Publish(context.Background(), event(model.ChangeUpdate, job("a", 1, 2, model.JobStatusQueued))); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ev := <-ch; ev.Type != model.ChangeUpdate {
		t.Errorf("got %s, want UPDATE", ev.Type)
	}
}

func TestEventType(t *testing.T) {
	ev := event(model.ChangeDelete, job("a", 1, 1, model.JobStatusPending))
	if got := EventType(ev); got != "print_jobs.DELETE" {
		t.Errorf("EventType() = %s", got)
	}
}

func TestBridge_Handle(t *testing.T) {
	hub := NewHub(testLogger())
	ch, cancel := hub.Subscribe("shop-1", 1)
	defer cancel()
	bridge := NewBridge(hub, testLogger())

	payload, _ := json.Marshal(event(model.ChangeInsert, job("a", 1, 1, model.JobStatusPending)))
	if err := bridge.Handle(context.Background(), kafka.Message{Key: "a", Value: payload}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if ev := <-ch; ev.RecordID != "a" || ev.Record == nil {
		t.Errorf("bridged event = %+v", ev)
	}

	tests := []struct {
		name  string
		value []byte
	}{
		{"not json", []byte("{nope")},
		{"missing shop", []byte(`{"type":"INSERT","record_id":"a"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bridge.Handle(context.Background(), kafka.Message{Value: tt.value})
			if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
				t.Errorf("expected permanent error, got %v", err)
			}
		})
	}
}

type recordingPublisher struct {
	events []model.ChangeEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, ev model.ChangeEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestMultiPublisher_PublishesToAll(t *testing.T) {
	failing := &recordingPublisher{err: io.ErrClosedPipe}
	ok := &recordingPublisher{}

	err := MultiPublisher{failing, ok}.Publish(context.Background(), event(model.ChangeInsert, job("a", 1, 1, model.JobStatusPending)))
	if err != io.ErrClosedPipe {
		t.Errorf("err = %v, want first failure", err)
	}
	if len(ok.events) != 1 {
		t.Error("second publisher should still receive the event")
	}
}
