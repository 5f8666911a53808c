package notification

import (
	"testing"
)

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()
	var all, failed []Kind
	d.Subscribe(ListenerFunc(func(e Event) { all = append(all, e.Kind) }))
	d.Subscribe(ListenerFunc(func(e Event) { failed = append(failed, e.Kind) }), Failed)

	d.Publish(Event{Kind: Started})
	d.Publish(Event{Kind: Progress, Done: 1, Total: 4})
	d.Publish(Event{Kind: Failed})

	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %v", all)
	}
	if len(failed) != 1 || failed[0] != Failed {
		t.Fatalf("kind filter broken: %v", failed)
	}
}

func TestEvent(t *testing.T) {
	if p := (Event{Done: 1, Total: 4}).Percent(); p != 25 {
		t.Fatalf("percent = %v", p)
	}
	if p := (Event{}).Percent(); p != 0 {
		t.Fatalf("percent without total = %v", p)
	}
	if Completed.String() != "completed" {
		t.Fatalf("kind name = %s", Completed)
	}

	var d *Dispatcher
	d.Publish(Event{Kind: Started})
}

func TestPublishStampsTime(t *testing.T) {
	d := NewDispatcher()
	var got Event
	d.Subscribe(ListenerFunc(func(e Event) { got = e }), Warning)
	d.Publish(Event{Kind: Warning, Message: "page 3 skipped"})
	if got.Time.IsZero() || got.Message != "page 3 skipped" {
		t.Fatalf("unexpected event %+v", got)
	}
}
