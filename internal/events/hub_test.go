package events

import (
	"testing"
	"time"
)

func TestPublishReachesOnlyMatchingUser(t *testing.T) {
	hub := NewHub()

	aliceCh, cancelAlice := hub.Subscribe("alice")
	defer cancelAlice()
	bobCh, cancelBob := hub.Subscribe("bob")
	defer cancelBob()

	hub.Publish(Event{Type: TaskCompleted, UserID: "alice", TaskID: "enable-filevault", At: time.Now()})

	select {
	case ev := <-aliceCh:
		if ev.TaskID != "enable-filevault" {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("alice did not receive her event")
	}

	select {
	case ev := <-bobCh:
		t.Errorf("bob received alice's event: %+v", ev)
	default:
	}
}

func TestCancelUnsubscribes(t *testing.T) {
	hub := NewHub()

	_, cancel := hub.Subscribe("alice")
	if hub.Subscribers("alice") != 1 {
		t.Fatal("expected one subscriber")
	}

	cancel()
	if hub.Subscribers("alice") != 0 {
		t.Error("cancel should remove the subscription")
	}

	// Publishing with no subscribers must not panic or block.
	hub.Publish(Event{Type: DayAdvanced, UserID: "alice", Day: 2, At: time.Now()})

	// Double cancel is safe.
	cancel()
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("alice")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Publish(Event{Type: TaskStarted, UserID: "alice", At: time.Now()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	if len(ch) != subscriberBuffer {
		t.Errorf("buffered events = %d, want %d (rest dropped)", len(ch), subscriberBuffer)
	}
}
