package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func receiveEvent(t *testing.T, sub Subscription) Event {
	t.Helper()

	select {
	case event, ok := <-sub.Events():
		if !ok {
			t.Fatal("Subscription channel closed unexpectedly")
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
	return Event{}
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	sub, err := p.Subscribe(context.Background(), TopicRoster)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := p.Publish(TopicRoster, "changed", RosterChange{Path: "santa.toml"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	event := receiveEvent(t, sub)
	if event.Topic != TopicRoster || event.Type != "changed" {
		t.Errorf("Unexpected event %q/%q", event.Topic, event.Type)
	}
	if event.Version != 1 {
		t.Errorf("Expected version 1, got %d", event.Version)
	}

	var change RosterChange
	if err := json.Unmarshal(event.Data, &change); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if change.Path != "santa.toml" {
		t.Errorf("Expected payload path santa.toml, got %q", change.Path)
	}
}

func TestLateSubscriberGetsReplay(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	p.ConfigureTopic(TopicPlan, TopicConfig{BufferSize: 1})

	if err := p.Publish(TopicPlan, "computed", PlanUpdate{Participants: 4, Steps: 3}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Subscribe after the fact; replay-last must deliver the current plan
	sub, err := p.Subscribe(context.Background(), TopicPlan)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	event := receiveEvent(t, sub)
	if event.Type != "computed" {
		t.Errorf("Expected replayed computed event, got %q", event.Type)
	}
}

func TestReplayKeepsOnlyLastEvent(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	p.ConfigureTopic(TopicPlan, TopicConfig{BufferSize: 1})

	_ = p.Publish(TopicPlan, "computed", PlanUpdate{Participants: 4})
	_ = p.Publish(TopicPlan, "failed", PlanUpdate{Error: "no valid cycle"})

	sub, err := p.Subscribe(context.Background(), TopicPlan)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	event := receiveEvent(t, sub)
	if event.Type != "failed" {
		t.Errorf("Expected only the latest event to replay, got %q", event.Type)
	}
	if event.Version != 2 {
		t.Errorf("Expected version 2, got %d", event.Version)
	}

	select {
	case extra := <-sub.Events():
		t.Errorf("Expected a single replayed event, also got %q", extra.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestContextCancellationClosesSubscription(t *testing.T) {
	p := NewMemoryPublisher()
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := p.Subscribe(ctx, TopicRoster)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	cancel()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("Expected the events channel to close, got an event")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for subscription to close")
	}
}

func TestClosedPublisherRejectsWork(t *testing.T) {
	p := NewMemoryPublisher()
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := p.Publish(TopicRoster, "changed", nil); err == nil {
		t.Error("Expected Publish on a closed publisher to fail")
	}
	if _, err := p.Subscribe(context.Background(), TopicRoster); err == nil {
		t.Error("Expected Subscribe on a closed publisher to fail")
	}
}
