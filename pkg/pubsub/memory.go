package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ritzau/santa-ring/pkg/logging"
)

// TopicConfig configures buffering behavior for a topic
type TopicConfig struct {
	BufferSize int  // Number of events to buffer (0 = no buffering)
	ReplayAll  bool // If true, replay all buffered events; if false, only replay last event
}

// MemoryPublisher is an in-process Publisher built on channels. It decouples
// the file watcher, the recompute loop and the printers in watch mode: a
// subscriber arriving after the first compute still sees the current plan
// via replay-last buffering.
type MemoryPublisher struct {
	mu            sync.RWMutex
	subscriptions map[string]map[*memorySubscription]bool // topic -> set of subscriptions
	version       map[string]int                          // topic -> version counter
	eventBuffer   map[string][]Event                      // topic -> ring buffer of events
	topicConfig   map[string]TopicConfig                  // topic -> configuration
	closed        bool
}

// NewMemoryPublisher creates a new in-memory publisher
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{
		subscriptions: make(map[string]map[*memorySubscription]bool),
		version:       make(map[string]int),
		eventBuffer:   make(map[string][]Event),
		topicConfig:   make(map[string]TopicConfig),
	}
}

// ConfigureTopic sets buffering configuration for a topic
func (p *MemoryPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topicConfig[topic] = config
}

// Subscribe creates a new subscription to a topic
func (p *MemoryPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("publisher is closed")
	}

	sub := &memorySubscription{
		topic:     topic,
		events:    make(chan Event, 100), // Buffered to prevent blocking publishers
		publisher: p,
	}

	if p.subscriptions[topic] == nil {
		p.subscriptions[topic] = make(map[*memorySubscription]bool)
	}
	p.subscriptions[topic][sub] = true

	// Copy buffered events while holding the lock
	config := p.topicConfig[topic]
	buffered := make([]Event, len(p.eventBuffer[topic]))
	copy(buffered, p.eventBuffer[topic])

	p.mu.Unlock()

	// Replay buffered events to the new subscriber
	if len(buffered) > 0 {
		toReplay := buffered
		if !config.ReplayAll {
			toReplay = buffered[len(buffered)-1:]
		}

		for _, event := range toReplay {
			select {
			case sub.events <- event:
			default:
				logging.Warn("could not replay event to new subscriber", "topic", topic)
			}
		}
		logging.Debug("replayed events to new subscriber", "topic", topic, "count", len(toReplay))
	}

	// Context cancellation closes the subscription
	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic
func (p *MemoryPublisher) Publish(topic string, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	p.version[topic]++

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    jsonData,
		Version: p.version[topic],
	}

	// Buffer the event per topic config
	config := p.topicConfig[topic]
	if config.BufferSize > 0 {
		buffer := append(p.eventBuffer[topic], event)
		if len(buffer) > config.BufferSize {
			buffer = buffer[len(buffer)-config.BufferSize:]
		}
		p.eventBuffer[topic] = buffer
	}

	// Fan out without blocking: a slow subscriber drops events rather than
	// stalling the watcher pipeline
	for sub := range p.subscriptions[topic] {
		select {
		case sub.events <- event:
		default:
			logging.Warn("subscriber too slow, dropping event", "topic", topic, "type", eventType)
		}
	}

	return nil
}

// Close shuts down the publisher and all subscriptions
func (p *MemoryPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, subs := range p.subscriptions {
		for sub := range subs {
			close(sub.events)
		}
	}
	p.subscriptions = make(map[string]map[*memorySubscription]bool)

	return nil
}

// memorySubscription implements Subscription
type memorySubscription struct {
	topic     string
	events    chan Event
	publisher *MemoryPublisher
	closeOnce sync.Once
}

func (s *memorySubscription) Topic() string {
	return s.topic
}

func (s *memorySubscription) Events() <-chan Event {
	return s.events
}

func (s *memorySubscription) Close() error {
	s.closeOnce.Do(func() {
		s.publisher.mu.Lock()
		defer s.publisher.mu.Unlock()

		if subs, ok := s.publisher.subscriptions[s.topic]; ok {
			delete(subs, s)
		}
		if !s.publisher.closed {
			close(s.events)
		}
	})
	return nil
}
