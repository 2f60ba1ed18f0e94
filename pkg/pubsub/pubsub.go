package pubsub

import (
	"context"
	"encoding/json"
)

// Topics used by the watch pipeline.
const (
	TopicRoster = "roster" // Roster file changed on disk
	TopicPlan   = "plan"   // A recompute finished (successfully or not)
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic ("roster", "plan")
	Type    string          `json:"type"`    // Event type (e.g., "changed", "computed", "failed")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// RosterChange is the payload on the roster topic.
type RosterChange struct {
	Path string `json:"path"` // Roster file that changed
}

// PlanUpdate is the payload on the plan topic. Exactly one of Plan or Error
// is meaningful depending on the event type.
type PlanUpdate struct {
	Participants int    `json:"participants"`
	Steps        int    `json:"steps,omitempty"` // Search steps for a successful compute
	Error        string `json:"error,omitempty"` // Failure message for a failed compute
}
