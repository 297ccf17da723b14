// Package events publishes facts about donation requests and donations to a
// message broker so other services can react to them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	TopicRequestStatusChanged = "donation_request.status_changed"
	TopicDonationFinalized    = "donation.finalized"
)

type Event struct {
	Type       string    `json:"type"`
	RequestID  string    `json:"request_id"`
	DonationID string    `json:"donation_id,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Override   bool      `json:"override,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e Event) encode() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type nopPublisher struct{}

func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
func (nopPublisher) Close() error                         { return nil }

// MemoryPublisher keeps published events in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (m *MemoryPublisher) Publish(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryPublisher) Close() error { return nil }

func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// OfType returns the published events with the given type.
func (m *MemoryPublisher) OfType(eventType string) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

const (
	BackendNone  = "none"
	BackendKafka = "kafka"
	BackendNATS  = "nats"
)

// Open returns the publisher for backend. brokers is a comma separated list of
// kafka addresses.
func Open(backend, brokers, natsURL string) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendNone:
		return NewNopPublisher(), nil
	case BackendKafka:
		var addrs []string
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				addrs = append(addrs, b)
			}
		}
		if len(addrs) == 0 {
			return nil, fmt.Errorf("events: kafka backend needs at least one broker")
		}
		return NewKafkaPublisher(addrs)
	case BackendNATS:
		return NewNATSPublisher(natsURL)
	default:
		return nil, fmt.Errorf("events: unknown backend %q", backend)
	}
}
