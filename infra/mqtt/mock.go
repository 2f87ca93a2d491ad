package mqtt

import (
	"fmt"
	"sync"
)

// PublishedMessage captures one call to MockPublisher.Publish.
type PublishedMessage struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
}

// MockPublisher is a simple in-memory publisher used in tests.
type MockPublisher struct {
	mu         sync.Mutex
	messages   []PublishedMessage
	FailTopics map[string]bool
	closed     int
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailTopics: make(map[string]bool)}
}

// Publish records the message or returns an error if the topic is
// configured to fail.
func (m *MockPublisher) Publish(topic string, payload []byte, qos byte, retain bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTopics[topic] {
		return fmt.Errorf("publish failed")
	}
	m.messages = append(m.messages, PublishedMessage{Topic: topic, Payload: payload, QoS: qos, Retain: retain})
	return nil
}

// Close counts disconnects so tests can assert the sink closes exactly once.
func (m *MockPublisher) Close() {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()
}

// Messages returns a copy of everything published so far.
func (m *MockPublisher) Messages() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// CloseCount reports how many times Close was called.
func (m *MockPublisher) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
