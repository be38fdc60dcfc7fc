package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHub_Publish(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1")
	hub.Register(client)

	// Publish event via EventPublisher interface
	var publisher EventPublisher = hub
	event := ItemCreated(map[string]interface{}{"id": "a6e2f3b8"})
	publisher.Publish(event)

	// Allow async broadcast to complete
	time.Sleep(10 * time.Millisecond)

	messages := client.GetMessages()
	assert.Len(t, messages, 1)
}

func TestNoOpPublisher_Publish(t *testing.T) {
	publisher := &NoOpPublisher{}

	// Should not panic
	assert.NotPanics(t, func() {
		event := ItemCreated(map[string]interface{}{"id": float64(1)})
		publisher.Publish(event)
	})
}

func TestNoOpPublisher_Implements_EventPublisher(t *testing.T) {
	// Compile-time check that NoOpPublisher implements EventPublisher
	var _ EventPublisher = (*NoOpPublisher)(nil)
}
