package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeItem EntityType = "item"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "item.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "item"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ItemCreated creates an item.created event
func ItemCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeItem, payload)
}

// ItemUpdated creates an item.updated event
func ItemUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeItem, payload)
}

// ItemDeleted creates an item.deleted event
func ItemDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeItem, payload)
}
