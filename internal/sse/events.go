// Package sse implements Server-Sent Events for live collection updates.
package sse

import (
	"time"

	"github.com/birdwell/trading-cards/internal/domain"
)

// Clients use the stream to refresh brand and set progress without polling.
// Writes still go through the REST API.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventSetImported is sent when a checklist import creates a set.
	EventSetImported EventType = "set.imported"
	// EventSetUpdated is sent when a set's name or sport changes.
	EventSetUpdated EventType = "set.updated"
	// EventSetDeleted is sent when a set and its cards are removed.
	EventSetDeleted EventType = "set.deleted"

	// EventCardOwnership is sent when a card is marked owned or not owned.
	EventCardOwnership EventType = "card.ownership"
	// EventCardDeleted is sent when a single card is removed.
	EventCardDeleted EventType = "card.deleted"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// SetEventData is the payload of set.imported and set.updated.
type SetEventData struct {
	Set       *domain.Set `json:"set"`
	CardCount int         `json:"cardCount,omitempty"`
}

// SetDeletedEventData is the payload of set.deleted.
type SetDeletedEventData struct {
	SetID int64 `json:"setId"`
}

// CardEventData is the payload of card.ownership.
type CardEventData struct {
	Card *domain.Card `json:"card"`
}

// CardDeletedEventData is the payload of card.deleted.
type CardDeletedEventData struct {
	CardID int64 `json:"cardId"`
}

// HeartbeatEventData is the payload of heartbeat.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// NewSetImportedEvent creates a set.imported event.
func NewSetImportedEvent(set *domain.Set, cardCount int) Event {
	return newEvent(EventSetImported, SetEventData{Set: set, CardCount: cardCount})
}

// NewSetUpdatedEvent creates a set.updated event.
func NewSetUpdatedEvent(set *domain.Set) Event {
	return newEvent(EventSetUpdated, SetEventData{Set: set})
}

// NewSetDeletedEvent creates a set.deleted event.
func NewSetDeletedEvent(setID int64) Event {
	return newEvent(EventSetDeleted, SetDeletedEventData{SetID: setID})
}

// NewCardOwnershipEvent creates a card.ownership event.
func NewCardOwnershipEvent(card *domain.Card) Event {
	return newEvent(EventCardOwnership, CardEventData{Card: card})
}

// NewCardDeletedEvent creates a card.deleted event.
func NewCardDeletedEvent(cardID int64) Event {
	return newEvent(EventCardDeleted, CardDeletedEventData{CardID: cardID})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{Type: EventHeartbeat, Data: HeartbeatEventData{ServerTime: now}, Timestamp: now}
}
