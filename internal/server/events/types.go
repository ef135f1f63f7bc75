// Package events connects the catalog client's hooks to the realtime
// transports through a single broker.
package events

import "time"

// EventType represents the type of catalog event.
type EventType string

// Event types for catalog changes.
const (
	GameAdded   EventType = "game.added"
	GameUpdated EventType = "game.updated"
	GameRemoved EventType = "game.removed"

	ReconcileCompleted EventType = "reconcile.completed"

	ClientConnected EventType = "client.connected"
)

// Event represents a catalog event with type, timestamp, and data.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
