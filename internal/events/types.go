// Package events provides a unified pub/sub event bus for Floe.
// Configuration changes, reconciliation outcomes and settings reloads all
// flow through this hub.
package events

import "time"

// EventType identifies the category of event.
type EventType string

const (
	// Configuration object events
	EventConfigCreated EventType = "config.created"
	EventConfigUpdated EventType = "config.updated"
	EventConfigRemoved EventType = "config.removed"
	EventConfigRenamed EventType = "config.renamed"

	// Whole-registry events
	EventConfigReset    EventType = "config.reset"
	EventConfigReloaded EventType = "config.reloaded"

	// Settings file events
	EventSettingsReloaded EventType = "settings.reloaded"

	// Watcher events
	EventWatchError EventType = "watch.error"
)

// Event is the core message passed through the event bus.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"` // Component that emitted: "permanent", "watch", "cli"
	Data      interface{} `json:"data"`   // Type-specific payload
}

// ConfigObjectData is the payload for object-level configuration events.
type ConfigObjectData struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	OldName string `json:"old_name,omitempty"` // Set for config.renamed
	Builtin bool   `json:"builtin,omitempty"`
	Path    string `json:"path,omitempty"`
	Origin  string `json:"origin"` // "api" or "file"
}

// WatchErrorData is the payload for EventWatchError.
type WatchErrorData struct {
	Path  string `json:"path,omitempty"`
	Error string `json:"error"`
}
