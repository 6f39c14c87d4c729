package events

import "time"

// Priority orders queued events: lower values drain first.
type Priority int

const (
	PriorityUrgent Priority = 1
	PriorityHigh   Priority = 3
	PriorityNormal Priority = 5
	PriorityLow    Priority = 8
)

// Event is an external stimulus destined for the agent loop. Source
// names the listener that produced it, Type classifies it within that
// listener, and Text is the human-readable payload fed to the model.
type Event struct {
	Source    string         `json:"source"`
	Type      string         `json:"type"`
	Text      string         `json:"text"`
	Priority  Priority       `json:"priority"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// New builds an event stamped with the current time.
func New(source, eventType, text string, priority Priority) Event {
	return Event{
		Source:    source,
		Type:      eventType,
		Text:      text,
		Priority:  priority,
		Timestamp: time.Now().UTC(),
	}
}
