package core

import "fmt"

// EventType represents the type of change observed on the log.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to the persisted log, as seen by a watcher.
type Event struct {
	Type      EventType
	ID        string // base name of the file that changed
	Timestamp int64  // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
