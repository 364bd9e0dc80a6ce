// Package watchbus translates filesystem changes under memoriesRoot and
// tasksRoot into memory_change/task_change events and fans them out to
// bounded per-subscriber queues.
package watchbus

// Action is the filesystem-level change kind a watcher observed.
type Action string

const (
	ActionAdd    Action = "add"
	ActionChange Action = "change"
	ActionUnlink Action = "unlink"
)

// EventType distinguishes which tree an event came from.
type EventType string

const (
	EventMemoryChange EventType = "memory_change"
	EventTaskChange   EventType = "task_change"
)

// Event is the payload delivered to subscribers.
type Event struct {
	Type EventType `json:"type"`
	Data EventData `json:"data"`

	// ResyncNeeded is set on the first event delivered to a subscriber
	// after an overflow dropped one or more older events for it, so the
	// subscriber knows to re-list rather than trust incremental deltas.
	ResyncNeeded bool `json:"resync_needed,omitempty"`
}

// EventData is the change.data sub-record.
type EventData struct {
	Action  Action `json:"action"`
	File    string `json:"file"`
	Project string `json:"project,omitempty"`
	ID      string `json:"id,omitempty"`
}
