package model

import "time"

// TaskStatus enumerates the allowed task lifecycle states.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusBlocked    TaskStatus = "blocked"
)

// taskTransitions is the legal-edge table. todo→done is deliberately
// absent: a task must pass through in_progress before it can be marked
// done, so a direct todo→done transition is never legal through
// update_task.
var taskTransitions = map[TaskStatus][]TaskStatus{
	StatusTodo:       {StatusInProgress, StatusBlocked},
	StatusInProgress: {StatusDone, StatusBlocked, StatusTodo},
	StatusBlocked:    {StatusInProgress, StatusTodo},
	StatusDone:       {StatusTodo},
}

// ValidTransition reports whether from→to is a legal status edge.
func ValidTransition(from, to TaskStatus) bool {
	if from == to {
		return false
	}
	for _, allowed := range taskTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TaskCategory enumerates the allowed task categories — a subset of
// Category, since tasks have no "preferences" bucket.
type TaskCategory string

const (
	TaskCategoryPersonal TaskCategory = "personal"
	TaskCategoryWork     TaskCategory = "work"
	TaskCategoryCode     TaskCategory = "code"
	TaskCategoryResearch TaskCategory = "research"
)

// MemoryConnection is the task-side view of a task↔memory link.
type MemoryConnection struct {
	MemoryID       string   `yaml:"memory_id" json:"memory_id"`
	MemorySerial   string   `yaml:"memory_serial" json:"memory_serial"`
	ConnectionType string   `yaml:"connection_type" json:"connection_type"`
	Relevance      float64  `yaml:"relevance" json:"relevance"`
	MatchedTerms   []string `yaml:"matched_terms,omitempty" json:"matched_terms,omitempty"`
}

// Connection type constants.
const (
	ConnResearch       = "research"
	ConnImplementation = "implementation"
	ConnReference      = "reference"
	ConnManual         = "manual"
)

// Task is a work item with status, priority, optional parent/subtasks, and
// links to memories.
type Task struct {
	ID                string             `yaml:"id" json:"id"`
	Serial            string             `yaml:"serial" json:"serial"`
	Title             string             `yaml:"title" json:"title"`
	Description       string             `yaml:"description,omitempty" json:"description,omitempty"`
	Project           string             `yaml:"project" json:"project"`
	Category          TaskCategory       `yaml:"category,omitempty" json:"category,omitempty"`
	Priority          Priority           `yaml:"priority,omitempty" json:"priority,omitempty"`
	Status            TaskStatus         `yaml:"status" json:"status"`
	ParentTask        string             `yaml:"parent_task,omitempty" json:"parent_task,omitempty"`
	Subtasks          []string           `yaml:"subtasks,omitempty" json:"subtasks,omitempty"`
	Tags              []string           `yaml:"tags,omitempty" json:"tags,omitempty"`
	MemoryConnections []MemoryConnection `yaml:"memory_connections,omitempty" json:"memory_connections,omitempty"`
	ManualMemories    []string           `yaml:"manual_memories,omitempty" json:"manual_memories,omitempty"`
	Created           time.Time          `yaml:"created" json:"created"`
	Updated           time.Time          `yaml:"updated" json:"updated"`

	// CompletedOnce is set by update_task on the task value it returns when
	// the task moves into StatusDone. It is not written to the task file, so
	// a task loaded from disk always has it false.
	CompletedOnce bool `yaml:"-" json:"-"`

	File string `yaml:"-" json:"file,omitempty"`

	Extra map[string]any `yaml:"-" json:"-"`
}

// ConnectionFor returns the existing memory connection for id, if any.
func (t *Task) ConnectionFor(memoryID string) (*MemoryConnection, bool) {
	for i := range t.MemoryConnections {
		if t.MemoryConnections[i].MemoryID == memoryID {
			return &t.MemoryConnections[i], true
		}
	}
	return nil, false
}
