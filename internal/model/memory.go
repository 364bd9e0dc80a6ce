// Package model defines the Memory and Task data types shared by the store,
// linker, and gateway layers.
package model

import "time"

// Category enumerates the allowed memory categories.
type Category string

const (
	CategoryPersonal      Category = "personal"
	CategoryWork          Category = "work"
	CategoryCode          Category = "code"
	CategoryResearch      Category = "research"
	CategoryConversations Category = "conversations"
	CategoryPreferences   Category = "preferences"
)

func (c Category) Valid() bool {
	switch c {
	case "", CategoryPersonal, CategoryWork, CategoryCode, CategoryResearch, CategoryConversations, CategoryPreferences:
		return true
	default:
		return false
	}
}

// Priority enumerates the allowed priority levels for memories and tasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent" // tasks only
)

// MemoryStatus enumerates the allowed memory lifecycle states.
type MemoryStatus string

const (
	MemoryStatusActive   MemoryStatus = "active"
	MemoryStatusArchived MemoryStatus = "archived"
	MemoryStatusRef      MemoryStatus = "reference"
)

// ContentType enumerates the derived body content classification.
type ContentType string

const (
	ContentTypeText       ContentType = "text"
	ContentTypeCode       ContentType = "code"
	ContentTypeStructured ContentType = "structured"
)

// Metadata holds the derived metadata sub-record for a memory.
type Metadata struct {
	ContentType    ContentType `yaml:"content_type" json:"content_type"`
	Language       string      `yaml:"language,omitempty" json:"language,omitempty"`
	Size           int         `yaml:"size" json:"size"`
	MermaidDiagram bool        `yaml:"mermaid_diagram" json:"mermaid_diagram"`
}

// TaskConnection is the memory-side view of a task↔memory link.
type TaskConnection struct {
	TaskID         string    `yaml:"task_id" json:"task_id"`
	TaskSerial     string    `yaml:"task_serial" json:"task_serial"`
	ConnectionType string    `yaml:"connection_type" json:"connection_type"`
	Created        time.Time `yaml:"created" json:"created"`
}

// Memory is a single user note with structured header and free-form body.
type Memory struct {
	ID              string           `yaml:"id" json:"id"`
	Serial          string           `yaml:"serial" json:"serial"`
	Timestamp       time.Time        `yaml:"timestamp" json:"timestamp"`
	Complexity      int              `yaml:"complexity" json:"complexity"`
	Category        Category         `yaml:"category,omitempty" json:"category,omitempty"`
	Project         string           `yaml:"project" json:"project"`
	Tags            []string         `yaml:"tags,omitempty" json:"tags,omitempty"`
	Priority        Priority         `yaml:"priority,omitempty" json:"priority,omitempty"`
	Status          MemoryStatus     `yaml:"status" json:"status"`
	Title           string           `yaml:"title,omitempty" json:"title,omitempty"`
	Summary         string           `yaml:"summary,omitempty" json:"summary,omitempty"`
	RelatedMemories []string         `yaml:"related_memories,omitempty" json:"related_memories,omitempty"`
	TaskConnections []TaskConnection `yaml:"task_connections,omitempty" json:"task_connections,omitempty"`
	AccessCount     int              `yaml:"access_count" json:"access_count"`
	LastAccessed    time.Time        `yaml:"last_accessed,omitempty" json:"last_accessed,omitempty"`
	Metadata        Metadata         `yaml:"metadata" json:"metadata"`

	Body string `yaml:"-" json:"body"`

	// File is the absolute path the memory was loaded from/written to.
	// Not part of the front-matter; populated by the store.
	File string `yaml:"-" json:"file,omitempty"`

	// Extra preserves unrecognized front-matter keys verbatim so a file
	// written by a newer client round-trips unchanged through an older one.
	Extra map[string]any `yaml:"-" json:"-"`
}

// DefaultProject is used when no project label is supplied.
const DefaultProject = "default"

// DeriveComplexity buckets a memory from 1 (trivial) to 4 (complex). The
// highest matching bucket wins, so checks run from the top down.
func (m *Memory) DeriveComplexity() int {
	hasMermaid := m.Metadata.MermaidDiagram
	if len(m.Body) > 1000 || len(m.Tags) > 5 || hasMermaid || len(m.RelatedMemories) > 2 {
		return 4
	}
	if m.Project != "" || len(m.RelatedMemories) > 0 {
		return 3
	}
	if m.Category != "" || len(m.Tags) > 2 {
		return 2
	}
	return 1
}
