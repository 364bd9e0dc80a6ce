package frontmatter

import (
	"time"

	"github.com/corevault/corevault/internal/model"
)

var taskFieldOrder = []string{
	"id", "serial", "title", "description", "project", "category", "priority",
	"status", "parent_task", "subtasks", "tags", "memory_connections",
	"manual_memories", "created", "updated",
}

// DecodeTask converts a parsed Document into a model.Task, defaulting
// Status to "todo" when absent.
func DecodeTask(doc Document) (model.Task, error) {
	t := model.Task{
		Status: model.StatusTodo,
		Extra:  map[string]any{},
	}

	h := doc.Header
	t.ID, _ = str(h, "id")
	t.Serial, _ = str(h, "serial")
	t.Title, _ = str(h, "title")
	t.Description, _ = str(h, "description")
	t.Project, _ = str(h, "project")
	if cat, ok := str(h, "category"); ok {
		t.Category = model.TaskCategory(cat)
	}
	if pr, ok := str(h, "priority"); ok {
		t.Priority = model.Priority(pr)
	}
	if st, ok := str(h, "status"); ok && st != "" {
		t.Status = model.TaskStatus(st)
	}
	t.ParentTask, _ = str(h, "parent_task")
	t.Subtasks = strList(h, "subtasks")
	t.Tags = strList(h, "tags")
	t.ManualMemories = strList(h, "manual_memories")
	if c, ok := str(h, "created"); ok {
		if tm, err := time.Parse(time.RFC3339, c); err == nil {
			t.Created = tm
		}
	}
	if u, ok := str(h, "updated"); ok {
		if tm, err := time.Parse(time.RFC3339, u); err == nil {
			t.Updated = tm
		}
	}
	if t.Created.IsZero() {
		t.Created = time.Now().UTC()
	}
	if t.Updated.IsZero() {
		t.Updated = t.Created
	}

	if mcs, ok := h["memory_connections"].([]any); ok {
		for _, raw := range mcs {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			mc := model.MemoryConnection{}
			mc.MemoryID, _ = str(entry, "memory_id")
			mc.MemorySerial, _ = str(entry, "memory_serial")
			mc.ConnectionType, _ = str(entry, "connection_type")
			if rel, ok := entry["relevance"].(float64); ok {
				mc.Relevance = rel
			}
			mc.MatchedTerms = strList(entry, "matched_terms")
			t.MemoryConnections = append(t.MemoryConnections, mc)
		}
	}

	known := map[string]bool{}
	for _, k := range taskFieldOrder {
		known[k] = true
	}
	for k, v := range h {
		if !known[k] {
			t.Extra[k] = v
		}
	}

	return t, nil
}

// EncodeTask renders a model.Task into canonical front-matter text.
func EncodeTask(t model.Task) ([]byte, error) {
	h := map[string]any{
		"id":      t.ID,
		"serial":  t.Serial,
		"title":   t.Title,
		"project": t.Project,
		"status":  string(t.Status),
		"created": t.Created.UTC().Format(time.RFC3339),
		"updated": t.Updated.UTC().Format(time.RFC3339),
	}
	if t.Description != "" {
		h["description"] = t.Description
	}
	if t.Category != "" {
		h["category"] = string(t.Category)
	}
	if t.Priority != "" {
		h["priority"] = string(t.Priority)
	}
	if t.ParentTask != "" {
		h["parent_task"] = t.ParentTask
	}
	if len(t.Subtasks) > 0 {
		h["subtasks"] = t.Subtasks
	}
	if len(t.Tags) > 0 {
		h["tags"] = t.Tags
	}
	if len(t.ManualMemories) > 0 {
		h["manual_memories"] = t.ManualMemories
	}
	if len(t.MemoryConnections) > 0 {
		var mcs []any
		for _, mc := range t.MemoryConnections {
			mcs = append(mcs, map[string]any{
				"memory_id":       mc.MemoryID,
				"memory_serial":   mc.MemorySerial,
				"connection_type": mc.ConnectionType,
				"relevance":       mc.Relevance,
				"matched_terms":   mc.MatchedTerms,
			})
		}
		h["memory_connections"] = mcs
	}
	for k, v := range t.Extra {
		h[k] = v
	}

	return Emit(taskFieldOrder, h, "")
}
