package frontmatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/corevault/corevault/internal/model"
)

// memoryFieldOrder is the canonical header key order emitted for memories.
var memoryFieldOrder = []string{
	"id", "serial", "timestamp", "complexity", "category", "project", "tags",
	"priority", "status", "title", "summary", "related_memories",
	"task_connections", "access_count", "last_accessed", "metadata",
}

// DecodeMemory converts a parsed Document into a model.Memory, synthesizing
// defaults for any missing fields. Legacy "title:"/"summary:" pseudo-tags
// inside the tag list are promoted to first-class fields.
func DecodeMemory(doc Document) (model.Memory, error) {
	m := model.Memory{
		Status:   model.MemoryStatusActive,
		Body:     doc.Body,
		Extra:    map[string]any{},
		Metadata: model.Metadata{ContentType: model.ContentTypeText},
	}

	h := doc.Header
	m.ID, _ = str(h, "id")
	m.Serial, _ = str(h, "serial")
	if ts, ok := str(h, "timestamp"); ok {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			m.Timestamp = t
		}
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	m.Complexity = intOr(h, "complexity", 1)
	if cat, ok := str(h, "category"); ok {
		m.Category = model.Category(cat)
	}
	m.Project, _ = str(h, "project")
	m.Tags = strList(h, "tags")
	if pr, ok := str(h, "priority"); ok {
		m.Priority = model.Priority(pr)
	}
	if st, ok := str(h, "status"); ok && st != "" {
		m.Status = model.MemoryStatus(st)
	}
	m.Title, _ = str(h, "title")
	m.Summary, _ = str(h, "summary")
	m.RelatedMemories = strList(h, "related_memories")
	m.AccessCount = intOr(h, "access_count", 0)
	if la, ok := str(h, "last_accessed"); ok {
		if t, err := time.Parse(time.RFC3339, la); err == nil {
			m.LastAccessed = t
		}
	}

	if meta, ok := h["metadata"].(map[string]any); ok {
		if ct, ok := str(meta, "content_type"); ok {
			m.Metadata.ContentType = model.ContentType(ct)
		}
		m.Metadata.Language, _ = str(meta, "language")
		m.Metadata.Size = intOr(meta, "size", 0)
		if md, ok := meta["mermaid_diagram"].(bool); ok {
			m.Metadata.MermaidDiagram = md
		}
	}

	if tcs, ok := h["task_connections"].([]any); ok {
		for _, raw := range tcs {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			tc := model.TaskConnection{}
			tc.TaskID, _ = str(entry, "task_id")
			tc.TaskSerial, _ = str(entry, "task_serial")
			tc.ConnectionType, _ = str(entry, "connection_type")
			if c, ok := str(entry, "created"); ok {
				if t, err := time.Parse(time.RFC3339, c); err == nil {
					tc.Created = t
				}
			}
			m.TaskConnections = append(m.TaskConnections, tc)
		}
	}

	// Promote legacy title:/summary: pseudo-tags into first-class fields.
	var realTags []string
	for _, tag := range m.Tags {
		if v, ok := strings.CutPrefix(tag, "title:"); ok && m.Title == "" {
			m.Title = v
			continue
		}
		if v, ok := strings.CutPrefix(tag, "summary:"); ok && m.Summary == "" {
			m.Summary = v
			continue
		}
		realTags = append(realTags, tag)
	}
	m.Tags = realTags

	known := map[string]bool{}
	for _, k := range memoryFieldOrder {
		known[k] = true
	}
	for k, v := range h {
		if !known[k] {
			m.Extra[k] = v
		}
	}

	return m, nil
}

// EncodeMemory renders a model.Memory into canonical front-matter text.
func EncodeMemory(m model.Memory) ([]byte, error) {
	h := map[string]any{
		"id":           m.ID,
		"serial":       m.Serial,
		"timestamp":    m.Timestamp.UTC().Format(time.RFC3339),
		"complexity":   m.Complexity,
		"project":      m.Project,
		"status":       string(m.Status),
		"access_count": m.AccessCount,
		"metadata": map[string]any{
			"content_type":    string(m.Metadata.ContentType),
			"language":        m.Metadata.Language,
			"size":            m.Metadata.Size,
			"mermaid_diagram": m.Metadata.MermaidDiagram,
		},
	}
	if m.Category != "" {
		h["category"] = string(m.Category)
	}
	if len(m.Tags) > 0 {
		h["tags"] = m.Tags
	}
	if m.Priority != "" {
		h["priority"] = string(m.Priority)
	}
	if m.Title != "" {
		h["title"] = m.Title
	}
	if m.Summary != "" {
		h["summary"] = m.Summary
	}
	if len(m.RelatedMemories) > 0 {
		h["related_memories"] = m.RelatedMemories
	}
	if !m.LastAccessed.IsZero() {
		h["last_accessed"] = m.LastAccessed.UTC().Format(time.RFC3339)
	}
	if len(m.TaskConnections) > 0 {
		var tcs []any
		for _, tc := range m.TaskConnections {
			tcs = append(tcs, map[string]any{
				"task_id":         tc.TaskID,
				"task_serial":     tc.TaskSerial,
				"connection_type": tc.ConnectionType,
				"created":         tc.Created.UTC().Format(time.RFC3339),
			})
		}
		h["task_connections"] = tcs
	}
	for k, v := range m.Extra {
		h[k] = v
	}

	return Emit(memoryFieldOrder, h, m.Body)
}

func str(h map[string]any, key string) (string, bool) {
	v, ok := h[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}

func intOr(h map[string]any, key string, def int) int {
	v, ok := h[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	default:
		return def
	}
}

func strList(h map[string]any, key string) []string {
	raw, ok := h[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
