package store

import (
	"fmt"

	"github.com/corevault/corevault/internal/model"
)

// LinkTaskMemory records a task→memory connection and mirrors it onto the
// memory's task_connections, so "deleting either side removes both" has a
// single write path to keep consistent.
func (s *Store) LinkTaskMemory(taskID string, mc model.MemoryConnection, connType string) error {
	task, err := s.Tasks.Update(taskID, func(t *model.Task) error {
		if existing, ok := t.ConnectionFor(mc.MemoryID); ok {
			*existing = mc
			return nil
		}
		t.MemoryConnections = append(t.MemoryConnections, mc)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: linking task %s to memory %s: %w", taskID, mc.MemoryID, err)
	}

	_, err = s.Memories.Update(mc.MemoryID, func(m *model.Memory) {
		for i := range m.TaskConnections {
			if m.TaskConnections[i].TaskID == task.ID {
				m.TaskConnections[i].ConnectionType = connType
				return
			}
		}
		m.TaskConnections = append(m.TaskConnections, model.TaskConnection{
			TaskID:         task.ID,
			TaskSerial:     task.Serial,
			ConnectionType: connType,
			Created:        task.Updated,
		})
	})
	if err != nil {
		return fmt.Errorf("store: mirroring connection onto memory %s: %w", mc.MemoryID, err)
	}
	return nil
}

// UnlinkTaskMemory removes a task↔memory connection from both sides.
func (s *Store) UnlinkTaskMemory(taskID, memoryID string) error {
	if _, err := s.Tasks.Update(taskID, func(t *model.Task) error {
		out := t.MemoryConnections[:0]
		for _, mc := range t.MemoryConnections {
			if mc.MemoryID != memoryID {
				out = append(out, mc)
			}
		}
		t.MemoryConnections = out
		return nil
	}); err != nil {
		return fmt.Errorf("store: unlinking task %s from memory %s: %w", taskID, memoryID, err)
	}

	if _, err := s.Memories.Update(memoryID, func(m *model.Memory) {
		out := m.TaskConnections[:0]
		for _, tc := range m.TaskConnections {
			if tc.TaskID != taskID {
				out = append(out, tc)
			}
		}
		m.TaskConnections = out
	}); err != nil {
		return fmt.Errorf("store: unlinking memory %s from task %s: %w", memoryID, taskID, err)
	}
	return nil
}

// DeleteTaskCascade deletes a task and detaches it from its parent's
// subtasks list and from every memory's task_connections, per the deletion
// cascade the task lifecycle requires.
func (s *Store) DeleteTaskCascade(taskID string) error {
	task, err := s.Tasks.Delete(taskID)
	if err != nil {
		return err
	}
	if task.ParentTask != "" {
		if err := s.Tasks.RemoveSubtask(task.ParentTask, taskID); err != nil {
			return fmt.Errorf("store: detaching %s from parent %s: %w", taskID, task.ParentTask, err)
		}
	}
	for _, childID := range task.Subtasks {
		if _, err := s.Tasks.Update(childID, func(t *model.Task) error {
			t.ParentTask = ""
			return nil
		}); err != nil {
			continue // dangling subtask reference; surfaced by the health check, not fatal here
		}
	}
	for _, mc := range task.MemoryConnections {
		if _, err := s.Memories.Update(mc.MemoryID, func(m *model.Memory) {
			out := m.TaskConnections[:0]
			for _, tc := range m.TaskConnections {
				if tc.TaskID != taskID {
					out = append(out, tc)
				}
			}
			m.TaskConnections = out
		}); err != nil {
			continue // dangling link; surfaced by the health check, not fatal here
		}
	}
	return nil
}
