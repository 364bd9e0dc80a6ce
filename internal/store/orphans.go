package store

import "fmt"

// Orphan describes a memory_connections entry whose memory_id does not
// resolve to any known memory — permitted at write time (tombstoned) but
// reported here for the health check.
type Orphan struct {
	TaskID   string
	MemoryID string
}

// DetectOrphans scans every task's memory_connections for memory ids that no
// longer resolve. Memories' task_connections are not scanned.
func (s *Store) DetectOrphans() ([]Orphan, error) {
	tasks, err := s.Tasks.List(TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("store: listing tasks for orphan scan: %w", err)
	}

	s.Memories.mu.RLock()
	memExists := make(map[string]bool, len(s.Memories.byID))
	for id := range s.Memories.byID {
		memExists[id] = true
	}
	s.Memories.mu.RUnlock()

	var orphans []Orphan
	for _, t := range tasks {
		for _, mc := range t.MemoryConnections {
			if !memExists[mc.MemoryID] {
				orphans = append(orphans, Orphan{TaskID: t.ID, MemoryID: mc.MemoryID})
			}
		}
	}
	return orphans, nil
}
