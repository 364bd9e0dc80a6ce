package linker

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/corevault/corevault/internal/model"
	"github.com/corevault/corevault/internal/store"
)

const vectorTopK = 20

const technicalImplementationWindow = 14 * 24 * time.Hour

// Linker computes and persists task→memory connections. Vector may be nil,
// in which case semantic similarity contributes 0 to every score and
// candidate retrieval falls back to keyword matching alone.
type Linker struct {
	store  *store.Store
	vector VectorIndex
}

// New returns a Linker backed by store. vector may be nil.
func New(s *store.Store, vector VectorIndex) *Linker {
	return &Linker{store: s, vector: vector}
}

type candidate struct {
	memory       model.Memory
	matchedTerms []string
	semantic     float64
	score        float64
}

// Link recomputes and persists a task's auto-assigned memory connections.
// Connections listed in the task's manual_memories are always written at
// relevance 1.0 regardless of scoring and never count against the
// max-auto-links cap.
func (l *Linker) Link(taskID string) error {
	task, err := l.store.Tasks.Get(taskID)
	if err != nil {
		return fmt.Errorf("linker: loading task %s: %w", taskID, err)
	}

	terms := ExtractTerms(task.Title, task.Description, task.Tags)

	candidates, err := l.gatherCandidates(task, terms)
	if err != nil {
		return fmt.Errorf("linker: gathering candidates for task %s: %w", taskID, err)
	}

	ranked := rankCandidates(task, terms, candidates)
	if len(ranked) > MaxAutoLinks {
		ranked = ranked[:MaxAutoLinks]
	}

	return l.persist(task, ranked)
}

// gatherCandidates merges keyword and vector retrieval into a single
// deduplicated set of memories, keyed by id.
func (l *Linker) gatherCandidates(task model.Task, terms []string) (map[string]candidate, error) {
	out := map[string]candidate{}

	if task.Project != "" {
		sameProject, err := l.store.Memories.List(store.ListFilter{Project: task.Project})
		if err != nil {
			return nil, fmt.Errorf("listing project memories: %w", err)
		}
		for _, m := range sameProject {
			out[m.ID] = candidate{memory: m}
		}
	}

	scanner, err := newKeywordScanner(terms)
	if err != nil {
		return nil, fmt.Errorf("building keyword scanner: %w", err)
	}
	if scanner.ac != nil {
		all, err := l.store.Memories.List(store.ListFilter{})
		if err != nil {
			return nil, fmt.Errorf("listing all memories: %w", err)
		}
		for _, m := range all {
			hits := scanner.matches(m)
			if len(hits) == 0 {
				continue
			}
			c := out[m.ID]
			c.memory = m
			c.matchedTerms = hits
			out[m.ID] = c
		}
	}

	if l.vector != nil {
		text := strings.TrimSpace(task.Title + " " + task.Description)
		if text != "" {
			if vec, err := l.vector.Embed(text); err == nil {
				if matches, err := l.vector.Query(vec, vectorTopK); err == nil {
					for _, vm := range matches {
						c, ok := out[vm.MemoryID]
						if !ok {
							m, err := l.store.Memories.Get(vm.MemoryID)
							if err != nil {
								continue
							}
							c.memory = m
						}
						c.semantic = vm.Score
						out[vm.MemoryID] = c
					}
				}
			}
		}
	}

	return out, nil
}

// rankCandidates scores every candidate, drops those below Threshold, and
// sorts descending with the documented tie-break: newer timestamp first,
// then lexicographically smaller id.
func rankCandidates(task model.Task, terms []string, candidates map[string]candidate) []candidate {
	ranked := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		s := score(scoreInputs{
			task:          task,
			taskTerms:     terms,
			memory:        c.memory,
			matchedTerms:  c.matchedTerms,
			semanticScore: c.semantic,
			taskCreated:   task.Created,
		})
		if s < Threshold {
			continue
		}
		c.score = s
		ranked = append(ranked, c)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if !ranked[i].memory.Timestamp.Equal(ranked[j].memory.Timestamp) {
			return ranked[i].memory.Timestamp.After(ranked[j].memory.Timestamp)
		}
		return ranked[i].memory.ID < ranked[j].memory.ID
	})
	return ranked
}

// connectionType assigns research/implementation/reference by the rules in
// the connection-type heuristic: research for research/conversations
// memories, implementation for code memories created shortly before the
// task, reference otherwise. manual is never auto-assigned.
func connectionType(task model.Task, memory model.Memory) string {
	switch memory.Category {
	case model.CategoryResearch, model.CategoryConversations:
		return model.ConnResearch
	case model.CategoryCode:
		if task.Created.Sub(memory.Timestamp) > 0 && task.Created.Sub(memory.Timestamp) < technicalImplementationWindow {
			return model.ConnImplementation
		}
	}
	return model.ConnReference
}

// persist reconciles the task's auto-assigned connections with ranked,
// unlinking stale auto connections and linking/updating the surviving
// ones, then writes the always-on manual connections.
func (l *Linker) persist(task model.Task, ranked []candidate) error {
	wanted := make(map[string]bool, len(ranked))
	for _, c := range ranked {
		wanted[c.memory.ID] = true
	}

	manual := make(map[string]bool, len(task.ManualMemories))
	for _, id := range task.ManualMemories {
		manual[id] = true
	}

	for _, existing := range task.MemoryConnections {
		if existing.ConnectionType == model.ConnManual {
			continue
		}
		if !wanted[existing.MemoryID] {
			if err := l.store.UnlinkTaskMemory(task.ID, existing.MemoryID); err != nil {
				return err
			}
		}
	}

	for _, c := range ranked {
		mc := model.MemoryConnection{
			MemoryID:       c.memory.ID,
			MemorySerial:   c.memory.Serial,
			ConnectionType: connectionType(task, c.memory),
			Relevance:      c.score,
			MatchedTerms:   c.matchedTerms,
		}
		if err := l.store.LinkTaskMemory(task.ID, mc, mc.ConnectionType); err != nil {
			return err
		}
	}

	for id := range manual {
		memory, err := l.store.Memories.Get(id)
		if err != nil {
			continue // dangling manual reference; surfaced by the health check
		}
		mc := model.MemoryConnection{
			MemoryID:       memory.ID,
			MemorySerial:   memory.Serial,
			ConnectionType: model.ConnManual,
			Relevance:      1.0,
		}
		if err := l.store.LinkTaskMemory(task.ID, mc, model.ConnManual); err != nil {
			return err
		}
	}

	return nil
}
