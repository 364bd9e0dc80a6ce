package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/corevault/corevault/internal/frontmatter"
	"github.com/corevault/corevault/internal/model"
	"github.com/corevault/corevault/internal/pathcfg"
)

// taskEntry is the in-memory index record for one task.
type taskEntry struct {
	file     string
	project  string
	serial   string
	parent   string
	subtasks []string
	status   model.TaskStatus
}

// TaskStore owns the on-disk task tree under a single tasksRoot. Multiple
// tasks may share one file, so the index maps id → file rather than
// assuming a 1:1 mapping.
type TaskStore struct {
	root string

	mu     sync.RWMutex
	byID   map[string]*taskEntry
	bySer  map[string]string // serial → id
	byProj map[string]map[string]bool
	byStat map[model.TaskStatus]map[string]bool
	serial int64
}

// OpenTaskStore scans root, builds the index, and recomputes the max serial
// from the files found when starting cold.
func OpenTaskStore(root string) (*TaskStore, error) {
	s := &TaskStore{
		root:   root,
		byID:   map[string]*taskEntry{},
		bySer:  map[string]string{},
		byProj: map[string]map[string]bool{},
		byStat: map[model.TaskStatus]map[string]bool{},
	}
	if err := s.rescan(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TaskStore) rescan() error {
	return filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		for _, doc := range frontmatter.ParseMulti(raw) {
			t, err := frontmatter.DecodeTask(doc)
			if err != nil || t.ID == "" {
				continue
			}
			t.File = path
			s.indexTask(t)
			if seq := serialSeq(t.Serial); seq > s.serial {
				s.serial = seq
			}
		}
		return nil
	})
}

func (s *TaskStore) indexTask(t model.Task) {
	project := t.Project
	if project == "" {
		project = model.DefaultProject
	}
	s.byID[t.ID] = &taskEntry{
		file:     t.File,
		project:  project,
		serial:   t.Serial,
		parent:   t.ParentTask,
		subtasks: append([]string(nil), t.Subtasks...),
		status:   t.Status,
	}
	if t.Serial != "" {
		s.bySer[t.Serial] = t.ID
	}
	if s.byProj[project] == nil {
		s.byProj[project] = map[string]bool{}
	}
	s.byProj[project][t.ID] = true
	if s.byStat[t.Status] == nil {
		s.byStat[t.Status] = map[string]bool{}
	}
	s.byStat[t.Status][t.ID] = true
}

func (s *TaskStore) unindexTask(id string) {
	entry, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	delete(s.bySer, entry.serial)
	if set, ok := s.byProj[entry.project]; ok {
		delete(set, id)
	}
	if set, ok := s.byStat[entry.status]; ok {
		delete(set, id)
	}
}

// taskFilePath is the single shared file every task in a project is
// appended to, per "Multiple tasks may share a file".
func (s *TaskStore) taskFilePath(project string) (string, error) {
	projDir, err := pathcfg.SandboxJoin(s.root, project)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(projDir, 0o700); err != nil {
		return "", fmt.Errorf("store: creating project dir: %w", err)
	}
	return pathcfg.SandboxJoin(projDir, "tasks.md")
}

// Create assigns id/serial/timestamps, appends the task to its project
// file, and indexes the result.
func (s *TaskStore) Create(t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = NewID()
	}
	now := time.Now().UTC()
	t.Created = now
	t.Updated = now
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Extra == nil {
		t.Extra = map[string]any{}
	}
	project := pathcfg.SanitizeProject(t.Project)
	t.Project = project

	s.serial++
	t.Serial = FormatTaskSerial(s.serial)

	file, err := s.taskFilePath(project)
	if err != nil {
		return model.Task{}, err
	}
	t.File = file

	if err := s.appendTask(file, t); err != nil {
		return model.Task{}, err
	}

	s.indexTask(t)
	return t, nil
}

// appendTask reads the project's task file (if any), parses its existing
// blocks, appends the new encoded block, and atomically rewrites the file.
func (s *TaskStore) appendTask(file string, t model.Task) error {
	var existing []byte
	if raw, err := os.ReadFile(file); err == nil {
		existing = raw
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("store: reading %s: %w", file, err)
	}

	encoded, err := frontmatter.EncodeTask(t)
	if err != nil {
		return fmt.Errorf("store: encoding task %s: %w", t.ID, err)
	}

	var out []byte
	if len(strings.TrimSpace(string(existing))) > 0 {
		out = append(append([]byte{}, existing...), '\n')
		out = append(out, encoded...)
	} else {
		out = encoded
	}
	return atomicWrite(file, out)
}

// rewriteFile re-encodes every task known to belong to file, replacing its
// contents. Used by Update/Delete, which must rewrite one block inside a
// possibly multi-task file.
func (s *TaskStore) rewriteFile(file string, tasks []model.Task) error {
	var blocks [][]byte
	for _, t := range tasks {
		b, err := frontmatter.EncodeTask(t)
		if err != nil {
			return fmt.Errorf("store: encoding task %s: %w", t.ID, err)
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		return os.Remove(file)
	}
	return atomicWrite(file, frontmatter.EmitMulti(blocks))
}

// loadFile parses every task block in file.
func (s *TaskStore) loadFile(file string) ([]model.Task, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %w", file, err)
	}
	var out []model.Task
	for _, doc := range frontmatter.ParseMulti(raw) {
		t, err := frontmatter.DecodeTask(doc)
		if err != nil {
			continue
		}
		t.File = file
		out = append(out, t)
	}
	return out, nil
}

// Get returns the task with the given id.
func (s *TaskStore) Get(id string) (model.Task, error) {
	s.mu.RLock()
	entry, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	tasks, err := s.loadFile(entry.file)
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
}

// GetBySerial resolves a display serial (TASK-NNNNN) to a task.
func (s *TaskStore) GetBySerial(serial string) (model.Task, error) {
	s.mu.RLock()
	id, ok := s.bySer[serial]
	s.mu.RUnlock()
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", serial, model.ErrNotFound)
	}
	return s.Get(id)
}

// TaskFilter narrows List results; zero-value fields are ignored.
type TaskFilter struct {
	Project  string
	Status   model.TaskStatus
	Category model.TaskCategory
	ParentID string
}

// List returns tasks matching filter, newest-updated first.
func (s *TaskStore) List(filter TaskFilter) ([]model.Task, error) {
	s.mu.RLock()
	var ids []string
	switch {
	case filter.Project != "":
		for id := range s.byProj[pathcfg.SanitizeProject(filter.Project)] {
			ids = append(ids, id)
		}
	case filter.Status != "":
		for id := range s.byStat[filter.Status] {
			ids = append(ids, id)
		}
	default:
		for id := range s.byID {
			ids = append(ids, id)
		}
	}
	files := make(map[string]bool, len(ids))
	for _, id := range ids {
		files[s.byID[id].file] = true
	}
	s.mu.RUnlock()

	seen := map[string]bool{}
	var out []model.Task
	for file := range files {
		tasks, err := s.loadFile(file)
		if err != nil {
			continue
		}
		for _, t := range tasks {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			if !matchesTaskFilter(t, filter) {
				continue
			}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Updated.After(out[j].Updated) })
	return out, nil
}

func matchesTaskFilter(t model.Task, f TaskFilter) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.ParentID != "" && t.ParentTask != f.ParentID {
		return false
	}
	return true
}

// TaskUpdateFunc mutates a task in place; Update persists the result.
type TaskUpdateFunc func(*model.Task) error

// Update loads the owning file, replaces the target task's block after
// running fn (which may not alter ID/Serial/Created), stamps Updated, and
// rewrites the file.
func (s *TaskStore) Update(id string, fn TaskUpdateFunc) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byID[id]
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	tasks, err := s.loadFile(entry.file)
	if err != nil {
		return model.Task{}, err
	}

	var updated model.Task
	found := false
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		origID, origSerial, origCreated := tasks[i].ID, tasks[i].Serial, tasks[i].Created
		if err := fn(&tasks[i]); err != nil {
			return model.Task{}, err
		}
		tasks[i].ID, tasks[i].Serial, tasks[i].Created = origID, origSerial, origCreated
		tasks[i].Updated = time.Now().UTC()
		tasks[i].Project = pathcfg.SanitizeProject(tasks[i].Project)
		updated = tasks[i]
		found = true
		break
	}
	if !found {
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	if err := s.rewriteFile(entry.file, tasks); err != nil {
		return model.Task{}, err
	}

	s.unindexTask(id)
	s.indexTask(updated)
	return updated, nil
}

// Delete removes the task's block from its file (or the whole file if it
// was the only one), clears the index, and returns the deleted task so the
// caller can clean up parent/sibling/connection references.
func (s *TaskStore) Delete(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byID[id]
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	tasks, err := s.loadFile(entry.file)
	if err != nil {
		return model.Task{}, err
	}

	var removed model.Task
	var remaining []model.Task
	for _, t := range tasks {
		if t.ID == id {
			removed = t
			continue
		}
		remaining = append(remaining, t)
	}

	if err := s.rewriteFile(entry.file, remaining); err != nil {
		return model.Task{}, err
	}

	s.unindexTask(id)
	return removed, nil
}

// RemoveSubtask detaches childID from parentID's subtasks list, used when a
// child task is deleted.
func (s *TaskStore) RemoveSubtask(parentID, childID string) error {
	_, err := s.Update(parentID, func(t *model.Task) error {
		out := t.Subtasks[:0]
		for _, id := range t.Subtasks {
			if id != childID {
				out = append(out, id)
			}
		}
		t.Subtasks = out
		return nil
	})
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	return nil
}
