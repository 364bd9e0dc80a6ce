package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/corevault/corevault/internal/frontmatter"
	"github.com/corevault/corevault/internal/model"
	"github.com/corevault/corevault/internal/pathcfg"
)

// memoryEntry is the in-memory index record for one memory.
type memoryEntry struct {
	file    string
	project string
}

// MemoryStore owns the on-disk memory tree under a single memoriesRoot and
// keeps a rebuildable in-memory index: id → file, project → set<id>.
type MemoryStore struct {
	root string

	mu       sync.RWMutex
	byID     map[string]*memoryEntry
	byProj   map[string]map[string]bool
	serial   int64 // highest serial sequence number assigned so far
	suffixes map[string]int
}

// OpenMemoryStore scans root and builds the in-memory index, rescanning
// every file once to recompute the max serial when starting cold.
func OpenMemoryStore(root string) (*MemoryStore, error) {
	s := &MemoryStore{
		root:     root,
		byID:     map[string]*memoryEntry{},
		byProj:   map[string]map[string]bool{},
		suffixes: map[string]int{},
	}
	if err := s.rescan(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MemoryStore) rescan() error {
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
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil // corrupt/unreadable entries are skipped, not fatal
		}
		doc, err := frontmatter.Parse(raw)
		if err != nil && doc.Header == nil {
			return nil
		}
		m, err := frontmatter.DecodeMemory(doc)
		if err != nil || m.ID == "" {
			return nil
		}
		m.File = path
		s.indexMemory(m)
		if seq := serialSeq(m.Serial); seq > s.serial {
			s.serial = seq
		}
		return nil
	})
}

func serialSeq(serial string) int64 {
	parts := strings.SplitN(serial, "-", 2)
	if len(parts) != 2 {
		return 0
	}
	n, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (s *MemoryStore) indexMemory(m model.Memory) {
	s.byID[m.ID] = &memoryEntry{file: m.File, project: m.Project}
	proj := m.Project
	if proj == "" {
		proj = model.DefaultProject
	}
	if s.byProj[proj] == nil {
		s.byProj[proj] = map[string]bool{}
	}
	s.byProj[proj][m.ID] = true
}

func (s *MemoryStore) unindexMemory(id, project string) {
	delete(s.byID, id)
	if set, ok := s.byProj[project]; ok {
		delete(set, id)
	}
}

// Create assigns id/serial/timestamp/filename, writes the file, and
// indexes the result.
func (s *MemoryStore) Create(m model.Memory) (model.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = NewID()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	if m.Status == "" {
		m.Status = model.MemoryStatusActive
	}
	if m.Metadata.ContentType == "" {
		m.Metadata.ContentType = model.DeriveContentType(m.Body)
	}
	m.Metadata.MermaidDiagram = model.HasMermaidDiagram(m.Body)
	m.Metadata.Size = len(m.Body)
	m.Complexity = m.DeriveComplexity()
	if m.Extra == nil {
		m.Extra = map[string]any{}
	}

	s.serial++
	m.Serial = FormatMemorySerial(s.serial)

	project := pathcfg.SanitizeProject(m.Project)
	m.Project = project

	projDir, err := pathcfg.SandboxJoin(s.root, project)
	if err != nil {
		return model.Memory{}, err
	}
	if err := os.MkdirAll(projDir, 0o700); err != nil {
		return model.Memory{}, fmt.Errorf("store: creating project dir: %w", err)
	}

	file, err := s.allocateFilename(projDir, m)
	if err != nil {
		return model.Memory{}, err
	}
	m.File = file

	raw, err := frontmatter.EncodeMemory(m)
	if err != nil {
		return model.Memory{}, fmt.Errorf("store: encoding memory %s: %w", m.ID, err)
	}
	if err := atomicWrite(file, raw); err != nil {
		return model.Memory{}, err
	}

	s.indexMemory(m)
	return m, nil
}

// allocateFilename builds <YYYY-MM-DD>-<slug>-<nnnnnn>.md, retrying the
// suffix on collision.
func (s *MemoryStore) allocateFilename(projDir string, m model.Memory) (string, error) {
	date := m.Timestamp.Format("2006-01-02")
	slug := model.Slugify(m.Body)
	key := projDir + "/" + date + "-" + slug

	for attempt := 0; attempt < 1000; attempt++ {
		n := s.suffixes[key] + attempt + 1
		name := fmt.Sprintf("%s-%s-%06d.md", date, slug, n)
		full, err := pathcfg.SandboxJoin(projDir, name)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(full); os.IsNotExist(err) {
			s.suffixes[key] = n
			return full, nil
		}
	}
	return "", fmt.Errorf("%w: exhausted filename suffixes for %s", model.ErrConflict, key)
}

// Get returns the memory with the given id.
func (s *MemoryStore) Get(id string) (model.Memory, error) {
	s.mu.RLock()
	entry, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return model.Memory{}, fmt.Errorf("memory %s: %w", id, model.ErrNotFound)
	}
	return s.load(entry.file)
}

func (s *MemoryStore) load(file string) (model.Memory, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return model.Memory{}, fmt.Errorf("store: reading %s: %w", file, err)
	}
	doc, err := frontmatter.Parse(raw)
	if err != nil && doc.Header == nil {
		return model.Memory{}, fmt.Errorf("store: %s: %w", file, model.ErrCorrupt)
	}
	m, err := frontmatter.DecodeMemory(doc)
	if err != nil {
		return model.Memory{}, fmt.Errorf("store: decoding %s: %w", file, model.ErrCorrupt)
	}
	m.File = file
	return m, nil
}

// ListFilter narrows List/Search results; zero-value fields are ignored.
type ListFilter struct {
	Project  string
	Category model.Category
	Status   model.MemoryStatus
	Tag      string
	Query    string
}

// List returns memories matching filter, newest first.
func (s *MemoryStore) List(filter ListFilter) ([]model.Memory, error) {
	s.mu.RLock()
	var ids []string
	if filter.Project != "" {
		for id := range s.byProj[pathcfg.SanitizeProject(filter.Project)] {
			ids = append(ids, id)
		}
	} else {
		for id := range s.byID {
			ids = append(ids, id)
		}
	}
	files := make(map[string]string, len(ids))
	for _, id := range ids {
		files[id] = s.byID[id].file
	}
	s.mu.RUnlock()

	var out []model.Memory
	for _, id := range ids {
		m, err := s.load(files[id])
		if err != nil {
			continue
		}
		if !matchesFilter(m, filter) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func matchesFilter(m model.Memory, f ListFilter) bool {
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range m.Tags {
			if t == f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		hay := strings.ToLower(m.Title + " " + m.Summary + " " + m.Body + " " + strings.Join(m.Tags, " "))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// UpdateFunc mutates a memory in place; Update persists the result.
type UpdateFunc func(*model.Memory)

// Update loads the memory, applies fn (which may not alter ID/Serial/
// Timestamp), re-derives the body-dependent metadata, and persists it.
// LastAccessed is left unchanged; Touch is what stamps it.
func (s *MemoryStore) Update(id string, fn UpdateFunc) (model.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byID[id]
	if !ok {
		return model.Memory{}, fmt.Errorf("memory %s: %w", id, model.ErrNotFound)
	}
	m, err := s.load(entry.file)
	if err != nil {
		return model.Memory{}, err
	}

	origID, origSerial, origTimestamp := m.ID, m.Serial, m.Timestamp
	fn(&m)
	m.ID, m.Serial, m.Timestamp = origID, origSerial, origTimestamp
	m.Metadata.MermaidDiagram = model.HasMermaidDiagram(m.Body)
	m.Metadata.Size = len(m.Body)
	m.Complexity = m.DeriveComplexity()

	raw, err := frontmatter.EncodeMemory(m)
	if err != nil {
		return model.Memory{}, fmt.Errorf("store: encoding memory %s: %w", id, err)
	}
	if err := atomicWrite(m.File, raw); err != nil {
		return model.Memory{}, err
	}

	s.unindexMemory(id, entry.project)
	s.indexMemory(m)
	return m, nil
}

// Delete removes the memory's file and index entries.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("memory %s: %w", id, model.ErrNotFound)
	}
	if err := os.Remove(entry.file); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: deleting %s: %w", entry.file, err)
	}
	s.unindexMemory(id, entry.project)
	return nil
}

// Touch bumps access bookkeeping (access_count, last_accessed) without
// running it through Update's caller-supplied mutation, since every read
// path needs this and a closure per call site would be noise.
func (s *MemoryStore) Touch(id string) error {
	_, err := s.Update(id, func(m *model.Memory) {
		m.AccessCount++
		m.LastAccessed = time.Now().UTC()
	})
	return err
}
