// Package store implements the entity store: per-project directories,
// filename generation, serial assignment, and a rebuildable in-memory
// index, for both memories and tasks.
package store

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/corevault/corevault/internal/guard"
	"github.com/corevault/corevault/internal/pathcfg"
)

// Store bundles the memory and task stores that share a data root, plus the
// connection-mirroring operations that keep task→memory and memory→task
// links in sync.
type Store struct {
	Memories *MemoryStore
	Tasks    *TaskStore

	lock *guard.ProjectLock
}

// Open builds both sub-stores from the resolved roots and acquires the
// exclusive advisory lock on roots.DataRoot, so a second process pointed at
// the same trees fails fast with ErrAlreadyRunning instead of racing writes.
// The memory and task trees are scanned concurrently since neither read
// depends on the other.
func Open(roots pathcfg.Roots) (*Store, error) {
	lock, err := acquireDaemonLock(roots.DataRoot)
	if err != nil {
		return nil, err
	}

	var mem *MemoryStore
	var tasks *TaskStore
	g := new(errgroup.Group)
	g.Go(func() error {
		m, err := OpenMemoryStore(roots.MemoriesRoot)
		if err != nil {
			return fmt.Errorf("store: opening memory store: %w", err)
		}
		mem = m
		return nil
	})
	g.Go(func() error {
		t, err := OpenTaskStore(roots.TasksRoot)
		if err != nil {
			return fmt.Errorf("store: opening task store: %w", err)
		}
		tasks = t
		return nil
	})
	if err := g.Wait(); err != nil {
		releaseDaemonLock(lock)
		return nil, err
	}

	return &Store{Memories: mem, Tasks: tasks, lock: lock}, nil
}

// Close releases the exclusive lock on the data root. Safe to call on a
// Store whose lock is nil (e.g. one built by hand in a test).
func (s *Store) Close() error {
	return releaseDaemonLock(s.lock)
}
