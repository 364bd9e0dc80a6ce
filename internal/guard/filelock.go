package guard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corevault/corevault/internal/lockfile"
)

// ErrLockBusy is returned when a non-blocking project lock cannot be
// acquired because another process already holds it.
var ErrLockBusy = errors.New("guard: project lock held by another process")

// ProjectLock is a cross-process advisory lock over a directory. store.Open
// takes one on the data root and holds it until Store.Close, so two
// corevault processes never open (and race-rewrite) the same trees at once.
// Built on internal/lockfile's cross-platform flock wrappers.
type ProjectLock struct {
	f *os.File
}

// AcquireProjectLock opens (creating if needed) a lock file inside dir and
// takes an exclusive non-blocking flock on it.
func AcquireProjectLock(dir string) (*ProjectLock, error) {
	path := filepath.Join(dir, ".corevault.lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("guard: opening lock file %s: %w", path, err)
	}
	if err := lockfile.FlockExclusiveNonBlock(f); err != nil {
		f.Close()
		if lockfile.IsLocked(err) {
			return nil, ErrLockBusy
		}
		return nil, fmt.Errorf("guard: locking %s: %w", path, err)
	}
	return &ProjectLock{f: f}, nil
}

// Release unlocks and closes the lock file.
func (l *ProjectLock) Release() error {
	if err := lockfile.FlockUnlock(l.f); err != nil {
		l.f.Close()
		return fmt.Errorf("guard: unlocking: %w", err)
	}
	return l.f.Close()
}
