package store

import (
	"errors"
	"fmt"

	"github.com/corevault/corevault/internal/guard"
)

// ErrAlreadyRunning is returned by Open when another process already holds
// the exclusive lock on dataRoot.
var ErrAlreadyRunning = fmt.Errorf("store: another process is already serving this data root")

func acquireDaemonLock(dataRoot string) (*guard.ProjectLock, error) {
	lock, err := guard.AcquireProjectLock(dataRoot)
	if err != nil {
		if errors.Is(err, guard.ErrLockBusy) {
			return nil, ErrAlreadyRunning
		}
		return nil, err
	}
	return lock, nil
}

func releaseDaemonLock(l *guard.ProjectLock) error {
	if l == nil {
		return nil
	}
	return l.Release()
}
