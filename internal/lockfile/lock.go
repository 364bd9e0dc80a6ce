package lockfile

import (
	"errors"
)

// ErrLockBusy is returned when a non-blocking lock cannot be acquired
// because another process holds a conflicting lock.
var ErrLockBusy = errors.New("lock busy: held by another process")

// IsLocked reports whether err indicates a conflicting lock held elsewhere.
func IsLocked(err error) bool {
	return errors.Is(err, ErrLockBusy)
}
