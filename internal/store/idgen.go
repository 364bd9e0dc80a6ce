package store

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns an opaque, time-ordered entity identifier. UUIDv7 embeds a
// millisecond timestamp in its high bits, so IDs sort roughly by creation
// order without needing a content hash.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the system RNG is broken; fall back to a
		// random v4 rather than panicking in the store's hot path.
		return uuid.NewString()
	}
	return id.String()
}

// FormatMemorySerial renders a 1-based sequence number as MEM-XXXXXX.
func FormatMemorySerial(seq int64) string {
	return fmt.Sprintf("MEM-%06d", seq)
}

// FormatTaskSerial renders a 1-based sequence number as TASK-NNNNN.
func FormatTaskSerial(seq int64) string {
	return fmt.Sprintf("TASK-%05d", seq)
}
