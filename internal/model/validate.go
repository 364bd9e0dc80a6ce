package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures, matched with errors.Is across the
// gateway boundary.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrUnknownPriority   = errors.New("unknown priority")
	ErrUnknownStatus     = errors.New("unknown status")
	ErrDanglingParent    = errors.New("parent_task does not resolve to an existing task")
)

// ValidateStatusTransition checks from→to against the legal-edge table and
// returns a wrapped ErrInvalidTransition on failure. Memory.Status has no
// transition graph of its own — it is freely settable — so only Task.Status
// goes through this check.
func ValidateStatusTransition(from, to TaskStatus) error {
	if from == to {
		return nil
	}
	if !ValidTransition(from, to) {
		return fmt.Errorf("%w: cannot go from %q to %q", ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidatePriority reports whether p is one of the allowed levels for the
// given entity kind. Tasks additionally allow "urgent".
func ValidatePriority(p Priority, allowUrgent bool) error {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	case PriorityUrgent:
		if allowUrgent {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrUnknownPriority, p)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPriority, p)
	}
}

// ValidateTaskCategory reports whether c is one of the four task categories.
func ValidateTaskCategory(c TaskCategory) error {
	switch c {
	case "", TaskCategoryPersonal, TaskCategoryWork, TaskCategoryCode, TaskCategoryResearch:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
}

// ValidateMemoryCategory reports whether c is one of the six memory
// categories.
func ValidateMemoryCategory(c Category) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return nil
}

// ValidateMemoryStatus reports whether s is one of the three memory
// lifecycle states.
func ValidateMemoryStatus(s MemoryStatus) error {
	switch s {
	case "", MemoryStatusActive, MemoryStatusArchived, MemoryStatusRef:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}
