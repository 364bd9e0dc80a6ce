// Package guard serializes concurrent access to entity files: a per-id
// in-process lock with reference counting for create/update/delete
// collisions, a per-key debouncer, and a cross-process advisory file lock
// so two corevault processes never write the same data root at once.
package guard

import (
	"sync"
)

// KeyedLock hands out a *sync.Mutex per key, refcounted so the backing
// entry is freed once nothing holds it. The gateway uses it for per-task-id
// locks (single writer per entity).
type KeyedLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLock returns a ready-to-use KeyedLock.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{entries: map[string]*lockEntry{}}
}

// Lock acquires the lock for key, blocking until available. The returned
// func releases it and must be called exactly once.
func (k *KeyedLock) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// TryLock attempts to acquire key's lock without blocking. On success it
// returns a release func and true; on failure it returns (nil, false).
func (k *KeyedLock) TryLock(key string) (func(), bool) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	if !e.mu.TryLock() {
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
		return nil, false
	}

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}, true
}
