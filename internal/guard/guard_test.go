package guard

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyedLockSerializesSameKey(t *testing.T) {
	k := NewKeyedLock()
	var counter int64
	var wg sync.WaitGroup
	var maxSeen int64

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("entity-1")
			defer unlock()
			n := atomic.AddInt64(&counter, 1)
			if n > atomic.LoadInt64(&maxSeen) {
				atomic.StoreInt64(&maxSeen, n)
			}
			atomic.AddInt64(&counter, -1)
		}()
	}
	wg.Wait()
	require.Equal(t, int64(1), maxSeen)
}

func TestKeyedLockDifferentKeysDoNotBlock(t *testing.T) {
	k := NewKeyedLock()
	unlockA := k.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("b")
		defer unlockB()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on key b blocked on unrelated key a")
	}
	unlockA()
}

func TestKeyedLockTryLockFailsWhenHeld(t *testing.T) {
	k := NewKeyedLock()
	unlock := k.Lock("x")
	_, ok := k.TryLock("x")
	require.False(t, ok)
	unlock()

	unlock2, ok := k.TryLock("x")
	require.True(t, ok)
	unlock2()
}

func TestDebouncerCoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls int64
	for i := 0; i < 5; i++ {
		d.Trigger("k", func() { atomic.AddInt64(&calls, 1) })
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, int64(1), atomic.LoadInt64(&calls))
}
