package util

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a mutual exclusion lock that yields while spinning.
// Use it only around a handful of instructions.
type SpinLock struct {
	state atomic.Int32
}

// Lock acquires the lock.
func (s *SpinLock) Lock() {
	for !s.state.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// Unlock releases the lock.
func (s *SpinLock) Unlock() {
	s.state.Store(0)
}

// TryLock acquires the lock without waiting.
func (s *SpinLock) TryLock() bool {
	return s.state.CompareAndSwap(0, 1)
}
