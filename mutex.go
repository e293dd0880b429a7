package madness

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// A TryLocker is a Locker that also supports non-blocking acquisition.
// Mutex, Spinlock and FairMutex satisfy it. ReaderWriterLock is a
// sync.Locker on its write side but names its non-blocking write
// acquisition TryWriteLock, so it does not satisfy TryLocker.
type TryLocker interface {
	sync.Locker
	TryLock() bool
}

// Mutex is a mutual-exclusion primitive built on a compare-and-swap flag.
// Contended acquisitions back off through a Waiter, so brief critical
// sections are acquired without ever touching a timer.
//
// The zero value is an unlocked mutex. A Mutex must not be copied after
// first use.
type Mutex struct {
	flag atomic.Uint32
}

// TryLock attempts to acquire the mutex without blocking.
// It returns true on success.
func (m *Mutex) TryLock() bool {
	return m.flag.CompareAndSwap(0, 1)
}

// Lock acquires the mutex, waiting if necessary.
func (m *Mutex) Lock() {
	var w Waiter
	for !m.TryLock() {
		w.Wait()
	}
}

// Unlock releases the mutex. Unlocking a mutex that is not held is a caller
// bug; it panics with ErrLockFailure.
func (m *Mutex) Unlock() {
	if !m.flag.CompareAndSwap(1, 0) {
		fatalf(ErrLockFailure, "unlock of unheld Mutex")
	}
}

// Spinlock has the same surface as Mutex but never sleeps: contended
// acquisitions spin, yielding to the scheduler between attempts. Use it only
// where the critical section is a handful of instructions.
//
// The zero value is an unlocked spinlock. A Spinlock must not be copied
// after first use.
type Spinlock struct {
	flag atomic.Uint32
}

// TryLock attempts to acquire the spinlock without blocking.
// It returns true on success.
func (s *Spinlock) TryLock() bool {
	return s.flag.CompareAndSwap(0, 1)
}

// Lock acquires the spinlock, spinning if necessary.
func (s *Spinlock) Lock() {
	for !s.TryLock() {
		runtime.Gosched()
	}
}

// Unlock releases the spinlock. Unlocking a spinlock that is not held is a
// caller bug; it panics with ErrLockFailure.
func (s *Spinlock) Unlock() {
	if !s.flag.CompareAndSwap(1, 0) {
		fatalf(ErrLockFailure, "unlock of unheld Spinlock")
	}
}

// ScopedGuard holds a lock for the duration of a scope. Guard acquires the
// lock; Release releases it and is safe to call more than once, so it can be
// deferred while still allowing early release:
//
//	g := madness.Guard(&mu)
//	defer g.Release()
//
// Release runs on every exit path, including panics unwinding through the
// deferring function.
type ScopedGuard struct {
	l        sync.Locker
	released bool
}

// Guard locks l and returns a guard that releases it.
func Guard(l sync.Locker) *ScopedGuard {
	l.Lock()
	return &ScopedGuard{l: l}
}

// Release unlocks the guarded lock. Calls after the first are no-ops.
func (g *ScopedGuard) Release() {
	if !g.released {
		g.released = true
		g.l.Unlock()
	}
}

// TryTwoLocks attempts to acquire two locks without blocking while holding
// either one. It first tries m1 and, only if that succeeds, tries m2. On
// success both locks are held. On failure neither is.
func TryTwoLocks(m1, m2 TryLocker) bool {
	if !m1.TryLock() {
		return false
	}
	if m2.TryLock() {
		return true
	}
	m1.Unlock()
	return false
}
