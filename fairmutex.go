package madness

import "sync/atomic"

// FairMutex is a FIFO mutual-exclusion lock: goroutines acquire it in the
// order they called Lock. It is not recursive.
//
// The held count and waiter queue are protected by an internal Mutex held
// only for a few instructions per operation. Like ConditionVariable, each
// blocked goroutine spins on its own flag, so handing the lock to the next
// waiter touches a single memory location.
//
// At most MaxWaiters goroutines may contend at once; exceeding that is a
// caller bug and panics with ErrQueueFull.
//
// The zero value is an unlocked FairMutex. It must not be copied after
// first use.
type FairMutex struct {
	mu    Mutex
	n     int // holders plus waiters
	front int
	back  int
	q     [MaxWaiters]*atomic.Bool
}

// Lock acquires the mutex, queuing behind earlier callers if it is held.
func (m *FairMutex) Lock() {
	m.mu.Lock()
	if m.n < 0 || m.n >= MaxWaiters {
		m.mu.Unlock()
		fatalf(ErrQueueFull, "FairMutex: more than %d contenders", MaxWaiters)
	}
	m.n++
	if m.n == 1 {
		// Uncontended: the lock is ours and the queue must be empty.
		if m.front != m.back {
			m.mu.Unlock()
			fatalf(ErrInvariantViolation, "FairMutex: waiters queued on unheld lock")
		}
		m.mu.Unlock()
		return
	}
	myturn := new(atomic.Bool)
	m.q[m.back] = myturn
	m.back++
	if m.back >= MaxWaiters {
		m.back = 0
	}
	m.mu.Unlock()

	var w Waiter
	for !myturn.Load() {
		w.Wait()
	}
}

// Unlock releases the mutex, transferring ownership to the oldest waiter if
// one is queued. Unlocking an unheld FairMutex is a caller bug; it panics
// with ErrLockFailure.
func (m *FairMutex) Unlock() {
	var next *atomic.Bool
	m.mu.Lock()
	if m.n < 1 {
		m.mu.Unlock()
		fatalf(ErrLockFailure, "unlock of unheld FairMutex")
	}
	m.n--
	if m.n > 0 {
		next = m.q[m.front]
		m.q[m.front] = nil
		m.front++
		if m.front >= MaxWaiters {
			m.front = 0
		}
	} else if m.front != m.back {
		m.mu.Unlock()
		fatalf(ErrInvariantViolation, "FairMutex: waiters queued on released lock")
	}
	m.mu.Unlock()
	if next != nil {
		next.Store(true)
	}
}

// TryLock acquires the mutex only if it is free; it never queues.
// It returns true on success.
func (m *FairMutex) TryLock() bool {
	m.mu.Lock()
	gotit := m.n == 0
	if gotit {
		m.n++
	}
	m.mu.Unlock()
	return gotit
}
