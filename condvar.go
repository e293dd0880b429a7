package madness

import (
	"sync"
	"sync/atomic"
)

// MaxWaiters sizes the waiter rings of ConditionVariable and FairMutex. A
// ConditionVariable holds at most MaxWaiters-1 blocked goroutines; a
// FairMutex admits at most MaxWaiters contenders, holder included. Going
// beyond either bound is a caller bug and panics with ErrQueueFull.
const MaxWaiters = 64

// ConditionVariable is a fair, scalable condition variable. It embeds a
// Mutex protecting both the caller's state and the internal waiter queue, so
// it is used as lock and signal channel at once: hold the mutex while
// calling Wait or Signal.
//
// Each blocked goroutine spins on its own flag rather than on shared state,
// so a wakeup touches exactly one waiter. Wakeup order is FIFO: the k-th
// goroutine to block is the k-th to wake. Signals issued with no waiter
// present are counted and consumed by the next Wait, so a signal sent
// between a waiter deciding to block and actually blocking is never lost.
//
// The zero value is ready to use. A ConditionVariable must not be copied
// after first use.
type ConditionVariable struct {
	Mutex
	nsig  int // outstanding signals not yet consumed
	front int
	back  int
	q     [MaxWaiters]*atomic.Bool // circular buffer of per-waiter flags
}

// wakeup pops queued waiters while signals remain.
// Caller must hold the mutex.
func (cv *ConditionVariable) wakeup() {
	for cv.nsig > 0 && cv.front != cv.back {
		cv.nsig--
		f := cv.front
		cv.q[f].Store(true)
		cv.q[f] = nil // catch stale reuse
		f++
		if f >= MaxWaiters {
			f = 0
		}
		cv.front = f
	}
}

// Wait blocks until signalled. The caller must hold the mutex; Wait releases
// it while blocked and re-acquires it before returning.
//
// If a signal is already outstanding, Wait consumes it and returns without
// blocking. Otherwise the caller's flag is appended to the waiter queue and
// the goroutine spins on that flag alone, generating no shared-memory
// traffic while it waits.
func (cv *ConditionVariable) Wait() {
	if cv.nsig > 0 {
		cv.nsig--
	} else if cv.nsig == 0 {
		b := cv.back + 1
		if b >= MaxWaiters {
			b = 0
		}
		if b == cv.front {
			cv.Unlock()
			fatalf(ErrQueueFull, "ConditionVariable: more than %d waiters", MaxWaiters-1)
		}
		myturn := new(atomic.Bool)
		cv.q[cv.back] = myturn
		cv.back = b

		cv.Unlock() // release before blocking
		var w Waiter
		for !myturn.Load() {
			w.Wait()
		}
		cv.Lock()
	} else {
		fatalf(ErrInvariantViolation, "ConditionVariable: negative signal count")
	}
	cv.wakeup()
}

// Signal wakes one waiter. The caller must hold the mutex. If no waiter is
// queued the signal is retained and consumed by the next Wait.
func (cv *ConditionVariable) Signal() {
	cv.nsig++
	cv.wakeup()
}

// DualCondVar is a kernel-blocking condition variable paired with its own
// mutex. Unlike ConditionVariable it consumes no cycles while blocked, at
// the cost of scheduling granularity; use it for waits that must not burn
// CPU, such as a thread parked until an unrelated subsystem makes progress.
type DualCondVar struct {
	mu   sync.Mutex
	cond *sync.Cond
}

// NewDualCondVar returns a ready-to-use DualCondVar.
func NewDualCondVar() *DualCondVar {
	d := &DualCondVar{}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Lock acquires the paired mutex.
func (d *DualCondVar) Lock() { d.mu.Lock() }

// Unlock releases the paired mutex.
func (d *DualCondVar) Unlock() { d.mu.Unlock() }

// Wait blocks until signalled. The caller must hold the paired mutex; it is
// released while blocked and re-acquired before returning.
func (d *DualCondVar) Wait() { d.cond.Wait() }

// Signal wakes one blocked goroutine, if any.
func (d *DualCondVar) Signal() { d.cond.Signal() }

// Broadcast wakes every blocked goroutine.
func (d *DualCondVar) Broadcast() { d.cond.Broadcast() }
