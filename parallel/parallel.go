// Package parallel runs loops over a madness.Range on the worker pool.
//
// A loop is partitioned by recursive range splitting: each task splits off
// half of its range into a new pool task while the range is larger than its
// chunk size, then runs the loop body on the chunk it kept. The caller
// contributes its own thread to the pool while it waits, so a parallel loop
// may safely be issued from within a pool task.
package parallel

import (
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/samyam/madness"
)

// loopRun tracks one parallel loop: the body, outstanding chunk tasks, and
// errors from chunks that panicked.
type loopRun struct {
	fn      func(lo, hi int)
	pending atomic.Int64

	mu   sync.Mutex
	errs []error
}

// handlePanic records a chunk panic as a PanicError.
func (l *loopRun) handlePanic(v interface{}, stack []byte) {
	l.mu.Lock()
	l.errs = append(l.errs, &PanicError{Value: v, Stack: string(stack)})
	l.mu.Unlock()
}

// err returns the loop's collected errors, nil when every chunk succeeded.
func (l *loopRun) err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.errs) == 0 {
		return nil
	}
	errs := make([]error, len(l.errs))
	copy(errs, l.errs)
	return AggregateError{Errors: errs}
}

// loopTask is one pool task of a parallel loop, owning a sub-range.
type loopTask struct {
	run *loopRun
	r   madness.Range
}

// Attributes marks still-splittable tasks as generators, since they will
// submit further tasks.
func (t *loopTask) Attributes() madness.TaskAttributes {
	if t.r.CanSplit() {
		return madness.GeneratorAttributes()
	}
	return madness.TaskAttributes{}
}

// Run splits off half-ranges into new tasks until the remainder is at most
// one chunk, then applies the loop body to it.
func (t *loopTask) Run() {
	defer t.run.pending.Add(-1)
	defer func() {
		if v := recover(); v != nil {
			t.run.handlePanic(v, debug.Stack())
		}
	}()

	r := t.r
	for r.CanSplit() {
		half := r.Split()
		t.run.submit(half)
	}
	if !r.Empty() {
		t.run.fn(r.Begin(), r.End())
	}
}

// submit enqueues a sub-range as a pool task.
func (l *loopRun) submit(r madness.Range) {
	l.pending.Add(1)
	madness.Add(&loopTask{run: l, r: r})
}

// For applies fn to chunks covering every index of r exactly once,
// executing the chunks as pool tasks. It returns once every chunk has run.
// Chunks run concurrently and in no particular order; fn must be safe for
// that.
//
// A chunk that panics does not abort the loop: the remaining chunks still
// run, and For returns an AggregateError collecting a PanicError per failed
// chunk.
//
// While waiting, the calling thread drains pool tasks itself, so workers
// issuing nested parallel loops make progress instead of deadlocking.
func For(r madness.Range, fn func(lo, hi int)) error {
	run := &loopRun{fn: fn}
	if !r.Empty() {
		run.submit(r)
	}
	for run.pending.Load() > 0 {
		if !madness.RunOneTask() {
			runtime.Gosched()
		}
	}
	return run.err()
}

// Reduce applies fn to chunks covering every index of r exactly once and
// folds the per-chunk results into identity with combine. The combiner must
// be associative and commutative, since chunks complete in arbitrary order.
func Reduce[T any](r madness.Range, identity T, fn func(lo, hi int) T, combine func(T, T) T) (T, error) {
	var mu sync.Mutex
	acc := identity
	err := For(r, func(lo, hi int) {
		v := fn(lo, hi)
		mu.Lock()
		acc = combine(acc, v)
		mu.Unlock()
	})
	return acc, err
}
