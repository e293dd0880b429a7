// Package madness provides the concurrency substrate of a parallel
// numerical computing framework: synchronization primitives, a thread-safe
// double-ended work queue, and the task-dispatching worker pool that the
// numerical layers submit work to.
//
// # Components
//
//   - Waiter: adaptive back-off for spin loops (spin, then nap, then sleep)
//   - Mutex, Spinlock, ScopedGuard: basic mutual exclusion
//   - ReaderWriterLock: shared/exclusive lock with atomic upgrade/downgrade
//   - ConditionVariable: fair signal/wait with per-waiter flags (no
//     thundering herd)
//   - FairMutex: strict-FIFO mutex built on the same waiter-queue idiom
//   - DualCondVar: kernel-blocking condition variable + mutex pair
//   - Deque: growing circular-buffer deque with integrated signaling and
//     operation counters
//   - Thread: OS-thread-locked execution with CPU-affinity classes
//   - WorkerPool: singleton pool of workers draining the shared task deque
//   - Range: splittable interval for partitioning parallel loops
//
// # Quick start
//
// Initialize the pool while the process is still single-threaded, submit
// tasks, and shut down in a single-threaded teardown phase:
//
//	if err := madness.Begin(); err != nil {
//	    log.Fatal(err)
//	}
//
//	for i := 0; i < 100; i++ {
//	    i := i
//	    madness.Add(madness.NewTask(func() {
//	        process(i)
//	    }, madness.TaskAttributes{}))
//	}
//
//	madness.End()
//
// The worker count comes from the POOL_NTHREAD environment variable when
// set, and otherwise defaults to one less than the CPU count (minimum two
// CPUs assumed). WithNumWorkers overrides both.
//
// # Priority
//
// Tasks carrying the high-priority attribute are dispatched from the front
// of the queue, ahead of every queued normal task but FIFO among
// themselves:
//
//	madness.Add(madness.NewTask(urgent, madness.HighPriorityAttributes()))
//
// # Contributing cycles
//
// A client thread waiting for the pool can drain tasks itself instead of
// blocking:
//
//	for !done() {
//	    if !madness.RunOneTask() {
//	        runtime.Gosched()
//	    }
//	}
//
// # CPU affinity
//
// Thread binding is configured per logical class (main, communication,
// worker) before the pool starts:
//
//	madness.SetAffinityPattern(
//	    [3]bool{true, true, true}, // bind all three classes
//	    [3]int{0, 1, 2},           // main on cpu0, comm on cpu1, workers from cpu2 up
//	)
//
// Workers are then pinned round-robin over the worker CPU span. On
// non-Linux systems the pattern is accepted and ignored.
//
// # Parallel loops
//
// The parallel subpackage runs a function over a Range by recursive
// splitting, one task per leaf chunk:
//
//	err := parallel.For(madness.NewRange(0, n, 0), func(lo, hi int) {
//	    for i := lo; i < hi; i++ {
//	        out[i] = f(in[i])
//	    }
//	})
//
// # Thread safety
//
// All exported types are safe for concurrent use unless their documentation
// says otherwise. Begin, End, SetAffinityPattern and SetLogger must run in
// single-threaded phases of the program.
package madness
