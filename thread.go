package madness

import "runtime"

// Logical thread classes for affinity binding. Each class is configured
// independently by SetAffinityPattern.
const (
	// AffinityMain is the program's main thread.
	AffinityMain = 0
	// AffinityCommunication is a dedicated communication thread.
	AffinityCommunication = 1
	// AffinityWorker is a pool worker thread; each worker is additionally
	// distinguished by its pool index.
	AffinityWorker = 2

	numAffinityClasses = 3
)

// affinityPattern is the process-global binding configuration. It is written
// during single-threaded initialization and read by threads as they start.
var affinityPattern struct {
	bind  [numAffinityClasses]bool
	cpulo [numAffinityClasses]int
	cpuhi [numAffinityClasses]int
}

// SetAffinityPattern configures how threads bind to CPUs, per logical class.
// For each class, bind selects whether the class is pinned and cpulo is the
// lowest CPU it may use. A bound main or communication thread is pinned to
// exactly cpulo; bound workers share [cpulo, ncpu-1], with worker i pinned
// to cpulo + (i mod span). For an unbound class the pattern records
// [cpulo, ncpu-1], but SetAffinity applies no mask to it, so its threads
// keep the affinity they inherited.
//
// Call while the process is single-threaded; the pattern applies to threads
// started afterwards.
func SetAffinityPattern(bind [3]bool, cpulo [3]int) {
	ncpu := runtime.NumCPU()
	for i := 0; i < numAffinityClasses; i++ {
		lo := cpulo[i]
		if lo < 0 {
			lo = 0
		}
		if lo >= ncpu {
			lo = ncpu - 1
		}
		affinityPattern.bind[i] = bind[i]
		affinityPattern.cpulo[i] = lo
		if i < AffinityWorker && bind[i] {
			affinityPattern.cpuhi[i] = lo
		} else {
			affinityPattern.cpuhi[i] = ncpu - 1
		}
	}
}

// SetAffinity applies the configured CPU mask for the given logical class to
// the calling thread. For AffinityWorker, index is the worker's pool index;
// other classes ignore it. An invalid class or index logs a warning and
// leaves the affinity unchanged.
//
// The caller should be locked to its OS thread; Thread.Start arranges that.
func SetAffinity(class int, index int) {
	if class < 0 || class >= numAffinityClasses {
		logger.Warn().Int("class", class).Msg("set affinity: bad logical thread class")
		return
	}
	if !affinityPattern.bind[class] {
		return
	}

	lo := affinityPattern.cpulo[class]
	hi := affinityPattern.cpuhi[class]
	if class == AffinityWorker {
		if index < 0 {
			logger.Warn().Int("index", index).Msg("set affinity: bad pool thread index")
			return
		}
		span := hi - lo + 1
		lo += index % span
		hi = lo
	}

	if err := setAffinityRange(lo, hi); err != nil {
		logger.Warn().Err(err).
			Int("class", class).Int("cpulo", lo).Int("cpuhi", hi).
			Msg("set affinity: could not set cpu affinity")
	}
}

// Thread wraps an OS thread. Start spawns a goroutine locked to its own OS
// thread for the lifetime of fn, so CPU affinity applied inside fn sticks.
// Threads are detached: there is no join; coordinate termination through
// shared state, the way WorkerPool counts finished workers.
type Thread struct {
	poolIndex int
}

// NewThread returns a thread not yet running. The pool index is -1 until
// the thread is adopted by a WorkerPool.
func NewThread() *Thread {
	return &Thread{poolIndex: -1}
}

// PoolIndex returns the thread's index in its WorkerPool, in [0, N), or -1
// if the thread is not a pool worker.
func (t *Thread) PoolIndex() int {
	return t.poolIndex
}

// setPoolIndex records the thread's slot in the owning pool.
func (t *Thread) setPoolIndex(i int) {
	t.poolIndex = i
}

// Start runs fn on a new OS-thread-locked goroutine and returns immediately.
func (t *Thread) Start(fn func()) {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		fn()
	}()
}
