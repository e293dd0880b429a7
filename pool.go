package madness

import (
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/automaxprocs/maxprocs"
)

// WorkerPool dispatches tasks to a fixed set of worker threads consuming
// from a shared Deque. Normal tasks are appended at the back and
// high-priority tasks at the front, so high-priority tasks preempt the
// queued normal order while staying FIFO among themselves.
//
// The process has a single pool, managed through the package-level Begin,
// Add, RunOneTask, Size, Stats and End functions. Begin and End must run in
// single-threaded phases of the program; between them the pool cannot be
// reconfigured or resized.
type WorkerPool struct {
	config    Config
	threads   []*Thread
	queue     *Deque[Task]
	high      *Deque[Task]
	finish    atomic.Bool
	nfinished atomic.Int64
}

// fetchHigh is the placeholder pushed to the front of the dispatch queue for
// each high-priority submission. Front placement makes the placeholder beat
// every queued normal task to a worker; the actual tasks sit in the
// FIFO high queue, so high-priority tasks keep their submission order even
// though placeholders at the front do not.
type fetchHigh struct {
	pool *WorkerPool
}

func (f fetchHigh) Run() {
	if task, ok := f.pool.high.PopFront(false); ok {
		task.Run()
	}
}

func (fetchHigh) Attributes() TaskAttributes { return HighPriorityAttributes() }

// instance is the process-wide pool. Written only in the single-threaded
// Begin/End phases.
var instance *WorkerPool

// Begin initializes the process-wide pool and starts its workers. It must
// be called while the process is single-threaded, before any tasks are
// submitted. Calling Begin with a pool already live is an error.
//
// The worker count is resolved in order: WithNumWorkers option, then the
// POOL_NTHREAD environment variable (ErrInvalidConfig if unparseable), then
// max(2, ncpu) - 1. GOMAXPROCS is first aligned with the container CPU
// quota, so the derived count respects cgroup limits.
func Begin(opts ...Option) error {
	if instance != nil {
		return errInvalidConfig("pool already initialized")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug().Msgf(format, args...)
	})); err != nil {
		logger.Warn().Err(err).Msg("pool: could not honor cpu quota")
	}

	nthreads := cfg.NumWorkers
	if nthreads == 0 {
		var err error
		nthreads, err = defaultNumWorkers()
		if err != nil {
			return err
		}
	}

	p := newWorkerPool(cfg, nthreads)
	p.start()
	instance = p
	logger.Debug().Int("workers", nthreads).Msg("pool: started")
	return nil
}

// defaultNumWorkers resolves the worker count from the environment or the
// CPU count.
func defaultNumWorkers() (int, error) {
	if s, ok := os.LookupEnv("POOL_NTHREAD"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, errInvalidConfig("POOL_NTHREAD is not an integer")
		}
		if n < 0 {
			return 0, errInvalidConfig("POOL_NTHREAD must be >= 0")
		}
		return n, nil
	}
	ncpu := runtime.GOMAXPROCS(0)
	if ncpu < 2 {
		ncpu = 2
	}
	return ncpu - 1, nil
}

// newWorkerPool allocates a pool with its task deque and thread slots but
// does not start the workers.
func newWorkerPool(cfg Config, nthreads int) *WorkerPool {
	var queue *Deque[Task]
	if cfg.QueueSizeHint > 0 {
		queue = NewDequeHint[Task](cfg.QueueSizeHint)
	} else {
		queue = NewDeque[Task]()
	}
	p := &WorkerPool{
		config:  cfg,
		queue:   queue,
		high:    NewDequeHint[Task](dequeMinCapacity),
		threads: make([]*Thread, nthreads),
	}
	for i := range p.threads {
		t := NewThread()
		t.setPoolIndex(i)
		p.threads[i] = t
	}
	return p
}

// start launches every worker thread.
func (p *WorkerPool) start() {
	for _, t := range p.threads {
		t.Start(func() { p.workerMain(t) })
	}
}

// workerMain is the dispatch loop run by each worker thread. The finished
// count is incremented on every exit path so End can observe quiescence
// even if a worker dies abnormally.
func (p *WorkerPool) workerMain(t *Thread) {
	defer p.nfinished.Add(1)
	SetAffinity(AffinityWorker, t.PoolIndex())
	logger.Debug().Int("worker", t.PoolIndex()).Msg("pool: worker running")
	for !p.finish.Load() {
		p.runTask(true)
	}
	logger.Debug().Int("worker", t.PoolIndex()).Msg("pool: worker finished")
}

// runTask pops and executes one task; it blocks when wait is true.
// It reports whether a task ran.
func (p *WorkerPool) runTask(wait bool) bool {
	task, ok := p.queue.PopFront(wait)
	if ok {
		p.execute(task)
	}
	return ok
}

// execute runs a task, recovering panics so one bad task cannot take a
// worker down or skew the liveness accounting.
func (p *WorkerPool) execute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("pool: task panicked")
		}
	}()
	task.Run()
}

// Add submits a task, transferring ownership to the pool. High-priority
// tasks dispatch from the front of the queue, ahead of every queued normal
// task but in submission order among themselves; normal tasks go to the
// back.
func (p *WorkerPool) Add(task Task) {
	if task.Attributes().IsHighPriority() {
		p.high.PushBack(task)
		p.queue.PushFront(fetchHigh{pool: p})
	} else {
		p.queue.PushBack(task)
	}
}

// AddAll submits a batch of tasks in order.
func (p *WorkerPool) AddAll(tasks []Task) {
	for _, task := range tasks {
		p.Add(task)
	}
}

// RunOneTask lets the calling thread drain one queued task without
// blocking. It reports whether a task ran. Idle client threads call this to
// contribute cycles instead of waiting.
func (p *WorkerPool) RunOneTask() bool {
	return p.runTask(false)
}

// Size returns the number of worker threads.
func (p *WorkerPool) Size() int {
	return len(p.threads)
}

// Stats returns a snapshot of the task deque's counters.
func (p *WorkerPool) Stats() DQStats {
	return p.queue.Stats()
}

// End shuts the pool down: the finish flag is raised, one sentinel no-op
// task is enqueued per worker so every blocked worker wakes, and End then
// waits until all workers have left their dispatch loop. Call in a
// single-threaded teardown phase. Submissions after End are a client error;
// they sit in the queue harmlessly and do not corrupt counters.
func (p *WorkerPool) End() {
	p.finish.Store(true)
	logger.Debug().Msg("pool: ending threads")
	for range p.threads {
		p.queue.PushBack(nullTask{})
	}
	var w Waiter
	for p.nfinished.Load() != int64(len(p.threads)) {
		w.Wait()
	}
	logger.Debug().Msg("pool: all workers finished")
}

// mustInstance returns the process pool, creating it with defaults when no
// Begin ran. Configuration failures during implicit creation panic, since
// callers of Add or Size have no error path.
func mustInstance() *WorkerPool {
	if instance == nil {
		if err := Begin(); err != nil {
			panic(err)
		}
	}
	return instance
}

// Add submits a task to the process pool, transferring ownership.
func Add(task Task) {
	mustInstance().Add(task)
}

// AddAll submits a batch of tasks to the process pool.
func AddAll(tasks []Task) {
	mustInstance().AddAll(tasks)
}

// RunOneTask drains one task from the process pool without blocking,
// reporting whether one ran.
func RunOneTask() bool {
	return mustInstance().RunOneTask()
}

// Size returns the worker count of the process pool.
func Size() int {
	return mustInstance().Size()
}

// Stats returns the process pool's deque counters.
func Stats() DQStats {
	return mustInstance().Stats()
}

// End shuts down the process pool and forgets it, so a later
// single-threaded phase may Begin again. Without a live pool it is a no-op.
func End() {
	if instance == nil {
		return
	}
	instance.End()
	instance = nil
}
