package madness

// Task attribute flags. Attributes are hints to the scheduler; only
// HighPriority changes dispatch order locally.
const (
	// TaskGenerator hints that the task will spawn further tasks, so the
	// scheduler may raise parallelism while it runs.
	TaskGenerator uint64 = 1 << iota
	// TaskStealable hints that the task may be migrated to another process
	// for load balancing. Reserved; the local pool does not act on it.
	TaskStealable
	// TaskHighPriority routes the task to the front of the dispatch queue.
	TaskHighPriority
)

// TaskAttributes is a bitset of task scheduling hints.
type TaskAttributes struct {
	flags uint64
}

// NewTaskAttributes builds attributes from raw flag bits.
func NewTaskAttributes(flags uint64) TaskAttributes {
	return TaskAttributes{flags: flags}
}

// GeneratorAttributes returns attributes with only the generator hint set.
func GeneratorAttributes() TaskAttributes {
	return TaskAttributes{flags: TaskGenerator}
}

// HighPriorityAttributes returns attributes with only the high-priority
// hint set.
func HighPriorityAttributes() TaskAttributes {
	return TaskAttributes{flags: TaskHighPriority}
}

// IsGenerator reports whether the generator hint is set.
func (a TaskAttributes) IsGenerator() bool { return a.flags&TaskGenerator != 0 }

// IsStealable reports whether the stealable hint is set.
func (a TaskAttributes) IsStealable() bool { return a.flags&TaskStealable != 0 }

// IsHighPriority reports whether the high-priority hint is set.
func (a TaskAttributes) IsHighPriority() bool { return a.flags&TaskHighPriority != 0 }

// SetGenerator sets or clears the generator hint.
func (a *TaskAttributes) SetGenerator(on bool) {
	if on {
		a.flags |= TaskGenerator
	} else {
		a.flags &^= TaskGenerator
	}
}

// SetStealable sets or clears the stealable hint.
func (a *TaskAttributes) SetStealable(on bool) {
	if on {
		a.flags |= TaskStealable
	} else {
		a.flags &^= TaskStealable
	}
}

// SetHighPriority sets or clears the high-priority hint.
func (a *TaskAttributes) SetHighPriority(on bool) {
	if on {
		a.flags |= TaskHighPriority
	} else {
		a.flags &^= TaskHighPriority
	}
}

// Task is a unit of work dispatched by the WorkerPool. The pool owns a task
// from Add until after Run returns; Run is called exactly once, on one
// worker or on a client thread draining the pool through RunOneTask.
type Task interface {
	// Run performs the work.
	Run()
	// Attributes returns the task's scheduling hints.
	Attributes() TaskAttributes
}

// funcTask adapts a plain function to the Task interface.
type funcTask struct {
	attr TaskAttributes
	fn   func()
}

// NewTask wraps fn as a Task with the given attributes.
//
//	madness.Add(madness.NewTask(work, madness.HighPriorityAttributes()))
func NewTask(fn func(), attr TaskAttributes) Task {
	return &funcTask{attr: attr, fn: fn}
}

func (t *funcTask) Run()                       { t.fn() }
func (t *funcTask) Attributes() TaskAttributes { return t.attr }

// nullTask is the sentinel enqueued during shutdown so each blocked worker
// wakes once, observes the finish flag and exits.
type nullTask struct{}

func (nullTask) Run()                       {}
func (nullTask) Attributes() TaskAttributes { return TaskAttributes{} }
