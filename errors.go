package madness

import "fmt"

// Error kinds reported by the concurrency substrate. Fatal kinds
// (ErrLockFailure, ErrQueueFull, ErrInvariantViolation) indicate a caller bug
// or an unrecoverable internal state and are delivered by panicking with a
// *Error that wraps the sentinel.
var (
	// ErrInvalidConfig is returned when pool configuration is unusable, for
	// example when POOL_NTHREAD is set to a non-integer value.
	ErrInvalidConfig = &Error{msg: "invalid config"}

	// ErrInvalidArgument is returned for arguments outside their domain, such
	// as an unknown ReaderWriterLock mode.
	ErrInvalidArgument = &Error{msg: "invalid argument"}

	// ErrLockFailure indicates a lock or unlock operation that cannot be
	// honored, such as unlocking a mutex that is not held. The substrate
	// cannot recover correctness after this.
	ErrLockFailure = &Error{msg: "lock failure"}

	// ErrQueueFull indicates that a ConditionVariable or FairMutex exceeded
	// MaxWaiters concurrent waiters. Callers are expected to bound waiter
	// counts by construction.
	ErrQueueFull = &Error{msg: "waiter queue is full"}

	// ErrInvariantViolation indicates a failed internal sanity check, such as
	// the deque's element count disagreeing with its front/back indices.
	ErrInvariantViolation = &Error{msg: "invariant violation"}

	// ErrAllocationFailure is the kind for a pool that could not allocate its
	// worker set or a deque that could not grow. No operation in this package
	// reports it: Go's allocator aborts the process on exhaustion instead of
	// returning.
	ErrAllocationFailure = &Error{msg: "allocation failure"}
)

// Error is the error type used throughout the package. It carries a
// human-readable message and optionally wraps one of the sentinel kinds
// above, so callers can classify failures with errors.Is.
//
// Example:
//
//	if err := madness.Begin(); errors.Is(err, madness.ErrInvalidConfig) {
//	    log.Fatalf("bad POOL_NTHREAD: %v", err)
//	}
type Error struct {
	msg string // Human-readable error message
	err error  // Underlying error kind (if any)
}

// Error returns a formatted error message.
// If an underlying kind exists, it is included in the output.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("madness: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("madness: %s", e.msg)
}

// Unwrap returns the underlying error kind, allowing use with errors.Is
// and errors.As.
func (e *Error) Unwrap() error {
	return e.err
}

// errInvalidConfig creates an error for unusable pool configuration.
func errInvalidConfig(msg string) error {
	return &Error{msg: msg, err: ErrInvalidConfig}
}

// errInvalidArgument creates an error for an argument outside its domain.
func errInvalidArgument(msg string) error {
	return &Error{msg: msg, err: ErrInvalidArgument}
}

// fatalf panics with an *Error wrapping the given kind. Used for conditions
// the substrate cannot recover from.
func fatalf(kind error, format string, args ...interface{}) {
	panic(&Error{msg: fmt.Sprintf(format, args...), err: kind})
}
