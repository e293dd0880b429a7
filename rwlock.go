package madness

// LockMode selects the kind of acquisition for the mode-dispatched
// ReaderWriterLock operations.
type LockMode int

const (
	// NoLock performs no acquisition; Lock and Unlock are no-ops.
	NoLock LockMode = iota
	// ReadLock acquires the lock shared, admitting concurrent readers.
	ReadLock
	// WriteLock acquires the lock exclusive.
	WriteLock
)

// ReaderWriterLock is a multi-reader/single-writer lock with read-to-write
// upgrade and write-to-read downgrade. The reader count and writer flag are
// guarded by an internal spinlock, so every state transition is a short
// critical section; blocked acquisitions retry through a Waiter.
//
// Writers get no starvation guarantee under continuous read load; callers
// that need fairness should use FairMutex instead.
//
// The zero value is an unheld lock. A ReaderWriterLock must not be copied
// after first use.
type ReaderWriterLock struct {
	mu        Spinlock
	nreader   int
	writeflag bool
}

// TryReadLock attempts a shared acquisition without blocking.
// It returns true on success.
func (l *ReaderWriterLock) TryReadLock() bool {
	g := Guard(&l.mu)
	defer g.Release()
	gotit := !l.writeflag
	if gotit {
		l.nreader++
	}
	return gotit
}

// TryWriteLock attempts an exclusive acquisition without blocking.
// It returns true on success.
func (l *ReaderWriterLock) TryWriteLock() bool {
	g := Guard(&l.mu)
	defer g.Release()
	gotit := !l.writeflag && l.nreader == 0
	if gotit {
		l.writeflag = true
	}
	return gotit
}

// TryLockMode attempts an acquisition in the given mode without blocking.
// NoLock always succeeds. An unknown mode returns ErrInvalidArgument.
func (l *ReaderWriterLock) TryLockMode(mode LockMode) (bool, error) {
	switch mode {
	case ReadLock:
		return l.TryReadLock(), nil
	case WriteLock:
		return l.TryWriteLock(), nil
	case NoLock:
		return true, nil
	default:
		return false, errInvalidArgument("unknown lock mode")
	}
}

// RLock acquires the lock shared, waiting if necessary.
func (l *ReaderWriterLock) RLock() {
	var w Waiter
	for !l.TryReadLock() {
		w.Wait()
	}
}

// Lock acquires the lock exclusive, waiting if necessary.
func (l *ReaderWriterLock) Lock() {
	var w Waiter
	for !l.TryWriteLock() {
		w.Wait()
	}
}

// LockWithMode acquires the lock in the given mode, waiting if necessary.
// An unknown mode returns ErrInvalidArgument.
func (l *ReaderWriterLock) LockWithMode(mode LockMode) error {
	var w Waiter
	for {
		ok, err := l.TryLockMode(mode)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		w.Wait()
	}
}

// RUnlock releases a shared acquisition.
func (l *ReaderWriterLock) RUnlock() {
	g := Guard(&l.mu)
	defer g.Release()
	if l.nreader < 1 {
		fatalf(ErrLockFailure, "read unlock with no readers")
	}
	l.nreader--
}

// Unlock releases an exclusive acquisition.
func (l *ReaderWriterLock) Unlock() {
	g := Guard(&l.mu)
	defer g.Release()
	if !l.writeflag {
		fatalf(ErrLockFailure, "write unlock with no writer")
	}
	l.writeflag = false
}

// UnlockWithMode releases an acquisition made in the given mode. NoLock is a
// no-op. An unknown mode returns ErrInvalidArgument.
func (l *ReaderWriterLock) UnlockWithMode(mode LockMode) error {
	switch mode {
	case ReadLock:
		l.RUnlock()
	case WriteLock:
		l.Unlock()
	case NoLock:
	default:
		return errInvalidArgument("unknown lock mode")
	}
	return nil
}

// TryConvertReadToWrite attempts to upgrade a held read lock to a write lock
// without releasing it. The upgrade succeeds only when the caller is the
// sole reader and no writer is present.
func (l *ReaderWriterLock) TryConvertReadToWrite() bool {
	g := Guard(&l.mu)
	defer g.Release()
	gotit := !l.writeflag && l.nreader == 1
	if gotit {
		l.nreader = 0
		l.writeflag = true
	}
	return gotit
}

// ConvertReadToWrite upgrades a held read lock to a write lock, busy-waiting
// until the caller is the only reader.
//
// Deadlock is guaranteed if two or more readers wait to convert at the same
// time; avoiding that is the caller's responsibility.
func (l *ReaderWriterLock) ConvertReadToWrite() {
	var w Waiter
	for !l.TryConvertReadToWrite() {
		w.Wait()
	}
}

// ConvertWriteToRead downgrades a held write lock to a read lock.
// It always succeeds immediately.
func (l *ReaderWriterLock) ConvertWriteToRead() {
	g := Guard(&l.mu)
	defer g.Release()
	l.nreader++
	l.writeflag = false
}
