package madness

// DQStats is a snapshot of a Deque's lifetime operation counters. All
// counters start at zero and only ever grow; Stats copies them under the
// deque's mutex, so a snapshot is internally consistent.
type DQStats struct {
	// NMax is the largest element count ever observed in the deque.
	NMax uint64

	// NPushBack counts calls to PushBack.
	NPushBack uint64

	// NPushFront counts calls to PushFront.
	NPushFront uint64

	// NPopBack counts calls to PopBack, whether or not an element was
	// delivered.
	NPopBack uint64

	// NPopFront counts calls to PopFront, whether or not an element was
	// delivered.
	NPopFront uint64

	// NGrow counts buffer growths.
	NGrow uint64
}
