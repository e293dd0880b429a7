package madness

import (
	"sync"
	"testing"
	"time"
)

// ============================================================================
// Signal/Wait Tests
// ============================================================================

// Scenario: A waits, B signals, A returns promptly. B then signals with no
// waiter present; A's next wait consumes the retained signal immediately.
func TestConditionVariable_SignalWakesWaiter(t *testing.T) {
	var cv ConditionVariable

	woke := make(chan struct{})
	go func() {
		cv.Lock()
		cv.Wait()
		cv.Unlock()
		close(woke)
	}()

	// Let the waiter queue itself.
	time.Sleep(10 * time.Millisecond)

	cv.Lock()
	cv.Signal()
	cv.Unlock()

	select {
	case <-woke:
	case <-time.After(5 * time.Second):
		t.Fatal("waiter never woke after signal")
	}

	// Signal with nobody waiting, then wait: must not block.
	cv.Lock()
	cv.Signal()
	cv.Unlock()

	done := make(chan struct{})
	go func() {
		cv.Lock()
		cv.Wait()
		cv.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("wait blocked despite outstanding signal")
	}
}

func TestConditionVariable_NoLostSignals(t *testing.T) {
	// Stay under MaxWaiters: every goroutine may be queued at once.
	var cv ConditionVariable
	const n = 48

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cv.Lock()
			cv.Wait()
			cv.Unlock()
		}()
	}

	// Signals and waits balance regardless of interleaving, so every
	// waiter eventually returns.
	for i := 0; i < n; i++ {
		cv.Lock()
		cv.Signal()
		cv.Unlock()
		if i%16 == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	wg.Wait()
}

func TestConditionVariable_FIFOWakeup(t *testing.T) {
	var cv ConditionVariable
	const n = 8

	order := make(chan int, n)

	// Stagger the waiters so their queue order is their launch order.
	for i := 0; i < n; i++ {
		go func(id int) {
			cv.Lock()
			cv.Wait()
			order <- id
			cv.Unlock()
		}(i)
		time.Sleep(10 * time.Millisecond)
	}

	for i := 0; i < n; i++ {
		cv.Lock()
		cv.Signal()
		cv.Unlock()
		select {
		case got := <-order:
			if got != i {
				t.Fatalf("wakeup %d was waiter %d", i, got)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("wakeup %d never arrived", i)
		}
	}
}

func TestConditionVariable_EachSignalWakesOne(t *testing.T) {
	var cv ConditionVariable
	const n = 4

	woke := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			cv.Lock()
			cv.Wait()
			cv.Unlock()
			woke <- struct{}{}
		}()
	}
	time.Sleep(20 * time.Millisecond)

	cv.Lock()
	cv.Signal()
	cv.Unlock()

	select {
	case <-woke:
	case <-time.After(5 * time.Second):
		t.Fatal("no waiter woke")
	}
	select {
	case <-woke:
		t.Fatal("a single signal woke more than one waiter")
	case <-time.After(50 * time.Millisecond):
	}

	// Release the rest.
	for i := 1; i < n; i++ {
		cv.Lock()
		cv.Signal()
		cv.Unlock()
	}
	for i := 1; i < n; i++ {
		<-woke
	}
}

// ============================================================================
// DualCondVar Tests
// ============================================================================

func TestDualCondVar_SignalAndBroadcast(t *testing.T) {
	d := NewDualCondVar()

	ready := 0
	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		go func() {
			d.Lock()
			for ready == 0 {
				d.Wait()
			}
			d.Unlock()
			done <- struct{}{}
		}()
	}
	time.Sleep(10 * time.Millisecond)

	d.Lock()
	ready = 1
	d.Broadcast()
	d.Unlock()

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("broadcast did not wake all waiters")
		}
	}

	// Signal wakes a single waiter.
	d.Lock()
	ready = 0
	d.Unlock()
	go func() {
		d.Lock()
		for ready == 0 {
			d.Wait()
		}
		d.Unlock()
		done <- struct{}{}
	}()
	time.Sleep(10 * time.Millisecond)

	d.Lock()
	ready = 1
	d.Signal()
	d.Unlock()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("signal did not wake the waiter")
	}
}
