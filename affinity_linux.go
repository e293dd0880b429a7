//go:build linux

package madness

import "golang.org/x/sys/unix"

// setAffinityRange pins the calling thread to CPUs [lo, hi].
func setAffinityRange(lo, hi int) error {
	var set unix.CPUSet
	set.Zero()
	for cpu := lo; cpu <= hi; cpu++ {
		set.Set(cpu)
	}
	return unix.SchedSetaffinity(0, &set)
}
