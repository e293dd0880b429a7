package madness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Construction Tests
// ============================================================================

func TestNewRange_Observers(t *testing.T) {
	r := NewRange(3, 11, 2)

	assert.Equal(t, 3, r.Begin())
	assert.Equal(t, 11, r.End())
	assert.Equal(t, 8, r.Size())
	assert.Equal(t, 2, r.ChunkSize())
	assert.False(t, r.Empty())
	assert.True(t, r.CanSplit())
}

func TestNewRange_Empty(t *testing.T) {
	r := NewRange(5, 5, 1)
	assert.True(t, r.Empty())
	assert.False(t, r.CanSplit())

	// An inverted interval collapses to empty.
	r = NewRange(9, 4, 1)
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Size())
}

func TestNewRange_DefaultChunkSize(t *testing.T) {
	beginPool(t, WithNumWorkers(4))

	// Ten chunks per worker.
	r := NewRange(0, 4000, 0)
	assert.Equal(t, 100, r.ChunkSize())

	// Tiny ranges still get a chunk size of at least one.
	r = NewRange(0, 3, 0)
	assert.Equal(t, 1, r.ChunkSize())
}

// ============================================================================
// Split Tests
// ============================================================================

func TestRange_SplitBisects(t *testing.T) {
	r := NewRange(0, 10, 3)
	first := r.Split()

	assert.Equal(t, 0, first.Begin())
	assert.Equal(t, 5, first.End())
	assert.Equal(t, 5, r.Begin())
	assert.Equal(t, 10, r.End())
	assert.Equal(t, 3, first.ChunkSize())
}

func TestRange_SplitAtChunkSize(t *testing.T) {
	r := NewRange(0, 4, 4)
	first := r.Split()

	// At or below chunk size the donor keeps everything.
	assert.True(t, first.Empty())
	assert.Equal(t, 4, r.Size())
}

// Scenario: recursively splitting [0,1000) with chunk size 37 yields leaves
// of at most 37 indices whose disjoint union is the original interval.
func TestRange_RecursiveSplitCovers(t *testing.T) {
	const n, chunk = 1000, 37

	var leaves []Range
	var split func(r Range)
	split = func(r Range) {
		for r.CanSplit() {
			split(r.Split())
		}
		leaves = append(leaves, r)
	}
	split(NewRange(0, n, chunk))

	covered := make([]int, n)
	for _, leaf := range leaves {
		require.LessOrEqual(t, leaf.Size(), chunk)
		for i := leaf.Begin(); i < leaf.End(); i++ {
			covered[i]++
		}
	}
	for i, c := range covered {
		require.Equalf(t, 1, c, "index %d covered %d times", i, c)
	}
}
