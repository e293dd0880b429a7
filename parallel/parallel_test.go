package parallel

import (
	"errors"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/samyam/madness"
)

func TestMain(m *testing.M) {
	if err := madness.Begin(madness.WithNumWorkers(4)); err != nil {
		panic(err)
	}
	code := m.Run()
	madness.End()
	os.Exit(code)
}

// ============================================================================
// For Tests
// ============================================================================

func TestFor_CoversEveryIndexOnce(t *testing.T) {
	const n = 10000
	counts := make([]atomic.Int32, n)

	err := For(madness.NewRange(0, n, 64), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			counts[i].Add(1)
		}
	})
	require.NoError(t, err)

	for i := range counts {
		require.Equalf(t, int32(1), counts[i].Load(), "index %d", i)
	}
}

func TestFor_EmptyRange(t *testing.T) {
	called := false
	err := For(madness.NewRange(0, 0, 1), func(lo, hi int) {
		called = true
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestFor_SingleChunk(t *testing.T) {
	var calls atomic.Int32
	err := For(madness.NewRange(0, 5, 10), func(lo, hi int) {
		calls.Add(1)
		assert.Equal(t, 0, lo)
		assert.Equal(t, 5, hi)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFor_PanicBecomesError(t *testing.T) {
	const n = 1000
	var ran atomic.Int32

	err := For(madness.NewRange(0, n, 10), func(lo, hi int) {
		if lo == 0 {
			panic("chunk exploded")
		}
		ran.Add(int32(hi - lo))
	})

	var agg AggregateError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Errors, 1)
	var pe *PanicError
	require.True(t, errors.As(agg.Errors[0], &pe))
	assert.Contains(t, pe.Error(), "chunk exploded")

	// The failed chunk does not abort its siblings.
	assert.Greater(t, ran.Load(), int32(0))
}

func TestFor_ConcurrentLoops(t *testing.T) {
	const loops, n = 8, 2000

	var g errgroup.Group
	for l := 0; l < loops; l++ {
		g.Go(func() error {
			var sum atomic.Int64
			if err := For(madness.NewRange(1, n+1, 0), func(lo, hi int) {
				local := int64(0)
				for i := lo; i < hi; i++ {
					local += int64(i)
				}
				sum.Add(local)
			}); err != nil {
				return err
			}
			if got := sum.Load(); got != int64(n)*(n+1)/2 {
				return errors.New("bad sum")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

// ============================================================================
// Reduce Tests
// ============================================================================

func TestReduce_Sum(t *testing.T) {
	const n = 100000
	got, err := Reduce(madness.NewRange(1, n+1, 512), 0,
		func(lo, hi int) int {
			s := 0
			for i := lo; i < hi; i++ {
				s += i
			}
			return s
		},
		func(a, b int) int { return a + b },
	)
	require.NoError(t, err)
	assert.Equal(t, n*(n+1)/2, got)
}

func TestReduce_PropagatesError(t *testing.T) {
	_, err := Reduce(madness.NewRange(0, 100, 10), 0,
		func(lo, hi int) int {
			panic("reducer chunk failed")
		},
		func(a, b int) int { return a + b },
	)
	var agg AggregateError
	require.ErrorAs(t, err, &agg)
	assert.NotEmpty(t, agg.Errors)
}
