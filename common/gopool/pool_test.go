package gopool

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreads(t *testing.T) {
	assert.Equal(t, 1, Threads(0))
	assert.Equal(t, 1, Threads(4))
	assert.Equal(t, min(2, runtime.NumCPU()), Threads(10))
	assert.Equal(t, runtime.NumCPU(), Threads(1_000_000))
}

func TestForEach(t *testing.T) {
	const n = 97
	var (
		sum  int64
		seen [n]int32
	)
	require.NoError(t, ForEach(n, func(i int) {
		atomic.AddInt64(&sum, int64(i))
		atomic.AddInt32(&seen[i], 1)
	}))
	assert.Equal(t, int64(n*(n-1)/2), sum)
	for i := range seen {
		assert.Equal(t, int32(1), seen[i])
	}
	require.NoError(t, ForEach(0, func(int) { t.Fatal("called") }))
}
