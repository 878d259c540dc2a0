package gopool

import (
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

var (
	// Init a instance pool when importing ants.
	defaultPool, _   = ants.NewPool(ants.DefaultAntsPoolSize, ants.WithExpiryDuration(10*time.Second))
	minNumberPerTask = 5
)

// Submit submits a task to pool.
func Submit(task func()) error {
	return defaultPool.Submit(task)
}

// Threads returns how many workers to use for the given number of tasks.
func Threads(tasks int) int {
	threads := tasks / minNumberPerTask
	if threads > runtime.NumCPU() {
		threads = runtime.NumCPU()
	} else if threads == 0 {
		threads = 1
	}
	return threads
}

// ForEach calls fn(i) for every i in [0, n) on Threads(n) pooled workers and
// waits for all of them. It fails only if no worker could be started.
func ForEach(n int, fn func(i int)) error {
	var (
		wg      sync.WaitGroup
		next    = make(chan int)
		started int
		lastErr error
	)
	for w := Threads(n); w > 0; w-- {
		wg.Add(1)
		err := Submit(func() {
			defer wg.Done()
			for i := range next {
				fn(i)
			}
		})
		if err != nil {
			wg.Done()
			lastErr = err
			continue
		}
		started++
	}
	if started == 0 {
		return lastErr
	}
	for i := 0; i < n; i++ {
		next <- i
	}
	close(next)
	wg.Wait()
	return nil
}
