// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent pool of goroutines for chunked
// reductions over large slices. A Pool is created once and reused, so a
// parallel sum costs no goroutine spawns.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	partial := make([]float64, workerpool.Chunks(len(v), 4096))
//	pool.ForEachChunk(len(v), 4096, func(c, start, end int) {
//	    partial[c] = sum(v[start:end])
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines. Its methods may be called from
// multiple goroutines; each call blocks until its own work is finished.
type Pool struct {
	workers   int
	tasks     chan task
	closeOnce sync.Once
	closed    atomic.Bool
}

type task struct {
	run  func()
	done *sync.WaitGroup
}

// New starts a pool of the given number of workers.
// If workers <= 0, GOMAXPROCS is used.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		tasks:   make(chan task, workers*2),
	}
	for range workers {
		go p.loop()
	}
	return p
}

func (p *Pool) loop() {
	for t := range p.tasks {
		t.run()
		t.done.Done()
	}
}

// NumWorkers returns the number of workers in the pool, or 1 for a nil pool.
func (p *Pool) NumWorkers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Close stops the workers once queued work has drained. It is safe to call
// more than once; later ForEachChunk calls run on the caller's goroutine.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.tasks)
	})
}

// Chunks returns how many chunks of the given size cover n elements.
// Panics if chunk is not positive.
func Chunks(n, chunk int) int {
	if chunk <= 0 {
		panic("workerpool: chunk size must be positive")
	}
	if n <= 0 {
		return 0
	}
	return (n + chunk - 1) / chunk
}

// ForEachChunk splits [0, n) into Chunks(n, chunk) consecutive ranges and
// calls fn(c, start, end) exactly once for each chunk index c. Workers claim
// chunks with an atomic counter, so the calls run in no particular order;
// fn must only write state owned by chunk c.
//
// A nil or closed pool, or a single chunk, runs fn inline in chunk order.
func (p *Pool) ForEachChunk(n, chunk int, fn func(c, start, end int)) {
	chunks := Chunks(n, chunk)
	if chunks == 0 {
		return
	}
	span := func(c int) (int, int) {
		start := c * chunk
		return start, min(start+chunk, n)
	}

	if p == nil || p.closed.Load() || chunks == 1 || p.workers == 1 {
		for c := range chunks {
			start, end := span(c)
			fn(c, start, end)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	workers := min(p.workers, chunks)
	wg.Add(workers)
	for range workers {
		p.tasks <- task{
			run: func() {
				for {
					c := int(next.Add(1)) - 1
					if c >= chunks {
						return
					}
					start, end := span(c)
					fn(c, start, end)
				}
			},
			done: &wg,
		}
	}
	wg.Wait()
}
