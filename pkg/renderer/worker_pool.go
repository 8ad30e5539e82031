package renderer

import (
	"context"
	"sync"
	"sync/atomic"
)

// partitionResult contains the result from rendering a partition
type partitionResult struct {
	Partition Partition
	Stats     RenderStats
}

// WorkerPool renders partitions in parallel. The task queue is filled and
// closed before the workers start, so workers only block on the result
// channel while the collector is busy.
type WorkerPool struct {
	taskQueue   chan Partition
	resultQueue chan partitionResult
	numWorkers  int
	wg          sync.WaitGroup
}

// NewWorkerPool creates a pool of numWorkers workers with every partition queued
func NewWorkerPool(partitions []Partition, numWorkers int) *WorkerPool {
	numWorkers = max(numWorkers, 1)
	wp := &WorkerPool{
		taskQueue:   make(chan Partition, len(partitions)),
		resultQueue: make(chan partitionResult),
		numWorkers:  numWorkers,
	}
	for _, p := range partitions {
		wp.taskQueue <- p
	}
	close(wp.taskQueue)
	return wp
}

// Start launches the workers. Each worker stops claiming partitions once
// ctx is done or cancelled is set, but always finishes the partition it
// holds. The returned channel is closed after the last worker exits.
func (wp *WorkerPool) Start(ctx context.Context, cancelled *atomic.Bool, render func(Partition) RenderStats) <-chan partitionResult {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run(ctx, cancelled, render)
	}
	go func() {
		wp.wg.Wait()
		close(wp.resultQueue)
	}()
	return wp.resultQueue
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (wp *WorkerPool) run(ctx context.Context, cancelled *atomic.Bool, render func(Partition) RenderStats) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		if cancelled.Load() || ctx.Err() != nil {
			return
		}
		wp.resultQueue <- partitionResult{
			Partition: task,
			Stats:     render(task),
		}
	}
}
