// Package multicore provides the shared worker pool used by the verification
// engine for data-parallel work.
//
// A Worker is stateless compute capacity: it fixes how many goroutines a
// data-parallel call may fan out to. The process-wide pool is created lazily
// by Default and reused across all verification calls; tests use NewBounded
// to pin a small deterministic width.
package multicore

import (
	"runtime"
	"sync"
)

// Worker is a fixed-width fork-join pool.
type Worker struct {
	nbTasks int
}

// New returns a Worker sized to the available parallelism.
func New() *Worker {
	return NewBounded(runtime.GOMAXPROCS(0))
}

// NewBounded returns a Worker with at most nbTasks concurrent tasks.
// nbTasks values below 1 are clamped to 1.
func NewBounded(nbTasks int) *Worker {
	if nbTasks < 1 {
		nbTasks = 1
	}
	return &Worker{nbTasks: nbTasks}
}

var (
	defaultOnce   sync.Once
	defaultWorker *Worker
)

// Default returns the process-wide shared Worker, creating it on first use.
func Default() *Worker {
	defaultOnce.Do(func() {
		defaultWorker = New()
	})
	return defaultWorker
}

// NbTasks returns the pool width.
func (w *Worker) NbTasks() int {
	return w.nbTasks
}

// Execute processes [0, n) in parallel and blocks until all chunks are done.
// Each invocation of work receives a contiguous [start, end) range; ranges
// partition [0, n) and never overlap, so work needs no synchronization on
// per-index state.
func (w *Worker) Execute(n int, work func(start, end int)) {
	if n <= 0 {
		return
	}

	nbTasks := w.nbTasks
	nbIterationsPerCpus := n / nbTasks

	// more tasks than iterations: a task works on exactly one iteration
	if nbIterationsPerCpus < 1 {
		nbIterationsPerCpus = 1
		nbTasks = n
	}

	var wg sync.WaitGroup

	extraTasks := n - (nbTasks * nbIterationsPerCpus)
	extraTasksOffset := 0

	for i := 0; i < nbTasks; i++ {
		wg.Add(1)
		start := i*nbIterationsPerCpus + extraTasksOffset
		end := start + nbIterationsPerCpus
		if extraTasks > 0 {
			end++
			extraTasks--
			extraTasksOffset++
		}
		go func() {
			work(start, end)
			wg.Done()
		}()
	}

	wg.Wait()
}
