// Package worker scores candidates against requirement lists on a bounded
// pool of goroutines fed by an in-memory queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/okian/recrai/internal/adapters/mq/queue"
	"github.com/okian/recrai/internal/domain/matching"
	"github.com/okian/recrai/internal/domain/model"
	"github.com/okian/recrai/pkg/logger"
	"github.com/okian/recrai/pkg/metrics"
)

// Scorer computes a fit breakdown. matching.Scorer satisfies it.
type Scorer interface {
	Explain(requirements []string, c model.Candidate) matching.Report
	Mode() matching.Mode
}

// Pair is one requirement list to score against one candidate.
type Pair struct {
	Requirements []string
	Candidate    model.Candidate
}

// Task is what flows through the queue: a pair plus where its result goes.
type Task struct {
	Pair
	index int
	batch *batch
}

// batch collects the reports of one Score call. Each task writes only its own
// index, so no lock is needed on reports.
type batch struct {
	reports []matching.Report
	wg      sync.WaitGroup
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Task
}

// Worker processes tasks from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	scorer Scorer
	name   string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, scorer Scorer, opts ...Option) *InMemoryWorker {
	s := apply("worker", opts)
	return &InMemoryWorker{
		queue:    q,
		scorer:   scorer,
		name:     s.name,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   s.logger,
	}
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			w.process(task)
		}
	}
}

// Shutdown stops the worker and waits for its loop to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(task Task) {
	metrics.AddWorkerActive(1)
	defer metrics.AddWorkerActive(-1)
	score(w.scorer, task)
}

func score(s Scorer, task Task) {
	report := s.Explain(task.Requirements, task.Candidate)
	metrics.RecordFitComputation(string(s.Mode()), report.Fit)
	metrics.RecordWorkerTask()
	task.batch.reports[task.index] = report
	task.batch.wg.Done()
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   queue.Queue[Task]
	scorer  Scorer
	running atomic.Bool
	alive   atomic.Int32
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one means one
// worker per CPU.
func NewPool(workerCount int, q queue.Queue[Task], scorer Scorer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	s := apply("worker-pool", opts)
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		scorer:  scorer,
		logger:  s.logger,
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, scorer,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(s.logger),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.alive.Add(1)
		go func(w *InMemoryWorker) {
			defer p.alive.Add(-1)
			w.Run(ctx)
		}(w)
	}
	p.running.Store(true)
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Alive returns the number of worker loops still running.
func (p *Pool) Alive() int { return int(p.alive.Load()) }

// Score computes one report per pair. Reports come back in input order. When
// the queue is full the remaining pairs are scored on the calling goroutine,
// and so is the whole batch once every worker loop has exited.
func (p *Pool) Score(ctx context.Context, pairs []Pair) ([]matching.Report, error) {
	if !p.running.Load() || p.queue.IsClosed() {
		return nil, ErrStopped
	}
	if p.alive.Load() == 0 {
		p.logger.Warn(ctx, "no live workers, scoring inline", logger.Int("pairs", len(pairs)))
		b := &batch{reports: make([]matching.Report, len(pairs))}
		b.wg.Add(len(pairs))
		for i, pair := range pairs {
			score(p.scorer, Task{Pair: pair, index: i, batch: b})
		}
		return b.reports, nil
	}
	b := &batch{reports: make([]matching.Report, len(pairs))}
	b.wg.Add(len(pairs))
	for i, pair := range pairs {
		task := Task{Pair: pair, index: i, batch: b}
		if !p.queue.Enqueue(ctx, task) {
			if err := ctx.Err(); err != nil {
				// the rest of the batch never started
				for j := i; j < len(pairs); j++ {
					b.wg.Done()
				}
				return nil, err
			}
			score(p.scorer, task)
		}
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return b.reports, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown closes the queue, lets workers drain it, and forces them to stop
// if ctx expires first.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.running.Store(false)
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	var firstErr error
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			if err := w.Shutdown(context.Background()); err != nil && firstErr == nil {
				firstErr = err
			}
			p.logger.Warn(ctx, "worker forced to stop", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	return firstErr
}
