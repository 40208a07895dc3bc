package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	queue "github.com/okian/recrai/internal/adapters/mq/queue"
	worker "github.com/okian/recrai/internal/adapters/mq/worker"
	"github.com/okian/recrai/internal/domain/matching"
	model "github.com/okian/recrai/internal/domain/model"
)

// slowScorer delays every call so tasks pile up in the queue.
type slowScorer struct {
	inner *matching.Scorer
	delay time.Duration
	calls atomic.Int32
}

func (s *slowScorer) Explain(reqs []string, c model.Candidate) matching.Report {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return s.inner.Explain(reqs, c)
}

func (s *slowScorer) Mode() matching.Mode { return s.inner.Mode() }

func pairs(n int) []worker.Pair {
	out := make([]worker.Pair, n)
	for i := range out {
		skills := []string{"react"}
		if i%2 == 0 {
			skills = append(skills, "nodejs")
		}
		out[i] = worker.Pair{
			Requirements: []string{"React", "Node.js"},
			Candidate:    model.Candidate{ID: fmt.Sprint("cv-", i), Skills: skills},
		}
	}
	return out
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a started pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue[worker.Task](queue.WithCapacity(64))
		pool := worker.NewPool(4, q, matching.NewScorer())
		pool.Start(ctx)
		defer func() { _ = pool.Shutdown(context.Background()) }()

		convey.Convey("When scoring a batch", func() {
			reports, err := pool.Score(ctx, pairs(50))

			convey.Convey("Then every report sits at its input index", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(reports), convey.ShouldEqual, 50)
				for i, r := range reports {
					if i%2 == 0 {
						convey.So(r.Fit, convey.ShouldEqual, 100)
					} else {
						convey.So(r.Fit, convey.ShouldEqual, 50)
					}
				}
			})
		})

		convey.Convey("When scoring an empty batch", func() {
			reports, err := pool.Score(ctx, nil)

			convey.Convey("Then nothing is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(reports), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("Then the pool reports its size", func() {
			convey.So(pool.Size(), convey.ShouldEqual, 4)
		})
	})

	convey.Convey("Given a pool with a tiny queue", t, func() {
		ctx := context.Background()
		scorer := &slowScorer{inner: matching.NewScorer(), delay: 2 * time.Millisecond}
		q := queue.NewInMemoryQueue[worker.Task](queue.WithCapacity(1))
		pool := worker.NewPool(1, q, scorer)
		pool.Start(ctx)
		defer func() { _ = pool.Shutdown(ctx) }()

		convey.Convey("When the batch overflows the queue", func() {
			reports, err := pool.Score(ctx, pairs(20))

			convey.Convey("Then overflow is scored inline and nothing is lost", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(scorer.calls.Load(), convey.ShouldEqual, 20)
				convey.So(reports[19].Fit, convey.ShouldEqual, 50)
			})
		})
	})

	convey.Convey("Given a pool that was never started", t, func() {
		pool := worker.NewPool(2, queue.NewInMemoryQueue[worker.Task](), matching.NewScorer())

		convey.Convey("Then scoring is refused", func() {
			_, err := pool.Score(context.Background(), pairs(1))
			convey.So(errors.Is(err, worker.ErrStopped), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a pool that was shut down", t, func() {
		pool := worker.NewPool(2, queue.NewInMemoryQueue[worker.Task](), matching.NewScorer())
		pool.Start(context.Background())
		convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)

		convey.Convey("Then scoring is refused", func() {
			_, err := pool.Score(context.Background(), pairs(1))
			convey.So(errors.Is(err, worker.ErrStopped), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a caller that gives up", t, func() {
		scorer := &slowScorer{inner: matching.NewScorer(), delay: 50 * time.Millisecond}
		q := queue.NewInMemoryQueue[worker.Task](queue.WithCapacity(100))
		pool := worker.NewPool(1, q, scorer)
		pool.Start(context.Background())
		defer func() { _ = pool.Shutdown(context.Background()) }()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		convey.Convey("Then the context error is returned", func() {
			_, err := pool.Score(ctx, pairs(10))
			convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
		})
	})
}

func TestPoolAfterWorkersExit(t *testing.T) {
	convey.Convey("Given a pool whose start context was canceled", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		pool := worker.NewPool(2, queue.NewInMemoryQueue[worker.Task](), matching.NewScorer())
		pool.Start(ctx)
		defer func() { _ = pool.Shutdown(context.Background()) }()
		cancel()

		deadline := time.Now().Add(time.Second)
		for pool.Alive() > 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		convey.So(pool.Alive(), convey.ShouldEqual, 0)

		convey.Convey("When a batch is scored", func() {
			scoreCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			start := time.Now()
			reports, err := pool.Score(scoreCtx, pairs(6))

			convey.Convey("Then it is scored inline instead of waiting on the queue", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(reports), convey.ShouldEqual, 6)
				convey.So(reports[0].Fit, convey.ShouldEqual, 100)
				convey.So(reports[1].Fit, convey.ShouldEqual, 50)
				convey.So(time.Since(start), convey.ShouldBeLessThan, time.Second)
			})
		})
	})
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a single worker on a closed empty queue", t, func() {
		q := queue.NewInMemoryQueue[worker.Task]()
		_ = q.Close()
		w := worker.NewInMemoryWorker(q, matching.NewScorer(), worker.WithName("solo"))

		convey.Convey("Then Run returns once the queue is drained", func() {
			done := make(chan struct{})
			go func() {
				w.Run(context.Background())
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("worker did not stop")
			}
			convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a running worker on an open queue", t, func() {
		q := queue.NewInMemoryQueue[worker.Task]()
		w := worker.NewInMemoryWorker(q, matching.NewScorer())
		go w.Run(context.Background())

		convey.Convey("Then Shutdown stops it and is idempotent", func() {
			convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}
