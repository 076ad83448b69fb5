package worker

import (
	"context"
	"sync"

	"github.com/quocanhngo/spark/internal/logger"
)

type Worker[Job any] func(context.Context, Job)

// BlockingPool spawns size workers that execute jobs until the jobs channel is
// closed or ctx is cancelled. It blocks until every worker has returned.
//
// The caller must ensure that jobs eventually gets closed or ctx gets cancelled.
func BlockingPool[Job any](ctx context.Context, size int, jobs <-chan Job, worker Worker[Job]) {
	if size <= 0 {
		size = 1
	}
	wg := sync.WaitGroup{}
	for range size {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-jobs:
					if !ok {
						return
					}
					run(ctx, worker, job)
				}
			}
		})
	}

	wg.Wait()
}

// run keeps one panicking job from taking its worker down.
func run[Job any](ctx context.Context, worker Worker[Job], job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker job panicked", "panic", r)
		}
	}()
	worker(ctx, job)
}
