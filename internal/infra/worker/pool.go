// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"sync"
)

// Task is one unit of work; i is its position in the submitted batch.
type Task func(ctx context.Context, i int) error

// Pool runs batches of tasks on a fixed number of goroutines.
type Pool struct {
	n int
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{n: workers}
}

func (p *Pool) Size() int { return p.n }

// Run calls task for every index in [0, count) and waits for all of them.
// The first error cancels the context seen by the remaining tasks and is returned.
func (p *Pool) Run(ctx context.Context, count int, task Task) error {
	if count == 0 {
		return ctx.Err()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	jobs := make(chan int)

	workers := p.n
	if workers > count {
		workers = count
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				if err := task(ctx, i); err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
				}
			}
		}()
	}

feed:
	for i := 0; i < count; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
