package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// runPooled processes items on a bounded ants pool. The first item error cancels
// the remaining work; items already committed stay committed.
func (r *Runner) runPooled(ctx context.Context, pending []Item, state *runState) error {
	pool, err := ants.NewPool(r.config.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for _, item := range pending {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := r.processItem(ctx, item, state); err != nil {
				fail(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("failed to submit %s: %w", item.ID, submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
