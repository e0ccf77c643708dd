package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/san-kum/jointsim/internal/dynamo"
)

// RunBatch runs independent configurations on at most runtime.NumCPU()
// workers. Each run owns its own joint and controller, so results match
// sequential runs exactly. Results keep the order of cfgs. The first error
// in input order is returned.
func RunBatch(ctx context.Context, cfgs []dynamo.Config) ([]*dynamo.Result, error) {
	return runBatch(ctx, cfgs, runtime.NumCPU())
}

func runBatch(ctx context.Context, cfgs []dynamo.Config, workers int) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(cfgs))
	errs := make([]error, len(cfgs))

	if workers < 1 {
		workers = 1
	}
	if workers > len(cfgs) {
		workers = len(cfgs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				results[idx], errs[idx] = New().Run(cfgs[idx])
			}
		}()
	}

	for i := range cfgs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
