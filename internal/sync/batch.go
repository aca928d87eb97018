package sync

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cyberfortress-labs/smartxdr-core/internal/walker"
)

// batchItem is the outcome of running work against one file.
type batchItem struct {
	file walker.FileInfo
	err  error
}

// processConcurrently runs work over files with up to e.cfg.Concurrency
// goroutines in flight, the same semaphore/WaitGroup/mutex shape the
// teacher's batch indexer uses. A circuit breaker trips once an embedding
// call reports a quota or rate-limit error, cancelling remaining work
// instead of burning through every file against an exhausted provider.
func (e *Engine) processConcurrently(ctx context.Context, files []walker.FileInfo, report func(walker.FileInfo), work func(context.Context, walker.FileInfo) error) []batchItem {
	if len(files) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var tripped int64

	sem := make(chan struct{}, e.cfg.Concurrency)
	var mu sync.Mutex
	var wg sync.WaitGroup
	results := make([]batchItem, 0, len(files))

	record := func(item batchItem) {
		mu.Lock()
		results = append(results, item)
		mu.Unlock()
		if report != nil {
			report(item.file)
		}
	}

	for _, f := range files {
		if atomic.LoadInt64(&tripped) > 0 {
			record(batchItem{file: f, err: fmt.Errorf("skipped (provider quota exhausted)")})
			continue
		}

		select {
		case <-ctx.Done():
			record(batchItem{file: f, err: ctx.Err()})
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(f walker.FileInfo) {
			defer wg.Done()
			defer func() { <-sem }()

			err := work(ctx, f)
			if err != nil && isQuotaError(err) {
				atomic.StoreInt64(&tripped, 1)
				cancel()
			}
			record(batchItem{file: f, err: err})
		}(f)
	}

	wg.Wait()
	return results
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}
