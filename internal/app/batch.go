package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"bpxgen/internal/bpx"
	"bpxgen/internal/logger"
	"bpxgen/internal/pipeline"

	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome for one parameter set of a parent document.
type BatchItem struct {
	Set     string
	Result  *pipeline.Result
	Err     error
	Elapsed time.Duration
}

// Batch derives every parameter set listed by the configured BPX Parent
// document with the configured arguments. Failed sets are reported per item;
// the returned error covers only the index and cancellation.
func (a *App) Batch(ctx context.Context, parallel int) ([]BatchItem, error) {
	if a == nil || a.cfg == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	req, err := a.cfg.Request()
	if err != nil {
		return nil, err
	}
	names, err := bpx.ListParameterSets(req.Path)
	if err != nil {
		return nil, err
	}
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}
	logger.Infof("batch: %d parameter sets from %s (parallel=%d)", len(names), req.Path, parallel)

	items := make([]BatchItem, len(names))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)
	for i, name := range names {
		setReq := req
		setReq.ParameterSet = name
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res, err := a.derive(egCtx, setReq)
			items[i] = BatchItem{Set: name, Result: res, Err: err, Elapsed: time.Since(start)}
			if err != nil {
				logger.Warnf("batch: set %s failed: %v", name, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return items, err
	}
	return items, ctx.Err()
}
