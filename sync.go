package gofpd

import (
	"context"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-fpd/fpd"
)

// SyncResult summarizes a Sync run.
type SyncResult struct {
	// Modules is the number of module instances reconciled.
	Modules int

	// Changed lists the module instances whose PCDs changed, in platform
	// order.
	Changed []fpd.ModuleSAKey
}

// Sync reconciles every module instance of the platform with AdjustPcd.
//
// The module list is split into contiguous slices, one per worker (see
// WithWorkers), processed in parallel. A failing module does not stop the
// others: every failure is wrapped in a *ModuleSyncError and all of them are
// returned together, in platform order, once every worker is done. The result
// is valid even when an error is returned.
//
// Sync is not interruptible; ctx is only passed to the logger.
func (e *Engine) Sync(ctx context.Context) (*SyncResult, error) {
	e.mu.Lock()
	e.initIndexLocked()
	keys := make([]fpd.ModuleSAKey, 0, len(e.doc.Modules))
	for _, m := range e.doc.Modules {
		keys = append(keys, m.Key)
	}
	e.mu.Unlock()

	logger := e.cfg.log()
	result := &SyncResult{Modules: len(keys)}
	if len(keys) == 0 {
		return result, nil
	}

	ranges := partition(len(keys), e.cfg.workers)

	type outcome struct {
		index int
		err   error
	}
	var (
		mu       sync.Mutex
		failures []outcome
		changed  []int
	)

	var g errgroup.Group
	for _, r := range ranges {
		start, end := r[0], r[1]
		g.Go(func() error {
			for i := start; i < end; i++ {
				ok, err := e.AdjustPcd(keys[i])
				mu.Lock()
				if ok {
					changed = append(changed, i)
				}
				if err != nil {
					failures = append(failures, outcome{index: i, err: &ModuleSyncError{
						Key:    keys[i],
						Module: e.describe(keys[i]),
						Err:    err,
					}})
				}
				mu.Unlock()
			}
			return nil
		})
	}
	// Workers never return an error; failures are collected per module.
	_ = g.Wait()

	slices.Sort(changed)
	for _, i := range changed {
		result.Changed = append(result.Changed, keys[i])
	}

	slices.SortFunc(failures, func(a, b outcome) int { return a.index - b.index })
	errs := newMultiError()
	for _, f := range failures {
		errs = multierror.Append(errs, f.err)
	}

	logger.InfoContext(ctx, "pcd sync finished",
		"modules", len(keys),
		"workers", len(ranges),
		"changed", len(result.Changed),
		"failed", len(failures))
	return result, errs.ErrorOrNil()
}

// partition splits n items into min(n, workers) contiguous [start, end)
// ranges whose lengths differ by at most one.
func partition(n, workers int) [][2]int {
	workers = min(workers, n)
	ranges := make([][2]int, 0, workers)
	for w := range workers {
		ranges = append(ranges, [2]int{w * n / workers, (w + 1) * n / workers})
	}
	return ranges
}
