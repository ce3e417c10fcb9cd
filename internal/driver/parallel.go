package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"abiforge/internal/decl"
)

// RunFile loads one declaration dump and builds it. With a cache configured
// an unchanged input under unchanged options skips the pass entirely and
// replays the stored artifacts.
func RunFile(ctx context.Context, path string, opts Options) (res *Result, err error) {
	if outer := opts.Observer; outer != nil {
		opts.Observer = func(ev PhaseEvent) {
			ev.Path = path
			outer(ev)
		}
		defer func() {
			ev := PhaseEvent{Path: path, Status: PhaseDone}
			if res != nil {
				ev.Unit = res.Unit
			}
			if err != nil {
				ev.Status = PhaseFailed
			}
			outer(ev)
		}()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &decl.LoadError{Path: path, Err: err}
	}

	if opts.Cache != nil {
		if hit, ok := cachedResult(path, data, opts); ok {
			if opts.Sink != nil {
				if err := writeArtifacts(opts.Sink, hit.Artifacts); err != nil {
					return nil, fmt.Errorf("unit %s: %w", hit.Unit, err)
				}
			}
			return hit, nil
		}
	}

	notify := func(status PhaseStatus, elapsed time.Duration) {
		if opts.Observer != nil {
			opts.Observer(PhaseEvent{Name: PhaseLoad, Status: status, Elapsed: elapsed})
		}
	}
	notify(PhaseStart, 0)
	start := time.Now()
	unit, err := decl.LoadBytes(path, data)
	notify(PhaseEnd, time.Since(start))
	if err != nil {
		return nil, err
	}

	res, err = Run(ctx, unit, opts)
	if err != nil {
		return nil, err
	}

	if opts.Cache != nil {
		if key, err := cacheKey(data, opts); err == nil {
			if err := opts.Cache.Put(key, resultToPayload(res)); err != nil {
				Logger().Warn("cache write failed", zap.String("unit", res.Unit), zap.Error(err))
			}
		}
	}
	return res, nil
}

func cachedResult(path string, data []byte, opts Options) (*Result, bool) {
	key, err := cacheKey(data, opts)
	if err != nil {
		Logger().Warn("cache key failed", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	var payload DiskPayload
	hit, err := opts.Cache.Get(key, &payload)
	if err != nil {
		Logger().Warn("cache read failed", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	if !hit {
		return nil, false
	}
	Logger().Debug("cache hit", zap.String("path", path), zap.String("unit", payload.Unit))
	return payloadToResult(&payload), true
}

// RunAll builds independent units in parallel, at most jobs at a time
// (jobs <= 0 means GOMAXPROCS). Results keep the order of paths. The first
// failing unit cancels the rest and its error is returned.
func RunAll(ctx context.Context, paths []string, opts Options, jobs int) ([]*Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := RunFile(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
