package collector

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"presyo-tracker/internal/fetcher"
	"presyo-tracker/internal/market"
	"presyo-tracker/internal/registry"
)

// ErrFatalExtraction means not a single (region, category) pair produced a
// usable table. The run aborts rather than publish a fabricated-empty
// dashboard; previously published output stays in place.
var ErrFatalExtraction = errors.New("collector: extraction yielded no usable tables")

// Options tune the fetch fan-out.
type Options struct {
	Concurrency  int
	RetryBackoff time.Duration
}

// Skip records one (region, category) pair that produced no table, for the
// operator-facing run summary.
type Skip struct {
	Region          registry.Region
	Category        registry.Category
	Reason          string
	StructureChange bool
}

// Result carries everything extraction produced.
type Result struct {
	Snapshots []market.Snapshot
	Skips     []Skip
	Attempted int
}

// Collector fans the independent page fetches out over a bounded worker
// pool. Failure of one pair never cancels its siblings.
type Collector struct {
	fetcher fetcher.TableFetcher
	opts    Options
	logger  zerolog.Logger
}

// New constructs a collector over the given table fetcher.
func New(f fetcher.TableFetcher, opts Options, logger zerolog.Logger) *Collector {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 6
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	return &Collector{
		fetcher: f,
		opts:    opts,
		logger:  logger.With().Str("component", "collector").Logger(),
	}
}

// Collect fetches every (region x category) pair. Transient failures are
// retried once with backoff, then skipped. The returned snapshots are in
// deterministic (region id, category slug) order regardless of fetch
// completion order. ErrFatalExtraction when nothing succeeded.
func (c *Collector) Collect(ctx context.Context, regions []registry.Region, categories []registry.Category) (*Result, error) {
	result := &Result{Attempted: len(regions) * len(categories)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)

	for _, region := range regions {
		for _, category := range categories {
			region, category := region, category
			g.Go(func() error {
				table, err := c.fetchPair(gctx, region, category)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					result.Skips = append(result.Skips, Skip{
						Region:          region,
						Category:        category,
						Reason:          err.Error(),
						StructureChange: errors.Is(err, fetcher.ErrNoTableFound),
					})
					return nil
				}
				result.Snapshots = append(result.Snapshots, market.Snapshot{
					Region:   region,
					Category: category,
					Table:    table,
				})
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Snapshots, func(i, j int) bool {
		a, b := result.Snapshots[i], result.Snapshots[j]
		if a.Region.ID != b.Region.ID {
			return a.Region.ID < b.Region.ID
		}
		return a.Category.Slug < b.Category.Slug
	})
	sort.Slice(result.Skips, func(i, j int) bool {
		a, b := result.Skips[i], result.Skips[j]
		if a.Region.ID != b.Region.ID {
			return a.Region.ID < b.Region.ID
		}
		return a.Category.Slug < b.Category.Slug
	})

	for _, skip := range result.Skips {
		evt := c.logger.Warn()
		if skip.StructureChange {
			evt = c.logger.Error().Bool("structure_change", true)
		}
		evt.Int("region_id", int(skip.Region.ID)).
			Str("category", skip.Category.Slug).
			Str("reason", skip.Reason).
			Msg("pair skipped")
	}

	if len(result.Snapshots) == 0 {
		return nil, ErrFatalExtraction
	}
	return result, nil
}

// fetchPair applies the retry-once-then-skip policy for one pair. Only
// transient fetch errors are retried; a missing or misshapen table means
// the page structure changed and retrying cannot help.
func (c *Collector) fetchPair(ctx context.Context, region registry.Region, category registry.Category) (*fetcher.Table, error) {
	table, err := c.fetcher.FetchTable(ctx, region, category)
	if err == nil {
		return table, nil
	}
	if !fetcher.IsTransient(err) {
		return nil, err
	}

	c.logger.Warn().
		Int("region_id", int(region.ID)).
		Str("category", category.Slug).
		Err(err).
		Msg("fetch failed, retrying once")

	timer := time.NewTimer(c.opts.RetryBackoff)
	select {
	case <-ctx.Done():
		timer.Stop()
		return nil, ctx.Err()
	case <-timer.C:
	}

	return c.fetcher.FetchTable(ctx, region, category)
}
