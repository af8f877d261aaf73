package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"presyo-tracker/internal/alerting"
	"presyo-tracker/internal/analytics"
	"presyo-tracker/internal/collector"
	"presyo-tracker/internal/config"
	"presyo-tracker/internal/market"
	"presyo-tracker/internal/publisher"
	"presyo-tracker/internal/registry"
	"presyo-tracker/internal/storage"
	"presyo-tracker/internal/views"
)

// Run outcome reported to the operator.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusSkipped = "skipped"
)

// Selection narrows a run to a subset of regions and categories.
type Selection struct {
	Regions    []registry.Region
	Categories []registry.Category
}

// Summary describes one completed run.
type Summary struct {
	Status          string
	RunDate         time.Time
	Attempted       int
	Fetched         int
	Skips           []collector.Skip
	Observations    int
	SeriesCount     int
	PublishFailures []publisher.Failure
}

// Service executes one pipeline run end to end: collect, normalize,
// persist, aggregate, build views, publish, alert. Aggregation starts
// only after every fetch has completed or been skipped.
type Service struct {
	cfg       *config.Config
	reg       *registry.Registry
	collector *collector.Collector
	store     storage.ObservationStore
	locker    storage.AdvisoryLocker
	builder   *views.Builder
	pub       *publisher.Publisher
	notifier  alerting.Notifier
	logger    zerolog.Logger

	metricsCfg analytics.Config
}

// New constructs the pipeline service. store, locker, and notifier may be
// nil; the service degrades accordingly.
func New(cfg *config.Config, reg *registry.Registry, col *collector.Collector, store storage.ObservationStore, locker storage.AdvisoryLocker, pub *publisher.Publisher, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		reg:       reg,
		collector: col,
		store:     store,
		locker:    locker,
		builder:   views.NewBuilder(cfg.Analytics.TopMovers),
		pub:       pub,
		notifier:  notifier,
		logger:    logger.With().Str("component", "service").Logger(),
		metricsCfg: analytics.Config{
			ShortWindow:      cfg.Analytics.ShortWindow,
			LongWindow:       cfg.Analytics.LongWindow,
			VolatilityWindow: cfg.Analytics.VolatilityWindow,
			MinSamples:       cfg.Analytics.MinSamples,
			TrendDays:        cfg.Analytics.TrendDays,
		},
	}
}

// Run executes one batch run. It returns an error only for fatal
// conditions (no usable extraction, unusable output directory); partial
// trouble lands in the summary.
func (s *Service) Run(ctx context.Context, sel Selection, runDate time.Time) (*Summary, error) {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	if !proceed {
		s.logger.Warn().Msg("another run holds the advisory lock; skipping")
		return &Summary{Status: StatusSkipped, RunDate: runDate}, nil
	}
	if unlock != nil {
		defer unlock()
	}

	result, err := s.collector.Collect(ctx, sel.Regions, sel.Categories)
	if err != nil {
		return nil, err
	}

	observations := market.Normalize(result.Snapshots, runDate, s.reg)
	s.logger.Info().
		Int("fetched", len(result.Snapshots)).
		Int("skipped", len(result.Skips)).
		Int("observations", len(observations)).
		Msg("extraction complete")

	history := s.loadHistory(ctx, observations)

	series := analytics.BuildSeries(history)
	metrics := make([]analytics.Metrics, len(series))
	for i := range series {
		metrics[i] = analytics.Compute(series[i], s.metricsCfg)
	}

	docs := s.builder.Build(views.Input{
		Series:              series,
		Metrics:             metrics,
		Snapshots:           result.Snapshots,
		GeneratedAt:         runDate,
		RegionsAttempted:    len(sel.Regions),
		CategoriesAttempted: len(sel.Categories),
	})

	failures, err := s.pub.Publish(docs, series, s.metricsCfg)
	if err != nil {
		return nil, err
	}

	s.maybeAlert(ctx, docs.Dashboard, runDate)

	summary := &Summary{
		Status:          StatusSuccess,
		RunDate:         runDate,
		Attempted:       result.Attempted,
		Fetched:         len(result.Snapshots),
		Skips:           result.Skips,
		Observations:    len(observations),
		SeriesCount:     len(series),
		PublishFailures: failures,
	}
	if len(result.Skips) > 0 || len(failures) > 0 {
		summary.Status = StatusPartial
	}

	s.logger.Info().
		Str("status", summary.Status).
		Int("series", summary.SeriesCount).
		Int("publish_failures", len(failures)).
		Msg("run complete")

	return summary, nil
}

// loadHistory merges the current snapshot into the persisted history and
// reads the full series back. Without a configured store the run works on
// the current snapshot alone, which leaves most metrics at Insufficient
// Data until a database is attached.
func (s *Service) loadHistory(ctx context.Context, observations []market.Observation) []market.Observation {
	if s.store == nil {
		s.logger.Warn().Msg("database not configured; analytics limited to current snapshot")
		return observations
	}

	if err := s.store.UpsertObservations(ctx, observations); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist observations; continuing with current snapshot")
		return observations
	}

	history, err := s.store.ListObservations(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load history; continuing with current snapshot")
		return observations
	}
	return history
}

func (s *Service) maybeAlert(ctx context.Context, dashboard []views.DashboardItem, runDate time.Time) {
	if s.notifier == nil || !s.cfg.Alerting.Enabled || s.cfg.Alerting.ThresholdPct <= 0 {
		return
	}

	threshold := decimal.NewFromFloat(s.cfg.Alerting.ThresholdPct)

	var movers []alerting.Mover
	for _, item := range dashboard {
		if item.Change7dPct == nil || item.LatestPrice == nil {
			continue
		}
		if item.Change7dPct.Abs().GreaterThanOrEqual(threshold) {
			movers = append(movers, alerting.Mover{
				Region:      item.Region,
				Commodity:   item.Commodity,
				Unit:        item.Unit,
				LatestPrice: *item.LatestPrice,
				Change7dPct: *item.Change7dPct,
			})
		}
	}
	if len(movers) == 0 {
		return
	}

	note := alerting.Notification{RunDate: runDate, ThresholdPct: threshold, Movers: movers}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Msg("failed to dispatch mover alert")
	}
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.locker == nil || s.cfg.Scheduler.LockKey == 0 {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.cfg.Scheduler.LockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
