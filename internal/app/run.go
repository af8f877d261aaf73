package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"presyo-tracker/internal/publisher"
	"presyo-tracker/internal/registry"
	"presyo-tracker/internal/service"
	"presyo-tracker/internal/storage"
)

// RunOptions narrows or redirects a single batch run.
type RunOptions struct {
	Category  string
	RegionID  int
	OutputDir string
	DryRun    bool
}

// Run executes one scrape-aggregate-publish cycle and exits.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sel, err := a.resolveSelection(opts.RegionID, opts.Category)
	if err != nil {
		return err
	}

	if opts.DryRun {
		return a.printPlan(sel)
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if closeStore != nil {
		defer closeStore()
	}

	outputDir := a.Config.Output.Dir
	if opts.OutputDir != "" {
		outputDir = opts.OutputDir
	}

	svc := a.newService(store, outputDir)
	summary, err := svc.Run(ctx, sel, time.Now().UTC())
	if err != nil {
		return err
	}

	a.reportSummary(summary)
	return nil
}

func (a *App) newService(store *storage.Store, outputDir string) *service.Service {
	// A nil *Store must not become a non-nil interface inside the service.
	var obsStore storage.ObservationStore
	var locker storage.AdvisoryLocker
	if store != nil {
		obsStore = store
		locker = store
	}

	pub := publisher.New(outputDir, a.Logger)
	return service.New(a.Config, a.Registry, a.newCollector(), obsStore, locker, pub, a.newNotifier(), a.Logger)
}

func (a *App) resolveSelection(regionID int, categorySlug string) (service.Selection, error) {
	sel := service.Selection{
		Regions:    a.Registry.Regions(),
		Categories: a.Registry.Categories(),
	}

	if regionID != 0 {
		region, ok := a.Registry.RegionByID(registry.RegionID(regionID))
		if !ok {
			return sel, fmt.Errorf("unknown region id %d", regionID)
		}
		sel.Regions = []registry.Region{region}
	}

	if categorySlug != "" {
		category, ok := a.Registry.CategoryBySlug(categorySlug)
		if !ok {
			return sel, fmt.Errorf("unknown category %q", categorySlug)
		}
		sel.Categories = []registry.Category{category}
	}

	return sel, nil
}

// printPlan lists every fetch the run would perform, without touching the
// network or the output directory.
func (a *App) printPlan(sel service.Selection) error {
	fmt.Fprintf(os.Stdout, "dry run: %d regions x %d categories = %d fetches\n",
		len(sel.Regions), len(sel.Categories), len(sel.Regions)*len(sel.Categories))
	for _, region := range sel.Regions {
		for _, category := range sel.Categories {
			fmt.Fprintf(os.Stdout, "  region %2d (%s) %s %s?%s=%s\n",
				region.ID, region.Name, category.Slug,
				category.Path, a.Config.Source.RegionQueryKey, region.Param)
		}
	}
	return nil
}

func (a *App) reportSummary(summary *service.Summary) {
	event := a.Logger.Info()
	if summary.Status != service.StatusSuccess {
		event = a.Logger.Warn()
	}
	event.
		Str("status", summary.Status).
		Int("attempted", summary.Attempted).
		Int("fetched", summary.Fetched).
		Int("skipped", len(summary.Skips)).
		Int("observations", summary.Observations).
		Int("series", summary.SeriesCount).
		Int("publish_failures", len(summary.PublishFailures)).
		Msg("run finished")

	for _, skip := range summary.Skips {
		a.Logger.Warn().
			Str("region", skip.Region.Name).
			Str("category", skip.Category.Slug).
			Str("reason", skip.Reason).
			Bool("structure_change", skip.StructureChange).
			Msg("pair skipped")
	}
	for _, failure := range summary.PublishFailures {
		a.Logger.Error().
			Str("document", failure.Name).
			Err(failure.Err).
			Msg("document not published")
	}
}
