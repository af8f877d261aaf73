package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"presyo-tracker/internal/scheduler"
	"presyo-tracker/internal/service"
)

// Watch runs the pipeline on the configured interval until interrupted.
func (a *App) Watch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if closeStore != nil {
		defer closeStore()
	}

	svc := a.newService(store, a.Config.Output.Dir)
	sel := service.Selection{
		Regions:    a.Registry.Regions(),
		Categories: a.Registry.Categories(),
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	a.Logger.Info().
		Dur("interval", a.Config.Scheduler.Interval).
		Msg("watch mode started")

	return sched.Run(ctx, func(runCtx context.Context, runDate time.Time) error {
		summary, err := svc.Run(runCtx, sel, runDate)
		if err != nil {
			return err
		}
		a.reportSummary(summary)
		return nil
	})
}
