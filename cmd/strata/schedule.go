package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/internal/pipeline"
	"github.com/ajitpratap0/strata/pkg/logger"
)

func (a *app) scheduleCommand() *cobra.Command {
	var spec string
	var opts pipeline.Options
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run a pipeline on a cron schedule until interrupted",
		Long: `Schedule runs the pipeline every time the cron expression fires. Runs never
overlap: a tick that fires while a run is in progress is skipped.

Example:
  strata schedule --config pipeline.yaml --cron "0 */6 * * *"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Fail fast on a broken pipeline instead of at the first tick.
			if _, err := a.loadPipeline(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.schedule(ctx, spec, opts)
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "Cron expression (standard five fields or a descriptor such as @hourly)")
	cmd.Flags().StringSliceVar(&opts.OnlyLayers, "only-layers", nil, "Materialise only these layers and their dependencies")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Do everything except writing to destinations")
	_ = cmd.MarkFlagRequired("cron")
	return cmd
}

// schedule blocks until ctx is done, running the pipeline on every tick.
func (a *app) schedule(ctx context.Context, spec string, opts pipeline.Options) error {
	log := logger.Get().With(zap.String("component", "scheduler"))
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(sched, cron.FuncJob(func() {
		res, err := a.execute(ctx, opts)
		if err != nil {
			log.Error("scheduled run failed", zap.Error(err))
			return
		}
		log.Info("scheduled run finished", zap.String("run_id", res.RunID), zap.Duration("duration", res.Duration))
	}))

	c.Start()
	log.Info("scheduler started", zap.String("cron", spec), zap.Time("next", sched.Next(time.Now())))
	<-ctx.Done()
	log.Info("scheduler stopping, waiting for the current run")
	<-c.Stop().Done()
	return nil
}
