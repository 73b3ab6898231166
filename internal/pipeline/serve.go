package pipeline

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Serve runs the pipeline on the configured schedule until the context is
// cancelled: the full cycle every update interval, a standalone link check
// on its own (longer) interval, and one full run immediately at startup.
func (p *Pipeline) Serve(ctx context.Context) error {
	scheduler := cron.New()

	updateSpec := fmt.Sprintf("@every %dh", p.cfg.Schedule.UpdateIntervalHours)
	if _, err := scheduler.AddFunc(updateSpec, func() {
		if err := p.RunFull(ctx, "scheduled"); err != nil {
			p.logger.Error("scheduled run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("scheduling update job: %w", err)
	}

	linkSpec := fmt.Sprintf("@every %dh", p.cfg.Schedule.LinkCheckIntervalHours)
	if _, err := scheduler.AddFunc(linkSpec, func() {
		if err := p.CheckLinksOnly(ctx); err != nil {
			p.logger.Error("scheduled link check failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("scheduling link check job: %w", err)
	}

	p.logger.Info("serve mode starting",
		zap.String("update_interval", updateSpec),
		zap.String("link_check_interval", linkSpec))

	if err := p.RunFull(ctx, "startup"); err != nil {
		p.logger.Error("startup run failed", zap.Error(err))
	}

	scheduler.Start()
	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	p.logger.Info("serve mode stopped")
	return nil
}
