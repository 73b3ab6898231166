// Package pipeline orchestrates the update cycle: discover raw postings,
// ingest community submissions, validate and enrich, deduplicate, check
// links, archive stale listings, and render the README. Steps are
// isolated: one failing step is logged and counted but never stops the
// rest of the run.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/analytics"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/archive"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/dedup"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/discover"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/events"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/issues"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/linkcheck"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/render"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/store"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/validate"
)

var tracer = telemetry.GetTracer("internboard/pipeline")

type Pipeline struct {
	cfg        *config.Config
	store      *store.Store
	discoverer *discover.Runner
	intake     *issues.Intake
	validator  *validate.Validator
	deduper    *dedup.Engine
	checker    *linkcheck.Checker
	archiver   *archive.Archiver
	renderer   *render.Renderer
	publisher  events.Publisher
	recorder   analytics.Recorder
	logger     *zap.Logger
}

func New(
	cfg *config.Config,
	st *store.Store,
	discoverer *discover.Runner,
	intake *issues.Intake,
	validator *validate.Validator,
	deduper *dedup.Engine,
	checker *linkcheck.Checker,
	archiver *archive.Archiver,
	renderer *render.Renderer,
	publisher events.Publisher,
	recorder analytics.Recorder,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		store:      st,
		discoverer: discoverer,
		intake:     intake,
		validator:  validator,
		deduper:    deduper,
		checker:    checker,
		archiver:   archiver,
		renderer:   renderer,
		publisher:  publisher,
		recorder:   recorder,
		logger:     logger,
	}
}

// step is one isolated pipeline stage.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps executes steps in order, isolating failures, and returns how
// many failed.
func (p *Pipeline) runSteps(ctx context.Context, steps []step) int {
	failed := 0
	for _, s := range steps {
		stepCtx, span := tracer.Start(ctx, s.name)
		start := time.Now()

		if err := s.run(stepCtx); err != nil {
			failed++
			p.logger.Error("pipeline step failed",
				zap.String("step", s.name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			span.RecordError(err)
		} else {
			p.logger.Info("pipeline step complete",
				zap.String("step", s.name),
				zap.Duration("elapsed", time.Since(start)))
		}
		span.End()
	}
	return failed
}

// RunFull executes the complete update cycle and reports the run to the
// analytics sink and event bus.
func (p *Pipeline) RunFull(ctx context.Context, mode string) error {
	ctx, span := tracer.Start(ctx, "PipelineRun")
	defer span.End()

	runID := events.NewRunID()
	start := time.Now().UTC()
	p.logger.Info("pipeline run starting",
		zap.String("run_id", runID),
		zap.String("mode", mode))

	var (
		discovered   int
		added        int
		intaken      int
		counts       dedup.Counts
		linksChecked int
		linksClosed  int
		archived     int
	)

	failed := p.runSteps(ctx, []step{
		{"discover", func(ctx context.Context) error {
			snap, err := p.discoverer.Run(ctx)
			if err == nil {
				discovered = len(snap.Listings)
			}
			return err
		}},
		{"issue-intake", func(ctx context.Context) error {
			n, err := p.intake.Run(ctx)
			intaken = n
			return err
		}},
		{"validate", func(ctx context.Context) error {
			n, err := p.validator.Run(ctx)
			added = n
			return err
		}},
		{"deduplicate", func(ctx context.Context) error {
			c, err := p.deduper.Run(ctx)
			counts = c
			return err
		}},
		{"check-links", func(ctx context.Context) error {
			checked, closed, err := p.checker.Run(ctx)
			linksChecked = checked
			linksClosed = closed
			return err
		}},
		{"archive", func(ctx context.Context) error {
			n, err := p.archiver.Run(ctx)
			archived = n
			return err
		}},
		{"render-readme", p.renderer.Run},
	})

	duration := time.Since(start)
	p.logger.Info("pipeline run finished",
		zap.String("run_id", runID),
		zap.Duration("duration", duration),
		zap.Int("discovered", discovered),
		zap.Int("added", added+intaken),
		zap.Int("dedup_removed", counts.Total()),
		zap.Int("links_checked", linksChecked),
		zap.Int("links_closed", linksClosed),
		zap.Int("archived", archived),
		zap.Int("steps_failed", failed))

	if err := p.recorder.RecordRun(ctx, analytics.RunRecord{
		RunID:            runID,
		Mode:             mode,
		StartedAt:        start,
		DurationMs:       duration.Milliseconds(),
		SourcesTotal:     int32(p.discoverer.SourceCount()),
		Discovered:       int32(discovered),
		Added:            int32(added + intaken),
		DedupHashRemoved: int32(counts.Hash),
		DedupURLRemoved:  int32(counts.URL),
		DedupFuzzRemoved: int32(counts.Fuzzy),
		LinksChecked:     int32(linksChecked),
		LinksClosed:      int32(linksClosed),
		Archived:         int32(archived),
		StepsFailed:      int32(failed),
	}); err != nil {
		p.logger.Warn("analytics record failed", zap.Error(err))
	}

	if err := p.publisher.PublishRunSummary(ctx, events.RunSummary{
		RunID:        runID,
		Mode:         mode,
		StartedAt:    start,
		Duration:     duration,
		Discovered:   discovered,
		Added:        added + intaken,
		DedupRemoved: counts.Total(),
		LinksClosed:  linksClosed,
		Archived:     archived,
		StepsFailed:  failed,
	}); err != nil {
		p.logger.Warn("event publish failed", zap.Error(err))
	}

	now := time.Now().UTC()
	if added+intaken > 0 {
		p.publishDelta(ctx, events.ListingsAddedSubject, events.ListingDelta{
			RunID: runID, Count: added + intaken, At: now,
		})
	}
	if linksClosed > 0 {
		p.publishDelta(ctx, events.ListingsClosedSubject, events.ListingDelta{
			RunID: runID, Count: linksClosed, At: now,
		})
	}

	return nil
}

func (p *Pipeline) publishDelta(ctx context.Context, subject string, delta events.ListingDelta) {
	if err := p.publisher.PublishListingDelta(ctx, subject, delta); err != nil {
		p.logger.Warn("event publish failed",
			zap.String("subject", subject),
			zap.Error(err))
	}
}

// DiscoverOnly runs discovery and stops before validation.
func (p *Pipeline) DiscoverOnly(ctx context.Context) error {
	_, err := p.discoverer.Run(ctx)
	return err
}

// RenderOnly regenerates the README from the current database.
func (p *Pipeline) RenderOnly(ctx context.Context) error {
	return p.renderer.Run(ctx)
}

// CheckLinksOnly runs the link checker and re-renders so closures show up.
func (p *Pipeline) CheckLinksOnly(ctx context.Context) error {
	failed := p.runSteps(ctx, []step{
		{"check-links", func(ctx context.Context) error {
			_, _, err := p.checker.Run(ctx)
			return err
		}},
		{"render-readme", p.renderer.Run},
	})
	if failed > 0 {
		p.logger.Warn("link check run had failures", zap.Int("steps_failed", failed))
	}
	return nil
}

// DedupOnly runs one dedup pass and re-renders.
func (p *Pipeline) DedupOnly(ctx context.Context) error {
	failed := p.runSteps(ctx, []step{
		{"deduplicate", func(ctx context.Context) error {
			_, err := p.deduper.Run(ctx)
			return err
		}},
		{"render-readme", p.renderer.Run},
	})
	if failed > 0 {
		p.logger.Warn("dedup run had failures", zap.Int("steps_failed", failed))
	}
	return nil
}
