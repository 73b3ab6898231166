// Package discover pulls candidate internship postings from ATS APIs,
// career-page scrapes, and community GitHub lists, filters them by title
// keywords, and writes a raw discovery snapshot for validation to consume.
package discover

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/store"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
)

var tracer = telemetry.GetTracer("internboard/discover")

const sourceWorkers = 5

// Source is one provider of raw listings. Fetch returns only listings
// that already passed the title filter.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.RawListing, error)
}

// Runner fans out over all configured sources with a bounded worker pool
// and persists the combined snapshot.
type Runner struct {
	sources []Source
	store   *store.Store
	logger  *zap.Logger
}

func NewRunner(cfg *config.Config, st *store.Store, logger *zap.Logger) *Runner {
	filter := NewTitleFilter(cfg.Filters)
	f := newFetcher(cfg.Infra.HTTPTimeout)

	var sources []Source
	for _, board := range cfg.Greenhouse {
		sources = append(sources, NewGreenhouseSource(board, f, filter))
	}
	for _, board := range cfg.Lever {
		sources = append(sources, NewLeverSource(board, f, filter))
	}
	for _, board := range cfg.Ashby {
		sources = append(sources, NewAshbySource(board, f, filter))
	}
	for _, src := range cfg.ScrapeSources {
		sources = append(sources, NewScrapeSource(src, f, filter))
	}
	for _, mon := range cfg.Monitors {
		sources = append(sources, NewGitHubSource(mon, cfg.Infra.GitHubToken, f, filter))
	}

	return &Runner{sources: sources, store: st, logger: logger}
}

// SourceCount reports how many sources are configured.
func (r *Runner) SourceCount() int {
	return len(r.sources)
}

// Run fetches every source, collects the union of raw listings, and saves
// a timestamped snapshot. Individual source failures are logged and
// counted but never abort the run.
func (r *Runner) Run(ctx context.Context) (*models.RawSnapshot, error) {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()

	sourceChan := make(chan Source, len(r.sources))
	for _, s := range r.sources {
		sourceChan <- s
	}
	close(sourceChan)

	var (
		mu           sync.Mutex
		listings     []models.RawListing
		sourceCounts = make(map[string]int)
		failed       int32
		wg           sync.WaitGroup
	)

	for i := 0; i < sourceWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range sourceChan {
				found, err := src.Fetch(ctx)
				if err != nil {
					atomic.AddInt32(&failed, 1)
					r.logger.Error("source fetch failed",
						zap.String("source", src.Name()),
						zap.Error(err))
					continue
				}
				mu.Lock()
				listings = append(listings, found...)
				sourceCounts[src.Name()] = len(found)
				mu.Unlock()
				r.logger.Debug("source fetched",
					zap.String("source", src.Name()),
					zap.Int("listings", len(found)))
			}
		}()
	}
	wg.Wait()

	snap := &models.RawSnapshot{
		Listings:     listings,
		DiscoveredAt: time.Now().UTC(),
		SourceCounts: sourceCounts,
	}

	span.SetAttributes(
		telemetry.Int("sources.total", len(r.sources)),
		telemetry.Int("sources.failed", int(atomic.LoadInt32(&failed))),
		telemetry.Int("listings.found", len(listings)),
	)
	r.logger.Info("discovery complete",
		zap.Int("sources", len(r.sources)),
		zap.Int("failed", int(atomic.LoadInt32(&failed))),
		zap.Int("listings", len(listings)))

	if _, err := r.store.SaveRawSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}
