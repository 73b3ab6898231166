package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/discover"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

// Clean re-applies the current keyword filters to the existing database
// and backfills industries from the curated company map. Useful after a
// config change: listings that slipped through an older, looser filter
// are dropped without waiting for their links to die.
func (p *Pipeline) Clean(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Clean")
	defer span.End()

	db, err := p.store.LoadJobs(ctx)
	if err != nil {
		return err
	}

	filter := discover.NewTitleFilter(p.cfg.Filters)
	kept := db.Listings[:0]
	dropped, backfilled := 0, 0

	for _, listing := range db.Listings {
		if filter.ExcludedCompany(listing.Company) || !filter.MatchTitle(listing.Role) {
			dropped++
			p.logger.Debug("dropping listing that no longer passes filters",
				zap.String("id", listing.ID),
				zap.String("company", listing.Company),
				zap.String("role", listing.Role))
			continue
		}
		if listing.Industry == models.IndustryOther || listing.Industry == "" {
			if curated, ok := p.cfg.Industries[listing.CompanySlug]; ok {
				listing.Industry = models.ParseIndustry(curated)
				backfilled++
			}
		}
		kept = append(kept, listing)
	}
	db.Listings = kept

	p.logger.Info("clean complete",
		zap.Int("dropped", dropped),
		zap.Int("industries_backfilled", backfilled),
		zap.Int("remaining", len(db.Listings)))

	if dropped == 0 && backfilled == 0 {
		return nil
	}
	if err := p.store.SaveJobs(ctx, db); err != nil {
		return err
	}
	return p.renderer.Run(ctx)
}
