// Package archive moves stale listings out of the active database:
// closed listings that have not verified alive for a week, and anything
// old enough that the posting season is over regardless of status.
package archive

import (
	"context"

	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/store"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
)

var tracer = telemetry.GetTracer("internboard/archive")

// Any listing older than this is archived even while still open; a posting
// four months old is no longer actionable for the season.
const maxListingAgeDays = 120

type Archiver struct {
	store            *store.Store
	archiveAfterDays int
	logger           *zap.Logger
}

func New(cfg *config.Config, st *store.Store, logger *zap.Logger) *Archiver {
	return &Archiver{
		store:            st,
		archiveAfterDays: cfg.Schedule.ArchiveAfterDays,
		logger:           logger,
	}
}

// Run moves eligible listings into archived.json and returns how many
// moved.
func (a *Archiver) Run(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Archive")
	defer span.End()

	db, err := a.store.LoadJobs(ctx)
	if err != nil {
		return 0, err
	}
	archive, err := a.store.LoadArchive(ctx)
	if err != nil {
		return 0, err
	}

	today := models.Today()
	kept := db.Listings[:0]
	moved := 0

	for _, listing := range db.Listings {
		if a.shouldArchive(listing, today) {
			archive.Listings = append(archive.Listings, listing)
			moved++
			a.logger.Debug("archiving listing",
				zap.String("id", listing.ID),
				zap.String("company", listing.Company),
				zap.String("status", string(listing.Status)))
			continue
		}
		kept = append(kept, listing)
	}
	db.Listings = kept

	span.SetAttributes(telemetry.Int("listings.archived", moved))
	if moved == 0 {
		return 0, nil
	}

	if err := a.store.SaveArchive(ctx, archive); err != nil {
		return 0, err
	}
	if err := a.store.SaveJobs(ctx, db); err != nil {
		return 0, err
	}
	a.logger.Info("archived stale listings",
		zap.Int("moved", moved),
		zap.Int("remaining", len(db.Listings)))
	return moved, nil
}

func (a *Archiver) shouldArchive(listing models.Listing, today models.Date) bool {
	if listing.Status == models.StatusClosed &&
		listing.DateLastVerified.DaysSince(today) > a.archiveAfterDays {
		return true
	}
	return listing.DateAdded.DaysSince(today) > maxListingAgeDays
}
