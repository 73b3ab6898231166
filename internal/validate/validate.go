// Package validate turns raw discovery snapshots into validated listings:
// it skips already-known postings, runs AI enrichment on the rest, rejects
// non-internships and wrong-season roles, and appends the survivors to the
// job database.
package validate

import (
	"context"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/enrich"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/store"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
)

var tracer = telemetry.GetTracer("internboard/validate")

// Listings enriched by the model need at least this confidence to be
// accepted; degraded defaults bypass the bar since their confidence is
// synthetic.
const minConfidence = 0.7

type Validator struct {
	store  *store.Store
	client enrich.Client
	cfg    *config.Config
	logger *zap.Logger
}

func New(st *store.Store, client enrich.Client, cfg *config.Config, logger *zap.Logger) *Validator {
	return &Validator{store: st, client: client, cfg: cfg, logger: logger}
}

// Run processes the newest raw snapshot and returns the number of listings
// added. No snapshot at all is a no-op, not an error.
func (v *Validator) Run(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Validate")
	defer span.End()

	snap, path, err := v.store.LoadLatestRawSnapshot(ctx)
	if err != nil {
		return 0, err
	}
	if snap == nil {
		v.logger.Info("no raw discovery snapshot to validate")
		return 0, nil
	}

	db, err := v.store.LoadJobs(ctx)
	if err != nil {
		return 0, err
	}
	archivedIDs, err := v.store.ArchivedIDs(ctx)
	if err != nil {
		return 0, err
	}

	known := mapset.NewSet[string]()
	for _, l := range db.Listings {
		known.Add(l.ID)
	}
	known = known.Union(archivedIDs)

	v.client.Budget().Reset()

	added, skipped, rejected := 0, 0, 0
	for _, raw := range snap.Listings {
		listing, ok := v.validateOne(ctx, raw)
		if !ok {
			rejected++
			continue
		}
		if known.Contains(listing.ID) {
			skipped++
			continue
		}
		known.Add(listing.ID)
		db.Listings = append(db.Listings, listing)
		added++
	}

	span.SetAttributes(
		telemetry.Int("listings.added", added),
		telemetry.Int("listings.skipped", skipped),
		telemetry.Int("listings.rejected", rejected),
	)
	v.logger.Info("validation complete",
		zap.String("snapshot", path),
		zap.Int("added", added),
		zap.Int("skipped", skipped),
		zap.Int("rejected", rejected),
		zap.Int("ai_calls", v.client.Budget().Consumed()))

	if added == 0 {
		return 0, nil
	}
	if err := v.store.SaveJobs(ctx, db); err != nil {
		return 0, err
	}
	return added, nil
}

func (v *Validator) validateOne(ctx context.Context, raw models.RawListing) (models.Listing, bool) {
	res, err := v.client.Enrich(ctx, raw)
	if err != nil {
		v.logger.Error("enrichment failed",
			zap.String("company", raw.Company),
			zap.String("title", raw.Title),
			zap.Error(err))
		return models.Listing{}, false
	}

	meta := res.Metadata
	if !meta.IsInternship {
		return models.Listing{}, false
	}
	if res.Kind == enrich.KindEnriched {
		if !meta.IsTargetSeason {
			return models.Listing{}, false
		}
		if meta.Confidence < minConfidence {
			v.logger.Debug("rejected low-confidence listing",
				zap.String("company", raw.Company),
				zap.String("title", raw.Title),
				zap.Float64("confidence", meta.Confidence))
			return models.Listing{}, false
		}
	}

	return v.buildListing(raw, meta), true
}

func (v *Validator) buildListing(raw models.RawListing, meta enrich.Metadata) models.Listing {
	locations := meta.Locations
	if len(locations) == 0 {
		locations = SplitLocations(raw.Location)
	}

	slug := raw.CompanySlug
	if slug == "" {
		slug = models.Slugify(raw.Company)
	}

	sponsorship := models.ParseSponsorship(meta.Sponsorship)
	today := models.Today()

	return models.Listing{
		ID:                    models.ListingID(raw.Company, raw.Title, locations),
		Company:               strings.TrimSpace(raw.Company),
		CompanySlug:           slug,
		Role:                  strings.TrimSpace(raw.Title),
		Category:              models.ParseRoleCategory(meta.Category),
		Locations:             locations,
		ApplyURL:              raw.URL,
		Sponsorship:           sponsorship,
		RequiresUSCitizenship: sponsorship == models.SponsorshipUSCitizenship,
		IsFaangPlus:           raw.IsFaangPlus,
		RequiresAdvDegree:     meta.RequiresAdvDegree,
		GraduateFriendly:      !meta.RequiresAdvDegree,
		RemoteFriendly:        meta.RemoteFriendly,
		OpenToInternational:   sponsorship == models.SponsorshipSponsors,
		DateAdded:             today,
		DateLastVerified:      today,
		Source:                raw.Source,
		Status:                models.StatusOpen,
		TechStack:             meta.TechStack,
		Season:                v.cfg.Project.Season,
		Industry:              v.industryFor(slug, meta.Industry),
	}
}

// industryFor prefers the curated company_industries mapping over the
// model's guess.
func (v *Validator) industryFor(slug, fromModel string) models.IndustrySector {
	if curated, ok := v.cfg.Industries[slug]; ok {
		return models.ParseIndustry(curated)
	}
	return models.ParseIndustry(fromModel)
}
