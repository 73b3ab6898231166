// Package dedup resolves listing identity across sources. Three stages run
// in fixed order over one in-memory snapshot: content-hash identity, URL
// identity, then fuzzy (typo and rename tolerant) identity. Each stage
// consumes the previous stage's survivors; the pass is synchronous and
// owns the snapshot exclusively.
package dedup

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
)

var tracer = telemetry.GetTracer("internboard/dedup")

// Counts reports removals per stage, never just a total, so operators can
// tell which identity rule caused the shrinkage.
type Counts struct {
	Hash  int
	URL   int
	Fuzzy int
}

func (c Counts) Total() int {
	return c.Hash + c.URL + c.Fuzzy
}

// Deduplicate runs the three stages over a snapshot and returns the
// survivors plus per-stage removal counts. Pure: no I/O, no mutation of
// the input slice's elements.
func Deduplicate(listings []models.Listing, archived mapset.Set[string]) ([]models.Listing, Counts) {
	if len(listings) == 0 {
		return listings, Counts{}
	}

	var counts Counts
	listings, counts.Hash = ByHash(listings)
	listings, counts.URL = ByURL(listings)
	listings, counts.Fuzzy = Fuzzy(listings, archived)
	return listings, counts
}

// Snapshot is the persistence collaborator: it loads the canonical listing
// collection and the archived-id set, and persists the surviving subset.
type Snapshot interface {
	LoadJobs(ctx context.Context) (*models.Database, error)
	SaveJobs(ctx context.Context, db *models.Database) error
	ArchivedIDs(ctx context.Context) (mapset.Set[string], error)
}

// Engine glues the pure pass to the store: load, deduplicate, persist.
type Engine struct {
	store  Snapshot
	logger *zap.Logger
}

func NewEngine(store Snapshot, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Run executes one full dedup pass. An empty collection is a trivial
// success: nothing is written back.
func (e *Engine) Run(ctx context.Context) (Counts, error) {
	ctx, span := tracer.Start(ctx, "Dedup.Run")
	defer span.End()

	db, err := e.store.LoadJobs(ctx)
	if err != nil {
		span.RecordError(err)
		return Counts{}, err
	}

	if len(db.Listings) == 0 {
		e.logger.Info("no listings to deduplicate")
		return Counts{}, nil
	}

	e.logger.Info("starting deduplication", zap.Int("listings", len(db.Listings)))

	archived, err := e.store.ArchivedIDs(ctx)
	if err != nil {
		span.RecordError(err)
		return Counts{}, err
	}

	survivors, counts := Deduplicate(db.Listings, archived)

	span.SetAttributes(
		telemetry.Int("dedup.removed_hash", counts.Hash),
		telemetry.Int("dedup.removed_url", counts.URL),
		telemetry.Int("dedup.removed_fuzzy", counts.Fuzzy),
	)
	e.logger.Info("deduplication complete",
		zap.Int("hash_removed", counts.Hash),
		zap.Int("url_removed", counts.URL),
		zap.Int("fuzzy_removed", counts.Fuzzy),
		zap.Int("total_removed", counts.Total()),
		zap.Int("surviving", len(survivors)))

	db.Listings = survivors
	if err := e.store.SaveJobs(ctx, db); err != nil {
		span.RecordError(err)
		return counts, err
	}

	return counts, nil
}
