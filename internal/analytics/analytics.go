// Package analytics records one row per pipeline run in ClickHouse so
// run history (counts per step, dedup removals, durations) can be queried
// over time. The sink is optional: with ClickHouse disabled a no-op
// recorder is wired in.
package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/database"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
)

var tracer = telemetry.GetTracer("internboard/analytics")

// RunRecord is one pipeline run's outcome.
type RunRecord struct {
	RunID            string
	Mode             string
	StartedAt        time.Time
	DurationMs       int64
	SourcesTotal     int32
	Discovered       int32
	Added            int32
	DedupHashRemoved int32
	DedupURLRemoved  int32
	DedupFuzzRemoved int32
	LinksChecked     int32
	LinksClosed      int32
	Archived         int32
	StepsFailed      int32
}

type Recorder interface {
	RecordRun(ctx context.Context, record RunRecord) error
	Close() error
}

type clickhouseRecorder struct {
	db     *database.Database
	logger *zap.Logger
}

func NewRecorder(db *database.Database, logger *zap.Logger) Recorder {
	return &clickhouseRecorder{db: db, logger: logger}
}

func (r *clickhouseRecorder) RecordRun(ctx context.Context, record RunRecord) error {
	ctx, span := tracer.Start(ctx, "RecordRun")
	defer span.End()

	query := `
		INSERT INTO pipeline_runs (
			run_id, mode, started_at, duration_ms,
			sources_total, discovered, added,
			dedup_hash_removed, dedup_url_removed, dedup_fuzzy_removed,
			links_checked, links_closed, archived, steps_failed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := r.db.Conn().Exec(ctx, query,
		record.RunID,
		record.Mode,
		record.StartedAt,
		record.DurationMs,
		record.SourcesTotal,
		record.Discovered,
		record.Added,
		record.DedupHashRemoved,
		record.DedupURLRemoved,
		record.DedupFuzzRemoved,
		record.LinksChecked,
		record.LinksClosed,
		record.Archived,
		record.StepsFailed,
	)
	if err != nil {
		span.RecordError(err)
		r.logger.Error("failed to record pipeline run",
			zap.String("run_id", record.RunID),
			zap.Error(err))
		return err
	}

	r.logger.Debug("recorded pipeline run",
		zap.String("run_id", record.RunID),
		zap.String("mode", record.Mode))
	return nil
}

func (r *clickhouseRecorder) Close() error {
	return r.db.Close()
}

// NopRecorder satisfies Recorder when ClickHouse is disabled.
type NopRecorder struct{}

func (NopRecorder) RecordRun(ctx context.Context, record RunRecord) error { return nil }

func (NopRecorder) Close() error { return nil }
