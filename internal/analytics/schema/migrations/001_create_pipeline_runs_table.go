package migrations

import "github.com/ctsc/southeast-tech-internships-2026-2027/internal/analytics/schema"

var CreatePipelineRunsTable = schema.Migration{
	Version:     1,
	Description: "Create pipeline_runs table",
	Up: `
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id UUID,
			mode String,
			started_at DateTime,
			duration_ms Int64,
			sources_total Int32,
			discovered Int32,
			added Int32,
			dedup_hash_removed Int32,
			dedup_url_removed Int32,
			dedup_fuzzy_removed Int32,
			links_checked Int32,
			links_closed Int32,
			archived Int32,
			steps_failed Int32,
			PRIMARY KEY (run_id)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(started_at)
		ORDER BY (run_id, started_at)
		SETTINGS index_granularity = 8192
	`,
	Down: `DROP TABLE IF EXISTS pipeline_runs`,
}

// All returns migrations in apply order.
func All() []schema.Migration {
	return []schema.Migration{
		CreatePipelineRunsTable,
	}
}
