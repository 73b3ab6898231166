package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
project:
  name: Southeast Tech Internships
  season: summer_2026
  github_repo: ctsc/southeast-tech-internships-2026-2027
  data_dir: data

georgia_focus:
  highlight_georgia: true
  priority_locations:
    - Atlanta
    - Georgia

greenhouse_boards:
  - token: stripe
    company: Stripe
    is_faang_plus: true

lever_boards:
  - company_slug: ramp
    company: Ramp

filters:
  keywords_include:
    - intern
    - co-op
  keywords_exclude:
    - unpaid

ai:
  model: gemini-2.0-flash
  max_calls_per_run: 50

company_industries:
  stripe: fintech
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "Southeast Tech Internships", cfg.Project.Name)
	assert.True(t, cfg.GeorgiaFocus.HighlightGeorgia)
	require.Len(t, cfg.Greenhouse, 1)
	assert.Equal(t, "stripe", cfg.Greenhouse[0].Token)
	assert.True(t, cfg.Greenhouse[0].IsFaangPlus)
	require.Len(t, cfg.Lever, 1)
	assert.Equal(t, []string{"intern", "co-op"}, cfg.Filters.KeywordsInclude)
	assert.Equal(t, 50, cfg.AI.MaxCallsPerRun)
	assert.Equal(t, "fintech", cfg.Industries["stripe"])
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "project:\n  name: Minimal\n"))
	require.NoError(t, err)

	assert.Equal(t, "summer_2026", cfg.Project.Season)
	assert.Equal(t, "data", cfg.Project.DataDir)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, 1024, cfg.AI.MaxTokens)
	assert.Equal(t, 200, cfg.AI.MaxCallsPerRun)
	assert.Equal(t, 6, cfg.Schedule.UpdateIntervalHours)
	assert.Equal(t, 24, cfg.Schedule.LinkCheckIntervalHours)
	assert.Equal(t, 7, cfg.Schedule.ArchiveAfterDays)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAMLErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "project: [unclosed"))
	assert.Error(t, err)
}

func TestInfraEnvOverrides(t *testing.T) {
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("NATS_URL", "nats://example:4222")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg, err := Load(writeConfig(t, "project:\n  name: Minimal\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Infra.NATSEnabled)
	assert.Equal(t, "nats://example:4222", cfg.Infra.NATSURL)
	assert.Equal(t, 3, cfg.Infra.RedisDB)
	assert.Equal(t, "5s", cfg.Infra.HTTPTimeout.String())
}
