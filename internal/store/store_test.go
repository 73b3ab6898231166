package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir(), zap.NewNop())
}

func TestLoadJobsMissingFileReturnsEmptyDatabase(t *testing.T) {
	s := testStore(t)

	db, err := s.LoadJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, db.Listings)
	assert.NotNil(t, db.Listings, "listings must be a non-nil empty slice")
}

func TestSaveAndLoadJobsRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	in := &models.Database{Listings: []models.Listing{
		{
			ID:        "l1",
			Company:   "Stripe",
			Role:      "SWE Intern",
			Locations: []string{"Atlanta, GA"},
			Status:    models.StatusOpen,
			DateAdded: models.NewDate(2026, time.January, 5),
		},
		{ID: "l2", Company: "Figma", Role: "Design Intern", Status: models.StatusClosed},
	}}
	require.NoError(t, s.SaveJobs(ctx, in))

	out, err := s.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, out.Listings, 2)
	assert.Equal(t, "2026-01-05", out.Listings[0].DateAdded.String())
	assert.Equal(t, 1, out.TotalOpen, "stats recomputed on save")
	assert.False(t, out.LastUpdated.IsZero())
}

func TestSaveJobsLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, zap.NewNop())
	require.NoError(t, s.SaveJobs(context.Background(), &models.Database{}))

	_, err := os.Stat(filepath.Join(dir, "jobs.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "jobs.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestArchivedIDsMissingArchiveIsEmptySet(t *testing.T) {
	s := testStore(t)

	ids, err := s.ArchivedIDs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ids.Cardinality())
}

func TestArchivedIDsCollectsIDs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveArchive(ctx, &models.Database{Listings: []models.Listing{
		{ID: "a1"}, {ID: "a2"}, {ID: ""},
	}}))

	ids, err := s.ArchivedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ids.Cardinality(), "blank ids are skipped")
	assert.True(t, ids.Contains("a1"))
	assert.True(t, ids.Contains("a2"))
}

func TestRawSnapshotLatestWins(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	older := &models.RawSnapshot{
		Listings:     []models.RawListing{{Company: "Old", Title: "Intern"}},
		DiscoveredAt: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
	}
	newer := &models.RawSnapshot{
		Listings:     []models.RawListing{{Company: "New", Title: "Intern"}},
		DiscoveredAt: time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC),
	}
	_, err := s.SaveRawSnapshot(ctx, older)
	require.NoError(t, err)
	_, err = s.SaveRawSnapshot(ctx, newer)
	require.NoError(t, err)

	snap, path, err := s.LoadLatestRawSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Contains(t, path, "raw_discovery_20260102")
	require.Len(t, snap.Listings, 1)
	assert.Equal(t, "New", snap.Listings[0].Company)
}

func TestLoadLatestRawSnapshotNoneExists(t *testing.T) {
	s := testStore(t)

	snap, path, err := s.LoadLatestRawSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Empty(t, path)
}

func TestLinkHealthRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	health, err := s.LoadLinkHealth(ctx)
	require.NoError(t, err)
	assert.Empty(t, health)

	health["l1"] = HealthRecord{ConsecutiveFailures: 1, LastChecked: "2026-01-05T00:00:00Z"}
	require.NoError(t, s.SaveLinkHealth(ctx, health))

	loaded, err := s.LoadLinkHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, health, loaded)
}

func TestLoadLinkHealthCorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, zap.NewNop())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "link_health.json"), []byte("{not json"), 0o644))

	health, err := s.LoadLinkHealth(context.Background())
	require.NoError(t, err)
	assert.Empty(t, health)
}
