// Package store owns the on-disk document database: data/jobs.json holds
// the active listings, data/archived.json the long-term archive, and
// data/link_health.json the link checker's failure counters. Writes are
// atomic (tmp file + rename) so a crashed run never leaves a truncated
// database behind.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

const (
	jobsFile       = "jobs.json"
	archivedFile   = "archived.json"
	linkHealthFile = "link_health.json"
	rawPrefix      = "raw_discovery_"
)

type Store struct {
	dataDir string
	logger  *zap.Logger
}

func New(dataDir string, logger *zap.Logger) *Store {
	return &Store{dataDir: dataDir, logger: logger}
}

// LoadJobs reads data/jobs.json. A missing or empty file yields an empty
// database, not an error.
func (s *Store) LoadJobs(ctx context.Context) (*models.Database, error) {
	return s.loadDatabase(filepath.Join(s.dataDir, jobsFile))
}

// SaveJobs refreshes stats and last_updated, then persists atomically.
func (s *Store) SaveJobs(ctx context.Context, db *models.Database) error {
	db.LastUpdated = time.Now().UTC()
	db.ComputeStats()

	if err := s.writeJSON(filepath.Join(s.dataDir, jobsFile), db); err != nil {
		return err
	}
	s.logger.Info("saved jobs.json",
		zap.Int("listings", len(db.Listings)),
		zap.Int("open", db.TotalOpen))
	return nil
}

// LoadArchive reads data/archived.json, returning an empty database when
// no archive exists yet.
func (s *Store) LoadArchive(ctx context.Context) (*models.Database, error) {
	return s.loadDatabase(filepath.Join(s.dataDir, archivedFile))
}

func (s *Store) SaveArchive(ctx context.Context, db *models.Database) error {
	db.LastUpdated = time.Now().UTC()
	db.ComputeStats()
	return s.writeJSON(filepath.Join(s.dataDir, archivedFile), db)
}

// ArchivedIDs returns the set of content hashes recorded in the archive.
// A missing archive means no exemptions, not a failure.
func (s *Store) ArchivedIDs(ctx context.Context) (mapset.Set[string], error) {
	ids := mapset.NewSet[string]()

	db, err := s.LoadArchive(ctx)
	if err != nil {
		return nil, err
	}
	for _, listing := range db.Listings {
		if listing.ID != "" {
			ids.Add(listing.ID)
		}
	}
	return ids, nil
}

func (s *Store) loadDatabase(path string) (*models.Database, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.logger.Debug("database file not found, starting empty", zap.String("path", path))
		return &models.Database{Listings: []models.Listing{}, LastUpdated: time.Now().UTC()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	db := &models.Database{}
	if err := json.Unmarshal(raw, db); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if db.Listings == nil {
		db.Listings = []models.Listing{}
	}
	return db, nil
}

// SaveRawSnapshot writes a timestamped raw discovery file and returns its
// path.
func (s *Store) SaveRawSnapshot(ctx context.Context, snap *models.RawSnapshot) (string, error) {
	name := fmt.Sprintf("%s%s.json", rawPrefix, snap.DiscoveredAt.UTC().Format("20060102_150405"))
	path := filepath.Join(s.dataDir, name)
	if err := s.writeJSON(path, snap); err != nil {
		return "", err
	}
	s.logger.Info("saved raw discovery snapshot",
		zap.String("file", name),
		zap.Int("listings", len(snap.Listings)))
	return path, nil
}

// LoadLatestRawSnapshot finds the lexicographically newest
// raw_discovery_*.json file. Returns (nil, "", nil) when none exist.
func (s *Store) LoadLatestRawSnapshot(ctx context.Context) (*models.RawSnapshot, string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, rawPrefix+"*.json"))
	if err != nil {
		return nil, "", err
	}
	if len(matches) == 0 {
		return nil, "", nil
	}
	sort.Strings(matches)
	latest := matches[len(matches)-1]

	raw, err := os.ReadFile(latest)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", latest, err)
	}
	snap := &models.RawSnapshot{}
	if err := json.Unmarshal(raw, snap); err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", latest, err)
	}
	return snap, latest, nil
}

func (s *Store) writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}
