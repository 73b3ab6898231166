package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// HealthRecord tracks consecutive link-check failures for one listing.
// A listing must fail two checks across two runs before it is closed.
type HealthRecord struct {
	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastChecked         string `json:"last_checked"`
}

// LoadLinkHealth reads data/link_health.json, starting fresh when the file
// is missing or unreadable.
func (s *Store) LoadLinkHealth(ctx context.Context) (map[string]HealthRecord, error) {
	path := filepath.Join(s.dataDir, linkHealthFile)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.logger.Debug("link_health.json not found, starting fresh")
		return map[string]HealthRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	health := map[string]HealthRecord{}
	if err := json.Unmarshal(raw, &health); err != nil {
		s.logger.Error("failed to parse link_health.json, starting fresh", zap.Error(err))
		return map[string]HealthRecord{}, nil
	}
	return health, nil
}

func (s *Store) SaveLinkHealth(ctx context.Context, health map[string]HealthRecord) error {
	if err := s.writeJSON(filepath.Join(s.dataDir, linkHealthFile), health); err != nil {
		return err
	}
	s.logger.Info("saved link_health.json", zap.Int("entries", len(health)))
	return nil
}
