package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// RawListing is a listing as discovered from a source, before AI
// validation and enrichment.
type RawListing struct {
	Company      string    `json:"company"`
	CompanySlug  string    `json:"company_slug"`
	Title        string    `json:"title"`
	Location     string    `json:"location"`
	URL          string    `json:"url"`
	Source       string    `json:"source"`
	IsFaangPlus  bool      `json:"is_faang_plus"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// ContentHash returns the sha256 of normalized company|title|location,
// used both for known-listing skips and as the enrichment cache key.
func (r RawListing) ContentHash() string {
	raw := strings.ToLower(strings.TrimSpace(r.Company)) + "|" +
		strings.ToLower(strings.TrimSpace(r.Title)) + "|" +
		strings.ToLower(strings.TrimSpace(r.Location))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RawSnapshot is the on-disk shape of a raw_discovery_<timestamp>.json file.
type RawSnapshot struct {
	Listings     []RawListing   `json:"listings"`
	DiscoveredAt time.Time      `json:"discovered_at"`
	SourceCounts map[string]int `json:"source_counts,omitempty"`
}

func (r RawSnapshot) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}
