package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a day-granularity timestamp serialized as YYYY-MM-DD, matching
// the on-disk jobs.json schema.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// DaysSince returns the number of whole days between d and now.
func (d Date) DaysSince(now Date) int {
	return int(now.Sub(d.Time).Hours() / 24)
}

// Listing is a single validated internship posting. The ID is a content
// hash of normalized (company, role, locations); it is not guaranteed
// unique after multi-source ingestion, which is exactly what the hash
// dedup stage relies on.
type Listing struct {
	ID                    string            `json:"id"`
	Company               string            `json:"company"`
	CompanySlug           string            `json:"company_slug"`
	Role                  string            `json:"role"`
	Category              RoleCategory      `json:"category"`
	Locations             []string          `json:"locations"`
	ApplyURL              string            `json:"apply_url"`
	Sponsorship           SponsorshipStatus `json:"sponsorship"`
	RequiresUSCitizenship bool              `json:"requires_us_citizenship"`
	IsFaangPlus           bool              `json:"is_faang_plus"`
	RequiresAdvDegree     bool              `json:"requires_advanced_degree"`
	GraduateFriendly      bool              `json:"graduate_friendly"`
	RemoteFriendly        bool              `json:"remote_friendly"`
	OpenToInternational   bool              `json:"open_to_international"`
	DateAdded             Date              `json:"date_added"`
	DateLastVerified      Date              `json:"date_last_verified"`
	Source                string            `json:"source"`
	Status                ListingStatus     `json:"status"`
	TechStack             []string          `json:"tech_stack"`
	Season                string            `json:"season"`
	Industry              IndustrySector    `json:"industry"`
}

// Database is the top-level container persisted to data/jobs.json.
type Database struct {
	Listings    []Listing `json:"listings"`
	LastUpdated time.Time `json:"last_updated"`
	TotalOpen   int       `json:"total_open"`
}

// ComputeStats recomputes the open-listing count from current listings.
func (db *Database) ComputeStats() {
	open := 0
	for _, l := range db.Listings {
		if l.Status == StatusOpen {
			open++
		}
	}
	db.TotalOpen = open
}

// ListingID derives the deterministic content hash for a listing:
// sha256 of lowercased company|role|sorted locations.
func ListingID(company, role string, locations []string) string {
	normalized := make([]string, 0, len(locations))
	for _, loc := range locations {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(loc)))
	}
	sort.Strings(normalized)

	raw := strings.ToLower(strings.TrimSpace(company)) + "|" +
		strings.ToLower(strings.TrimSpace(role)) + "|" +
		strings.Join(normalized, ",")

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Slugify converts a company name to the kebab-case slug used in URLs
// and config keys.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, ".", "")
	slug = strings.ReplaceAll(slug, "'", "")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
