package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

const leverAPIBase = "https://api.lever.co/v0/postings"

// LeverSource pulls postings from the public Lever postings API for one
// configured company slug.
type LeverSource struct {
	board   config.LeverBoard
	fetcher *fetcher
	filter  *TitleFilter
	baseURL string
}

func NewLeverSource(board config.LeverBoard, f *fetcher, filter *TitleFilter) *LeverSource {
	return &LeverSource{board: board, fetcher: f, filter: filter, baseURL: leverAPIBase}
}

func (s *LeverSource) Name() string {
	return "lever:" + s.board.CompanySlug
}

type leverPosting struct {
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	Categories struct {
		Location string `json:"location"`
	} `json:"categories"`
}

func (s *LeverSource) Fetch(ctx context.Context) ([]models.RawListing, error) {
	url := fmt.Sprintf("%s/%s?mode=json", s.baseURL, s.board.CompanySlug)
	body, err := s.fetcher.get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var postings []leverPosting
	if err := json.Unmarshal(body, &postings); err != nil {
		return nil, fmt.Errorf("parsing lever board %s: %w", s.board.CompanySlug, err)
	}

	now := time.Now().UTC()
	var out []models.RawListing
	for _, posting := range postings {
		raw := models.RawListing{
			Company:      s.board.Company,
			CompanySlug:  models.Slugify(s.board.Company),
			Title:        posting.Text,
			Location:     posting.Categories.Location,
			URL:          posting.HostedURL,
			Source:       s.Name(),
			IsFaangPlus:  s.board.IsFaangPlus,
			DiscoveredAt: now,
		}
		if s.filter.Keep(raw) {
			out = append(out, raw)
		}
	}
	return out, nil
}
