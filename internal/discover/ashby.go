package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

const ashbyAPIBase = "https://api.ashbyhq.com/posting-api/job-board"

// AshbySource pulls postings from the public Ashby job board API. Unlisted
// postings are skipped.
type AshbySource struct {
	board   config.AshbyBoard
	fetcher *fetcher
	filter  *TitleFilter
	baseURL string
}

func NewAshbySource(board config.AshbyBoard, f *fetcher, filter *TitleFilter) *AshbySource {
	return &AshbySource{board: board, fetcher: f, filter: filter, baseURL: ashbyAPIBase}
}

func (s *AshbySource) Name() string {
	return "ashby:" + s.board.CompanySlug
}

type ashbyJob struct {
	Title    string `json:"title"`
	JobURL   string `json:"jobUrl"`
	Location string `json:"location"`
	IsListed bool   `json:"isListed"`
}

type ashbyBoardResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

func (s *AshbySource) Fetch(ctx context.Context) ([]models.RawListing, error) {
	url := fmt.Sprintf("%s/%s?includeCompensation=false", s.baseURL, s.board.CompanySlug)
	body, err := s.fetcher.get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var parsed ashbyBoardResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing ashby board %s: %w", s.board.CompanySlug, err)
	}

	now := time.Now().UTC()
	var out []models.RawListing
	for _, job := range parsed.Jobs {
		if !job.IsListed {
			continue
		}
		raw := models.RawListing{
			Company:      s.board.Company,
			CompanySlug:  models.Slugify(s.board.Company),
			Title:        job.Title,
			Location:     job.Location,
			URL:          job.JobURL,
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
