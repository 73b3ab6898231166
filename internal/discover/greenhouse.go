package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

const greenhouseAPIBase = "https://boards-api.greenhouse.io/v1/boards"

// GreenhouseSource pulls postings from the public Greenhouse job board API
// for one configured board token.
type GreenhouseSource struct {
	board   config.GreenhouseBoard
	fetcher *fetcher
	filter  *TitleFilter
	baseURL string
}

func NewGreenhouseSource(board config.GreenhouseBoard, f *fetcher, filter *TitleFilter) *GreenhouseSource {
	return &GreenhouseSource{board: board, fetcher: f, filter: filter, baseURL: greenhouseAPIBase}
}

func (s *GreenhouseSource) Name() string {
	return "greenhouse:" + s.board.Token
}

type greenhouseJob struct {
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

type greenhouseBoardResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

func (s *GreenhouseSource) Fetch(ctx context.Context) ([]models.RawListing, error) {
	url := fmt.Sprintf("%s/%s/jobs", s.baseURL, s.board.Token)
	body, err := s.fetcher.get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var parsed greenhouseBoardResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing greenhouse board %s: %w", s.board.Token, err)
	}

	now := time.Now().UTC()
	var out []models.RawListing
	for _, job := range parsed.Jobs {
		raw := models.RawListing{
			Company:      s.board.Company,
			CompanySlug:  models.Slugify(s.board.Company),
			Title:        job.Title,
			Location:     job.Location.Name,
			URL:          job.AbsoluteURL,
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
