// Package issues ingests community submissions: open GitHub issues with
// the new-internship label are parsed as issue forms, validated, added to
// the database, and closed with a comment either way.
package issues

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/errors"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/store"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/validate"
)

var tracer = telemetry.GetTracer("internboard/issues")

const (
	githubAPIBase  = "https://api.github.com"
	intakeLabel    = "new-internship"
	acceptComment  = "Thanks! This posting has been added to the board and will appear in the next README update."
	rejectComment  = "Thanks for the submission, but it could not be parsed automatically: %s\n\nPlease re-submit using the issue form."
	duplicateReply = "Thanks! This posting is already on the board."
)

type Intake struct {
	repo    string
	token   string
	season  string
	store   *store.Store
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

func New(cfg *config.Config, st *store.Store, logger *zap.Logger) *Intake {
	return &Intake{
		repo:    cfg.Project.GitHubRepo,
		token:   cfg.Infra.GitHubToken,
		season:  cfg.Project.Season,
		store:   st,
		client:  &http.Client{Timeout: cfg.Infra.HTTPTimeout},
		baseURL: githubAPIBase,
		logger:  logger,
	}
}

type issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Run processes all open intake issues and returns how many listings were
// accepted. Running without a repo or token configured is a no-op.
func (in *Intake) Run(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "IssueIntake")
	defer span.End()

	if in.repo == "" || in.token == "" {
		in.logger.Debug("issue intake not configured, skipping")
		return 0, nil
	}

	issues, err := in.fetchOpenIssues(ctx)
	if err != nil {
		return 0, err
	}
	if len(issues) == 0 {
		return 0, nil
	}

	db, err := in.store.LoadJobs(ctx)
	if err != nil {
		return 0, err
	}
	known := map[string]bool{}
	for _, l := range db.Listings {
		known[l.ID] = true
	}

	accepted := 0
	for _, iss := range issues {
		sub, err := ParseIssueForm(iss.Body)
		if err != nil {
			in.logger.Warn("rejecting malformed submission",
				zap.Int("issue", iss.Number),
				zap.Error(err))
			in.closeWithComment(ctx, iss.Number, fmt.Sprintf(rejectComment, err))
			continue
		}

		listing := in.buildListing(sub)
		if known[listing.ID] {
			in.closeWithComment(ctx, iss.Number, duplicateReply)
			continue
		}

		known[listing.ID] = true
		db.Listings = append(db.Listings, listing)
		accepted++
		in.closeWithComment(ctx, iss.Number, acceptComment)
		in.logger.Info("accepted community submission",
			zap.Int("issue", iss.Number),
			zap.String("company", listing.Company),
			zap.String("role", listing.Role))
	}

	span.SetAttributes(
		telemetry.Int("issues.processed", len(issues)),
		telemetry.Int("issues.accepted", accepted),
	)

	if accepted == 0 {
		return 0, nil
	}
	if err := in.store.SaveJobs(ctx, db); err != nil {
		return accepted, err
	}
	return accepted, nil
}

func (in *Intake) buildListing(sub Submission) models.Listing {
	locations := validate.SplitLocations(sub.Location)
	today := models.Today()

	// A citizenship requirement trumps a sponsorship claim when both
	// boxes are checked.
	sponsorship := models.SponsorshipUnknown
	switch {
	case sub.RequiresUSCitizenship:
		sponsorship = models.SponsorshipUSCitizenship
	case sub.OffersSponsorship:
		sponsorship = models.SponsorshipSponsors
	}

	return models.Listing{
		ID:                    models.ListingID(sub.Company, sub.Role, locations),
		Company:               sub.Company,
		CompanySlug:           models.Slugify(sub.Company),
		Role:                  sub.Role,
		Category:              categoryFromForm(sub.Category),
		Locations:             locations,
		ApplyURL:              sub.ApplyURL,
		Sponsorship:           sponsorship,
		RequiresUSCitizenship: sub.RequiresUSCitizenship,
		RequiresAdvDegree:     sub.RequiresAdvDegree,
		GraduateFriendly:      !sub.RequiresAdvDegree,
		RemoteFriendly:        sub.RemoteFriendly,
		OpenToInternational:   sub.OpenToInternational,
		DateAdded:             today,
		DateLastVerified:      today,
		Source:                "community",
		Status:                models.StatusOpen,
		TechStack:             []string{},
		Season:                in.season,
		Industry:              models.IndustryOther,
	}
}

func (in *Intake) fetchOpenIssues(ctx context.Context) ([]issue, error) {
	url := fmt.Sprintf("%s/repos/%s/issues?labels=%s&state=open&per_page=50",
		in.baseURL, in.repo, intakeLabel)

	body, err := in.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var issues []issue
	if err := json.Unmarshal(body, &issues); err != nil {
		return nil, fmt.Errorf("parsing issue list: %w", err)
	}
	return issues, nil
}

// closeWithComment is best-effort: a failed comment or close is logged,
// the issue will simply be reprocessed next run.
func (in *Intake) closeWithComment(ctx context.Context, number int, comment string) {
	commentURL := fmt.Sprintf("%s/repos/%s/issues/%d/comments", in.baseURL, in.repo, number)
	payload, _ := json.Marshal(map[string]string{"body": comment})
	if _, err := in.doRequest(ctx, http.MethodPost, commentURL, payload); err != nil {
		in.logger.Error("failed to comment on issue", zap.Int("issue", number), zap.Error(err))
		return
	}

	closeURL := fmt.Sprintf("%s/repos/%s/issues/%d", in.baseURL, in.repo, number)
	payload, _ = json.Marshal(map[string]string{"state": "closed"})
	if _, err := in.doRequest(ctx, http.MethodPatch, closeURL, payload); err != nil {
		in.logger.Error("failed to close issue", zap.Int("issue", number), zap.Error(err))
	}
}

func (in *Intake) doRequest(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+in.token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := in.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable(fmt.Sprintf("github API %s %s", method, url), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading github response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, errors.Unavailable(
			fmt.Sprintf("github API %s %s returned %d", method, url, resp.StatusCode), nil)
	}
	return body, nil
}
