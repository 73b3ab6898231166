package issues

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/store"
)

const validIssueBody = `### Company

Stripe

### Role

Software Engineer Intern

### Location

Atlanta, GA

### Application URL

https://stripe.com/jobs/123

### Category

Software Engineering

### Flags

- [x] Offers visa sponsorship
- [ ] Requires U.S. citizenship
- [ ] Remote friendly
- [x] Requires advanced degree
- [ ] Open to international students
`

func TestParseIssueForm(t *testing.T) {
	sub, err := ParseIssueForm(validIssueBody)
	require.NoError(t, err)

	assert.Equal(t, "Stripe", sub.Company)
	assert.Equal(t, "Software Engineer Intern", sub.Role)
	assert.Equal(t, "Atlanta, GA", sub.Location)
	assert.Equal(t, "https://stripe.com/jobs/123", sub.ApplyURL)
	assert.Equal(t, "Software Engineering", sub.Category)
	assert.True(t, sub.OffersSponsorship)
	assert.False(t, sub.RequiresUSCitizenship)
	assert.False(t, sub.RemoteFriendly)
	assert.True(t, sub.RequiresAdvDegree)
	assert.False(t, sub.OpenToInternational)
}

func TestCategoryFromForm(t *testing.T) {
	tests := []struct {
		in   string
		want models.RoleCategory
	}{
		{"Software Engineering", models.CategorySWE},
		{"ML / AI / Data Science", models.CategoryMLAI},
		{"Quantitative Finance", models.CategoryQuant},
		{"Product Management", models.CategoryPM},
		{"Hardware Engineering", models.CategoryHardware},
		{"Other", models.CategoryOther},
		{"swe", models.CategorySWE},
		{"something else entirely", models.CategoryOther},
	}
	for _, tt := range tests {
		if got := categoryFromForm(tt.in); got != tt.want {
			t.Errorf("categoryFromForm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildListingAppliesFlags(t *testing.T) {
	in := &Intake{season: "summer_2026"}
	listing := in.buildListing(Submission{
		Company:               "Stripe",
		Role:                  "SWE Intern",
		Location:              "Atlanta, GA",
		ApplyURL:              "https://stripe.com/jobs/123",
		Category:              "Software Engineering",
		RequiresUSCitizenship: true,
		RequiresAdvDegree:     true,
		RemoteFriendly:        true,
	})

	assert.Equal(t, models.CategorySWE, listing.Category)
	assert.Equal(t, models.SponsorshipUSCitizenship, listing.Sponsorship)
	assert.True(t, listing.RequiresUSCitizenship)
	assert.True(t, listing.RequiresAdvDegree)
	assert.False(t, listing.GraduateFriendly)
	assert.True(t, listing.RemoteFriendly)
	assert.False(t, listing.OpenToInternational)
}

func TestBuildListingSponsorshipFromVisaFlag(t *testing.T) {
	in := &Intake{season: "summer_2026"}
	listing := in.buildListing(Submission{
		Company:             "Stripe",
		Role:                "SWE Intern",
		OffersSponsorship:   true,
		OpenToInternational: true,
	})

	assert.Equal(t, models.SponsorshipSponsors, listing.Sponsorship)
	assert.False(t, listing.RequiresUSCitizenship)
	assert.True(t, listing.GraduateFriendly)
	assert.True(t, listing.OpenToInternational)
}

func TestParseIssueFormMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing company", "### Role\n\nSWE Intern\n\n### Application URL\n\nhttps://x.co\n"},
		{"missing role", "### Company\n\nStripe\n\n### Application URL\n\nhttps://x.co\n"},
		{"missing url", "### Company\n\nStripe\n\n### Role\n\nSWE Intern\n"},
		{"no response url", "### Company\n\nStripe\n\n### Role\n\nSWE Intern\n\n### Application URL\n\n_No response_\n"},
		{"non-http url", "### Company\n\nStripe\n\n### Role\n\nSWE Intern\n\n### Application URL\n\njavascript:alert(1)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIssueForm(tt.body)
			assert.Error(t, err)
		})
	}
}

func TestSanitizeField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"**Stripe**", "Stripe"},
		{"`Stripe`", "Stripe"},
		{"# Stripe", "Stripe"},
		{"Stripe\x00Inc", "Stripe Inc"},
		{"  spaced   out  ", "spaced out"},
		{"_No response_", ""},
	}
	for _, tt := range tests {
		if got := sanitizeField(tt.in); got != tt.want {
			t.Errorf("sanitizeField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type intakeServer struct {
	issues   []issue
	comments map[int][]string
	closed   map[int]bool
	server   *httptest.Server
}

func newIntakeServer(t *testing.T, issues []issue) *intakeServer {
	s := &intakeServer{issues: issues, comments: map[int][]string{}, closed: map[int]bool{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/ctsc/board/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "new-internship", r.URL.Query().Get("labels"))
		json.NewEncoder(w).Encode(s.issues)
	})
	mux.HandleFunc("POST /repos/ctsc/board/issues/{number}/comments", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		n := atoiOrFail(t, r.PathValue("number"))
		s.comments[n] = append(s.comments[n], payload["body"])
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("PATCH /repos/ctsc/board/issues/{number}", func(w http.ResponseWriter, r *http.Request) {
		s.closed[atoiOrFail(t, r.PathValue("number"))] = true
	})

	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

func atoiOrFail(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

func testIntake(t *testing.T, srv *intakeServer) (*Intake, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir(), zap.NewNop())
	return &Intake{
		repo:    "ctsc/board",
		token:   "test-token",
		season:  "summer_2026",
		store:   st,
		client:  srv.server.Client(),
		baseURL: srv.server.URL,
		logger:  zap.NewNop(),
	}, st
}

func TestRunAcceptsValidSubmission(t *testing.T) {
	srv := newIntakeServer(t, []issue{{Number: 7, Title: "[New Internship]: Stripe", Body: validIssueBody}})
	in, st := testIntake(t, srv)

	accepted, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, accepted)

	db, err := st.LoadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, db.Listings, 1)
	assert.Equal(t, "Stripe", db.Listings[0].Company)
	assert.Equal(t, "community", db.Listings[0].Source)
	assert.Equal(t, models.CategorySWE, db.Listings[0].Category)
	assert.Equal(t, models.SponsorshipSponsors, db.Listings[0].Sponsorship)
	assert.True(t, db.Listings[0].RequiresAdvDegree)

	assert.True(t, srv.closed[7])
	require.Len(t, srv.comments[7], 1)
	assert.Contains(t, srv.comments[7][0], "added to the board")
}

func TestRunRejectsMalformedSubmission(t *testing.T) {
	srv := newIntakeServer(t, []issue{{Number: 8, Body: "free-form text, not the issue form"}})
	in, st := testIntake(t, srv)

	accepted, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, accepted)

	db, _ := st.LoadJobs(context.Background())
	assert.Empty(t, db.Listings)
	assert.True(t, srv.closed[8])
	require.Len(t, srv.comments[8], 1)
	assert.Contains(t, srv.comments[8][0], "could not be parsed")
}

func TestRunClosesDuplicateWithoutAdding(t *testing.T) {
	srv := newIntakeServer(t, []issue{{Number: 9, Body: validIssueBody}})
	in, st := testIntake(t, srv)

	existing := models.Listing{
		ID: models.ListingID("Stripe", "Software Engineer Intern", []string{"Atlanta, GA"}),
	}
	require.NoError(t, st.SaveJobs(context.Background(), &models.Database{Listings: []models.Listing{existing}}))

	accepted, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, accepted)
	assert.True(t, srv.closed[9])
	assert.Contains(t, srv.comments[9][0], "already on the board")
}

func TestRunUnconfiguredIsNoop(t *testing.T) {
	in := &Intake{logger: zap.NewNop()}
	accepted, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, accepted)
}
