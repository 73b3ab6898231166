package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

var renderNow = models.NewDate(2026, time.February, 1)

func testRenderer() *Renderer {
	cfg := &config.Config{}
	cfg.Project.Name = "Southeast Tech Internships"
	cfg.GeorgiaFocus.HighlightGeorgia = true
	cfg.GeorgiaFocus.PriorityLocations = []string{"Atlanta", "Georgia"}
	return &Renderer{cfg: cfg}
}

func sampleListing() models.Listing {
	return models.Listing{
		ID:        "l1",
		Company:   "Stripe",
		Role:      "SWE Intern",
		Category:  models.CategorySWE,
		Locations: []string{"Atlanta, GA"},
		ApplyURL:  "https://stripe.com/jobs/1",
		Status:    models.StatusOpen,
		DateAdded: models.NewDate(2026, time.January, 29),
	}
}

func TestRenderBasicStructure(t *testing.T) {
	r := testRenderer()
	out := r.Render(&models.Database{Listings: []models.Listing{sampleListing()}}, renderNow)

	assert.Contains(t, out, "# Southeast Tech Internships")
	assert.Contains(t, out, "**1 open positions**")
	assert.Contains(t, out, "**Legend:**")
	assert.Contains(t, out, "## Software Engineering")
	assert.Contains(t, out, "[Apply](https://stripe.com/jobs/1)")
	assert.Contains(t, out, "3d ago")
	require.NoError(t, ValidateTables(out))
}

func TestRenderGeorgiaSpotlight(t *testing.T) {
	atlanta := sampleListing()
	remote := sampleListing()
	remote.ID = "l2"
	remote.Company = "Figma"
	remote.Locations = []string{"Remote"}

	out := testRenderer().Render(&models.Database{Listings: []models.Listing{atlanta, remote}}, renderNow)

	spotlightIdx := strings.Index(out, "Georgia & Southeast Spotlight")
	require.GreaterOrEqual(t, spotlightIdx, 0)

	spotlight := out[spotlightIdx:strings.Index(out, "## Software Engineering")]
	assert.Contains(t, spotlight, "Stripe")
	assert.NotContains(t, spotlight, "Figma")
}

func TestRenderEmptyCategoriesOmitted(t *testing.T) {
	out := testRenderer().Render(&models.Database{Listings: []models.Listing{sampleListing()}}, renderNow)
	assert.NotContains(t, out, "## Quantitative Finance")
	assert.NotContains(t, out, "## Product Management")
}

func TestRenderClosedListingHasNoApplyLink(t *testing.T) {
	closed := sampleListing()
	closed.Status = models.StatusClosed

	out := testRenderer().Render(&models.Database{Listings: []models.Listing{closed}}, renderNow)
	assert.Contains(t, out, "🔒 Closed")
	assert.NotContains(t, out, "[Apply](")
	assert.Contains(t, out, "**0 open positions**")
}

func TestRenderBadges(t *testing.T) {
	l := sampleListing()
	l.IsFaangPlus = true
	l.Sponsorship = models.SponsorshipNone
	l.RequiresAdvDegree = true

	out := testRenderer().Render(&models.Database{Listings: []models.Listing{l}}, renderNow)
	assert.Contains(t, out, "**Stripe** ⭐")
	assert.Contains(t, out, "🛂")
	assert.Contains(t, out, "🎓")
}

func TestRenderEscapesPipesInCells(t *testing.T) {
	l := sampleListing()
	l.Role = "SWE Intern | Backend"

	out := testRenderer().Render(&models.Database{Listings: []models.Listing{l}}, renderNow)
	assert.Contains(t, out, `SWE Intern \| Backend`)
	require.NoError(t, ValidateTables(out), "escaped pipes must not break table shape")
}

func TestRelativeDate(t *testing.T) {
	tests := []struct {
		name string
		d    models.Date
		want string
	}{
		{"same day", renderNow, "today"},
		{"three days", models.NewDate(2026, time.January, 29), "3d ago"},
		{"thirty days", models.NewDate(2026, time.January, 2), "30d ago"},
		{"older shows date", models.NewDate(2025, time.November, 5), "Nov 05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDate(tt.d, renderNow))
		})
	}
}

func TestValidateTablesCatchesRaggedRows(t *testing.T) {
	good := "| a | b |\n| - | - |\n| 1 | 2 |\n"
	assert.NoError(t, ValidateTables(good))

	bad := "| a | b |\n| - | - |\n| 1 | 2 | 3 |\n"
	assert.Error(t, ValidateTables(bad))
}
