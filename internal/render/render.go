// Package render produces the public README from the job database:
// categorized markdown tables, a Georgia/Southeast spotlight section, a
// badge legend, and relative posting ages.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/store"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
)

var tracer = telemetry.GetTracer("internboard/render")

var categoryOrder = []struct {
	category models.RoleCategory
	heading  string
}{
	{models.CategorySWE, "Software Engineering"},
	{models.CategoryMLAI, "Machine Learning & AI"},
	{models.CategoryDataScience, "Data Science & Analytics"},
	{models.CategoryQuant, "Quantitative Finance"},
	{models.CategoryHardware, "Hardware & Embedded"},
	{models.CategoryPM, "Product Management"},
	{models.CategoryOther, "Other Roles"},
}

type Renderer struct {
	cfg    *config.Config
	store  *store.Store
	output string
	logger *zap.Logger
}

func New(cfg *config.Config, st *store.Store, output string, logger *zap.Logger) *Renderer {
	if output == "" {
		output = "README.md"
	}
	return &Renderer{cfg: cfg, store: st, output: output, logger: logger}
}

// Run renders the README from the current database and writes it out.
func (r *Renderer) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "RenderReadme")
	defer span.End()

	db, err := r.store.LoadJobs(ctx)
	if err != nil {
		return err
	}

	markdown := r.Render(db, models.Today())
	if err := ValidateTables(markdown); err != nil {
		return fmt.Errorf("rendered README failed validation: %w", err)
	}

	tmp := r.output + ".tmp"
	if err := os.WriteFile(tmp, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.output); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}

	span.SetAttributes(telemetry.Int("listings.rendered", len(db.Listings)))
	r.logger.Info("rendered README",
		zap.String("path", filepath.Clean(r.output)),
		zap.Int("listings", len(db.Listings)),
		zap.Int("open", db.TotalOpen))
	return nil
}

// Render builds the full README markdown. Pure; now fixes the relative
// dates so output is reproducible in tests.
func (r *Renderer) Render(db *models.Database, now models.Date) string {
	var b strings.Builder

	name := r.cfg.Project.Name
	if name == "" {
		name = "Tech Internships"
	}

	open := 0
	for _, l := range db.Listings {
		if l.Status == models.StatusOpen {
			open++
		}
	}

	fmt.Fprintf(&b, "# %s\n\n", name)
	fmt.Fprintf(&b, "**%d open positions** · Last updated: %s\n\n", open, now.String())
	b.WriteString(legend)

	if r.cfg.GeorgiaFocus.HighlightGeorgia {
		if georgia := r.filterGeorgia(db.Listings); len(georgia) > 0 {
			b.WriteString("## 🍑 Georgia & Southeast Spotlight\n\n")
			writeTable(&b, georgia, now)
		}
	}

	for _, section := range categoryOrder {
		listings := filterCategory(db.Listings, section.category)
		if len(listings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", section.heading)
		writeTable(&b, listings, now)
	}

	b.WriteString(footer)
	return b.String()
}

const legend = `**Legend:** ⭐ FAANG+ · 🛂 No sponsorship · 🇺🇸 Requires US citizenship · 🎓 Advanced degree · 🔒 Closed

`

const footer = `---

Found a posting we missed? [Open an issue](../../issues/new?template=new-internship.yml) and it will be reviewed automatically.
`

func writeTable(b *strings.Builder, listings []models.Listing, now models.Date) {
	b.WriteString("| Company | Role | Location | Apply | Added |\n")
	b.WriteString("| ------- | ---- | -------- | ----- | ----- |\n")
	for _, l := range listings {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			companyCell(l), roleCell(l), locationCell(l), applyCell(l), RelativeDate(l.DateAdded, now))
	}
	b.WriteString("\n")
}

func companyCell(l models.Listing) string {
	name := EscapeCell(l.Company)
	if l.IsFaangPlus {
		return "**" + name + "** ⭐"
	}
	return name
}

func roleCell(l models.Listing) string {
	role := EscapeCell(l.Role)
	var badges []string
	if l.Sponsorship == models.SponsorshipNone {
		badges = append(badges, "🛂")
	}
	if l.RequiresUSCitizenship {
		badges = append(badges, "🇺🇸")
	}
	if l.RequiresAdvDegree {
		badges = append(badges, "🎓")
	}
	if len(badges) == 0 {
		return role
	}
	return role + " " + strings.Join(badges, " ")
}

func locationCell(l models.Listing) string {
	if len(l.Locations) == 0 {
		return "—"
	}
	escaped := make([]string, len(l.Locations))
	for i, loc := range l.Locations {
		escaped[i] = EscapeCell(loc)
	}
	return strings.Join(escaped, "<br>")
}

func applyCell(l models.Listing) string {
	if l.Status == models.StatusClosed {
		return "🔒 Closed"
	}
	return fmt.Sprintf("[Apply](%s)", l.ApplyURL)
}

// RelativeDate renders how long ago a date was: "today", "3d ago", then
// the plain date once it stops being news.
func RelativeDate(d, now models.Date) string {
	days := d.DaysSince(now)
	switch {
	case days <= 0:
		return "today"
	case days < 31:
		return fmt.Sprintf("%dd ago", days)
	default:
		return d.Format("Jan 02")
	}
}

// EscapeCell makes arbitrary text safe inside a markdown table cell.
func EscapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func filterCategory(listings []models.Listing, category models.RoleCategory) []models.Listing {
	var out []models.Listing
	for _, l := range listings {
		if l.Category == category {
			out = append(out, l)
		}
	}
	return out
}

func (r *Renderer) filterGeorgia(listings []models.Listing) []models.Listing {
	priority := r.cfg.GeorgiaFocus.PriorityLocations
	if len(priority) == 0 {
		return nil
	}

	var out []models.Listing
	for _, l := range listings {
		if matchesAnyLocation(l, priority) {
			out = append(out, l)
		}
	}
	return out
}

func matchesAnyLocation(l models.Listing, priority []string) bool {
	for _, loc := range l.Locations {
		lower := strings.ToLower(loc)
		for _, p := range priority {
			if strings.Contains(lower, strings.ToLower(p)) {
				return true
			}
		}
	}
	return false
}

// ValidateTables checks that every table row in the document has the same
// number of cells as its header, catching escaping bugs before a broken
// README ships.
func ValidateTables(markdown string) error {
	lines := strings.Split(markdown, "\n")
	expected := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			expected = 0
			continue
		}

		cells := strings.Count(trimmed, "|") - strings.Count(trimmed, `\|`)
		if expected == 0 {
			expected = cells
			continue
		}
		if cells != expected {
			return fmt.Errorf("table row %d has %d separators, header has %d: %q",
				i+1, cells, expected, trimmed)
		}
	}
	return nil
}
