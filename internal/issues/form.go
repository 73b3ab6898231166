package issues

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/errors"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

// Submission is a parsed new-internship issue form.
type Submission struct {
	Company               string
	Role                  string
	Location              string
	ApplyURL              string
	Category              string
	OffersSponsorship     bool
	RequiresUSCitizenship bool
	RequiresAdvDegree     bool
	RemoteFriendly        bool
	OpenToInternational   bool
}

var checkboxPattern = regexp.MustCompile(`(?m)^\s*-\s*\[([ xX])\]\s*(.+)$`)

// ParseIssueForm parses the markdown GitHub renders from an issue form:
// "### Field" headings followed by the submitted value, plus a checkbox
// list. Unanswered optional fields render as "_No response_".
func ParseIssueForm(body string) (Submission, error) {
	sections := splitSections(body)

	sub := Submission{
		Company:  sanitizeField(sections["company"]),
		Role:     sanitizeField(sections["role"]),
		Location: sanitizeField(sections["location"]),
		ApplyURL: strings.TrimSpace(sections["application url"]),
		Category: sanitizeField(sections["category"]),
	}

	for _, m := range checkboxPattern.FindAllStringSubmatch(body, -1) {
		checked := m[1] != " "
		label := strings.ToLower(m[2])
		switch {
		case strings.Contains(label, "visa"):
			sub.OffersSponsorship = checked
		case strings.Contains(label, "citizenship"):
			sub.RequiresUSCitizenship = checked
		case strings.Contains(label, "remote"):
			sub.RemoteFriendly = checked
		case strings.Contains(label, "advanced degree"):
			sub.RequiresAdvDegree = checked
		case strings.Contains(label, "international"):
			sub.OpenToInternational = checked
		}
	}

	if sub.Company == "" {
		return sub, errors.InvalidInput("issue form missing company", nil)
	}
	if sub.Role == "" {
		return sub, errors.InvalidInput("issue form missing role", nil)
	}
	if !validApplyURL(sub.ApplyURL) {
		return sub, errors.InvalidInput("issue form missing or invalid application URL", nil)
	}
	return sub, nil
}

// formCategories maps the issue form's category dropdown values to role
// categories. Anything else falls through to the enum-token parser.
var formCategories = map[string]models.RoleCategory{
	"software engineering":   models.CategorySWE,
	"ml / ai / data science": models.CategoryMLAI,
	"quantitative finance":   models.CategoryQuant,
	"product management":     models.CategoryPM,
	"hardware engineering":   models.CategoryHardware,
	"other":                  models.CategoryOther,
}

func categoryFromForm(raw string) models.RoleCategory {
	if cat, ok := formCategories[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return cat
	}
	return models.ParseRoleCategory(raw)
}

// splitSections maps lowercased "### Heading" names to the text that
// follows them.
func splitSections(body string) map[string]string {
	sections := map[string]string{}
	var current string
	var buf []string

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
		buf = nil
	}

	for _, line := range strings.Split(body, "\n") {
		if heading, ok := strings.CutPrefix(strings.TrimSpace(line), "### "); ok {
			flush()
			current = strings.ToLower(strings.TrimSpace(heading))
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return sections
}

var markdownNoisePattern = regexp.MustCompile("[`*_#>]")

// sanitizeField strips markdown noise and control characters from a
// community-submitted value; issue bodies are untrusted input headed for
// the README.
func sanitizeField(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "_No response_") {
		return ""
	}

	raw = markdownNoisePattern.ReplaceAllString(raw, "")
	raw = strings.Map(func(r rune) rune {
		if r < 32 {
			return ' '
		}
		return r
	}, raw)
	return strings.Join(strings.Fields(raw), " ")
}

func validApplyURL(raw string) bool {
	if raw == "" || strings.EqualFold(raw, "_No response_") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
