package discover

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

const githubRawBase = "https://raw.githubusercontent.com"

// GitHubSource monitors a community-maintained internship list on GitHub,
// parsing markdown pipe tables out of the raw file. A "↳" company cell
// continues the previous row's company, matching the convention those
// lists use for multiple roles at one company.
type GitHubSource struct {
	monitor config.GitHubMonitor
	token   string
	fetcher *fetcher
	filter  *TitleFilter
	baseURL string
}

func NewGitHubSource(monitor config.GitHubMonitor, token string, f *fetcher, filter *TitleFilter) *GitHubSource {
	return &GitHubSource{monitor: monitor, token: token, fetcher: f, filter: filter, baseURL: githubRawBase}
}

func (s *GitHubSource) Name() string {
	return "github:" + s.monitor.Repo
}

func (s *GitHubSource) Fetch(ctx context.Context) ([]models.RawListing, error) {
	branch := s.monitor.Branch
	if branch == "" {
		branch = "main"
	}
	url := fmt.Sprintf("%s/%s/%s/%s", s.baseURL, s.monitor.Repo, branch, s.monitor.File)

	var headers map[string]string
	if s.token != "" {
		headers = map[string]string{"Authorization": "Bearer " + s.token}
	}

	body, err := s.fetcher.get(ctx, url, headers)
	if err != nil {
		return nil, err
	}

	rows := ParseMarkdownTables(string(body))
	now := time.Now().UTC()

	var out []models.RawListing
	for _, row := range rows {
		raw := models.RawListing{
			Company:      row.Company,
			CompanySlug:  models.Slugify(row.Company),
			Title:        row.Role,
			Location:     row.Location,
			URL:          row.Link,
			Source:       s.Name(),
			DiscoveredAt: now,
		}
		if raw.Company != "" && raw.URL != "" && s.filter.Keep(raw) {
			out = append(out, raw)
		}
	}
	return out, nil
}

// TableRow is one parsed listing row from a markdown pipe table.
type TableRow struct {
	Company  string
	Role     string
	Location string
	Link     string
}

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
	htmlLinkPattern     = regexp.MustCompile(`<a[^>]+href="([^"]+)"`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]+>`)
)

// ParseMarkdownTables extracts listing rows from every pipe table in the
// document whose header has recognizable company and role columns.
func ParseMarkdownTables(doc string) []TableRow {
	var rows []TableRow

	lines := strings.Split(doc, "\n")
	var header []string
	var cols map[string]int
	lastCompany := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			header = nil
			cols = nil
			continue
		}

		cells := splitTableRow(trimmed)

		// A header is a pipe row immediately followed by a |---|---| rule.
		if header == nil {
			if i+1 < len(lines) && isSeparatorRow(lines[i+1]) {
				header = cells
				cols = headerColumns(cells)
				lastCompany = ""
			}
			continue
		}
		if isSeparatorRow(trimmed) {
			continue
		}
		if cols == nil {
			continue
		}

		companyIdx, haveCompany := cols["company"]
		roleIdx, haveRole := cols["role"]
		if !haveCompany || !haveRole || companyIdx >= len(cells) || roleIdx >= len(cells) {
			continue
		}

		company := cleanCell(cells[companyIdx])
		if company == "↳" || company == "" {
			company = lastCompany
		} else {
			lastCompany = company
		}

		row := TableRow{
			Company: company,
			Role:    cleanCell(cells[roleIdx]),
			Link:    extractLink(cells[roleIdx]),
		}
		if locIdx, ok := cols["location"]; ok && locIdx < len(cells) {
			row.Location = cleanCell(cells[locIdx])
		}
		if linkIdx, ok := cols["link"]; ok && linkIdx < len(cells) {
			if link := extractLink(cells[linkIdx]); link != "" {
				row.Link = link
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func splitTableRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isSeparatorRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") {
		return false
	}
	for _, cell := range splitTableRow(trimmed) {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if strings.Trim(cell, ":-") != "" {
			return false
		}
	}
	return true
}

func headerColumns(cells []string) map[string]int {
	cols := make(map[string]int)
	for i, cell := range cells {
		name := strings.ToLower(cleanCell(cell))
		switch {
		case strings.Contains(name, "company"):
			cols["company"] = i
		case strings.Contains(name, "role") || strings.Contains(name, "position") || strings.Contains(name, "title"):
			cols["role"] = i
		case strings.Contains(name, "location"):
			cols["location"] = i
		case strings.Contains(name, "link") || strings.Contains(name, "application") || strings.Contains(name, "apply"):
			cols["link"] = i
		}
	}
	return cols
}

// cleanCell strips markdown links (keeping the text), bold markers, and
// HTML tags from a table cell.
func cleanCell(cell string) string {
	cell = markdownLinkPattern.ReplaceAllString(cell, "$1")
	cell = htmlTagPattern.ReplaceAllString(cell, "")
	cell = strings.ReplaceAll(cell, "**", "")
	cell = strings.ReplaceAll(cell, "*", "")
	return strings.TrimSpace(cell)
}

func extractLink(cell string) string {
	if m := markdownLinkPattern.FindStringSubmatch(cell); m != nil {
		return m[2]
	}
	if m := htmlLinkPattern.FindStringSubmatch(cell); m != nil {
		return m[1]
	}
	return ""
}
