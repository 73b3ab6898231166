package discover

import (
	"regexp"
	"strings"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

// TitleFilter decides whether a posting title looks like a target
// internship before any AI spend. Include keywords match on word
// boundaries so "intern" does not fire on "international"; exclude
// keywords are plain substring matches.
type TitleFilter struct {
	include          []*regexp.Regexp
	exclude          []string
	excludeCompanies map[string]bool
}

func NewTitleFilter(cfg config.FiltersConfig) *TitleFilter {
	include := make([]*regexp.Regexp, 0, len(cfg.KeywordsInclude))
	for _, kw := range cfg.KeywordsInclude {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		include = append(include, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
	}

	exclude := make([]string, 0, len(cfg.KeywordsExclude))
	for _, kw := range cfg.KeywordsExclude {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			exclude = append(exclude, kw)
		}
	}

	companies := make(map[string]bool, len(cfg.ExcludeCompanies))
	for _, c := range cfg.ExcludeCompanies {
		companies[strings.ToLower(strings.TrimSpace(c))] = true
	}

	return &TitleFilter{include: include, exclude: exclude, excludeCompanies: companies}
}

// MatchTitle reports whether a title contains at least one include keyword
// and none of the exclude keywords.
func (f *TitleFilter) MatchTitle(title string) bool {
	lower := strings.ToLower(title)

	matched := false
	for _, re := range f.include {
		if re.MatchString(lower) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, kw := range f.exclude {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}

// ExcludedCompany reports whether the company is on the blocklist.
func (f *TitleFilter) ExcludedCompany(company string) bool {
	return f.excludeCompanies[strings.ToLower(strings.TrimSpace(company))]
}

// Keep applies both checks to a raw listing.
func (f *TitleFilter) Keep(raw models.RawListing) bool {
	if f.ExcludedCompany(raw.Company) {
		return false
	}
	return f.MatchTitle(raw.Title)
}
