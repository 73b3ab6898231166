package discover

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

// ScrapeSource extracts internship links from a static career page. It
// walks the DOM for anchors whose text passes the title filter, resolving
// relative hrefs against the page URL. Pages disallowed by robots.txt are
// skipped entirely.
type ScrapeSource struct {
	source  config.ScrapeSource
	fetcher *fetcher
	filter  *TitleFilter
}

func NewScrapeSource(source config.ScrapeSource, f *fetcher, filter *TitleFilter) *ScrapeSource {
	return &ScrapeSource{source: source, fetcher: f, filter: filter}
}

func (s *ScrapeSource) Name() string {
	return "scrape:" + models.Slugify(s.source.Company)
}

func (s *ScrapeSource) Fetch(ctx context.Context) ([]models.RawListing, error) {
	pageURL, err := url.Parse(s.source.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid scrape URL %q: %w", s.source.URL, err)
	}

	allowed, err := s.robotsAllowed(ctx, pageURL)
	if err == nil && !allowed {
		return nil, nil
	}

	body, err := s.fetcher.get(ctx, s.source.URL, nil)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing career page %s: %w", s.source.URL, err)
	}

	now := time.Now().UTC()
	seen := make(map[string]bool)
	var out []models.RawListing

	for _, anchor := range collectAnchors(doc) {
		title := strings.TrimSpace(anchor.text)
		if title == "" || !s.filter.MatchTitle(title) {
			continue
		}

		href, err := pageURL.Parse(anchor.href)
		if err != nil {
			continue
		}
		link := href.String()
		if seen[link] {
			continue
		}
		seen[link] = true

		out = append(out, models.RawListing{
			Company:      s.source.Company,
			CompanySlug:  models.Slugify(s.source.Company),
			Title:        title,
			Location:     "",
			URL:          link,
			Source:       s.Name(),
			IsFaangPlus:  s.source.IsFaangPlus,
			DiscoveredAt: now,
		})
	}
	return out, nil
}

type anchor struct {
	href string
	text string
}

func collectAnchors(doc *html.Node) []anchor {
	var anchors []anchor

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" && !strings.HasPrefix(attr.Val, "#") {
					anchors = append(anchors, anchor{href: attr.Val, text: nodeText(n)})
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return anchors
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// robotsAllowed fetches robots.txt and checks the page path against the
// User-agent: * Disallow rules. A missing or unreadable robots.txt allows
// the fetch.
func (s *ScrapeSource) robotsAllowed(ctx context.Context, pageURL *url.URL) (bool, error) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", pageURL.Scheme, pageURL.Host)
	body, err := s.fetcher.get(ctx, robotsURL, nil)
	if err != nil {
		return true, nil
	}
	return pathAllowed(string(body), pageURL.Path), nil
}

func pathAllowed(robots, path string) bool {
	if path == "" {
		path = "/"
	}

	appliesToUs := false
	for _, line := range strings.Split(robots, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			appliesToUs = value == "*"
		case "disallow":
			if appliesToUs && value != "" && strings.HasPrefix(path, value) {
				return false
			}
		}
	}
	return true
}
