package discover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
)

const careerPage = `<html><body>
<h1>Careers</h1>
<div class="jobs">
  <a href="/jobs/1"><span>Software Engineer <b>Intern</b></span></a>
  <a href="/jobs/2">Senior Platform Engineer</a>
  <a href="https://other.example.com/jobs/3">Hardware Intern</a>
  <a href="/jobs/1">Software Engineer Intern</a>
  <a href="#top">Back to top</a>
</div>
</body></html>`

func TestScrapeSourceFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /admin\n"))
	})
	mux.HandleFunc("/careers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(careerPage))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	src := NewScrapeSource(
		config.ScrapeSource{Company: "NCR Voyix", URL: server.URL + "/careers"},
		testFetcher(server), testFilter())

	listings, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	// Relative href resolved against the page URL, duplicate dropped.
	assert.Equal(t, "Software Engineer Intern", listings[0].Title)
	assert.Equal(t, server.URL+"/jobs/1", listings[0].URL)
	assert.Equal(t, "ncr-voyix", listings[0].CompanySlug)

	// Absolute hrefs pass through untouched.
	assert.Equal(t, "https://other.example.com/jobs/3", listings[1].URL)
}

func TestScrapeSourceHonorsRobots(t *testing.T) {
	pageHits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /careers\n"))
	})
	mux.HandleFunc("/careers", func(w http.ResponseWriter, r *http.Request) {
		pageHits++
		w.Write([]byte(careerPage))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	src := NewScrapeSource(
		config.ScrapeSource{Company: "NCR Voyix", URL: server.URL + "/careers"},
		testFetcher(server), testFilter())

	listings, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Zero(t, pageHits, "disallowed page must not be fetched")
}

func TestPathAllowed(t *testing.T) {
	robots := `# comment
User-agent: googlebot
Disallow: /google-only

User-agent: *
Disallow: /private
Disallow: /tmp
`
	tests := []struct {
		path string
		want bool
	}{
		{"/careers", true},
		{"/private", false},
		{"/private/jobs", false},
		{"/google-only", true},
		{"", true},
	}
	for _, tt := range tests {
		if got := pathAllowed(robots, tt.path); got != tt.want {
			t.Errorf("pathAllowed(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
