package discover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
)

func testFetcher(server *httptest.Server) *fetcher {
	return &fetcher{client: server.Client(), limiter: newRateLimiter()}
}

func TestGreenhouseSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stripe/jobs", r.URL.Path)
		w.Write([]byte(`{"jobs": [
			{"title": "Software Engineer Intern", "absolute_url": "https://boards.greenhouse.io/stripe/1", "location": {"name": "Atlanta, GA"}},
			{"title": "Staff Software Engineer", "absolute_url": "https://boards.greenhouse.io/stripe/2", "location": {"name": "Remote"}}
		]}`))
	}))
	defer server.Close()

	src := NewGreenhouseSource(
		config.GreenhouseBoard{Token: "stripe", Company: "Stripe", IsFaangPlus: true},
		testFetcher(server), testFilter())
	src.baseURL = server.URL

	listings, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1, "non-intern titles must be filtered out")

	got := listings[0]
	assert.Equal(t, "Stripe", got.Company)
	assert.Equal(t, "stripe", got.CompanySlug)
	assert.Equal(t, "Software Engineer Intern", got.Title)
	assert.Equal(t, "Atlanta, GA", got.Location)
	assert.Equal(t, "https://boards.greenhouse.io/stripe/1", got.URL)
	assert.Equal(t, "greenhouse:stripe", got.Source)
	assert.True(t, got.IsFaangPlus)
}

func TestLeverSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ramp", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("mode"))
		w.Write([]byte(`[
			{"text": "Backend Intern", "hostedUrl": "https://jobs.lever.co/ramp/1", "categories": {"location": "NYC"}}
		]`))
	}))
	defer server.Close()

	src := NewLeverSource(
		config.LeverBoard{CompanySlug: "ramp", Company: "Ramp"},
		testFetcher(server), testFilter())
	src.baseURL = server.URL

	listings, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "lever:ramp", listings[0].Source)
	assert.Equal(t, "NYC", listings[0].Location)
}

func TestAshbySourceSkipsUnlisted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs": [
			{"title": "ML Intern", "jobUrl": "https://jobs.ashbyhq.com/x/1", "location": "Remote", "isListed": true},
			{"title": "Data Intern", "jobUrl": "https://jobs.ashbyhq.com/x/2", "location": "Remote", "isListed": false}
		]}`))
	}))
	defer server.Close()

	src := NewAshbySource(
		config.AshbyBoard{CompanySlug: "x", Company: "X Labs"},
		testFetcher(server), testFilter())
	src.baseURL = server.URL

	listings, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "ML Intern", listings[0].Title)
}

func TestFetcherRetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := testFetcher(server)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body, err := f.get(ctx, server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, 3, attempts)
}

func TestFetcherDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testFetcher(server).get(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "4xx responses must not be retried")
}
