package discover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/errors"
)

const (
	maxRetries        = 3
	initialBackoff    = 2 * time.Second
	minRequestSpacing = time.Second
)

// rateLimiter enforces a minimum spacing between requests to the same
// host, shared by all sources so bursts against one ATS provider are
// smoothed out across boards.
type rateLimiter struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{last: make(map[string]time.Time)}
}

func (r *rateLimiter) wait(ctx context.Context, host string) error {
	r.mu.Lock()
	now := time.Now()
	next := r.last[host].Add(minRequestSpacing)
	if next.Before(now) {
		next = now
	}
	r.last[host] = next
	r.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetcher is the shared HTTP layer for all discovery sources: per-host
// rate limiting and bounded retries with doubling backoff on transient
// failures.
type fetcher struct {
	client  *http.Client
	limiter *rateLimiter
}

func newFetcher(timeout time.Duration) *fetcher {
	return &fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: newRateLimiter(),
	}
}

func (f *fetcher) get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid source URL %q", rawURL), err)
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		if err := f.limiter.wait(ctx, parsed.Host); err != nil {
			return nil, err
		}

		body, retryable, err := f.doOnce(ctx, rawURL, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *fetcher) doOnce(ctx context.Context, rawURL string, headers map[string]string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", "internship-board-bot/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, errors.Unavailable(fmt.Sprintf("fetching %s", rawURL), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, errors.RateLimit(fmt.Sprintf("%s returned %d", rawURL, resp.StatusCode), nil)
	default:
		return nil, false, errors.Unavailable(fmt.Sprintf("%s returned %d", rawURL, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading response from %s: %w", rawURL, err)
	}
	return body, false, nil
}
