// Package linkcheck verifies that open listings still have live apply
// links. It HEAD-checks every open listing with a bounded worker pool,
// tracks consecutive failures in the link-health state, and closes a
// listing after two dead results in a row so a single flaky check never
// kills a live posting.
package linkcheck

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/store"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
)

var tracer = telemetry.GetTracer("internboard/linkcheck")

const (
	checkWorkers    = 10
	failuresToClose = 2
	userAgent       = "internship-board-bot/1.0"
)

// linkState classifies one HEAD check.
type linkState int

const (
	linkAlive linkState = iota
	linkDead
	linkTransient
)

type Checker struct {
	store  *store.Store
	client *http.Client
	logger *zap.Logger
}

func New(cfg *config.Config, st *store.Store, logger *zap.Logger) *Checker {
	return &Checker{
		store: st,
		client: &http.Client{
			Timeout: cfg.Infra.HTTPTimeout,
			// Follow redirects; boards frequently bounce through trackers.
		},
		logger: logger,
	}
}

// Run checks every open listing and returns how many links were checked
// and how many listings were closed.
func (c *Checker) Run(ctx context.Context) (int, int, error) {
	ctx, span := tracer.Start(ctx, "CheckLinks")
	defer span.End()

	db, err := c.store.LoadJobs(ctx)
	if err != nil {
		return 0, 0, err
	}
	health, err := c.store.LoadLinkHealth(ctx)
	if err != nil {
		return 0, 0, err
	}

	type verdict struct {
		idx   int
		state linkState
	}

	indexChan := make(chan int)
	verdicts := make(chan verdict)
	var checked int32

	var wg sync.WaitGroup
	for i := 0; i < checkWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexChan {
				state := c.checkOne(ctx, db.Listings[idx].ApplyURL)
				atomic.AddInt32(&checked, 1)
				verdicts <- verdict{idx: idx, state: state}
			}
		}()
	}

	go func() {
		for idx, listing := range db.Listings {
			if listing.Status == models.StatusOpen && listing.ApplyURL != "" {
				indexChan <- idx
			}
		}
		close(indexChan)
		wg.Wait()
		close(verdicts)
	}()

	now := time.Now().UTC().Format(time.RFC3339)
	closed := 0

	for v := range verdicts {
		listing := &db.Listings[v.idx]
		record := health[listing.ID]
		record.LastChecked = now

		switch v.state {
		case linkAlive:
			record.ConsecutiveFailures = 0
			listing.DateLastVerified = models.Today()
		case linkDead:
			record.ConsecutiveFailures++
			if record.ConsecutiveFailures >= failuresToClose {
				listing.Status = models.StatusClosed
				closed++
				c.logger.Info("closing listing with dead link",
					zap.String("id", listing.ID),
					zap.String("company", listing.Company),
					zap.String("url", listing.ApplyURL))
			}
		case linkTransient:
			// Leave the counter untouched; the next run decides.
		}
		health[listing.ID] = record
	}

	span.SetAttributes(
		telemetry.Int("links.checked", int(atomic.LoadInt32(&checked))),
		telemetry.Int("links.closed", closed),
	)
	c.logger.Info("link check complete",
		zap.Int("checked", int(atomic.LoadInt32(&checked))),
		zap.Int("closed", closed))

	if err := c.store.SaveLinkHealth(ctx, health); err != nil {
		return int(checked), closed, err
	}
	if err := c.store.SaveJobs(ctx, db); err != nil {
		return int(checked), closed, err
	}
	return int(checked), closed, nil
}

// checkOne classifies a single apply URL. Network errors count as
// transient: a DNS hiccup on our side must not close listings.
func (c *Checker) checkOne(ctx context.Context, url string) linkState {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return linkDead
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return linkTransient
	}
	resp.Body.Close()

	return classifyStatus(resp.StatusCode)
}

func classifyStatus(code int) linkState {
	switch code {
	case http.StatusNotFound, http.StatusGone, http.StatusForbidden:
		return linkDead
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable:
		return linkTransient
	default:
		return linkAlive
	}
}
