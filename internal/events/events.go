// Package events publishes pipeline lifecycle events to NATS so other
// consumers (dashboards, notifiers) can react to runs without polling the
// data files. The publisher is optional: with NATS disabled a no-op
// implementation is wired in and the pipeline behaves identically.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/errors"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
)

var tracer = telemetry.GetTracer("internboard/events")

const (
	RunCompletedSubject   = "internships.run.completed"
	ListingsAddedSubject  = "internships.listings.added"
	ListingsClosedSubject = "internships.listings.closed"
)

// RunSummary is the payload published after every pipeline run.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Mode         string        `json:"mode"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Discovered   int           `json:"discovered"`
	Added        int           `json:"added"`
	DedupRemoved int           `json:"dedup_removed"`
	LinksClosed  int           `json:"links_closed"`
	Archived     int           `json:"archived"`
	StepsFailed  int           `json:"steps_failed"`
}

// ListingDelta announces listings entering or leaving the open set.
type ListingDelta struct {
	RunID     string    `json:"run_id"`
	Count     int       `json:"count"`
	Companies []string  `json:"companies,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	PublishRunSummary(ctx context.Context, summary RunSummary) error
	PublishListingDelta(ctx context.Context, subject string, delta ListingDelta) error
	Close()
}

// NewPublisher returns a NATS-backed publisher, or the no-op publisher
// when NATS is disabled in config.
func NewPublisher(cfg *config.Config, logger *zap.Logger) (Publisher, error) {
	if !cfg.Infra.NATSEnabled {
		logger.Debug("NATS disabled, events will not be published")
		return NopPublisher{}, nil
	}

	opts := []nats.Option{
		nats.Timeout(cfg.Infra.NATSConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}
	conn, err := nats.Connect(cfg.Infra.NATSURL, opts...)
	if err != nil {
		return nil, errors.Internal("connecting to NATS", err)
	}
	return &natsPublisher{conn: conn, logger: logger}, nil
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func (p *natsPublisher) PublishRunSummary(ctx context.Context, summary RunSummary) error {
	return p.publish(ctx, RunCompletedSubject, summary)
}

func (p *natsPublisher) PublishListingDelta(ctx context.Context, subject string, delta ListingDelta) error {
	return p.publish(ctx, subject, delta)
}

func (p *natsPublisher) publish(ctx context.Context, subject string, payload any) error {
	_, span := tracer.Start(ctx, "Publish")
	defer span.End()

	data, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling event payload", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(subject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish event",
			zap.String("subject", subject),
			zap.Error(err))
		return errors.Internal("publishing to NATS", err)
	}

	p.logger.Debug("published event", zap.String("subject", subject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// NopPublisher satisfies Publisher when NATS is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishRunSummary(ctx context.Context, summary RunSummary) error {
	return nil
}

func (NopPublisher) PublishListingDelta(ctx context.Context, subject string, delta ListingDelta) error {
	return nil
}

func (NopPublisher) Close() {}

// NewRunID mints the identifier correlating events and analytics rows for
// one pipeline run.
func NewRunID() string {
	return uuid.New().String()
}
