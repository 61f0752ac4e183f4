package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"event-radar/internal/domain/entity"
	"event-radar/internal/resilience/circuitbreaker"
	"event-radar/internal/resilience/retry"
	"event-radar/internal/utils/text"
)

// RSSCalendar discovers events from an RSS/Atom event calendar feed using
// the gofeed library. Community calendars (venues, parks departments,
// libraries) frequently publish this way.
type RSSCalendar struct {
	feed           Feed
	config         Config
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewRSSCalendar creates an RSS calendar source for one feed.
func NewRSSCalendar(feed Feed, cfg Config, client *http.Client) *RSSCalendar {
	return &RSSCalendar{
		feed:           feed,
		config:         cfg,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.EventSourceConfig("rss-" + feed.Name)),
		retryConfig:    retry.EventAPIConfig(),
	}
}

// Name returns the source identifier.
func (r *RSSCalendar) Name() string {
	return "rss-" + r.feed.Name
}

// Confidence returns the trust weight from the feed catalog entry.
func (r *RSSCalendar) Confidence() float64 {
	return r.feed.Confidence
}

// Search fetches and parses the calendar feed.
// It uses circuit breaker and retry logic for improved reliability.
func (r *RSSCalendar) Search(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event

	retryErr := retry.WithBackoff(ctx, r.retryConfig, func() error {
		cbResult, err := r.circuitBreaker.Execute(func() (interface{}, error) {
			return r.doSearch(ctx)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("rss calendar circuit breaker open, request rejected",
					slog.String("source", r.Name()),
					slog.String("state", r.circuitBreaker.State().String()))
				return fmt.Errorf("rss calendar unavailable: circuit breaker open")
			}
			return err
		}

		events = cbResult.([]entity.Event)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return events, nil
}

// doSearch performs the actual feed fetch without retry or circuit breaker.
func (r *RSSCalendar) doSearch(ctx context.Context) ([]entity.Event, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "EventRadarBot"
	fp.Client = r.client

	feed, err := fp.ParseURLWithContext(r.feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", r.feed.URL, err)
	}

	items := feed.Items
	if len(items) > r.config.MaxResults {
		items = items[:r.config.MaxResults]
	}

	events := make([]entity.Event, 0, len(items))
	for _, it := range items {
		description := it.Content
		if description == "" {
			description = it.Description
		}
		description = text.NormalizeSpace(description)

		var startTime *time.Time
		if it.PublishedParsed != nil {
			local := it.PublishedParsed.In(r.config.Location)
			startTime = &local
		}

		events = append(events, entity.Event{
			Title:       text.Truncate(it.Title, 200, ""),
			Description: text.Truncate(description, 500, ""),
			URL:         it.Link,
			StartTime:   startTime,
			Categories:  Categorize(it.Title, description),
			Source:      r.Name(),
		})
	}

	slog.InfoContext(ctx, "source search completed",
		slog.String("source", r.Name()),
		slog.Int("events", len(events)))

	return events, nil
}
