package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"event-radar/internal/domain/entity"
	"event-radar/internal/infra/search"
	"event-radar/internal/observability/metrics"
)

// runSearch fans out to every source concurrently, records a per-source
// result in the state, and merges the events with title+day deduplication.
func (s *Service) runSearch(ctx context.Context, state *State) {
	results := make([]SearchResult, len(s.sources))
	eventsBySource := make([][]entity.Event, len(s.sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, source := range s.sources {
		i, source := i, source
		g.Go(func() error {
			start := time.Now()
			events, err := source.Search(ctx)
			duration := time.Since(start)

			result := SearchResult{
				Source:     source.Name(),
				Duration:   duration,
				Confidence: source.Confidence(),
			}
			if err != nil {
				result.Error = err.Error()
				if errors.Is(err, search.ErrNoAPIKey) {
					metrics.RecordSearchError(source.Name(), "no_api_key")
					slog.InfoContext(ctx, "source skipped, no API key",
						slog.String("source", source.Name()))
				} else {
					metrics.RecordSearchError(source.Name(), "search_failed")
					slog.WarnContext(ctx, "source search failed",
						slog.String("source", source.Name()),
						slog.Duration("duration", duration),
						slog.String("error", err.Error()))
				}
			} else {
				result.Success = true
				result.Found = len(events)
				eventsBySource[i] = events
				metrics.RecordSearch(source.Name(), duration, len(events))
				slog.InfoContext(ctx, "source search complete",
					slog.String("source", source.Name()),
					slog.Int("found", len(events)),
					slog.Duration("duration", duration))
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	state.SearchResults = results

	var all []entity.Event
	for _, events := range eventsBySource {
		all = append(all, events...)
	}
	merged, dropped := dedupe(all)
	if dropped > 0 {
		metrics.RecordDeduplicated(dropped)
	}
	state.EventsFound = merged

	state.Observe("search",
		fmt.Sprintf("Searched %d sources, %d succeeded.", len(s.sources), state.SuccessfulSources()),
		"merge_and_dedupe",
		fmt.Sprintf("%d events after dropping %d duplicates", len(merged), dropped),
		searchConfidence(results))
}

// dedupe collapses events sharing a DedupeKey (lowercased title plus event
// day). The first occurrence wins; later duplicates backfill missing fields.
func dedupe(events []entity.Event) ([]entity.Event, int) {
	seen := make(map[string]int, len(events))
	var merged []entity.Event
	dropped := 0

	for _, event := range events {
		key := event.DedupeKey()
		if idx, ok := seen[key]; ok {
			dropped++
			fillMissing(&merged[idx], &event)
			continue
		}
		seen[key] = len(merged)
		merged = append(merged, event)
	}
	return merged, dropped
}

// fillMissing copies fields the kept event lacks from a duplicate. A second
// source often carries the URL or venue the first one missed.
func fillMissing(dst, src *entity.Event) {
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.Location == "" {
		dst.Location = src.Location
	}
	if dst.StartTime == nil {
		dst.StartTime = src.StartTime
	}
	if dst.EndTime == nil {
		dst.EndTime = src.EndTime
	}
	for _, c := range src.Categories {
		if !dst.HasCategory(c) {
			dst.Categories = append(dst.Categories, c)
		}
	}
}

// searchConfidence is the mean confidence of the sources that succeeded.
func searchConfidence(results []SearchResult) float64 {
	total := 0.0
	n := 0
	for _, r := range results {
		if r.Success {
			total += r.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// generateQuestions records data-gap questions about the merged events.
func generateQuestions(state *State) {
	var missingDates, missingURLs, missingLocations []string
	for _, event := range state.EventsFound {
		if event.StartTime == nil {
			missingDates = append(missingDates, event.Title)
		}
		if event.URL == "" {
			missingURLs = append(missingURLs, event.Title)
		}
		if event.Location == "" {
			missingLocations = append(missingLocations, event.Title)
		}
	}

	if len(missingDates) > 0 {
		state.AddQuestion(
			fmt.Sprintf("%d events are missing a start time; can review confirm their dates?", len(missingDates)),
			strings.Join(missingDates, ", "))
	}
	if len(missingURLs) > 0 {
		state.AddQuestion(
			fmt.Sprintf("%d events have no URL; are they real listings?", len(missingURLs)),
			strings.Join(missingURLs, ", "))
	}
	if len(missingLocations) > 0 {
		state.AddQuestion(
			fmt.Sprintf("%d events have no venue; where do they take place?", len(missingLocations)),
			strings.Join(missingLocations, ", "))
	}
}
