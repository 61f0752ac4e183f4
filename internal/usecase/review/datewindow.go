package review

import (
	"context"
	"fmt"
	"time"

	"event-radar/internal/domain/entity"
)

// DateWindowChecker verifies that the event starts inside the digest window.
// Events in the past or beyond the window are not worth surfacing.
type DateWindowChecker struct {
	location *time.Location
	window   time.Duration
	now      func() time.Time
}

// NewDateWindowChecker creates a date window reviewer for the given local
// timezone and forward window (typically seven days).
func NewDateWindowChecker(location *time.Location, window time.Duration) *DateWindowChecker {
	return &DateWindowChecker{
		location: location,
		window:   window,
		now:      time.Now,
	}
}

// ID returns the reviewer identifier.
func (d *DateWindowChecker) ID() string {
	return "date_verifier"
}

// Review checks that the event start time falls within [now, now+window].
// Events without a start time cannot be placed and stay unverified at half
// confidence.
func (d *DateWindowChecker) Review(ctx context.Context, event *entity.Event) (entity.Verdict, error) {
	if event.StartTime == nil {
		return entity.Verdict{
			Verified:   false,
			Confidence: 0.5,
			Notes:      []string{"No start time available"},
		}, nil
	}

	now := d.now().In(d.location)
	windowEnd := now.Add(d.window)
	eventTime := event.StartTime.In(d.location)

	inWindow := !eventTime.Before(now) && !eventTime.After(windowEnd)

	position := "within"
	if !inWindow {
		position = "outside"
	}

	return entity.Verdict{
		Verified:      inWindow,
		Confidence:    1.0,
		Notes:         []string{fmt.Sprintf("Event is %s target window (next %d days)", position, int(d.window.Hours()/24))},
		VenueVerified: true,
	}, nil
}
