// Package notifier provides delivery channels for the daily event digest.
// It defines the Channel interface which allows different delivery mechanisms
// (SMTP email, Twilio SMS) to be used interchangeably through dependency
// injection.
//
// Implementations handle rate limiting, retries, and error logging
// internally. Delivery is plain text only.
package notifier

import (
	"context"
	"time"
)

// Digest is the rendered daily notification: the promo text plus run
// metadata. Channels receive the same digest and format it as their
// transport allows.
type Digest struct {
	// Subject is the one-line headline, used as the email subject.
	Subject string

	// Body is the plain-text digest content.
	Body string

	// EventCount is how many events the digest covers.
	EventCount int

	// RunID identifies the pipeline run that produced this digest.
	RunID string

	// GeneratedAt is when the digest was produced.
	GeneratedAt time.Time
}

// Channel is a single digest delivery mechanism.
type Channel interface {
	// Name returns a stable identifier used in logs and metrics.
	Name() string

	// IsEnabled reports whether this channel is configured for delivery.
	// Disabled channels are skipped by the dispatch service.
	IsEnabled() bool

	// Send delivers the digest. Implementations should:
	//   - Apply rate limiting to prevent API abuse
	//   - Retry transient failures with backoff
	//   - Respect context cancellation
	Send(ctx context.Context, digest *Digest) error
}
