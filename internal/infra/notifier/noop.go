package notifier

import (
	"context"
	"log/slog"
)

// NoopChannel logs the digest instead of delivering it. Used in dry-run
// mode and when no real channel is configured.
type NoopChannel struct{}

// NewNoopChannel creates a no-op delivery channel.
func NewNoopChannel() *NoopChannel {
	return &NoopChannel{}
}

// Name returns the channel identifier.
func (n *NoopChannel) Name() string {
	return "noop"
}

// IsEnabled always reports true so the digest is at least logged.
func (n *NoopChannel) IsEnabled() bool {
	return true
}

// Send logs the digest summary.
func (n *NoopChannel) Send(ctx context.Context, digest *Digest) error {
	slog.InfoContext(ctx, "dry-run digest",
		slog.String("run_id", digest.RunID),
		slog.String("subject", digest.Subject),
		slog.Int("event_count", digest.EventCount),
		slog.Int("body_length", len(digest.Body)))
	return nil
}
