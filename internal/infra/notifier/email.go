package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"event-radar/internal/pkg/config"
)

// EmailConfig contains configuration for SMTP digest delivery.
type EmailConfig struct {
	// Enabled indicates whether email delivery is enabled
	Enabled bool

	// Host is the SMTP server hostname
	Host string

	// Port is the SMTP server port (587 for STARTTLS)
	Port int

	// Username is the SMTP auth username
	Username string

	// Password is the SMTP auth password (app password for Gmail)
	Password string

	// From is the sender address
	From string

	// To are the recipient addresses
	To []string
}

// LoadEmailConfig loads email settings from environment variables.
//
// Environment variables:
//   - EMAIL_ENABLED: "true" to enable the channel (default: false)
//   - SMTP_HOST: SMTP server (default: smtp.gmail.com)
//   - SMTP_PORT: SMTP port (default: 587)
//   - SMTP_USERNAME: Auth username (also the default From/To address)
//   - SMTP_PASSWORD: Auth password
//   - EMAIL_FROM: Sender address (default: SMTP_USERNAME)
//   - EMAIL_TO: Comma-separated recipients (default: SMTP_USERNAME)
func LoadEmailConfig() EmailConfig {
	username := os.Getenv("SMTP_USERNAME")

	from := config.LoadEnvString("EMAIL_FROM", username)

	toRaw := config.LoadEnvString("EMAIL_TO", username)
	var to []string
	for _, addr := range strings.Split(toRaw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}

	portResult := config.LoadEnvInt("SMTP_PORT", 587, config.IntRangeValidator(1, 65535))
	for _, w := range portResult.Warnings {
		slog.Warn("email config fallback", slog.String("warning", w))
	}

	return EmailConfig{
		Enabled:  config.LoadEnvBool("EMAIL_ENABLED", false),
		Host:     config.LoadEnvString("SMTP_HOST", "smtp.gmail.com"),
		Port:     portResult.Value.(int),
		Username: username,
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     from,
		To:       to,
	}
}

// sendMailFunc matches smtp.SendMail, extracted for testing.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel delivers the digest as a plain-text email over SMTP with
// STARTTLS.
type EmailChannel struct {
	config      EmailConfig
	rateLimiter *RateLimiter
	sendMail    sendMailFunc
}

// NewEmailChannel creates an email delivery channel with the specified
// configuration. The rate limiter is conservative since one run sends a
// single digest.
func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	return &EmailChannel{
		config:      cfg,
		rateLimiter: NewRateLimiter(0.2, 2), // 1 message per 5s, burst of 2
		sendMail:    smtp.SendMail,
	}
}

// Name returns the channel identifier.
func (e *EmailChannel) Name() string {
	return "email"
}

// IsEnabled reports whether the channel has a complete configuration.
func (e *EmailChannel) IsEnabled() bool {
	return e.config.Enabled &&
		e.config.Host != "" &&
		e.config.Username != "" &&
		e.config.Password != "" &&
		e.config.From != "" &&
		len(e.config.To) > 0
}

// buildMessage renders the RFC 5322 message bytes for the digest.
func (e *EmailChannel) buildMessage(digest *Digest) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.config.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", digest.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", digest.GeneratedAt.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(digest.Body)
	return []byte(b.String())
}

// Send delivers the digest over SMTP with rate limiting and one retry for
// transient failures.
func (e *EmailChannel) Send(ctx context.Context, digest *Digest) error {
	const maxAttempts = 2

	requestID := uuid.New().String()

	if err := e.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("email rate limit: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)
	msg := e.buildMessage(digest)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = e.sendMail(addr, auth, e.config.From, e.config.To, msg)
		if lastErr == nil {
			slog.Info("email digest sent",
				slog.String("request_id", requestID),
				slog.String("run_id", digest.RunID),
				slog.Int("recipients", len(e.config.To)),
				slog.Int("attempt", attempt))
			return nil
		}

		if attempt < maxAttempts {
			slog.Warn("email delivery failed, retrying",
				slog.String("request_id", requestID),
				slog.String("run_id", digest.RunID),
				slog.Any("error", lastErr),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return fmt.Errorf("context canceled during email retry: %w", ctx.Err())
			}
		}
	}

	slog.Error("email delivery failed after all retries",
		slog.String("request_id", requestID),
		slog.String("run_id", digest.RunID),
		slog.Any("error", lastErr))

	return fmt.Errorf("email delivery failed after %d attempts: %w", maxAttempts, lastErr)
}
