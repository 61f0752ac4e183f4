package notifier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"event-radar/internal/pkg/config"
	"event-radar/internal/utils/text"
)

const (
	twilioAPIBase = "https://api.twilio.com/2010-04-01"

	// Twilio rejects message bodies longer than 1600 characters.
	maxSMSLength = 1600

	smsTruncationSuffix = "..."
)

// TwilioConfig contains configuration for Twilio SMS digest delivery.
type TwilioConfig struct {
	// Enabled indicates whether SMS delivery is enabled
	Enabled bool

	// AccountSID is the Twilio account identifier
	AccountSID string

	// AuthToken is the Twilio API auth token
	AuthToken string

	// FromNumber is the Twilio phone number to send from
	FromNumber string

	// ToNumber is the recipient phone number
	ToNumber string

	// Timeout is the HTTP request timeout for Twilio API calls
	Timeout time.Duration
}

// LoadTwilioConfig loads Twilio settings from environment variables.
//
// Environment variables:
//   - SMS_ENABLED: "true" to enable the channel (default: false)
//   - TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN
//   - TWILIO_FROM_NUMBER, TWILIO_TO_NUMBER
func LoadTwilioConfig() TwilioConfig {
	return TwilioConfig{
		Enabled:    config.LoadEnvBool("SMS_ENABLED", false),
		AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		FromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		ToNumber:   os.Getenv("TWILIO_TO_NUMBER"),
		Timeout:    15 * time.Second,
	}
}

// TwilioChannel delivers the digest as a plain-text SMS through the Twilio
// Messages API.
type TwilioChannel struct {
	config      TwilioConfig
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewTwilioChannel creates an SMS delivery channel with the specified
// configuration. The rate limiter stays well under Twilio's 1 msg/s default
// long-code limit.
func NewTwilioChannel(cfg TwilioConfig) *TwilioChannel {
	return &TwilioChannel{
		config:      cfg,
		baseURL:     twilioAPIBase,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: NewRateLimiter(0.5, 2),
	}
}

// Name returns the channel identifier.
func (t *TwilioChannel) Name() string {
	return "sms"
}

// IsEnabled reports whether the channel has a complete configuration.
func (t *TwilioChannel) IsEnabled() bool {
	return t.config.Enabled &&
		t.config.AccountSID != "" &&
		t.config.AuthToken != "" &&
		t.config.FromNumber != "" &&
		t.config.ToNumber != ""
}

// Send delivers the digest as SMS with rate limiting and retry logic.
func (t *TwilioChannel) Send(ctx context.Context, digest *Digest) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	if err := t.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("sms rate limit: %w", err)
	}

	body := digest.Body
	if digest.Subject != "" {
		body = digest.Subject + "\n\n" + body
	}
	body = text.Truncate(body, maxSMSLength, smsTruncationSuffix)

	return t.sendWithRetry(ctx, digest.RunID, body)
}

// sendWithRetry sends the SMS with retry logic.
//
// Retry strategy:
//   - Max attempts: 2
//   - 429 errors: use retry_after from the response
//   - Server errors (5xx): linear backoff
//   - Client errors (4xx): no retry, fail immediately
func (t *TwilioChannel) sendWithRetry(ctx context.Context, runID, body string) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := t.sendMessage(ctx, body)

		if err == nil {
			slog.Info("sms digest sent",
				slog.String("request_id", requestID),
				slog.String("run_id", runID),
				slog.Int("body_length", len(body)),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			// No point sleeping out the rate limit window when there is no
			// attempt left to spend it on.
			if attempt >= maxAttempts {
				break
			}

			slog.Warn("twilio rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("sms delivery failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("run_id", runID),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("twilio request failed, retrying",
				slog.String("request_id", requestID),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	slog.Error("sms delivery failed after all retries",
		slog.String("request_id", requestID),
		slog.String("run_id", runID),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("sms delivery failed after %d attempts: %w", maxAttempts, lastErr)
}

// sendMessage performs a single Messages API call.
//
// Error types:
//   - 429: Rate limit error (retryable, contains retry_after duration)
//   - 4xx (non-429): Client error (non-retryable)
//   - 5xx: Server error (retryable)
//   - Network error: Connection/timeout error (retryable)
func (t *TwilioChannel) sendMessage(ctx context.Context, body string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.config.AccountSID)

	form := url.Values{}
	form.Set("Body", body)
	form.Set("From", t.config.FromNumber)
	form.Set("To", t.config.ToNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create twilio request: %w", err)
	}
	req.SetBasicAuth(t.config.AccountSID, t.config.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute twilio request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 5 * time.Second
		if header := resp.Header.Get("Retry-After"); header != "" {
			if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			Message:    "Twilio rate limit exceeded",
			RetryAfter: retryAfter,
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Twilio API client error: %s", string(respBody)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Twilio API server error: %s", string(respBody)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
}
