package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"event-radar/internal/observability/metrics"
	"event-radar/internal/resilience/circuitbreaker"
	"event-radar/internal/resilience/retry"
	"event-radar/internal/utils/text"
)

// maxPromptChars caps prompt input as a safety measure. Claude supports a
// 200k token context, but event descriptions and scraped page text should
// never need more than this.
const maxPromptChars = 10000

// Claude implements the Client interface using Anthropic's Claude API.
// It includes circuit breaker and retry logic for improved reliability.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// NewClaude creates a new Claude client with the given API key.
// It automatically configures circuit breaker and retry logic.
func NewClaude(apiKey string, config Config) *Claude {
	if config.Model == "" {
		config.Model = defaultClaudeModel()
	}

	slog.Info("Initialized Claude client",
		slog.String("model", config.Model),
		slog.Int("max_tokens", config.MaxTokens))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.LLMAPIConfig(),
		config:         config,
	}
}

// Provider returns the provider identifier.
func (c *Claude) Provider() string {
	return "claude"
}

// Complete generates a completion for the given system and user prompts.
// It uses circuit breaker and retry logic for improved reliability.
func (c *Claude) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doComplete(ctx, system, prompt)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("claude complete failed after retries: %w", retryErr)
	}

	return result, nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (c *Claude) doComplete(ctx context.Context, system, prompt string) (string, error) {
	requestID := uuid.New().String()

	truncated := prompt
	if text.CountRunes(prompt) > maxPromptChars {
		truncated = text.Truncate(prompt, maxPromptChars, "...\n(input truncated)")
		slog.Warn("prompt truncated for claude api",
			slog.String("request_id", requestID),
			slog.Int("original_length", text.CountRunes(prompt)),
			slog.Int("truncated_length", text.CountRunes(truncated)))
	}

	slog.InfoContext(ctx, "Starting completion",
		slog.String("request_id", requestID),
		slog.String("provider", "claude"),
		slog.String("model", c.config.Model),
		slog.Int("prompt_length", text.CountRunes(truncated)))

	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(truncated),
			),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	message, err := c.client.Messages.New(ctx, params)

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Completion failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		metrics.RecordLLMCompletion("claude", duration, false)
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		slog.ErrorContext(ctx, "Claude API returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		metrics.RecordLLMCompletion("claude", duration, false)
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		slog.ErrorContext(ctx, "Claude API returned unexpected response type",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		metrics.RecordLLMCompletion("claude", duration, false)
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	completion := textBlock.Text

	slog.InfoContext(ctx, "Completion finished",
		slog.String("request_id", requestID),
		slog.Int("completion_length", text.CountRunes(completion)),
		slog.Duration("duration", duration))

	metrics.RecordLLMCompletion("claude", duration, true)

	return completion, nil
}
