package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"event-radar/internal/observability/metrics"
	"event-radar/internal/resilience/circuitbreaker"
	"event-radar/internal/resilience/retry"
	"event-radar/internal/utils/text"
)

// OpenAI implements the Client interface using OpenAI's chat completion API.
// It includes circuit breaker and retry logic for improved reliability.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// NewOpenAI creates a new OpenAI client with the given API key.
// It automatically configures circuit breaker and retry logic.
func NewOpenAI(apiKey string, config Config) *OpenAI {
	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}

	slog.Info("Initialized OpenAI client",
		slog.String("model", config.Model),
		slog.Int("max_tokens", config.MaxTokens))

	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.LLMAPIConfig(),
		config:         config,
	}
}

// Provider returns the provider identifier.
func (o *OpenAI) Provider() string {
	return "openai"
}

// Complete generates a completion for the given system and user prompts.
// It uses circuit breaker and retry logic for improved reliability.
func (o *OpenAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doComplete(ctx, system, prompt)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("openai complete failed after retries: %w", retryErr)
	}

	return result, nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doComplete(ctx context.Context, system, prompt string) (string, error) {
	truncated := prompt
	if text.CountRunes(prompt) > maxPromptChars {
		truncated = text.Truncate(prompt, maxPromptChars, "...\n(input truncated)")
		slog.Warn("prompt truncated for openai api",
			slog.Int("original_length", text.CountRunes(prompt)),
			slog.Int("truncated_length", text.CountRunes(truncated)))
	}

	slog.InfoContext(ctx, "Starting completion",
		slog.String("provider", "openai"),
		slog.String("model", o.config.Model),
		slog.Int("prompt_length", text.CountRunes(truncated)))

	start := time.Now()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: truncated,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages:  messages,
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Completion failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		metrics.RecordLLMCompletion("openai", duration, false)
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		slog.ErrorContext(ctx, "OpenAI API returned empty response",
			slog.Duration("duration", duration))
		metrics.RecordLLMCompletion("openai", duration, false)
		return "", fmt.Errorf("openai api returned empty response")
	}

	completion := resp.Choices[0].Message.Content

	slog.InfoContext(ctx, "Completion finished",
		slog.Int("completion_length", text.CountRunes(completion)),
		slog.Duration("duration", duration))

	metrics.RecordLLMCompletion("openai", duration, true)

	return completion, nil
}
