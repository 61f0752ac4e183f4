// Package llm provides LLM completion adapters for Claude (Anthropic) and
// OpenAI with reliability patterns. All pipeline stages that need text
// generation (content review, entity extraction, query generation, knowledge
// synthesis, promo generation) consume the Client interface defined here,
// with comprehensive observability through structured logging and Prometheus
// metrics.
package llm

import (
	"context"
	"fmt"
	"os"
)

// Client is the interface for a single-turn LLM completion call.
type Client interface {
	// Complete sends the system prompt and user prompt to the model and
	// returns the generated text.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Provider returns a stable identifier ("claude" or "openai") used in
	// logs and metrics.
	Provider() string
}

// NewFromEnv constructs a Client for the given role based on the
// LLM_PROVIDER environment variable ("claude" by default). The matching API
// key variable is required: ANTHROPIC_API_KEY for claude, OPENAI_API_KEY for
// openai. The role selects the model via the LLM_MODEL_REASONING and
// LLM_MODEL_GENERATION overrides.
func NewFromEnv(role Role) (Client, error) {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "claude"
	}

	switch provider {
	case "claude":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=claude")
		}
		return NewClaude(apiKey, LoadConfig().ForRole(role)), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		return NewOpenAI(apiKey, LoadConfig().ForRole(role)), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER %q (expected claude or openai)", provider)
	}
}
