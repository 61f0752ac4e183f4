package llm

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// Role distinguishes the two kinds of completion work the pipeline does, so
// each can run on a different model: analytical steps (entity extraction,
// query generation, synthesis, content review) versus creative generation
// (the promo text).
type Role string

const (
	RoleReasoning  Role = "reasoning"
	RoleGeneration Role = "generation"
)

// Config holds shared configuration for LLM completion clients.
// Configuration is loaded from environment variables with fallback to defaults.
type Config struct {
	// Model is the provider-specific model identifier. When empty, each
	// adapter falls back to its provider default.
	Model string

	// ReasoningModel overrides Model for reasoning-role clients.
	// Loaded from LLM_MODEL_REASONING.
	ReasoningModel string

	// GenerationModel overrides Model for generation-role clients.
	// Loaded from LLM_MODEL_GENERATION.
	GenerationModel string

	// MaxTokens is the maximum number of tokens for the API response.
	// Loaded from LLM_MAX_TOKENS. Valid range: 256-8192. Default: 2048.
	MaxTokens int

	// Timeout is the maximum duration for a single completion API call.
	// Loaded from LLM_TIMEOUT. Default: 60s.
	Timeout time.Duration
}

// LoadConfig loads LLM configuration from environment variables.
// Invalid values fall back to defaults with a warning log.
//
// Environment variables:
//   - LLM_MODEL: Model identifier for all roles (default: provider-specific)
//   - LLM_MODEL_REASONING: Model override for reasoning clients
//   - LLM_MODEL_GENERATION: Model override for generation clients
//   - LLM_MAX_TOKENS: Response token budget (default: 2048, range: 256-8192)
//   - LLM_TIMEOUT: Per-call timeout (default: 60s)
func LoadConfig() Config {
	const (
		defaultMaxTokens = 2048
		minMaxTokens     = 256
		maxMaxTokens     = 8192
	)

	maxTokens := defaultMaxTokens

	if envTokens := os.Getenv("LLM_MAX_TOKENS"); envTokens != "" {
		parsed, err := strconv.Atoi(envTokens)
		if err != nil {
			slog.Warn("Invalid LLM_MAX_TOKENS format, using default",
				slog.String("value", envTokens),
				slog.Int("default", defaultMaxTokens),
				slog.String("error", err.Error()))
		} else if parsed < minMaxTokens || parsed > maxMaxTokens {
			slog.Warn("LLM_MAX_TOKENS out of valid range, using default",
				slog.Int("value", parsed),
				slog.Int("min", minMaxTokens),
				slog.Int("max", maxMaxTokens),
				slog.Int("default", defaultMaxTokens))
		} else {
			maxTokens = parsed
		}
	}

	timeout := 60 * time.Second
	if envTimeout := os.Getenv("LLM_TIMEOUT"); envTimeout != "" {
		parsed, err := time.ParseDuration(envTimeout)
		if err != nil || parsed <= 0 {
			slog.Warn("Invalid LLM_TIMEOUT, using default",
				slog.String("value", envTimeout),
				slog.Duration("default", timeout))
		} else {
			timeout = parsed
		}
	}

	return Config{
		Model:           os.Getenv("LLM_MODEL"),
		ReasoningModel:  os.Getenv("LLM_MODEL_REASONING"),
		GenerationModel: os.Getenv("LLM_MODEL_GENERATION"),
		MaxTokens:       maxTokens,
		Timeout:         timeout,
	}
}

// ModelFor resolves the model for a role: the role-specific override first,
// then the shared LLM_MODEL, then empty so the adapter applies its provider
// default.
func (c Config) ModelFor(role Role) string {
	switch role {
	case RoleReasoning:
		if c.ReasoningModel != "" {
			return c.ReasoningModel
		}
	case RoleGeneration:
		if c.GenerationModel != "" {
			return c.GenerationModel
		}
	}
	return c.Model
}

// ForRole returns a copy of the config with Model pinned to the resolved
// model for the role, ready to hand to an adapter constructor.
func (c Config) ForRole(role Role) Config {
	c.Model = c.ModelFor(role)
	return c
}

// defaultClaudeModel is used when LLM_MODEL is not set.
func defaultClaudeModel() string {
	// anthropic.ModelClaudeSonnet4_5_20250929 is not defined in SDK v1.9.0;
	// this is its exact string value.
	return string(anthropic.Model("claude-sonnet-4-5-20250929"))
}

// defaultOpenAIModel is used when LLM_MODEL is not set.
const defaultOpenAIModel = "gpt-4o-mini"
