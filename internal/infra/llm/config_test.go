package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults when unset", func(t *testing.T) {
		t.Setenv("LLM_MODEL", "")
		t.Setenv("LLM_MAX_TOKENS", "")
		t.Setenv("LLM_TIMEOUT", "")

		cfg := LoadConfig()
		assert.Equal(t, "", cfg.Model)
		assert.Equal(t, 2048, cfg.MaxTokens)
		assert.Equal(t, 60*time.Second, cfg.Timeout)
	})

	t.Run("valid overrides", func(t *testing.T) {
		t.Setenv("LLM_MODEL", "gpt-4o")
		t.Setenv("LLM_MAX_TOKENS", "4096")
		t.Setenv("LLM_TIMEOUT", "90s")

		cfg := LoadConfig()
		assert.Equal(t, "gpt-4o", cfg.Model)
		assert.Equal(t, 4096, cfg.MaxTokens)
		assert.Equal(t, 90*time.Second, cfg.Timeout)
	})

	t.Run("out of range max tokens falls back", func(t *testing.T) {
		t.Setenv("LLM_MAX_TOKENS", "100000")
		cfg := LoadConfig()
		assert.Equal(t, 2048, cfg.MaxTokens)
	})

	t.Run("garbage max tokens falls back", func(t *testing.T) {
		t.Setenv("LLM_MAX_TOKENS", "lots")
		cfg := LoadConfig()
		assert.Equal(t, 2048, cfg.MaxTokens)
	})

	t.Run("negative timeout falls back", func(t *testing.T) {
		t.Setenv("LLM_TIMEOUT", "-10s")
		cfg := LoadConfig()
		assert.Equal(t, 60*time.Second, cfg.Timeout)
	})
}

func TestNewFromEnv(t *testing.T) {
	t.Run("missing anthropic key fails", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "claude")
		t.Setenv("ANTHROPIC_API_KEY", "")
		_, err := NewFromEnv(RoleReasoning)
		assert.Error(t, err)
	})

	t.Run("claude provider", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "claude")
		t.Setenv("ANTHROPIC_API_KEY", "test-key")
		client, err := NewFromEnv(RoleReasoning)
		assert.NoError(t, err)
		assert.Equal(t, "claude", client.Provider())
	})

	t.Run("openai provider", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "openai")
		t.Setenv("OPENAI_API_KEY", "test-key")
		client, err := NewFromEnv(RoleReasoning)
		assert.NoError(t, err)
		assert.Equal(t, "openai", client.Provider())
	})

	t.Run("unknown provider fails", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "llama")
		_, err := NewFromEnv(RoleReasoning)
		assert.Error(t, err)
	})
}

func TestModelPerRole(t *testing.T) {
	t.Run("role overrides take precedence", func(t *testing.T) {
		t.Setenv("LLM_MODEL", "gpt-4o-mini")
		t.Setenv("LLM_MODEL_REASONING", "gpt-4o")
		t.Setenv("LLM_MODEL_GENERATION", "gpt-4.1")

		cfg := LoadConfig()
		assert.Equal(t, "gpt-4o", cfg.ModelFor(RoleReasoning))
		assert.Equal(t, "gpt-4.1", cfg.ModelFor(RoleGeneration))
	})

	t.Run("unset role falls back to shared model", func(t *testing.T) {
		t.Setenv("LLM_MODEL", "gpt-4o-mini")
		t.Setenv("LLM_MODEL_REASONING", "")
		t.Setenv("LLM_MODEL_GENERATION", "")

		cfg := LoadConfig()
		assert.Equal(t, "gpt-4o-mini", cfg.ModelFor(RoleReasoning))
		assert.Equal(t, "gpt-4o-mini", cfg.ModelFor(RoleGeneration))
	})

	t.Run("all unset leaves provider default", func(t *testing.T) {
		t.Setenv("LLM_MODEL", "")
		t.Setenv("LLM_MODEL_REASONING", "")
		t.Setenv("LLM_MODEL_GENERATION", "")

		cfg := LoadConfig()
		assert.Equal(t, "", cfg.ModelFor(RoleReasoning))
		assert.Equal(t, "", cfg.ModelFor(RoleGeneration))
	})

	t.Run("ForRole pins the resolved model", func(t *testing.T) {
		t.Setenv("LLM_MODEL", "gpt-4o-mini")
		t.Setenv("LLM_MODEL_GENERATION", "gpt-4.1")

		cfg := LoadConfig().ForRole(RoleGeneration)
		assert.Equal(t, "gpt-4.1", cfg.Model)
	})
}
