package main

import (
	"os"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"

	"llm-chat-proxy/internal/integrations/generation"
)

func TestConfig_DefaultURL(t *testing.T) {
	t.Setenv("LLM_API_URL", "")
	require.NoError(t, os.Unsetenv("LLM_API_URL"))
	var cfg Config
	require.NoError(t, env.Parse(&cfg))
	require.Equal(t, generation.DefaultURL, cfg.LLMAPIURL)
}

func TestConfig_OverrideURL(t *testing.T) {
	t.Setenv("LLM_API_URL", "ssm:/chat-proxy/llm-api-url")
	var cfg Config
	require.NoError(t, env.Parse(&cfg))
	require.Equal(t, "ssm:/chat-proxy/llm-api-url", cfg.LLMAPIURL)
}
