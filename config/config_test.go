package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("GOOGLE_CREDENTIALS_PATH", "")
	t.Setenv("ZOOM_ACCOUNT_ID", " account-id ")
	t.Setenv("ZOOM_CLIENT_ID", "client-id")
	t.Setenv("ZOOM_CLIENT_SECRET", "client-secret")
	t.Setenv("SLACK_TOKEN", "xoxb-token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4", cfg.LLM.Model)
	assert.Equal(t, "client_secret_assistant.json", cfg.Google.CredentialsPath)
	assert.Equal(t, "account-id", cfg.Zoom.AccountID)
	assert.Equal(t, "xoxb-token", cfg.Slack.Token)
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadAnthropicProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("ANTHROPIC_API_BASE_URL", "https://proxy.internal/v1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "sk-ant-test", cfg.LLM.APIKey)
	assert.Equal(t, "https://proxy.internal/v1", cfg.LLM.BaseURL)
}

func TestLoadUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "llamacpp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llamacpp")
}

// Zoom credentials are deliberately not validated locally; missing values
// surface as an authentication error from the provider instead.
func TestLoadMissingZoomCredentials(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ZOOM_ACCOUNT_ID", "")
	t.Setenv("ZOOM_CLIENT_ID", "")
	t.Setenv("ZOOM_CLIENT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Zoom.AccountID)
}
