package config

import (
	"fmt"
	"os"
	"strings"
)

// Config aggregates the credentials and model settings the team needs,
// sourced from environment variables.
type Config struct {
	LLM    LLMConfig
	Zoom   ZoomConfig
	Slack  SlackConfig
	Google GoogleConfig
}

// LLMConfig selects the language model provider backing the agents.
type LLMConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// ZoomConfig carries the server-to-server OAuth app credentials.
type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
}

// SlackConfig carries the bot token used by the Slack tool.
type SlackConfig struct {
	Token string
}

// GoogleConfig points at the Google service credentials JSON.
type GoogleConfig struct {
	CredentialsPath string
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderCohere    = "cohere"
)

const (
	defaultModel           = "gpt-4"
	defaultCredentialsPath = "client_secret_assistant.json"
)

// Load reads the environment and returns a validated Config. The Zoom,
// Slack and Google credentials are passed through without local
// validation: missing or wrong values surface as authentication errors
// from the respective provider on first use.
func Load() (Config, error) {
	cfg := Config{
		LLM: LLMConfig{
			Provider: strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))),
			Model:    strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
		},
		Zoom: ZoomConfig{
			AccountID:    strings.TrimSpace(os.Getenv("ZOOM_ACCOUNT_ID")),
			ClientID:     strings.TrimSpace(os.Getenv("ZOOM_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("ZOOM_CLIENT_SECRET")),
		},
		Slack: SlackConfig{
			Token: strings.TrimSpace(os.Getenv("SLACK_TOKEN")),
		},
		Google: GoogleConfig{
			CredentialsPath: strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_PATH")),
		},
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderOpenAI
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModel
	}
	if cfg.Google.CredentialsPath == "" {
		cfg.Google.CredentialsPath = defaultCredentialsPath
	}

	switch cfg.LLM.Provider {
	case ProviderOpenAI:
		cfg.LLM.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		cfg.LLM.BaseURL = strings.TrimSpace(os.Getenv("OPENAI_API_BASE_URL"))
		if cfg.LLM.APIKey == "" {
			return Config{}, fmt.Errorf("OPENAI_API_KEY is required")
		}
	case ProviderAnthropic:
		cfg.LLM.APIKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
		cfg.LLM.BaseURL = strings.TrimSpace(os.Getenv("ANTHROPIC_API_BASE_URL"))
		if cfg.LLM.APIKey == "" {
			return Config{}, fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
	case ProviderCohere:
		cfg.LLM.APIKey = strings.TrimSpace(os.Getenv("COHERE_API_KEY"))
		cfg.LLM.BaseURL = strings.TrimSpace(os.Getenv("COHERE_API_BASE_URL"))
		if cfg.LLM.APIKey == "" {
			return Config{}, fmt.Errorf("COHERE_API_KEY is required")
		}
	default:
		return Config{}, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLM.Provider)
	}

	return cfg, nil
}
