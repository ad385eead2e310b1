package factory

import (
	"fmt"
	"os"

	"codeward/config"
	"codeward/llm"
	"codeward/llm/anthropic"
	"codeward/llm/openai"
)

// Environment overrides for provider credentials. When set they beat
// whatever the config file says, so a key never has to live on disk.
const (
	EnvApiKey  = "CODEWARD_API_KEY"
	EnvBaseUrl = "CODEWARD_BASE_URL"
)

// New builds the client for the named provider. The provider name
// doubles as the wire protocol: "openai" also covers any
// openai-compatible endpoint reached through base_url.
func New(name string, cfg config.ProviderConfig) (llm.LLM, error) {
	apiKey := cfg.ApiKey
	if v := os.Getenv(EnvApiKey); v != "" {
		apiKey = v
	}
	baseUrl := cfg.BaseURL
	if v := os.Getenv(EnvBaseUrl); v != "" {
		baseUrl = v
	}

	switch name {
	case "openai", "":
		return openai.New(openai.Config{ApiKey: apiKey, BaseUrl: baseUrl})
	case "anthropic":
		return anthropic.New(anthropic.Config{ApiKey: apiKey, BaseUrl: baseUrl})
	default:
		return nil, fmt.Errorf("factory: unknown provider %q", name)
	}
}
