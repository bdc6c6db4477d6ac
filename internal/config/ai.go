package config

import (
	"fmt"
	"strings"
	"time"
)

// Provider 标识托管的文本生成服务。
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderArk    Provider = "ark"
)

// ParseProvider normalizes and validates a provider name.
func ParseProvider(raw string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(raw))); p {
	case ProviderGemini, ProviderOpenAI, ProviderArk:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (choose gemini, openai or ark)", ErrUnknownProvider, raw)
	}
}

// MemoryStrategy 决定会话历史如何进入提示词。
type MemoryStrategy string

const (
	MemoryBuffer  MemoryStrategy = "buffer"
	MemorySummary MemoryStrategy = "summary"
)

// ParseMemoryStrategy normalizes and validates a memory strategy name.
func ParseMemoryStrategy(raw string) (MemoryStrategy, error) {
	switch s := MemoryStrategy(strings.ToLower(strings.TrimSpace(raw))); s {
	case MemoryBuffer, MemorySummary:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q (choose buffer or summary)", ErrUnknownMemoryStrategy, raw)
	}
}

const (
	defaultGeminiModel = "gemini-2.5-flash-lite"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultTemperature = 0.7
)

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider    Provider      `yaml:"provider"`
	Model       string        `yaml:"model"`
	Temperature *float64      `yaml:"temperature"`
	MaxTokens   *int          `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`

	GoogleAPIKey  string `yaml:"google_api_key"`
	GeminiBaseURL string `yaml:"gemini_base_url"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	ArkAPIKey    string `yaml:"ark_api_key"`
	ArkAccessKey string `yaml:"ark_access_key"`
	ArkSecretKey string `yaml:"ark_secret_key"`
	ArkModel     string `yaml:"ark_model"`
	ArkBaseURL   string `yaml:"ark_base_url"`
	ArkRegion    string `yaml:"ark_region"`
}

// Validate checks that the selected provider is known and its credential is present.
func (c AIConfig) Validate() error {
	provider, err := ParseProvider(string(c.Provider))
	if err != nil {
		return err
	}

	switch provider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("%w: GOOGLE_API_KEY is not set (or choose another AI_PROVIDER)", ErrMissingCredential)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is not set (or choose another AI_PROVIDER)", ErrMissingCredential)
		}
	case ProviderArk:
		if c.ArkAPIKey == "" && (c.ArkAccessKey == "" || c.ArkSecretKey == "") {
			return fmt.Errorf("%w: ARK_API_KEY or ARK_ACCESS_KEY + ARK_SECRET_KEY is not set", ErrMissingCredential)
		}
		if c.ModelName() == "" {
			return fmt.Errorf("ark provider requires ARK_MODEL or AI_MODEL")
		}
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("ai request timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// ModelName 返回生效的模型名，未配置时按服务商取默认值。
func (c AIConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderGemini:
		return defaultGeminiModel
	case ProviderOpenAI:
		return defaultOpenAIModel
	case ProviderArk:
		return c.ArkModel
	default:
		return ""
	}
}

// TemperatureOrDefault returns the sampling temperature, 0.7 when unset.
func (c AIConfig) TemperatureOrDefault() float64 {
	if c.Temperature != nil {
		return *c.Temperature
	}
	return defaultTemperature
}
