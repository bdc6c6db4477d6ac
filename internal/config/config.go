package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingCredential     = errors.New("missing provider credential")
	ErrUnknownProvider       = errors.New("unknown ai provider")
	ErrUnknownMemoryStrategy = errors.New("unknown memory strategy")
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	AI        AIConfig        `yaml:"ai"`
	Memory    MemoryConfig    `yaml:"memory"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

// MemoryConfig selects how conversation history is kept for prompts.
type MemoryConfig struct {
	Strategy MemoryStrategy `yaml:"type"`
	// Window bounds how many past turns the buffer strategy replays; 0 replays all.
	Window int `yaml:"window"`
}

// SentimentConfig 描述情感分类模型相关配置。
type SentimentConfig struct {
	Model          string        `yaml:"model"`
	Endpoint       string        `yaml:"endpoint"`
	APIToken       string        `yaml:"api_token"`
	PrimaryEnabled bool          `yaml:"primary_enabled"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Default returns the configuration used before any file or environment is applied.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		AI: AIConfig{
			Provider:   ProviderGemini,
			ArkBaseURL: "https://ark.cn-beijing.volces.com/api/v3",
			ArkRegion:  "cn-beijing",
			Timeout:    60 * time.Second,
		},
		Memory: MemoryConfig{Strategy: MemoryBuffer, Window: 20},
		Sentiment: SentimentConfig{
			Model:          "cardiffnlp/twitter-roberta-base-sentiment-latest",
			Endpoint:       "https://api-inference.huggingface.co/models",
			PrimaryEnabled: true,
			Timeout:        30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load 依次应用默认值、可选的 YAML 文件、环境变量以及调用方的覆盖项，并校验结果。
// An empty path falls back to CONFIG_FILE; no file at all is fine.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		addr, err := parseAddr(port)
		if err != nil {
			return err
		}
		c.Server.Addr = addr
	}

	if raw := strings.TrimSpace(os.Getenv("AI_PROVIDER")); raw != "" {
		c.AI.Provider = Provider(strings.ToLower(raw))
	}
	overrideString(&c.AI.Model, "AI_MODEL")
	overrideString(&c.AI.GoogleAPIKey, "GOOGLE_API_KEY")
	overrideString(&c.AI.GeminiBaseURL, "GEMINI_BASE_URL")
	overrideString(&c.AI.OpenAIAPIKey, "OPENAI_API_KEY")
	overrideString(&c.AI.OpenAIBaseURL, "OPENAI_BASE_URL")
	overrideString(&c.AI.ArkAPIKey, "ARK_API_KEY")
	overrideString(&c.AI.ArkAccessKey, "ARK_ACCESS_KEY")
	overrideString(&c.AI.ArkSecretKey, "ARK_SECRET_KEY")
	overrideString(&c.AI.ArkModel, "ARK_MODEL")
	overrideString(&c.AI.ArkBaseURL, "ARK_BASE_URL")
	overrideString(&c.AI.ArkRegion, "ARK_REGION")

	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return err
	}
	if temperature != nil {
		c.AI.Temperature = temperature
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return err
	}
	if maxTokens != nil {
		c.AI.MaxTokens = maxTokens
	}

	if err := overrideDuration(&c.AI.Timeout, "AI_REQUEST_TIMEOUT"); err != nil {
		return err
	}

	if raw := strings.TrimSpace(os.Getenv("MEMORY_TYPE")); raw != "" {
		c.Memory.Strategy = MemoryStrategy(strings.ToLower(raw))
	}
	window, err := parseOptionalIntEnv("MEMORY_WINDOW")
	if err != nil {
		return err
	}
	if window != nil {
		c.Memory.Window = *window
	}

	overrideString(&c.Sentiment.Model, "SENTIMENT_MODEL")
	overrideString(&c.Sentiment.Endpoint, "SENTIMENT_ENDPOINT")
	overrideString(&c.Sentiment.APIToken, "HF_API_TOKEN")
	primary, err := parseBoolEnv("SENTIMENT_PRIMARY_ENABLED", c.Sentiment.PrimaryEnabled)
	if err != nil {
		return err
	}
	c.Sentiment.PrimaryEnabled = primary
	if err := overrideDuration(&c.Sentiment.Timeout, "SENTIMENT_TIMEOUT"); err != nil {
		return err
	}

	overrideString(&c.Log.Level, "LOG_LEVEL")
	overrideString(&c.Log.Format, "LOG_FORMAT")
	return nil
}

// Validate 在启动阶段快速失败，给出可读的错误信息。
func (c *Config) Validate() error {
	if _, err := parseAddr(c.Server.Addr); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if _, err := ParseMemoryStrategy(string(c.Memory.Strategy)); err != nil {
		return err
	}
	if c.Memory.Window < 0 {
		return fmt.Errorf("memory window must be >= 0, got %d", c.Memory.Window)
	}
	if c.Sentiment.PrimaryEnabled && strings.TrimSpace(c.Sentiment.Model) == "" {
		return errors.New("sentiment model name is required when the primary classifier is enabled")
	}
	return nil
}

// parseAddr 允许用户直接传入 "8080"、":8080" 或 "127.0.0.1:8080"。
func parseAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		return "", errors.New("server address is empty")
	}
	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}
	if strings.Contains(port, ":") {
		return port, nil
	}
	return ":" + port, nil
}

func overrideString(dst *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*dst = value
	}
}

func overrideDuration(dst *time.Duration, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	*dst = d
	return nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
