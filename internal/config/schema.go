package config

import (
	"time"

	"github.com/jackzampolin/estate/internal/extraction"
	"github.com/jackzampolin/estate/internal/providers"
)

// Config holds estate analyzer configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Extraction   ExtractionCfg             `mapstructure:"extraction" yaml:"extraction"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`         // "openai" (also used for OpenAI-compatible servers)
	Model          string `mapstructure:"model" yaml:"model"`       // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`   // API key (supports ${ENV_VAR} syntax)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"` // Empty for api.openai.com
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	LLMProvider   string `mapstructure:"llm_provider" yaml:"llm_provider"`     // Provider used for analysis
	LocalProvider string `mapstructure:"local_provider" yaml:"local_provider"` // Provider used when a local model is requested
}

// ExtractionCfg holds request settings shared by both extraction strategies.
type ExtractionCfg struct {
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	MaxChars    int     `mapstructure:"max_chars" yaml:"max_chars"` // Text budget before truncation
	Placeholder string  `mapstructure:"placeholder" yaml:"placeholder"`
}

// ServerCfg holds HTTP server settings.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openai": {
				Type:           "openai",
				Model:          extraction.DefaultModel,
				APIKey:         "${OPENAI_API_KEY}",
				TimeoutSeconds: 120,
				Enabled:        true,
			},
			"ollama": {
				Type:           "openai",
				Model:          "llama3",
				APIKey:         "ollama",
				BaseURL:        "http://localhost:11434/v1",
				TimeoutSeconds: 300,
				Enabled:        false,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider:   "openai",
			LocalProvider: "ollama",
		},
		Extraction: ExtractionCfg{
			Temperature: extraction.DefaultTemperature,
			MaxTokens:   extraction.DefaultMaxTokens,
			MaxChars:    extraction.DefaultMaxChars,
			Placeholder: extraction.DefaultPlaceholder,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// ToProviderRegistryConfig converts the config to a format suitable for providers.Registry.
// It resolves all ${ENV_VAR} references in API keys.
func (c *Config) ToProviderRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		LLMProviders: make(map[string]providers.LLMProviderConfig, len(c.LLMProviders)),
	}
	for name, llm := range c.LLMProviders {
		cfg.LLMProviders[name] = providers.LLMProviderConfig{
			Type:    llm.Type,
			Model:   llm.Model,
			APIKey:  ResolveEnvVars(llm.APIKey),
			BaseURL: llm.BaseURL,
			Timeout: time.Duration(llm.TimeoutSeconds) * time.Second,
			Enabled: llm.Enabled,
		}
	}
	return cfg
}

// ExtractionParams returns request settings for the named provider.
func (c *Config) ExtractionParams(provider string) extraction.Params {
	params := extraction.Params{
		Temperature: c.Extraction.Temperature,
		MaxTokens:   c.Extraction.MaxTokens,
		MaxChars:    c.Extraction.MaxChars,
		Placeholder: c.Extraction.Placeholder,
	}
	if p, ok := c.LLMProviders[provider]; ok {
		params.Model = p.Model
	}
	return params
}
