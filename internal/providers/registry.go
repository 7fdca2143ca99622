package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry holds named LLM clients built from configuration.
// It supports hot-reload and provides thread-safe access.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]registered
	logger  *slog.Logger
}

type registered struct {
	client LLMClient
	cfg    LLMProviderConfig
}

// LLMProviderConfig describes one client with its API key already resolved.
type LLMProviderConfig struct {
	Type    string // "openai"
	Model   string
	APIKey  string
	BaseURL string // Empty for api.openai.com
	Timeout time.Duration
	Enabled bool
}

// RegistryConfig defines the clients to instantiate from config.
type RegistryConfig struct {
	LLMProviders map[string]LLMProviderConfig
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]registered),
		logger:  slog.Default(),
	}
}

// NewRegistryFromConfig creates a registry with clients based on configuration.
func NewRegistryFromConfig(cfg RegistryConfig, logger *slog.Logger) *Registry {
	r := NewRegistry()
	if logger != nil {
		r.logger = logger
	}
	r.Reload(cfg)
	return r
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterLLM registers a client by name. Used by tests and callers that
// build clients themselves.
func (r *Registry) RegisterLLM(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = registered{client: client}
	r.logger.Info("registered LLM client", "name", name)
}

// GetLLM returns a client by name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return reg.client, nil
}

// HasLLM checks if a client is registered.
func (r *Registry) HasLLM(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// ListLLM returns all registered client names in sorted order.
func (r *Registry) ListLLM() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reload updates the registry based on new configuration.
// Clients that are no longer configured are unregistered and clients whose
// settings changed are rebuilt.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)
	for name, provCfg := range cfg.LLMProviders {
		if !provCfg.Enabled {
			continue
		}
		// Local OpenAI-compatible servers run without a key.
		if provCfg.APIKey == "" && provCfg.BaseURL == "" {
			r.logger.Warn("skipping LLM client without API key", "name", name)
			continue
		}
		want[name] = true

		existing, hasExisting := r.clients[name]
		if hasExisting && existing.cfg == provCfg {
			continue
		}
		client := createLLMClient(name, provCfg, r.logger)
		if client == nil {
			r.logger.Warn("unknown LLM client type", "name", name, "type", provCfg.Type)
			delete(want, name)
			continue
		}
		r.clients[name] = registered{client: client, cfg: provCfg}
		if hasExisting {
			r.logger.Info("updated LLM client", "name", name, "type", provCfg.Type)
		} else {
			r.logger.Info("registered LLM client", "name", name, "type", provCfg.Type)
		}
	}

	for name := range r.clients {
		if !want[name] {
			delete(r.clients, name)
			r.logger.Info("unregistered LLM client", "name", name)
		}
	}
}

// createLLMClient creates a client based on provider type.
func createLLMClient(name string, cfg LLMProviderConfig, logger *slog.Logger) LLMClient {
	switch cfg.Type {
	case "openai", "":
		return NewOpenAIClient(OpenAIConfig{
			Name:    name,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Logger:  logger,
		})
	default:
		return nil
	}
}
