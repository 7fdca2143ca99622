package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackzampolin/estate/internal/config"
	"github.com/jackzampolin/estate/internal/estate"
	"github.com/jackzampolin/estate/internal/pdftext"
	"github.com/jackzampolin/estate/internal/providers"
)

// ErrNoProvider is returned when the configured LLM provider is not registered.
var ErrNoProvider = errors.New("no LLM provider available")

// Service runs analyses against clients held in a provider registry, using
// the configuration current at the time of each request.
type Service struct {
	registry  *providers.Registry
	config    func() *config.Config
	extractor Extractor
	logger    *slog.Logger
}

// NewService creates a Service. cfg is called once per request so hot
// reloaded settings apply to the next analysis.
func NewService(registry *providers.Registry, cfg func() *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry:  registry,
		config:    cfg,
		extractor: pdftext.New(logger),
		logger:    logger,
	}
}

// Analyze runs the pipeline on path. useLocal selects the configured local
// provider when it is registered and falls back to the default otherwise.
// The file is read before a provider is looked up.
func (s *Service) Analyze(ctx context.Context, path string, useLocal bool) (estate.Info, Report, error) {
	start := time.Now()
	resolved, data, err := extract(ctx, s.extractor, path)
	if err != nil {
		return estate.Info{}, Report{}, err
	}

	cfg := s.config()
	name := s.providerName(cfg, useLocal)

	client, err := s.registry.GetLLM(name)
	if err != nil {
		return estate.Info{}, Report{}, fmt.Errorf("%w: %s", ErrNoProvider, name)
	}

	a, err := New(Config{
		Client:    client,
		Params:    cfg.ExtractionParams(name),
		Extractor: s.extractor,
		Logger:    s.logger,
	})
	if err != nil {
		return estate.Info{}, Report{}, err
	}
	return a.analyzeExtracted(ctx, resolved, data, start)
}

func (s *Service) providerName(cfg *config.Config, useLocal bool) string {
	name := cfg.Defaults.LLMProvider
	if !useLocal {
		return name
	}
	local := cfg.Defaults.LocalProvider
	if local != "" && s.registry.HasLLM(local) {
		return local
	}
	s.logger.Warn("local model requested but not available, using default provider",
		"local_provider", local,
		"provider", name,
	)
	return name
}
