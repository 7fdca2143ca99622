package svcctx

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackzampolin/estate/internal/providers"
)

func TestServicesFrom_Missing(t *testing.T) {
	ctx := context.Background()
	if ServicesFrom(ctx) != nil {
		t.Error("expected nil services")
	}
	if RegistryFrom(ctx) != nil || LoggerFrom(ctx) != nil || HomeFrom(ctx) != nil {
		t.Error("expected nil extractors on empty context")
	}
	if AnalyzerFrom(ctx) != nil || ConfigManagerFrom(ctx) != nil {
		t.Error("expected nil extractors on empty context")
	}
}

func TestWithServices(t *testing.T) {
	registry := providers.NewRegistry()
	logger := slog.Default()
	ctx := WithServices(context.Background(), &Services{Registry: registry, Logger: logger})

	if RegistryFrom(ctx) != registry {
		t.Error("registry not propagated")
	}
	if LoggerFrom(ctx) != logger {
		t.Error("logger not propagated")
	}
	if HomeFrom(ctx) != nil {
		t.Error("expected nil home")
	}
}
