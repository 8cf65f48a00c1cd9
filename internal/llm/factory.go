package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/lumen/internal/logger"
	"github.com/abhisek/lumen/internal/store"
)

// NewProvider creates a MultimodalProvider from configuration, wrapped with
// the logging decorator.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (MultimodalProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base MultimodalProvider
	switch cfg.Provider {
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
		}
		base = p
	case "mock":
		base = cfg.Mock
		if cfg.Mock == nil {
			base = NewMockProvider()
		}
	default:
		return nil, fmt.Errorf("unknown model provider: %q", cfg.Provider)
	}

	return WithLogging(base, eventRepo, log), nil
}
