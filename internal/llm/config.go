package llm

import (
	"fmt"
	"os"
)

// Config holds model provider configuration.
type Config struct {
	// Provider selects the backend.
	// Values: "gemini", "mock" (offline demo data)
	Provider string

	Gemini GeminiConfig

	// Mock backs the "mock" provider. Nil starts with an empty queue.
	Mock *MockProvider
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey     string
	TextModel  string // Default: "gemini-flash"
	ImageModel string // Default: "imagen"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Gemini: GeminiConfig{
			TextModel:  "gemini-flash",
			ImageModel: "imagen",
		},
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. The API key is read from LUMEN_GEMINI_API_KEY,
// then the SDK's conventional GEMINI_API_KEY and GOOGLE_API_KEY.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("LUMEN_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	for _, key := range []string{"LUMEN_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if k := os.Getenv(key); k != "" {
			cfg.Gemini.APIKey = k
			break
		}
	}
	if m := os.Getenv("LUMEN_TEXT_MODEL"); m != "" {
		cfg.Gemini.TextModel = m
	}
	if m := os.Getenv("LUMEN_IMAGE_MODEL"); m != "" {
		cfg.Gemini.ImageModel = m
	}

	return cfg
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("LUMEN_GEMINI_API_KEY (or GEMINI_API_KEY) is required for the gemini provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown model provider: %q", c.Provider)
	}
	return nil
}
