package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/lumen/internal/generation"
	"github.com/abhisek/lumen/internal/llm"
	"github.com/abhisek/lumen/internal/logger"
	"github.com/abhisek/lumen/internal/narration"
	"github.com/abhisek/lumen/internal/store"
	"github.com/spf13/cobra"
)

// runtime bundles the dependencies every generating command needs.
type runtime struct {
	log       *logger.Logger
	store     *store.Store
	client    *generation.Client
	narration narration.Config
}

// newRuntime builds logger, request log, provider and generation client.
// A missing credential fails here, before any UI starts.
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, false)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}

	cfg := llm.ConfigFromEnv()
	if demo, _ := cmd.Flags().GetBool("demo"); demo {
		cfg.Provider = "mock"
	}
	if cfg.Provider == "mock" {
		cfg.Mock = generation.NewDemoProvider()
	}

	provider, err := llm.NewProvider(cmd.Context(), cfg, st.EventRepo(), log)
	if err != nil {
		st.Close()
		log.Sync()
		return nil, fmt.Errorf("model provider not configured: %w", err)
	}
	log.Info("provider ready", "provider", cfg.Provider, "text_model", provider.ModelID(), "image_model", provider.ImageModelID())

	return &runtime{
		log:       log,
		store:     st,
		client:    generation.New(provider, generation.DefaultConfig(), log),
		narration: narrationConfig(cmd),
	}, nil
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.log.Warn("close store", "error", err)
	}
	r.log.Sync()
}

func newLogger(cmd *cobra.Command) (*logger.Logger, error) {
	path, _ := cmd.Flags().GetString("log-file")
	if path == "" {
		path = os.Getenv("LUMEN_LOG_FILE")
	}
	mode, _ := cmd.Flags().GetString("log-mode")
	if m := os.Getenv("LUMEN_LOG_MODE"); m != "" && !cmd.Flags().Changed("log-mode") {
		mode = m
	}
	log, err := logger.New(mode, path)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func narrationConfig(cmd *cobra.Command) narration.Config {
	cfg := narration.ConfigFromEnv()
	if tts, _ := cmd.Flags().GetString("tts"); tts != "" {
		cfg.Command = tts
	}
	return cfg
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}
