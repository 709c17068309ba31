package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-study/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_provider", cfg.LLM.Provider)

	slog.Debug("Synthesis configuration",
		"segment_size", cfg.Synthesis.SegmentSize,
		"concurrency", cfg.Synthesis.Concurrency,
		"default_language", cfg.Synthesis.DefaultLanguage)

	return cfg, nil
}
