// Package llm selects the completion adapter named by configuration.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/generation"
	"github.com/phrazzld/scry-study/internal/platform/gemini"
	"github.com/phrazzld/scry-study/internal/platform/openai"
)

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewPrompter builds the prompt renderer, layering templates from
// cfg.PromptTemplateDir over the built-in ones when it is set.
func NewPrompter(cfg config.LLMConfig) (*generation.PromptBuilder, error) {
	var opts []generation.PromptOption
	if cfg.PromptTemplateDir != "" {
		opts = append(opts, generation.WithTemplateFS(os.DirFS(cfg.PromptTemplateDir), "."))
	}
	return generation.NewPromptBuilder(opts...)
}

// NewGenerator returns the generator for cfg.Provider.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (generation.Generator, error) {
	prompts, err := NewPrompter(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderGemini, "":
		return gemini.NewGenerator(ctx, logger, cfg, prompts)
	case ProviderOpenAI:
		return openai.NewGenerator(logger, cfg, prompts)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}
