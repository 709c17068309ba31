package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/generation"
	"google.golang.org/genai"
)

// DefaultModel is used when the configuration names no model.
const DefaultModel = "gemini-2.0-flash"

// contentGenerator is the subset of *genai.Models the adapter calls.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger      *slog.Logger
	models      contentGenerator
	prompts     generation.Prompter
	retry       *generation.RetryPolicy
	model       string
	temperature float32
}

// NewGenerator creates a Gemini client from cfg and wraps it in a Generator.
func NewGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
	prompts generation.Prompter,
) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, client.Models, cfg, prompts)
}

func newGenerator(
	logger *slog.Logger,
	models contentGenerator,
	cfg config.LLMConfig,
	prompts generation.Prompter,
) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if models == nil {
		return nil, fmt.Errorf("%w: gemini client cannot be nil", generation.ErrInvalidConfig)
	}
	if prompts == nil {
		return nil, fmt.Errorf("%w: prompt builder cannot be nil", generation.ErrInvalidConfig)
	}

	model := cfg.ModelName
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		logger:      logger.With("component", "gemini", "model", model),
		models:      models,
		prompts:     prompts,
		retry:       generation.NewRetryPolicy(cfg.MaxRetries, time.Duration(cfg.RetryDelaySeconds)*time.Second),
		model:       model,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Complete sends one segment to Gemini and returns the JSON reply text.
func (g *Generator) Complete(ctx context.Context, req generation.Request) ([]byte, error) {
	prompt, err := g.prompts.Build(req)
	if err != nil {
		return nil, fmt.Errorf("%w: rendering prompt: %v", generation.ErrInvalidConfig, err)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt.User, genai.RoleUser)}
	temperature := g.temperature
	callConfig := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		Temperature:       &temperature,
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
	}

	log := g.logger.With("segment", req.Ordinal+1, "total", req.Total)
	return g.retry.Do(ctx, log, func(ctx context.Context) ([]byte, error) {
		log.DebugContext(ctx, "calling Gemini API", "prompt_length", len(prompt.User))

		resp, err := g.models.GenerateContent(ctx, g.model, contents, callConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", generation.ErrTransport, err)
		}
		return extractText(resp)
	})
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %w: prompt blocked (%s)",
			generation.ErrInvalidResponse, generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: %w", generation.ErrInvalidResponse, generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, fmt.Errorf("%w: no text in response", generation.ErrInvalidResponse)
	}

	return []byte(text.String()), nil
}
