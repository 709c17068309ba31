// Package openai implements generation.Generator on top of the OpenAI
// Responses API, constraining replies to the study-unit JSON schema.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/generation"
)

// DefaultModel is used when the configuration names no model.
const DefaultModel = "gpt-4o-mini"

// completeFunc sends a request and returns the reply's output text.
type completeFunc func(ctx context.Context, params responses.ResponseNewParams) (string, error)

// Generator implements generation.Generator using OpenAI.
type Generator struct {
	logger      *slog.Logger
	call        completeFunc
	prompts     generation.Prompter
	retry       *generation.RetryPolicy
	model       string
	temperature float64
}

// NewGenerator builds an OpenAI client from cfg.
func NewGenerator(logger *slog.Logger, cfg config.LLMConfig, prompts generation.Prompter) (*Generator, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey), option.WithMaxRetries(0)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	client := openai.NewClient(opts...)

	call := func(ctx context.Context, params responses.ResponseNewParams) (string, error) {
		resp, err := client.Responses.New(ctx, params)
		if err != nil {
			return "", err
		}
		return resp.OutputText(), nil
	}

	return newGenerator(logger, call, cfg, prompts)
}

func newGenerator(
	logger *slog.Logger,
	call completeFunc,
	cfg config.LLMConfig,
	prompts generation.Prompter,
) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if call == nil {
		return nil, fmt.Errorf("%w: openai client cannot be nil", generation.ErrInvalidConfig)
	}
	if prompts == nil {
		return nil, fmt.Errorf("%w: prompt builder cannot be nil", generation.ErrInvalidConfig)
	}

	model := cfg.ModelName
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		logger:      logger.With("component", "openai", "model", model),
		call:        call,
		prompts:     prompts,
		retry:       generation.NewRetryPolicy(cfg.MaxRetries, time.Duration(cfg.RetryDelaySeconds)*time.Second),
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends one segment to OpenAI and returns the JSON reply text.
func (g *Generator) Complete(ctx context.Context, req generation.Request) ([]byte, error) {
	prompt, err := g.prompts.Build(req)
	if err != nil {
		return nil, fmt.Errorf("%w: rendering prompt: %v", generation.ErrInvalidConfig, err)
	}

	params := g.params(prompt)
	log := g.logger.With("segment", req.Ordinal+1, "total", req.Total)

	return g.retry.Do(ctx, log, func(ctx context.Context) ([]byte, error) {
		log.DebugContext(ctx, "calling OpenAI API", "prompt_length", len(prompt.User))

		text, err := g.call(ctx, params)
		if err != nil {
			return nil, classify(err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: no text in response", generation.ErrInvalidResponse)
		}
		return []byte(text), nil
	})
}

func (g *Generator) params(prompt generation.Prompt) responses.ResponseNewParams {
	return responses.ResponseNewParams{
		Model:        g.model,
		Instructions: openai.String(prompt.System),
		Temperature:  openai.Float(g.temperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt.User, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "StudyUnits",
					Schema:      studyUnitsSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Study units with concepts and flashcards"),
					Type:        "json_schema",
				},
			},
		},
	}
}

// classify separates rejected requests from failures worth retrying.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests, apiErr.StatusCode >= 500:
			return fmt.Errorf("%w: %w", generation.ErrTransport, err)
		case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %w", generation.ErrInvalidConfig, err)
		default:
			return fmt.Errorf("%w: request rejected: %w", generation.ErrInvalidResponse, err)
		}
	}
	return fmt.Errorf("%w: %w", generation.ErrTransport, err)
}

var studyUnitsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"units": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
					"concepts": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"flashcards": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"question": map[string]any{"type": "string"},
								"answer":   map[string]any{"type": "string"},
							},
							"required":             []string{"question", "answer"},
							"additionalProperties": false,
						},
					},
				},
				"required":             []string{"name", "concepts", "flashcards"},
				"additionalProperties": false,
			},
		},
		"language": map[string]any{"type": "string"},
	},
	"required":             []string{"units", "language"},
	"additionalProperties": false,
}
