package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
	model     string
	contents  []*genai.Content
	config    *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.model, f.contents, f.config = model, contents, config
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp *genai.GenerateContentResponse
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func testGenerator(t *testing.T, models contentGenerator) *Generator {
	t.Helper()

	prompts, err := generation.NewPromptBuilder()
	require.NoError(t, err)

	g, err := newGenerator(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		models,
		config.LLMConfig{MaxRetries: 2, RetryDelaySeconds: 1, Temperature: 0.2},
		prompts,
	)
	require.NoError(t, err)
	g.retry.BaseDelay = 1
	return g
}

func TestCompleteReturnsReplyText(t *testing.T) {
	t.Parallel()

	models := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse(`{"units":[]}`)}}
	g := testGenerator(t, models)

	body, err := g.Complete(context.Background(), generation.Request{Segment: "Cells.", Total: 1})

	require.NoError(t, err)
	assert.Equal(t, `{"units":[]}`, string(body))
	assert.Equal(t, DefaultModel, models.model)
	require.Len(t, models.contents, 1)
	assert.Contains(t, models.contents[0].Parts[0].Text, "Text: Cells.")
	require.NotNil(t, models.config)
	assert.Equal(t, "application/json", models.config.ResponseMIMEType)
	require.NotNil(t, models.config.Temperature)
	assert.InDelta(t, 0.2, *models.config.Temperature, 0.0001)
	require.NotNil(t, models.config.SystemInstruction)
	assert.Contains(t, models.config.SystemInstruction.Parts[0].Text, "Identify the units")
}

func TestCompleteRetriesTransportErrors(t *testing.T) {
	t.Parallel()

	models := &fakeModels{
		errs:      []error{errors.New("503 unavailable"), nil},
		responses: []*genai.GenerateContentResponse{nil, textResponse(`{"units":[]}`)},
	}
	g := testGenerator(t, models)

	body, err := g.Complete(context.Background(), generation.Request{Segment: "x", Total: 1})

	require.NoError(t, err)
	assert.Equal(t, 2, models.calls)
	assert.Equal(t, `{"units":[]}`, string(body))
}

func TestCompleteExhaustsRetries(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	models := &fakeModels{errs: []error{boom, boom, boom, boom}}
	g := testGenerator(t, models)

	_, err := g.Complete(context.Background(), generation.Request{Segment: "x", Total: 1})

	assert.ErrorIs(t, err, generation.ErrTransport)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, models.calls)
}

func TestCompleteInvalidReplies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		resp        *genai.GenerateContentResponse
		wantBlocked bool
	}{
		{"nil response", nil, false},
		{"no candidates", &genai.GenerateContentResponse{}, false},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, false},
		{"blank text", textResponse("  "), false},
		{
			"safety finish",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
			true,
		},
		{
			"prompt blocked",
			&genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
				BlockReason: genai.BlockedReason("SAFETY"),
			}},
			true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			models := &fakeModels{responses: []*genai.GenerateContentResponse{tc.resp}}
			g := testGenerator(t, models)

			_, err := g.Complete(context.Background(), generation.Request{Segment: "x", Total: 1})

			assert.ErrorIs(t, err, generation.ErrInvalidResponse)
			assert.Equal(t, tc.wantBlocked, errors.Is(err, generation.ErrContentBlocked))
			assert.Equal(t, 1, models.calls, "invalid replies are not retried")
		})
	}
}

func TestNewGeneratorValidation(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(context.Background(), slog.Default(), config.LLMConfig{}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	prompts, err := generation.NewPromptBuilder()
	require.NoError(t, err)

	_, err = newGenerator(nil, &fakeModels{}, config.LLMConfig{}, prompts)
	assert.Error(t, err)

	_, err = newGenerator(slog.Default(), nil, config.LLMConfig{}, prompts)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	g, err := newGenerator(slog.Default(), &fakeModels{}, config.LLMConfig{ModelName: "gemini-1.5-pro"}, prompts)
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", g.model)
}
