package openai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedCall struct {
	texts  []string
	errs   []error
	calls  int
	params responses.ResponseNewParams
}

func (s *scriptedCall) complete(_ context.Context, params responses.ResponseNewParams) (string, error) {
	i := s.calls
	s.calls++
	s.params = params
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	var text string
	if i < len(s.texts) {
		text = s.texts[i]
	}
	return text, err
}

func apiError(code int) *openai.Error {
	return &openai.Error{
		StatusCode: code,
		Request:    httptest.NewRequest(http.MethodPost, "https://api.openai.com/v1/responses", nil),
		Response:   &http.Response{StatusCode: code},
	}
}

func testGenerator(t *testing.T, call completeFunc, cfg config.LLMConfig) *Generator {
	t.Helper()

	prompts, err := generation.NewPromptBuilder()
	require.NoError(t, err)

	cfg.MaxRetries = 2
	cfg.RetryDelaySeconds = 1
	g, err := newGenerator(slog.New(slog.NewTextHandler(io.Discard, nil)), call, cfg, prompts)
	require.NoError(t, err)
	g.retry.BaseDelay = 1
	return g
}

func TestCompleteReturnsOutputText(t *testing.T) {
	t.Parallel()

	s := &scriptedCall{texts: []string{`{"units":[],"language":"en"}`}}
	g := testGenerator(t, s.complete, config.LLMConfig{})

	body, err := g.Complete(context.Background(), generation.Request{Segment: "Atoms.", Total: 1})

	require.NoError(t, err)
	assert.Equal(t, `{"units":[],"language":"en"}`, string(body))
	assert.Equal(t, DefaultModel, string(s.params.Model))
	assert.Equal(t, 1, s.calls)
}

func TestCompleteUsesConfiguredModel(t *testing.T) {
	t.Parallel()

	s := &scriptedCall{texts: []string{`{"units":[]}`}}
	g := testGenerator(t, s.complete, config.LLMConfig{ModelName: "gpt-4.1"})

	_, err := g.Complete(context.Background(), generation.Request{Segment: "x", Total: 1})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", string(s.params.Model))
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	t.Parallel()

	s := &scriptedCall{
		errs:  []error{apiError(http.StatusServiceUnavailable), nil},
		texts: []string{"", `{"units":[]}`},
	}
	g := testGenerator(t, s.complete, config.LLMConfig{})

	_, err := g.Complete(context.Background(), generation.Request{Segment: "x", Total: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, s.calls)
}

func TestCompleteErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		text      string
		wantErr   error
		wantCalls int
	}{
		{"network failure", errors.New("dial tcp: refused"), "", generation.ErrTransport, 3},
		{"rate limited", apiError(http.StatusTooManyRequests), "", generation.ErrTransport, 3},
		{"bad key", apiError(http.StatusUnauthorized), "", generation.ErrInvalidConfig, 1},
		{"bad request", apiError(http.StatusBadRequest), "", generation.ErrInvalidResponse, 1},
		{"empty output", nil, "   ", generation.ErrInvalidResponse, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := &scriptedCall{
				errs:  []error{tc.err, tc.err, tc.err},
				texts: []string{tc.text, tc.text, tc.text},
			}
			g := testGenerator(t, s.complete, config.LLMConfig{})

			_, err := g.Complete(context.Background(), generation.Request{Segment: "x", Total: 1})

			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.wantCalls, s.calls)
		})
	}
}

func TestNewGeneratorValidation(t *testing.T) {
	t.Parallel()

	prompts, err := generation.NewPromptBuilder()
	require.NoError(t, err)

	_, err = NewGenerator(slog.Default(), config.LLMConfig{}, prompts)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	g, err := NewGenerator(slog.Default(), config.LLMConfig{OpenAIAPIKey: "sk-test"}, prompts)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, g.model)

	_, err = newGenerator(slog.Default(), nil, config.LLMConfig{}, prompts)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
