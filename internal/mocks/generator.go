package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/phrazzld/scry-study/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// CompleteFn allows test cases to mock the Complete behavior
	CompleteFn func(ctx context.Context, req generation.Request) ([]byte, error)

	// Replies holds the raw reply for each segment ordinal. When a segment
	// has no entry the last reply is reused.
	Replies []string
	Err     error

	// Call tracking for verification
	mu       sync.Mutex
	requests []generation.Request
}

var _ generation.Generator = (*MockGenerator)(nil)

// Complete implements the generation.Generator interface
func (m *MockGenerator) Complete(ctx context.Context, req generation.Request) ([]byte, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Replies) == 0 {
		return nil, fmt.Errorf("%w: mock generator has no replies", generation.ErrTransport)
	}

	idx := req.Ordinal
	if idx >= len(m.Replies) {
		idx = len(m.Replies) - 1
	}
	return []byte(m.Replies[idx]), nil
}

// Requests returns a copy of the recorded requests, in call order.
func (m *MockGenerator) Requests() []generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Request(nil), m.requests...)
}

// CallCount returns how many times Complete was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// NewMockGeneratorWithReplies creates a MockGenerator answering segment i
// with replies[i].
func NewMockGeneratorWithReplies(replies ...string) *MockGenerator {
	return &MockGenerator{Replies: replies}
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// NewMockGeneratorWithDefaultUnits creates a MockGenerator that answers every
// segment with one unit holding two flashcards.
func NewMockGeneratorWithDefaultUnits() *MockGenerator {
	return NewMockGeneratorWithReplies(MustReply("en", generation.UnitSchema{
		Name:     "Architecture",
		Concepts: []string{"hexagonal architecture", "dependency inversion"},
		Flashcards: []generation.CardSchema{
			{
				Question: "What is hexagonal architecture?",
				Answer:   "An architectural pattern that isolates the domain from external concerns.",
			},
			{
				Question: "What is Dependency Inversion?",
				Answer:   "A principle where high-level modules and low-level modules both depend on abstractions.",
			},
		},
	}))
}

// MockGeneratorThatFails creates a MockGenerator whose replies never validate.
func MockGeneratorThatFails() *MockGenerator {
	return NewMockGeneratorWithReplies(`{"language":"en"}`)
}

// MockGeneratorWithTransientFailure creates a MockGenerator that cannot reach the model.
func MockGeneratorWithTransientFailure() *MockGenerator {
	return NewMockGeneratorWithError(fmt.Errorf("%w: connection reset", generation.ErrTransport))
}

// MustReply renders a model reply. It panics if the units cannot be encoded.
func MustReply(language string, units ...generation.UnitSchema) string {
	raw, err := json.Marshal(generation.Response{Units: units, Language: language})
	if err != nil {
		panic(fmt.Sprintf("mocks: encode reply: %v", err))
	}
	return string(raw)
}
