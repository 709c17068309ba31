package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyEventType is returned when an event is created without a type.
var ErrEmptyEventType = errors.New("event type cannot be empty")

// TaskRequestEvent represents a request to create a background task.
type TaskRequestEvent struct {
	ID uuid.UUID `json:"id"`

	// Type names the task that should be created, e.g. "document_synthesis".
	Type string `json:"type"`

	// UserID is the user on whose behalf the task runs, if any.
	UserID uuid.UUID `json:"user_id,omitempty"`

	// Payload contains the task-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent creates a new TaskRequestEvent with the specified type and payload.
func NewTaskRequestEvent(eventType string, payload any) (*TaskRequestEvent, error) {
	if eventType == "" {
		return nil, ErrEmptyEventType
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ForUser returns the event with UserID set.
func (e *TaskRequestEvent) ForUser(userID uuid.UUID) *TaskRequestEvent {
	e.UserID = userID
	return e
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *TaskRequestEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to the handlers subscribed to it.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
