package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/events"
)

// TaskCreator builds a task for a document.
type TaskCreator interface {
	CreateTask(documentID uuid.UUID) (Task, error)
}

// TaskSubmitter persists and enqueues a task.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler turns document synthesis requests into tasks and
// submits them to a runner.
type TaskFactoryEventHandler struct {
	taskFactory TaskCreator
	taskRunner  TaskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given task factory
// to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	taskFactory TaskCreator,
	taskRunner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes document synthesis events; other event types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	log := h.logger.With("event_id", event.ID, "event_type", event.Type)

	if event.Type != TaskTypeDocumentSynthesis {
		log.Debug("ignoring event with unsupported type")
		return nil
	}

	var payload DocumentSynthesisPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		log.Error("failed to unmarshal payload", "error", err)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.DocumentID == uuid.Nil {
		log.Error("event payload has no document ID")
		return fmt.Errorf("invalid payload: %w", ErrEmptyDocumentID)
	}
	log = log.With("document_id", payload.DocumentID)

	task, err := h.taskFactory.CreateTask(payload.DocumentID)
	if err != nil {
		log.Error("failed to create task", "error", err)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		log.Error("failed to submit task", "error", err, "task_id", task.ID())
		return fmt.Errorf("failed to submit task: %w", err)
	}

	log.Info("task created and submitted", "task_id", task.ID())
	return nil
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
