package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// DocumentSynthesisTaskFactory creates DocumentSynthesisTask instances
type DocumentSynthesisTaskFactory struct {
	documents   DocumentRepository
	synthesizer Synthesizer
	logger      *slog.Logger
}

// NewDocumentSynthesisTaskFactory creates a new factory for DocumentSynthesisTasks
func NewDocumentSynthesisTaskFactory(
	documents DocumentRepository,
	synthesizer Synthesizer,
	logger *slog.Logger,
) *DocumentSynthesisTaskFactory {
	return &DocumentSynthesisTaskFactory{
		documents:   documents,
		synthesizer: synthesizer,
		logger:      logger.With("component", "document_synthesis_task_factory"),
	}
}

// CreateTask creates a new DocumentSynthesisTask for the specified document
func (f *DocumentSynthesisTaskFactory) CreateTask(documentID uuid.UUID) (Task, error) {
	return NewDocumentSynthesisTask(documentID, f.documents, f.synthesizer, f.logger)
}

// Rehydrate rebuilds a persisted synthesis task, keeping its original ID.
func (f *DocumentSynthesisTaskFactory) Rehydrate(rec Record) (Task, error) {
	if rec.Type != TaskTypeDocumentSynthesis {
		return nil, fmt.Errorf("unexpected task type %q", rec.Type)
	}

	var payload DocumentSynthesisPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}

	return newDocumentSynthesisTask(rec.ID, payload.DocumentID, f.documents, f.synthesizer, f.logger)
}
