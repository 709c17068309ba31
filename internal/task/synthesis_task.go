package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/redact"
)

// Common errors
var (
	ErrNilDocumentRepository = errors.New("document repository cannot be nil")
	ErrNilSynthesizer        = errors.New("synthesizer cannot be nil")
	ErrNilLogger             = errors.New("logger cannot be nil")
	ErrEmptyDocumentID       = errors.New("document ID cannot be empty")
)

// DocumentRepository is the persistence the synthesis task needs.
type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
}

// Synthesizer turns document text into study units.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*domain.SynthesisResult, error)
}

// DocumentSynthesisPayload is the serialized form of a synthesis task.
type DocumentSynthesisPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
}

// DocumentSynthesisTask runs synthesis for a single stored document and
// records the outcome on it.
type DocumentSynthesisTask struct {
	id          uuid.UUID
	documentID  uuid.UUID
	documents   DocumentRepository
	synthesizer Synthesizer
	logger      *slog.Logger
	status      TaskStatus
}

// NewDocumentSynthesisTask creates a pending task for documentID.
func NewDocumentSynthesisTask(
	documentID uuid.UUID,
	documents DocumentRepository,
	synthesizer Synthesizer,
	logger *slog.Logger,
) (*DocumentSynthesisTask, error) {
	return newDocumentSynthesisTask(uuid.New(), documentID, documents, synthesizer, logger)
}

func newDocumentSynthesisTask(
	id uuid.UUID,
	documentID uuid.UUID,
	documents DocumentRepository,
	synthesizer Synthesizer,
	logger *slog.Logger,
) (*DocumentSynthesisTask, error) {
	if documents == nil {
		return nil, ErrNilDocumentRepository
	}
	if synthesizer == nil {
		return nil, ErrNilSynthesizer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if documentID == uuid.Nil {
		return nil, ErrEmptyDocumentID
	}

	return &DocumentSynthesisTask{
		id:          id,
		documentID:  documentID,
		documents:   documents,
		synthesizer: synthesizer,
		logger:      logger.With("task_type", TaskTypeDocumentSynthesis, "document_id", documentID),
		status:      TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *DocumentSynthesisTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *DocumentSynthesisTask) Type() string {
	return TaskTypeDocumentSynthesis
}

// DocumentID returns the document the task synthesizes.
func (t *DocumentSynthesisTask) DocumentID() uuid.UUID {
	return t.documentID
}

// Payload returns the task data as a byte slice
func (t *DocumentSynthesisTask) Payload() []byte {
	data, err := json.Marshal(DocumentSynthesisPayload{DocumentID: t.documentID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *DocumentSynthesisTask) Status() TaskStatus {
	return t.status
}

// Execute loads the document, runs synthesis over its text and stores
// either the units or a redacted failure message on the document.
func (t *DocumentSynthesisTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting document synthesis task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	doc, err := t.documents.GetByID(ctx, t.documentID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve document", "error", err)
		return fmt.Errorf("failed to retrieve document: %w", err)
	}

	doc.MarkProcessing()
	if err := t.documents.Update(ctx, doc); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to mark document as processing", "error", err)
		return fmt.Errorf("failed to mark document as processing: %w", err)
	}

	result, synthErr := t.synthesizer.Synthesize(ctx, doc.Text)
	if synthErr != nil {
		t.status = TaskStatusFailed
		t.logger.Error("synthesis failed", "error", synthErr)

		doc.Fail(errors.New(redact.Error(synthErr)))
		if err := t.documents.Update(ctx, doc); err != nil {
			t.logger.Error("failed to record synthesis failure on document", "error", err)
		}
		return fmt.Errorf("failed to synthesize document: %w", synthErr)
	}

	doc.Complete(result)
	if err := t.documents.Update(ctx, doc); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to store synthesis result", "error", err)
		return fmt.Errorf("failed to store synthesis result: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("document synthesis task completed",
		"units", len(result.Units),
		"flashcards", domain.FlashcardCount(result.Units),
		"language", result.Language)
	return nil
}

var _ Task = (*DocumentSynthesisTask)(nil)
