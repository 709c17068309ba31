package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/events"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/phrazzld/scry-study/internal/task"
)

// History limits for ListHistory.
const (
	DefaultHistoryLimit = 5
	MaxHistoryLimit     = 50
)

// Extender generates additional units and flashcards for text that has
// already been synthesized.
type Extender interface {
	Extend(ctx context.Context, text string, existing []domain.StudyUnit) (*domain.SynthesisResult, error)
}

// DocumentService provides document-related operations
type DocumentService interface {
	// CreateDocumentAndEnqueue stores a pending document and requests its synthesis.
	CreateDocumentAndEnqueue(ctx context.Context, userID uuid.UUID, fileName, text string) (*domain.Document, error)

	// GetDocument returns a document owned by userID.
	GetDocument(ctx context.Context, userID, id uuid.UUID) (*domain.Document, error)

	// ListHistory returns the user's most recent documents without their text.
	ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Document, error)

	// ExtendDocument generates more flashcards for a completed document. When
	// unitName is empty every unit may receive cards, otherwise only the named one.
	ExtendDocument(ctx context.Context, userID, id uuid.UUID, unitName string) (*domain.Document, error)
}

type documentServiceImpl struct {
	db           *sql.DB
	documents    store.DocumentStore
	extender     Extender
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

var _ DocumentService = (*documentServiceImpl)(nil)

// NewDocumentService creates a new DocumentService.
// It returns an error if any of the required dependencies are nil.
func NewDocumentService(
	db *sql.DB,
	documents store.DocumentStore,
	extender Extender,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (DocumentService, error) {
	switch {
	case db == nil:
		return nil, &DocumentServiceError{Operation: "create_service", Message: "db cannot be nil"}
	case documents == nil:
		return nil, &DocumentServiceError{Operation: "create_service", Message: "documents cannot be nil"}
	case extender == nil:
		return nil, &DocumentServiceError{Operation: "create_service", Message: "extender cannot be nil"}
	case eventEmitter == nil:
		return nil, &DocumentServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &documentServiceImpl{
		db:           db,
		documents:    documents,
		extender:     extender,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "document_service"),
	}, nil
}

// CreateDocumentAndEnqueue creates a pending document and emits a synthesis
// request. The document is committed before the event is emitted so the task
// never observes a missing row.
func (s *documentServiceImpl) CreateDocumentAndEnqueue(
	ctx context.Context,
	userID uuid.UUID,
	fileName, text string,
) (*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	doc, err := domain.NewDocument(userID, fileName, text)
	if err != nil {
		log.Warn("invalid document", "error", err, "user_id", userID)
		return nil, NewDocumentServiceError("create_document", "invalid document", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.documents.WithTx(tx).Create(ctx, doc)
	})
	if err != nil {
		log.Error("failed to save document",
			"error", err,
			"user_id", userID,
			"document_id", doc.ID)
		return nil, NewDocumentServiceError("create_document", "failed to save document", err)
	}

	event, err := events.NewTaskRequestEvent(
		task.TaskTypeDocumentSynthesis,
		task.DocumentSynthesisPayload{DocumentID: doc.ID},
	)
	if err != nil {
		return nil, NewDocumentServiceError("create_document", "failed to create event", err)
	}
	event.ForUser(userID)

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit synthesis event",
			"error", err,
			"document_id", doc.ID,
			"event_id", event.ID)
		return nil, NewDocumentServiceError("create_document", "failed to emit event", err)
	}

	log.Info("document created and synthesis requested",
		"document_id", doc.ID,
		"user_id", userID,
		"event_id", event.ID,
		"text_length", len(text))

	return doc, nil
}

// GetDocument implements DocumentService.
func (s *documentServiceImpl) GetDocument(ctx context.Context, userID, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, NewDocumentServiceError("get_document", "failed to retrieve document", err)
	}
	if doc.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("document access denied",
			"document_id", id,
			"user_id", userID)
		return nil, ErrNotOwned
	}
	return doc, nil
}

// ListHistory implements DocumentService. A non-positive limit selects
// DefaultHistoryLimit; larger values are capped at MaxHistoryLimit.
func (s *documentServiceImpl) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	docs, err := s.documents.ListRecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, NewDocumentServiceError("list_history", "failed to list documents", err)
	}
	return docs, nil
}

// ExtendDocument implements DocumentService.
//
// Generation runs outside any transaction. The new cards are then applied to
// a freshly locked copy of the row, so concurrent extensions of the same
// document do not overwrite each other.
func (s *documentServiceImpl) ExtendDocument(
	ctx context.Context,
	userID, id uuid.UUID,
	unitName string,
) (*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	doc, err := s.GetDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !doc.IsReady() {
		return nil, ErrDocumentNotReady
	}

	existing := doc.Units
	if unitName != "" {
		idx := domain.FindUnit(doc.Units, unitName)
		if idx < 0 {
			return nil, ErrUnitNotFound
		}
		existing = doc.Units[idx : idx+1]
	}

	result, err := s.extender.Extend(ctx, doc.Text, existing)
	if err != nil {
		log.Error("failed to extend document",
			"error", err,
			"document_id", id,
			"unit", unitName)
		return nil, NewDocumentServiceError("extend_document", "failed to generate flashcards", err)
	}

	incoming := result.Units
	if unitName != "" {
		incoming = onlyUnit(incoming, unitName)
	}

	var (
		updated *domain.Document
		added   int
	)
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txDocs := s.documents.WithTx(tx)

		current, err := txDocs.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !current.IsReady() {
			return ErrDocumentNotReady
		}

		added = current.Extend(incoming)
		if err := txDocs.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		log.Error("failed to save extended document",
			"error", err,
			"document_id", id)
		return nil, NewDocumentServiceError("extend_document", "failed to save flashcards", err)
	}

	log.Info("document extended",
		"document_id", id,
		"unit", unitName,
		"new_flashcards", added,
		"total_flashcards", domain.FlashcardCount(updated.Units))

	return updated, nil
}

func onlyUnit(units []domain.StudyUnit, name string) []domain.StudyUnit {
	idx := domain.FindUnit(units, name)
	if idx < 0 {
		return nil
	}
	return units[idx : idx+1]
}
