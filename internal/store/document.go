package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// DocumentStore defines the interface for document data persistence.
// Version: 1.0
type DocumentStore interface {
	// Create saves a new document to the store.
	// It handles domain validation internally.
	// Returns store.ErrInvalidEntity if the owning user reference is invalid.
	// Returns store.ErrDuplicate if a document with the same ID exists.
	Create(ctx context.Context, doc *domain.Document) error

	// GetByID retrieves a document by its unique ID, including its units.
	// Returns store.ErrDocumentNotFound if the document does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)

	// GetByIDForUpdate is GetByID with a row lock held until the surrounding
	// transaction ends. Only meaningful on a store bound with WithTx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Document, error)

	// Update persists status, language, units and error of an existing document.
	// Returns store.ErrDocumentNotFound if the document does not exist.
	Update(ctx context.Context, doc *domain.Document) error

	// ListRecentByUser returns up to limit documents owned by userID,
	// most recently created first. Text is not loaded.
	ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Document, error)

	// WithTx returns a new DocumentStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	WithTx(tx *sql.Tx) DocumentStore
}
