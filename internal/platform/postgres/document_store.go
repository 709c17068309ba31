package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const documentsTable = "documents"

var (
	documentSummaryColumns = []string{
		"id", "user_id", "file_name", "status", "language", "units", "error", "created_at", "updated_at",
	}
	documentColumns = append([]string{"text"}, documentSummaryColumns...)
)

// PostgresDocumentStore implements the store.DocumentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDocumentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDocumentStore creates a new PostgreSQL implementation of the DocumentStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDocumentStore(db store.DBTX, logger *slog.Logger) *PostgresDocumentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDocumentStore{
		db:     db,
		logger: logger.With(slog.String("component", "document_store")),
	}
}

var _ store.DocumentStore = (*PostgresDocumentStore)(nil)

// WithTx implements store.DocumentStore.WithTx
func (s *PostgresDocumentStore) WithTx(tx *sql.Tx) store.DocumentStore {
	return &PostgresDocumentStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.DocumentStore.Create
func (s *PostgresDocumentStore) Create(ctx context.Context, doc *domain.Document) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := doc.Validate(); err != nil {
		log.Warn("document validation failed during create",
			slog.String("error", err.Error()),
			slog.String("document_id", doc.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	units, err := encodeUnits(doc.Units)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert(documentsTable).
		Columns(documentColumns...).
		Values(
			doc.Text, doc.ID, doc.UserID, doc.FileName, string(doc.Status),
			doc.Language, units, doc.Error, doc.CreatedAt, doc.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create document",
			slog.String("error", err.Error()),
			slog.String("document_id", doc.ID.String()),
			slog.String("user_id", doc.UserID.String()))
		return MapError(err)
	}

	log.Info("document created",
		slog.String("document_id", doc.ID.String()),
		slog.String("user_id", doc.UserID.String()),
		slog.Int("text_length", len(doc.Text)))
	return nil
}

// GetByID implements store.DocumentStore.GetByID
func (s *PostgresDocumentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return s.getByID(ctx, id, false)
}

// GetByIDForUpdate implements store.DocumentStore.GetByIDForUpdate
func (s *PostgresDocumentStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return s.getByID(ctx, id, true)
}

func (s *PostgresDocumentStore) getByID(ctx context.Context, id uuid.UUID, lock bool) (*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select(documentColumns...).
		From(documentsTable).
		Where(sq.Eq{"id": id})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var text string
	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, args...), &text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("document not found", slog.String("document_id", id.String()))
			return nil, store.ErrDocumentNotFound
		}
		log.Error("failed to get document by ID",
			slog.String("error", err.Error()),
			slog.String("document_id", id.String()),
			slog.Bool("for_update", lock))
		return nil, MapError(err)
	}
	doc.Text = text

	return doc, nil
}

// Update implements store.DocumentStore.Update
func (s *PostgresDocumentStore) Update(ctx context.Context, doc *domain.Document) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := doc.Validate(); err != nil {
		log.Warn("document validation failed during update",
			slog.String("error", err.Error()),
			slog.String("document_id", doc.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	units, err := encodeUnits(doc.Units)
	if err != nil {
		return err
	}

	query, args, err := psql.Update(documentsTable).
		SetMap(map[string]any{
			"status":     string(doc.Status),
			"language":   doc.Language,
			"units":      units,
			"error":      doc.Error,
			"updated_at": doc.UpdatedAt,
		}).
		Where(sq.Eq{"id": doc.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update document",
			slog.String("error", err.Error()),
			slog.String("document_id", doc.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrDocumentNotFound); err != nil {
		log.Debug("document update affected no rows", slog.String("document_id", doc.ID.String()))
		return err
	}

	log.Debug("document updated",
		slog.String("document_id", doc.ID.String()),
		slog.String("status", string(doc.Status)),
		slog.Int("units", len(doc.Units)))
	return nil
}

// ListRecentByUser implements store.DocumentStore.ListRecentByUser
func (s *PostgresDocumentStore) ListRecentByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return []*domain.Document{}, nil
	}

	query, args, err := psql.Select(documentSummaryColumns...).
		From(documentsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list documents",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*domain.Document, 0, limit)
	for rows.Next() {
		doc, err := scanDocument(rows, nil)
		if err != nil {
			log.Error("failed to scan document row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument reads a row selected with documentColumns when text is
// non-nil, or documentSummaryColumns otherwise.
func scanDocument(row rowScanner, text *string) (*domain.Document, error) {
	var (
		doc    domain.Document
		status string
		units  []byte
	)

	dest := []any{
		&doc.ID, &doc.UserID, &doc.FileName, &status, &doc.Language,
		&units, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	}
	if text != nil {
		dest = append([]any{text}, dest...)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	doc.Status = domain.DocumentStatus(status)
	decoded, err := decodeUnits(units)
	if err != nil {
		return nil, err
	}
	doc.Units = decoded

	return &doc, nil
}

func encodeUnits(units []domain.StudyUnit) (string, error) {
	if units == nil {
		units = []domain.StudyUnit{}
	}
	data, err := json.Marshal(units)
	if err != nil {
		return "", fmt.Errorf("failed to encode study units: %w", err)
	}
	return string(data), nil
}

func decodeUnits(data []byte) ([]domain.StudyUnit, error) {
	units := []domain.StudyUnit{}
	if len(data) == 0 {
		return units, nil
	}
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, fmt.Errorf("failed to decode study units: %w", err)
	}
	if units == nil {
		units = []domain.StudyUnit{}
	}
	return units, nil
}
