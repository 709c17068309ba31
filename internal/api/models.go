package api

import (
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// CreateDocumentRequest is the JSON body of POST /api/documents.
type CreateDocumentRequest struct {
	FileName string `json:"file_name" validate:"max=255"`
	Text     string `json:"text"      validate:"required"`
}

// ExtendDocumentRequest is the optional JSON body of POST /api/documents/{id}/extend.
type ExtendDocumentRequest struct {
	// Unit restricts the extension to one study unit.
	Unit string `json:"unit,omitempty" validate:"max=200"`
}

// DocumentResponse is a document with its study units.
type DocumentResponse struct {
	ID             string             `json:"id"`
	FileName       string             `json:"file_name,omitempty"`
	Status         string             `json:"status"`
	Language       string             `json:"language,omitempty"`
	Units          []domain.StudyUnit `json:"units"`
	FlashcardCount int                `json:"flashcard_count"`
	Error          string             `json:"error,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// DocumentSummaryResponse is one history entry.
type DocumentSummaryResponse struct {
	ID             string    `json:"id"`
	FileName       string    `json:"file_name,omitempty"`
	Status         string    `json:"status"`
	Language       string    `json:"language,omitempty"`
	UnitCount      int       `json:"unit_count"`
	FlashcardCount int       `json:"flashcard_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryResponse is the body of GET /api/documents.
type HistoryResponse struct {
	Documents []DocumentSummaryResponse `json:"documents"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func documentToResponse(doc *domain.Document) DocumentResponse {
	units := doc.Units
	if units == nil {
		units = []domain.StudyUnit{}
	}
	return DocumentResponse{
		ID:             doc.ID.String(),
		FileName:       doc.FileName,
		Status:         string(doc.Status),
		Language:       doc.Language,
		Units:          units,
		FlashcardCount: domain.FlashcardCount(units),
		Error:          doc.Error,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

func documentToSummary(doc *domain.Document) DocumentSummaryResponse {
	return DocumentSummaryResponse{
		ID:             doc.ID.String(),
		FileName:       doc.FileName,
		Status:         string(doc.Status),
		Language:       doc.Language,
		UnitCount:      len(doc.Units),
		FlashcardCount: domain.FlashcardCount(doc.Units),
		CreatedAt:      doc.CreatedAt,
	}
}
