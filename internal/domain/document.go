package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus represents the processing state of a document
type DocumentStatus string

// Possible document status values
const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Common validation errors for Document
var (
	ErrEmptyDocumentID     = errors.New("document ID cannot be empty")
	ErrEmptyDocumentUserID = errors.New("document user ID cannot be empty")
	ErrEmptyDocumentText   = errors.New("document text cannot be empty")
	ErrInvalidDocStatus    = errors.New("invalid document status")
)

// Document is an uploaded piece of source text together with the study
// units synthesized from it.
type Document struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	FileName  string         `json:"file_name"`
	Text      string         `json:"-"`
	Status    DocumentStatus `json:"status"`
	Language  string         `json:"language,omitempty"`
	Units     []StudyUnit    `json:"units"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewDocument creates a pending Document for the given user.
// Returns an error if validation fails.
func NewDocument(userID uuid.UUID, fileName, text string) (*Document, error) {
	now := time.Now().UTC()
	doc := &Document{
		ID:        uuid.New(),
		UserID:    userID,
		FileName:  fileName,
		Text:      text,
		Status:    DocumentStatusPending,
		Units:     []StudyUnit{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// Validate checks if the Document has valid data.
func (d *Document) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDocumentID
	}

	if d.UserID == uuid.Nil {
		return ErrEmptyDocumentUserID
	}

	if strings.TrimSpace(d.Text) == "" {
		return ErrEmptyDocumentText
	}

	if !isValidDocumentStatus(d.Status) {
		return ErrInvalidDocStatus
	}

	for _, u := range d.Units {
		if err := u.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// MarkProcessing moves the document into the processing state.
func (d *Document) MarkProcessing() {
	d.Status = DocumentStatusProcessing
	d.Error = ""
	d.UpdatedAt = time.Now().UTC()
}

// Complete stores a synthesis result on the document.
func (d *Document) Complete(result *SynthesisResult) {
	d.Status = DocumentStatusCompleted
	d.Units = CloneUnits(result.Units)
	d.Language = result.Language
	d.Error = ""
	d.UpdatedAt = time.Now().UTC()
}

// Fail records a synthesis failure. Previously stored units are discarded.
func (d *Document) Fail(err error) {
	d.Status = DocumentStatusFailed
	d.Units = []StudyUnit{}
	if err != nil {
		d.Error = err.Error()
	}
	d.UpdatedAt = time.Now().UTC()
}

// Extend appends the flashcards of incoming units to the matching existing
// units and returns how many cards were added. Units the document does not
// already have are ignored.
func (d *Document) Extend(incoming []StudyUnit) int {
	before := FlashcardCount(d.Units)
	d.Units = AppendFlashcards(d.Units, incoming)
	d.UpdatedAt = time.Now().UTC()
	return FlashcardCount(d.Units) - before
}

// IsReady reports whether the document has finished synthesis successfully.
func (d *Document) IsReady() bool {
	return d.Status == DocumentStatusCompleted
}

func isValidDocumentStatus(status DocumentStatus) bool {
	switch status {
	case DocumentStatusPending, DocumentStatusProcessing,
		DocumentStatusCompleted, DocumentStatusFailed:
		return true
	default:
		return false
	}
}
