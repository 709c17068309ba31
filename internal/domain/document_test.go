package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	doc, err := NewDocument(userID, "notes.txt", "Some text.")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, doc.ID)
	assert.Equal(t, userID, doc.UserID)
	assert.Equal(t, DocumentStatusPending, doc.Status)
	assert.NotNil(t, doc.Units)
	assert.False(t, doc.CreatedAt.IsZero())

	_, err = NewDocument(uuid.Nil, "notes.txt", "Some text.")
	assert.ErrorIs(t, err, ErrEmptyDocumentUserID)

	_, err = NewDocument(userID, "notes.txt", "")
	assert.ErrorIs(t, err, ErrEmptyDocumentText)

	_, err = NewDocument(userID, "notes.txt", " \n\t ")
	assert.ErrorIs(t, err, ErrEmptyDocumentText)
}

func TestDocumentLifecycle(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument(uuid.New(), "", "text")
	require.NoError(t, err)

	doc.MarkProcessing()
	assert.Equal(t, DocumentStatusProcessing, doc.Status)
	assert.False(t, doc.IsReady())

	result := &SynthesisResult{
		Units:    []StudyUnit{{Name: "U", Concepts: []string{"c"}}},
		Language: "de",
	}
	doc.Complete(result)
	assert.True(t, doc.IsReady())
	assert.Equal(t, "de", doc.Language)
	require.Len(t, doc.Units, 1)

	result.Units[0].Concepts[0] = "mutated"
	assert.Equal(t, "c", doc.Units[0].Concepts[0])

	doc.Fail(errors.New("boom"))
	assert.Equal(t, DocumentStatusFailed, doc.Status)
	assert.Equal(t, "boom", doc.Error)
	assert.Empty(t, doc.Units)
}

func TestDocumentValidateStatus(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument(uuid.New(), "", "text")
	require.NoError(t, err)

	doc.Status = "archived"
	assert.ErrorIs(t, doc.Validate(), ErrInvalidDocStatus)
}

func TestDocumentExtend(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument(uuid.New(), "", "text")
	require.NoError(t, err)
	doc.Complete(&SynthesisResult{Units: []StudyUnit{{Name: "U", Flashcards: []Flashcard{{ID: "1"}}}}})
	before := doc.UpdatedAt

	added := doc.Extend([]StudyUnit{
		{Name: "U", Flashcards: []Flashcard{{ID: "2"}}},
		{Name: "Other", Flashcards: []Flashcard{{ID: "3"}}},
	})

	assert.Equal(t, 1, added)
	require.Len(t, doc.Units, 1)
	assert.Len(t, doc.Units[0].Flashcards, 2)
	assert.False(t, doc.UpdatedAt.Before(before))
}
