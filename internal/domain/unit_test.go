package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionTypes(t *testing.T) {
	t.Parallel()

	types := QuestionTypes()
	require.Len(t, types, 5)
	for _, qt := range types {
		assert.True(t, qt.Valid(), "%s should be valid", qt)
	}
	assert.False(t, QuestionType("trivia").Valid())

	// mutating the returned slice must not leak
	types[0] = "bogus"
	assert.Equal(t, QuestionTypeDefinition, QuestionTypes()[0])
}

func TestStudyUnitValidate(t *testing.T) {
	t.Parallel()

	valid := Flashcard{ID: "1", Question: "q", Answer: "a", Type: QuestionTypeAnalysis, Unit: "U"}

	tests := []struct {
		name    string
		unit    StudyUnit
		wantErr error
	}{
		{"valid", StudyUnit{Name: "U", Flashcards: []Flashcard{valid}}, nil},
		{"empty name", StudyUnit{Name: ""}, ErrUnitNameEmpty},
		{"missing id", StudyUnit{Name: "U", Flashcards: []Flashcard{{Question: "q", Answer: "a", Type: QuestionTypeAnalysis}}}, ErrFlashcardIDEmpty},
		{"missing question", StudyUnit{Name: "U", Flashcards: []Flashcard{{ID: "1", Answer: "a", Type: QuestionTypeAnalysis}}}, ErrFlashcardQuestionEmpty},
		{"missing answer", StudyUnit{Name: "U", Flashcards: []Flashcard{{ID: "1", Question: "q", Type: QuestionTypeAnalysis}}}, ErrFlashcardAnswerEmpty},
		{"bad type", StudyUnit{Name: "U", Flashcards: []Flashcard{{ID: "1", Question: "q", Answer: "a", Type: "x"}}}, ErrInvalidQuestionType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.unit.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestStudyUnitClone(t *testing.T) {
	t.Parallel()

	orig := StudyUnit{
		Name:       "Intro",
		Concepts:   []string{"a"},
		Flashcards: []Flashcard{{ID: "1"}},
	}
	clone := orig.Clone()
	clone.Concepts[0] = "changed"
	clone.Flashcards[0].ID = "changed"

	assert.Equal(t, "a", orig.Concepts[0])
	assert.Equal(t, "1", orig.Flashcards[0].ID)
}

func TestAppendFlashcards(t *testing.T) {
	t.Parallel()

	existing := []StudyUnit{
		{Name: "Intro", Concepts: []string{"a"}, Flashcards: []Flashcard{{ID: "1"}}},
		{Name: "Body", Concepts: []string{"b"}},
	}
	incoming := []StudyUnit{
		{Name: "Intro", Concepts: []string{"z"}, Flashcards: []Flashcard{{ID: "2"}, {ID: "3"}}},
		{Name: "Unknown", Flashcards: []Flashcard{{ID: "4"}}},
	}

	out := AppendFlashcards(existing, incoming)

	require.Len(t, out, 2)
	assert.Equal(t, []string{"a"}, out[0].Concepts)
	assert.Len(t, out[0].Flashcards, 3)
	assert.Empty(t, out[1].Flashcards)
	assert.Len(t, existing[0].Flashcards, 1, "input must not be mutated")
	assert.Equal(t, 3, FlashcardCount(out))
	assert.Equal(t, -1, FindUnit(out, "Unknown"))
}
