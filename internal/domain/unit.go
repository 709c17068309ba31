package domain

import (
	"errors"
	"fmt"
)

// QuestionType classifies the kind of recall a flashcard asks for.
type QuestionType string

// Possible question types
const (
	QuestionTypeDefinition  QuestionType = "definition"
	QuestionTypeExplanation QuestionType = "explanation"
	QuestionTypeApplication QuestionType = "application"
	QuestionTypeAnalysis    QuestionType = "analysis"
	QuestionTypeComparison  QuestionType = "comparison"
)

// DefaultConcept is assigned to flashcards of units that name no concepts.
const DefaultConcept = "General"

var questionTypes = []QuestionType{
	QuestionTypeDefinition,
	QuestionTypeExplanation,
	QuestionTypeApplication,
	QuestionTypeAnalysis,
	QuestionTypeComparison,
}

// QuestionTypes returns every question type in declaration order.
func QuestionTypes() []QuestionType {
	out := make([]QuestionType, len(questionTypes))
	copy(out, questionTypes)
	return out
}

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	for _, known := range questionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Unit and flashcard validation errors
var (
	ErrUnitNameEmpty          = errors.New("unit name cannot be empty")
	ErrFlashcardIDEmpty       = errors.New("flashcard ID cannot be empty")
	ErrFlashcardQuestionEmpty = errors.New("flashcard question cannot be empty")
	ErrFlashcardAnswerEmpty   = errors.New("flashcard answer cannot be empty")
	ErrInvalidQuestionType    = errors.New("invalid question type")
)

// Flashcard is a single question/answer pair generated for a study unit.
// Unit holds the owning unit's name rather than a pointer.
type Flashcard struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Type     QuestionType `json:"type"`
	Unit     string       `json:"unit"`
	Concept  string       `json:"concept"`
}

// Validate checks if the Flashcard has valid data.
func (f Flashcard) Validate() error {
	if f.ID == "" {
		return ErrFlashcardIDEmpty
	}
	if f.Question == "" {
		return ErrFlashcardQuestionEmpty
	}
	if f.Answer == "" {
		return ErrFlashcardAnswerEmpty
	}
	if !f.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidQuestionType, f.Type)
	}
	return nil
}

// StudyUnit is a named topic extracted from a document. Two units are the
// same unit exactly when their names are equal byte for byte.
// Concepts never holds duplicates.
type StudyUnit struct {
	Name       string      `json:"name"`
	Concepts   []string    `json:"concepts"`
	Flashcards []Flashcard `json:"flashcards"`
}

// Validate checks the unit and every flashcard it holds.
func (u StudyUnit) Validate() error {
	if u.Name == "" {
		return ErrUnitNameEmpty
	}
	for i, card := range u.Flashcards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("unit %q flashcard %d: %w", u.Name, i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the unit.
func (u StudyUnit) Clone() StudyUnit {
	out := StudyUnit{Name: u.Name}
	if u.Concepts != nil {
		out.Concepts = append(make([]string, 0, len(u.Concepts)), u.Concepts...)
	}
	if u.Flashcards != nil {
		out.Flashcards = append(make([]Flashcard, 0, len(u.Flashcards)), u.Flashcards...)
	}
	return out
}

// HasConcept reports whether the unit already lists concept.
func (u StudyUnit) HasConcept(concept string) bool {
	for _, c := range u.Concepts {
		if c == concept {
			return true
		}
	}
	return false
}

// CloneUnits deep-copies a slice of units.
func CloneUnits(units []StudyUnit) []StudyUnit {
	if units == nil {
		return nil
	}
	out := make([]StudyUnit, len(units))
	for i, u := range units {
		out[i] = u.Clone()
	}
	return out
}

// FindUnit returns the index of the unit named name, or -1.
func FindUnit(units []StudyUnit, name string) int {
	for i := range units {
		if units[i].Name == name {
			return i
		}
	}
	return -1
}

// FlashcardCount returns the total number of flashcards across units.
func FlashcardCount(units []StudyUnit) int {
	n := 0
	for _, u := range units {
		n += len(u.Flashcards)
	}
	return n
}

// AppendFlashcards adds the flashcards of incoming units to the matching
// units in existing and returns the updated copy. Incoming units without a
// match are dropped and concept lists are left untouched.
func AppendFlashcards(existing, incoming []StudyUnit) []StudyUnit {
	out := CloneUnits(existing)
	for _, in := range incoming {
		idx := FindUnit(out, in.Name)
		if idx < 0 {
			continue
		}
		out[idx].Flashcards = append(out[idx].Flashcards, in.Flashcards...)
	}
	return out
}

// SynthesisResult is the outcome of one synthesis run.
type SynthesisResult struct {
	Units    []StudyUnit `json:"units"`
	Language string      `json:"language"`
}
