package synthesis

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/generation"
)

// Enricher converts model units into domain units, giving each flashcard an
// ID, a back-reference to its unit, a concept and a randomly drawn question type.
type Enricher struct {
	mu    sync.Mutex
	rng   *rand.Rand
	newID func() string
	types []domain.QuestionType
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithRand sets the random source used to draw question types.
func WithRand(rng *rand.Rand) EnricherOption {
	return func(e *Enricher) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithIDFunc sets the flashcard ID generator.
func WithIDFunc(fn func() string) EnricherOption {
	return func(e *Enricher) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEnricher returns an Enricher using a time-seeded source and random UUIDs.
func NewEnricher(opts ...EnricherOption) *Enricher {
	e := &Enricher{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		newID: uuid.NewString,
		types: domain.QuestionTypes(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich builds a domain unit from a model unit. Duplicate concepts are
// collapsed in first-seen order.
func (e *Enricher) Enrich(in generation.UnitSchema) domain.StudyUnit {
	concepts := make([]string, 0, len(in.Concepts))
	seen := make(map[string]struct{}, len(in.Concepts))
	for _, c := range in.Concepts {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		concepts = append(concepts, c)
	}

	concept := domain.DefaultConcept
	if len(concepts) > 0 && concepts[0] != "" {
		concept = concepts[0]
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cards := make([]domain.Flashcard, 0, len(in.Flashcards))
	for _, c := range in.Flashcards {
		cards = append(cards, domain.Flashcard{
			ID:       e.newID(),
			Question: c.Question,
			Answer:   c.Answer,
			Type:     e.types[e.rng.Intn(len(e.types))],
			Unit:     in.Name,
			Concept:  concept,
		})
	}

	return domain.StudyUnit{
		Name:       in.Name,
		Concepts:   concepts,
		Flashcards: cards,
	}
}

// EnrichAll enriches units in order.
func (e *Enricher) EnrichAll(in []generation.UnitSchema) []domain.StudyUnit {
	out := make([]domain.StudyUnit, 0, len(in))
	for _, u := range in {
		out = append(out, e.Enrich(u))
	}
	return out
}
