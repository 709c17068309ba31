package synthesis

import "github.com/phrazzld/scry-study/internal/domain"

// Accumulator is the running state of a synthesis run. Units are identified
// by exact name; a repeated name unions concepts and appends flashcards.
// An Accumulator is not safe for concurrent use.
type Accumulator struct {
	units    []domain.StudyUnit
	index    map[string]int
	language string
}

// NewAccumulator returns an empty accumulator reporting defaultLanguage until
// a segment supplies one.
func NewAccumulator(defaultLanguage string) *Accumulator {
	return &Accumulator{
		index:    make(map[string]int),
		language: defaultLanguage,
	}
}

// Add merges units into the accumulation.
func (a *Accumulator) Add(units ...domain.StudyUnit) {
	for _, u := range units {
		idx, ok := a.index[u.Name]
		if !ok {
			a.index[u.Name] = len(a.units)
			a.units = append(a.units, u.Clone())
			continue
		}
		mergeInto(&a.units[idx], u)
	}
}

// SetLanguage records the language of the latest segment. Empty values are ignored.
func (a *Accumulator) SetLanguage(language string) {
	if language != "" {
		a.language = language
	}
}

// Names returns unit names in first-seen order.
func (a *Accumulator) Names() []string {
	names := make([]string, len(a.units))
	for i, u := range a.units {
		names[i] = u.Name
	}
	return names
}

// Len returns the number of distinct units.
func (a *Accumulator) Len() int {
	return len(a.units)
}

// Result returns a copy of the accumulated units and language.
func (a *Accumulator) Result() *domain.SynthesisResult {
	units := domain.CloneUnits(a.units)
	if units == nil {
		units = []domain.StudyUnit{}
	}
	return &domain.SynthesisResult{Units: units, Language: a.language}
}

// Merge folds incoming into accumulated and returns the combined units.
// Neither argument is modified.
func Merge(accumulated, incoming []domain.StudyUnit) []domain.StudyUnit {
	acc := NewAccumulator("")
	acc.units = domain.CloneUnits(accumulated)
	for i, u := range acc.units {
		if _, ok := acc.index[u.Name]; !ok {
			acc.index[u.Name] = i
		}
	}
	acc.Add(incoming...)
	return acc.units
}

func mergeInto(dst *domain.StudyUnit, src domain.StudyUnit) {
	for _, c := range src.Concepts {
		if !dst.HasConcept(c) {
			dst.Concepts = append(dst.Concepts, c)
		}
	}
	dst.Flashcards = append(dst.Flashcards, src.Flashcards...)
}
