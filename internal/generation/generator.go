package generation

import (
	"context"

	"github.com/phrazzld/scry-study/internal/domain"
)

// Mode selects the instruction wording sent with a segment.
type Mode int

const (
	// ModeCreate asks for study units built from scratch.
	ModeCreate Mode = iota
	// ModeExtend asks for additional cards that differ from the existing units.
	ModeExtend
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeExtend {
		return "extend"
	}
	return "create"
}

// Request is everything an adapter needs to process one segment.
type Request struct {
	// Segment is the text to analyse.
	Segment string
	// Ordinal is the zero-based position of the segment in the document.
	Ordinal int
	// Total is the number of segments in the document.
	Total int
	// Mode selects create or extend wording.
	Mode Mode
	// Existing holds caller-supplied units. It is only sent in ModeExtend.
	Existing []domain.StudyUnit
	// Known lists unit names already identified in earlier segments of the same run.
	Known []string
}

// IsContinuation reports whether the segment follows an earlier one.
func (r Request) IsContinuation() bool {
	return r.Ordinal > 0
}

// Generator is the completion adapter contract. Complete returns the model's
// raw structured reply for a single segment. Failures to reach the model are
// wrapped in ErrTransport; the reply itself is checked later by Validate.
type Generator interface {
	Complete(ctx context.Context, req Request) ([]byte, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) ([]byte, error)

// Complete calls f(ctx, req).
func (f GeneratorFunc) Complete(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}
