package synthesis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/generation"
	"github.com/phrazzld/scry-study/internal/segment"
	"golang.org/x/sync/errgroup"
)

// DefaultLanguage is reported when no segment names a language.
const DefaultLanguage = "en"

// Synthesizer runs the segment, complete, validate, enrich and merge pipeline.
type Synthesizer struct {
	generator       generation.Generator
	enricher        *Enricher
	logger          *slog.Logger
	segmentSize     int
	concurrency     int
	defaultLanguage string
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithSegmentSize sets the maximum segment size in characters.
func WithSegmentSize(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.segmentSize = n
		}
	}
}

// WithConcurrency allows up to n adapter calls in flight. Values below 2 keep
// the run strictly sequential.
func WithConcurrency(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithDefaultLanguage sets the language reported when no segment names one.
func WithDefaultLanguage(lang string) Option {
	return func(s *Synthesizer) {
		if lang != "" {
			s.defaultLanguage = lang
		}
	}
}

// WithEnricher replaces the default enricher.
func WithEnricher(e *Enricher) Option {
	return func(s *Synthesizer) {
		if e != nil {
			s.enricher = e
		}
	}
}

// NewSynthesizer creates a Synthesizer around the given adapter.
func NewSynthesizer(generator generation.Generator, logger *slog.Logger, opts ...Option) (*Synthesizer, error) {
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	s := &Synthesizer{
		generator:       generator,
		logger:          logger.With("component", "synthesizer"),
		segmentSize:     segment.DefaultMaxSize,
		concurrency:     1,
		defaultLanguage: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.enricher == nil {
		s.enricher = NewEnricher()
	}

	return s, nil
}

// Synthesize builds study units from text.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*domain.SynthesisResult, error) {
	return s.run(ctx, text, generation.ModeCreate, nil)
}

// Extend asks for additional units and cards, sending existing as context
// with every segment. The returned result holds only the newly generated units.
func (s *Synthesizer) Extend(
	ctx context.Context,
	text string,
	existing []domain.StudyUnit,
) (*domain.SynthesisResult, error) {
	return s.run(ctx, text, generation.ModeExtend, domain.CloneUnits(existing))
}

func (s *Synthesizer) run(
	ctx context.Context,
	text string,
	mode generation.Mode,
	existing []domain.StudyUnit,
) (*domain.SynthesisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	start := time.Now()
	segments := segment.Split(text, s.segmentSize)
	acc := NewAccumulator(s.defaultLanguage)

	s.logger.InfoContext(ctx, "starting synthesis",
		"mode", mode.String(),
		"text_length", len(text),
		"segments", len(segments),
		"existing_units", len(existing))

	var err error
	if s.concurrency > 1 && len(segments) > 1 {
		err = s.runConcurrent(ctx, segments, mode, existing, acc)
	} else {
		err = s.runSequential(ctx, segments, mode, existing, acc)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "synthesis failed",
			"error", err,
			"duration", time.Since(start))
		return nil, err
	}

	if acc.Len() == 0 {
		return nil, ErrEmptyResult
	}

	result := acc.Result()
	s.logger.InfoContext(ctx, "synthesis completed",
		"units", len(result.Units),
		"flashcards", domain.FlashcardCount(result.Units),
		"language", result.Language,
		"duration", time.Since(start))

	return result, nil
}

func (s *Synthesizer) runSequential(
	ctx context.Context,
	segments []string,
	mode generation.Mode,
	existing []domain.StudyUnit,
	acc *Accumulator,
) error {
	for i, text := range segments {
		req := generation.Request{
			Segment:  text,
			Ordinal:  i,
			Total:    len(segments),
			Mode:     mode,
			Existing: existing,
			Known:    acc.Names(),
		}

		resp, err := s.process(ctx, req)
		if err != nil {
			return err
		}
		s.apply(acc, resp)
	}
	return nil
}

// runConcurrent fetches replies in parallel and applies them in segment order
// once every call has returned.
func (s *Synthesizer) runConcurrent(
	ctx context.Context,
	segments []string,
	mode generation.Mode,
	existing []domain.StudyUnit,
	acc *Accumulator,
) error {
	responses := make([]*generation.Response, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, text := range segments {
		req := generation.Request{
			Segment:  text,
			Ordinal:  i,
			Total:    len(segments),
			Mode:     mode,
			Existing: existing,
		}
		g.Go(func() error {
			resp, err := s.process(gctx, req)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, resp := range responses {
		s.apply(acc, resp)
	}
	return nil
}

func (s *Synthesizer) process(ctx context.Context, req generation.Request) (*generation.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SegmentError{Index: req.Ordinal, Total: req.Total,
			Err: fmt.Errorf("%w: %w", generation.ErrTransport, err)}
	}

	s.logger.DebugContext(ctx, "processing segment",
		"segment", req.Ordinal+1,
		"total", req.Total,
		"length", len(req.Segment))

	raw, err := s.generator.Complete(ctx, req)
	if err != nil {
		return nil, &SegmentError{Index: req.Ordinal, Total: req.Total, Err: err}
	}

	resp, err := generation.Validate(raw)
	if err != nil {
		return nil, &SegmentError{Index: req.Ordinal, Total: req.Total, Err: err}
	}

	s.logger.DebugContext(ctx, "segment processed",
		"segment", req.Ordinal+1,
		"units", len(resp.Units),
		"language", resp.Language)

	return resp, nil
}

func (s *Synthesizer) apply(acc *Accumulator, resp *generation.Response) {
	acc.Add(s.enricher.EnrichAll(resp.Units)...)
	acc.SetLanguage(resp.Language)
}
