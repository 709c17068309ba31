// Package synthesis turns document text into study units.
//
// A Synthesizer splits the text into segments, asks a generation.Generator
// for each segment's units, validates and enriches every reply, and folds the
// results into a single Accumulator keyed by unit name. Segments are processed
// in document order and all merging happens on the calling goroutine, so the
// first-seen order of units is stable. Any failure aborts the run and no
// partial result is returned.
package synthesis
