// Package segment splits long text into bounded pieces that end on sentence
// boundaries where possible.
package segment

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxSize is the segment size used when none is configured.
const DefaultMaxSize = 6000

// Split breaks text into trimmed segments of roughly maxSize characters.
//
// The window for each segment covers maxSize characters. When the window ends
// before the text does, the segment is extended or shortened to end just after
// the last period found at or before the window boundary, provided that period
// lies after the segment's first character; otherwise the window is cut at
// maxSize. A segment is therefore at most maxSize+1 characters long.
//
// Sizes count Unicode code points. Invalid UTF-8 bytes count as one character
// each and are passed through unchanged. Segments that are empty after
// trimming are dropped, so empty or whitespace-only input yields no segments.
// A non-positive maxSize disables splitting.
func Split(text string, maxSize int) []string {
	// starts[i] is the byte offset of character i; starts[n] == len(text).
	starts := make([]int, 0, len(text)+1)
	for i := 0; i < len(text); {
		starts = append(starts, i)
		_, w := utf8.DecodeRuneInString(text[i:])
		i += w
	}
	n := len(starts)
	starts = append(starts, len(text))

	if maxSize <= 0 {
		maxSize = n
	}

	var segments []string
	for cursor := 0; cursor < n; {
		end := cursor + maxSize
		if end >= n {
			end = n
		} else if p := lastPeriod(text, starts, cursor, end); p > cursor {
			end = p + 1
		}

		if s := strings.TrimSpace(text[starts[cursor]:starts[end]]); s != "" {
			segments = append(segments, s)
		}
		cursor = end
	}

	return segments
}

// lastPeriod returns the index of the last '.' among characters from..to
// inclusive, or -1.
func lastPeriod(text string, starts []int, from, to int) int {
	for i := to; i >= from; i-- {
		if text[starts[i]] == '.' {
			return i
		}
	}
	return -1
}
