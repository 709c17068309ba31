package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		maxSize int
		want    []string
	}{
		{"empty", "", 10, nil},
		{"whitespace only", "   \n\t ", 10, nil},
		{"shorter than max", "  Hello world.  ", 100, []string{"Hello world."}},
		{"exactly max", "abcde", 5, []string{"abcde"}},
		{"cut after period", "One. Two. Three", 12, []string{"One. Two.", "Three"}},
		{"hard cut without period", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"period at window start is ignored", ".abcdefg", 4, []string{".abc", "defg"}},
		{"period on the boundary stays with its sentence", "abcd.efgh", 4, []string{"abcd.", "efgh"}},
		{"boundary period wins over earlier one", "ab.cd.efgh", 5, []string{"ab.cd.", "efgh"}},
		{"non-positive max", "a. b. c.", 0, []string{"a. b. c."}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Split(tc.text, tc.maxSize))
		})
	}
}

func TestSplitSegmentsBounded(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 400)
	for _, max := range []int{7, 50, 333, DefaultMaxSize} {
		segments := Split(text, max)
		require.NotEmpty(t, segments)
		for _, s := range segments {
			assert.LessOrEqual(t, utf8.RuneCountInString(s), max+1)
		}
		assert.Equal(t, stripSpace(text), stripSpace(strings.Join(segments, "")),
			"segments must reconstruct the input modulo whitespace (max=%d)", max)
	}
}

func TestSplitCountsRunes(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("é", 10)
	segments := Split(text, 4)

	require.Len(t, segments, 3)
	for _, s := range segments {
		assert.True(t, utf8.ValidString(s))
	}
	assert.Equal(t, "éééé", segments[0])
	assert.Equal(t, "éé", segments[2])
}

func TestSplitFifteenThousandChars(t *testing.T) {
	t.Parallel()

	text := strings.Repeat(strings.Repeat("a", 99)+".", 150)
	require.Len(t, text, 15000)

	segments := Split(text, DefaultMaxSize)

	require.Len(t, segments, 3)
	assert.Len(t, segments[0], 6000)
	assert.Len(t, segments[1], 6000)
	assert.Len(t, segments[2], 3000)
}

func TestSplitPassesInvalidUTF8Through(t *testing.T) {
	t.Parallel()

	text := "ab\xffcd. ef\xfe gh."
	segments := Split(text, 8)

	assert.Equal(t, []string{"ab\xffcd.", "ef\xfe gh."}, segments)
	assert.Equal(t, stripSpace(text), stripSpace(strings.Join(segments, "")))
}
