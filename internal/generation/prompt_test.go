package generation

import (
	"testing"
	"testing/fstest"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptBuilderFirstSegment(t *testing.T) {
	t.Parallel()

	b, err := NewPromptBuilder()
	require.NoError(t, err)

	p, err := b.Build(Request{Segment: "Cells are small.", Ordinal: 0, Total: 2})
	require.NoError(t, err)

	assert.Contains(t, p.System, "Focus on key points only.")
	assert.NotContains(t, p.System, "Avoid duplicating")
	assert.Contains(t, p.User, "Create study units")
	assert.Contains(t, p.User, "Text: Cells are small.")
	assert.NotContains(t, p.User, "Existing units")
}

func TestPromptBuilderContinuation(t *testing.T) {
	t.Parallel()

	b, err := NewPromptBuilder()
	require.NoError(t, err)

	p, err := b.Build(Request{
		Segment: "More text.",
		Ordinal: 1,
		Total:   3,
		Known:   []string{"Intro", "Cells"},
	})
	require.NoError(t, err)

	assert.Contains(t, p.System, "part 2 of 3")
	assert.Contains(t, p.System, "Avoid duplicating units already identified")
	assert.Contains(t, p.System, "Units identified so far: Intro, Cells.")
}

func TestPromptBuilderExtend(t *testing.T) {
	t.Parallel()

	b, err := NewPromptBuilder()
	require.NoError(t, err)

	existing := []domain.StudyUnit{{Name: "Intro", Concepts: []string{"a"}}}
	p, err := b.Build(Request{Segment: "Text.", Mode: ModeExtend, Existing: existing, Total: 1})
	require.NoError(t, err)

	assert.Contains(t, p.User, "Generate additional concise study cards")
	assert.Contains(t, p.User, `Existing units: [{"name":"Intro","concepts":["a"],"flashcards":null}]`)

	p, err = b.Build(Request{Segment: "Text.", Mode: ModeExtend, Total: 1})
	require.NoError(t, err)
	assert.Contains(t, p.User, "Existing units: []")
}

func TestPromptBuilderOverrides(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"custom/user.twig": {Data: []byte("Segment {{ position }}: {{ segment }}")},
	}

	b, err := NewPromptBuilder(WithTemplateFS(fsys, "custom"))
	require.NoError(t, err)

	p, err := b.Build(Request{Segment: "abc", Ordinal: 4, Total: 5})
	require.NoError(t, err)
	assert.Equal(t, "Segment 5: abc", p.User)
	assert.Contains(t, p.System, "Identify the units")

	_, err = NewPromptBuilder(WithTemplate(SystemTemplate, "  "))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
