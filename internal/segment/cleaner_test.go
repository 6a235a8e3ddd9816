package segment

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_RemovesTimingMarkers(t *testing.T) {
	in := "[Opening Hook: 2-3 minutes]\nHave you ever wondered how plants eat?"

	out := Clean(in)
	assert.Equal(t, "Have you ever wondered how plants eat?", out)
}

func TestClean_RemovesBracketedAnnotations(t *testing.T) {
	in := "Plants need sunlight. [pause for effect] Water comes next."

	out := Clean(in)
	assert.NotContains(t, out, "[")
	assert.Contains(t, out, "Plants need sunlight.")
	assert.Contains(t, out, "Water comes next.")
}

func TestClean_RemovesMultiLineBrackets(t *testing.T) {
	in := "Before.\n[Teacher note:\nhand out worksheets\nnow]\nAfter."

	out := Clean(in)
	assert.NotContains(t, out, "worksheets")
	assert.Contains(t, out, "Before.")
	assert.Contains(t, out, "After.")
}

func TestClean_StripsMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "## Photosynthesis\nBody text.", "Photosynthesis\nBody text."},
		{"bullet", "- first point\n- second point", "first point\nsecond point"},
		{"numbered", "1. first\n2) second", "first\nsecond"},
		{"bold", "This is **very** important.", "This is very important."},
		{"italic", "Say it *slowly* please.", "Say it slowly please."},
		{"nested list prefixes", "1. 2. deeply nested", "deeply nested"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestClean_DropsResidueLines(t *testing.T) {
	in := "Plants make food.\nNote: skip this if short on time\nInstructions: read aloud\nUse the visual aid on page 3.\nThey use sunlight."

	out := Clean(in)
	assert.NotContains(t, out, "Note:")
	assert.NotContains(t, out, "Instructions:")
	assert.NotContains(t, out, "visual aid")
	assert.Contains(t, out, "Plants make food.")
	assert.Contains(t, out, "They use sunlight.")
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	in := "Too   many    spaces.\n\n\n\n\nToo many blanks."

	out := Clean(in)
	assert.Equal(t, "Too many spaces.\n\nToo many blanks.", out)
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		sampleScript,
		"## Heading\n- 1. * mixed markers [note] text",
		"plain prose that needs no cleaning at all",
		"",
		"***\n___\n[a][b][c]",
	}

	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)
	}
}

func TestCheckContent_WarnsOnShortContent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got := CheckContent(logger, "Recap", "too short")
	assert.Equal(t, "too short", got)
	assert.Contains(t, buf.String(), "very little speakable content")

	buf.Reset()
	long := strings.Repeat("enough content here. ", 10)
	CheckContent(logger, "Content", long)
	assert.Empty(t, buf.String())
}
