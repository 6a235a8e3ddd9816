package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	c := NewChunker(100, 0)

	chunks := c.Split("Fits in one chunk.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Fits in one chunk.", chunks[0])
}

func TestSplit_EmptyTextYieldsNothing(t *testing.T) {
	c := NewChunker(100, 0)

	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n  "))
}

func TestSplit_RespectsBudget(t *testing.T) {
	c := NewChunker(120, 0)

	sentence := "This sentence is about sixty characters long, give or take. "
	text := strings.Repeat(sentence, 20)

	chunks := c.Split(text)
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), c.Budget, "chunk %d", i)
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	c := NewChunker(60, 0)

	text := "First paragraph stands alone here.\n\nSecond paragraph also stands alone."

	chunks := c.Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, "First paragraph stands alone here.", chunks[0])
	assert.Equal(t, "Second paragraph also stands alone.", chunks[1])
}

func TestSplit_PacksSmallParagraphsTogether(t *testing.T) {
	c := NewChunker(200, 0)

	text := "Short one.\n\nShort two.\n\nShort three."

	chunks := c.Split(text)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "Short one.")
	assert.Contains(t, chunks[0], "Short three.")
}

func TestSplit_OversizedSentenceEmittedWhole(t *testing.T) {
	c := NewChunker(50, 0)

	long := strings.Repeat("word ", 30) + "end" // no sentence boundary inside

	chunks := c.Split(long)
	require.Len(t, chunks, 1)
	assert.Greater(t, len(chunks[0]), c.Budget)
}

func TestSplit_DropsTinyChunks(t *testing.T) {
	c := NewChunker(50, 10)

	text := strings.Repeat("A solid sentence with real length to it. ", 3) + "\n\nOk."

	chunks := c.Split(text)
	for _, chunk := range chunks {
		assert.GreaterOrEqual(t, len(chunk), c.MinChars)
	}
	for _, chunk := range chunks {
		assert.NotEqual(t, "Ok.", chunk)
	}
}

func TestSplit_PreservesAllContent(t *testing.T) {
	c := NewChunker(80, 0)

	text := "One two three. Four five six. Seven eight nine. Ten eleven twelve. Thirteen fourteen fifteen. Sixteen seventeen eighteen."

	chunks := c.Split(text)
	joined := strings.Join(chunks, " ")
	for _, word := range strings.Fields(text) {
		assert.Contains(t, joined, strings.TrimRight(word, "."))
	}
}

func TestNewChunker_Defaults(t *testing.T) {
	c := NewChunker(0, 0)
	assert.Equal(t, DefaultChunkChars, c.Budget)
	assert.Equal(t, DefaultMinChunkChars, c.MinChars)

	c = NewChunker(500, 5)
	assert.Equal(t, 500, c.Budget)
	assert.Equal(t, 5, c.MinChars)
}
