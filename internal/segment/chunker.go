package segment

import (
	"regexp"
	"strings"
)

const (
	// DefaultChunkChars is a conservative per-request character budget for
	// TTS services (the OpenAI speech endpoint caps input at 4096).
	DefaultChunkChars = 4000

	// DefaultMinChunkChars is the noise floor; shorter chunks are dropped.
	DefaultMinChunkChars = 10
)

// sentenceEnd locates sentence-terminal punctuation followed by whitespace.
// RE2 has no lookbehind, so the boundary is cut after the punctuation run.
var sentenceEnd = regexp.MustCompile(`[.!?]+["')\]]*\s+`)

// paragraphBreak splits text on blank lines.
var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Chunker splits text into pieces that fit a TTS request budget.
type Chunker struct {
	// Budget is the hard per-chunk character limit.
	Budget int
	// MinChars drops chunks below this trimmed length.
	MinChars int
}

// NewChunker creates a chunker with the given budget; non-positive values
// fall back to the defaults.
func NewChunker(budget, minChars int) *Chunker {
	if budget <= 0 {
		budget = DefaultChunkChars
	}
	if minChars <= 0 {
		minChars = DefaultMinChunkChars
	}
	return &Chunker{Budget: budget, MinChars: minChars}
}

// Split divides text into chunks no longer than the budget. Paragraph
// boundaries are preferred; paragraphs that alone exceed the budget are
// split at sentence boundaries. A single sentence longer than the budget is
// emitted as-is rather than broken mid-word.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.Budget {
		return []string{text}
	}

	var pieces []string
	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= c.Budget {
			pieces = append(pieces, para)
			continue
		}
		pieces = append(pieces, c.splitSentences(para)...)
	}

	return c.pack(pieces)
}

// splitSentences cuts a paragraph at sentence boundaries.
func (c *Chunker) splitSentences(para string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(para, -1) {
		sentences = append(sentences, strings.TrimSpace(para[start:loc[1]]))
		start = loc[1]
	}
	if start < len(para) {
		sentences = append(sentences, strings.TrimSpace(para[start:]))
	}
	return sentences
}

// pack accumulates pieces into chunks under the budget. A piece that alone
// exceeds the budget (an unsplittable sentence) becomes its own chunk.
func (c *Chunker) pack(pieces []string) []string {
	var (
		chunks  []string
		current strings.Builder
	)

	closeCurrent := func() {
		chunk := strings.TrimSpace(current.String())
		current.Reset()
		if len(chunk) >= c.MinChars {
			chunks = append(chunks, chunk)
		}
	}

	for _, piece := range pieces {
		if current.Len() > 0 && current.Len()+len(piece)+1 > c.Budget {
			closeCurrent()
		}
		if len(piece) > c.Budget {
			closeCurrent()
			if len(piece) >= c.MinChars {
				chunks = append(chunks, piece)
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(piece)
	}
	closeCurrent()

	return chunks
}
